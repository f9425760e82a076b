// Package games implements the video game catalog: the store contract, the
// catalog service that enforces its invariants, and the HTTP surface over it.
package games

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxPage     = math.MaxInt32
	MaxPageSize = 50

	DefaultPage     = 1
	DefaultPageSize = 5
)

// Game is a catalog entry. (Name, Producer) is unique across the catalog.
type Game struct {
	ID       uuid.UUID
	Name     string
	Producer string
	Price    float64
}

func (g Game) View() View {
	return View{ID: g.ID, Name: g.Name, Producer: g.Producer, Price: g.Price}
}

// Input is the caller-supplied shape for insert and full update.
type Input struct {
	Name     string  `json:"name" validate:"required,min=3,max=100"`
	Producer string  `json:"producer" validate:"required,min=3,max=100"`
	Price    float64 `json:"price" validate:"gte=1,lte=1000"`
}

// Normalize trims surrounding whitespace from the text fields.
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Producer = strings.TrimSpace(in.Producer)
	return in
}

func (in Input) Validate() error {
	return validateStruct(in)
}

// PriceChange is a price-only update. It shares Input's price range so a
// price update can never leave a game that a full update would reject.
type PriceChange struct {
	Price float64 `json:"price" validate:"gte=1,lte=1000"`
}

func (p PriceChange) Validate() error {
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return invalidField("price", "must be a finite number")
	}
	return validateStruct(p)
}

// View is what reads return to callers.
type View struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Producer string    `json:"producer"`
	Price    float64   `json:"price"`
}

// Page selects one slice of the ordered listing.
type Page struct {
	Number int `json:"page" validate:"min=1,max=2147483647"`
	Size   int `json:"size" validate:"min=1,max=50"`
}

func DefaultPageRequest() Page {
	return Page{Number: DefaultPage, Size: DefaultPageSize}
}

func (p Page) Validate() error {
	return validateStruct(p)
}

// Offset is the number of games preceding this page.
func (p Page) Offset() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

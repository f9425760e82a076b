package games

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence backend. Listing order is name, then producer,
// then id, ascending. Mutations report ErrNotFound when no row matches and
// ErrDuplicate when (name, producer) is already taken by another game.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, offset int64, limit int) ([]Game, error)
	Get(ctx context.Context, id uuid.UUID) (Game, bool, error)
	FindByNameProducer(ctx context.Context, name, producer string) (Game, bool, error)
	Insert(ctx context.Context, g Game) error
	Update(ctx context.Context, g Game) error
	UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func less(a, b Game) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Producer != b.Producer {
		return a.Producer < b.Producer
	}
	return a.ID.String() < b.ID.String()
}

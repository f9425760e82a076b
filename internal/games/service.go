package games

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the catalog contract the HTTP layer depends on.
//
// Get reports absence with ok=false rather than an error. Insert and Update
// fail with ErrDuplicate; Update, UpdatePrice and Remove fail with ErrNotFound.
// Insert, Update and UpdatePrice all hold prices to the same [1, 1000] range.
type Service interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, page Page) ([]View, error)
	Get(ctx context.Context, id uuid.UUID) (View, bool, error)
	Insert(ctx context.Context, in Input) (View, error)
	Update(ctx context.Context, id uuid.UUID, in Input) error
	UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// Catalog implements Service on top of a Store.
type Catalog struct {
	store Store
	log   *zap.Logger
	newID func() uuid.UUID
}

var _ Service = (*Catalog)(nil)

func NewCatalog(store Store, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{store: store, log: log, newID: uuid.New}
}

func (c *Catalog) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Catalog) List(ctx context.Context, page Page) ([]View, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	games, err := c.store.List(ctx, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(games))
	for _, g := range games {
		out = append(out, g.View())
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (View, bool, error) {
	g, ok, err := c.store.Get(ctx, id)
	if err != nil || !ok {
		return View{}, false, err
	}
	return g.View(), true, nil
}

func (c *Catalog) Insert(ctx context.Context, in Input) (View, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return View{}, err
	}

	if _, taken, err := c.store.FindByNameProducer(ctx, in.Name, in.Producer); err != nil {
		return View{}, err
	} else if taken {
		return View{}, fmt.Errorf("insert %q by %q: %w", in.Name, in.Producer, ErrDuplicate)
	}

	g := Game{
		ID:       c.newID(),
		Name:     in.Name,
		Producer: in.Producer,
		Price:    in.Price,
	}

	// The store re-checks the pair atomically; a racing insert surfaces here.
	if err := c.store.Insert(ctx, g); err != nil {
		return View{}, err
	}

	c.log.Info("game inserted",
		zap.Stringer("game_id", g.ID),
		zap.String("name", g.Name),
		zap.String("producer", g.Producer),
	)
	return g.View(), nil
}

func (c *Catalog) Update(ctx context.Context, id uuid.UUID, in Input) error {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	if _, ok, err := c.store.Get(ctx, id); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	if owner, taken, err := c.store.FindByNameProducer(ctx, in.Name, in.Producer); err != nil {
		return err
	} else if taken && owner.ID != id {
		return fmt.Errorf("update %s to %q by %q: %w", id, in.Name, in.Producer, ErrDuplicate)
	}

	err := c.store.Update(ctx, Game{ID: id, Name: in.Name, Producer: in.Producer, Price: in.Price})
	if err != nil {
		return err
	}

	c.log.Info("game updated", zap.Stringer("game_id", id))
	return nil
}

func (c *Catalog) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error {
	if err := (PriceChange{Price: price}).Validate(); err != nil {
		return err
	}

	if err := c.store.UpdatePrice(ctx, id, price); err != nil {
		return err
	}

	c.log.Info("game price updated", zap.Stringer("game_id", id), zap.Float64("price", price))
	return nil
}

func (c *Catalog) Remove(ctx context.Context, id uuid.UUID) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.log.Info("game removed", zap.Stringer("game_id", id))
	return nil
}

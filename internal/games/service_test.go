package games

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestCatalog(t *testing.T, seed ...Game) (*Catalog, *MemStore) {
	t.Helper()
	store := NewMemStore(seed...)
	return NewCatalog(store, zaptest.NewLogger(t)), store
}

func validInput(name, producer string, price float64) Input {
	return Input{Name: name, Producer: producer, Price: price}
}

func TestCatalogInsertThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(t)

	created, err := c.Insert(ctx, validInput("AAA", "BBB", 9.99))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, ok, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got)
	assert.Equal(t, "AAA", got.Name)
	assert.Equal(t, "BBB", got.Producer)
	assert.Equal(t, 9.99, got.Price)
}

func TestCatalogInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	c, store := newTestCatalog(t)

	_, err := c.Insert(ctx, validInput("Hades", "Supergiant", 25))
	require.NoError(t, err)

	_, err = c.Insert(ctx, validInput("  Hades ", "Supergiant", 30))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, KindDuplicate, KindOf(err))
	assert.Equal(t, 1, store.Len())
}

func TestCatalogInsertValidation(t *testing.T) {
	c, store := newTestCatalog(t)

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"short name", validInput("ab", "Studio", 10), "name"},
		{"blank producer", validInput("Game", "   ", 10), "producer"},
		{"long name", validInput(string(make([]rune, 101)), "Studio", 10), "name"},
		{"price too low", validInput("Game", "Studio", 0.5), "price"},
		{"price too high", validInput("Game", "Studio", 1000.01), "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Insert(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, KindInvalid, KindOf(err))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestCatalogGetAbsentIsNotAnError(t *testing.T) {
	c, _ := newTestCatalog(t)

	_, ok, err := c.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogListBounds(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(t)
	for i := 0; i < 12; i++ {
		_, err := c.Insert(ctx, validInput(fmt.Sprintf("Game %02d", i), "Studio", 10))
		require.NoError(t, err)
	}

	for _, size := range []int{1, 5, 7, 50} {
		for page := 1; page <= 14; page++ {
			got, err := c.List(ctx, Page{Number: page, Size: size})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), size)
			assert.LessOrEqual(t, len(got), 12)
		}
	}

	last, err := c.List(ctx, Page{Number: 3, Size: 5})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "Game 10", last[0].Name)

	huge, err := c.List(ctx, Page{Number: MaxPage, Size: MaxPageSize})
	require.NoError(t, err)
	assert.Empty(t, huge)

	_, err = c.List(ctx, Page{Number: 0, Size: 5})
	assert.Equal(t, KindInvalid, KindOf(err))
	_, err = c.List(ctx, Page{Number: 1, Size: 51})
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestCatalogUnknownIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	seed := game("Known", "Studio", 10)
	c, store := newTestCatalog(t, seed)
	missing := uuid.New()

	err := c.Update(ctx, missing, validInput("Other", "Studio", 1))
	assert.Equal(t, KindNotFound, KindOf(err))

	err = c.UpdatePrice(ctx, missing, 5)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = c.Remove(ctx, missing)
	assert.Equal(t, KindNotFound, KindOf(err))

	all, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []Game{seed}, all)
}

func TestCatalogUpdatePriceOnlyTouchesPrice(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(t)

	created, err := c.Insert(ctx, validInput("Celeste", "Extremely OK", 19.99))
	require.NoError(t, err)

	require.NoError(t, c.UpdatePrice(ctx, created.ID, 4.99))

	got, ok, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	want := created
	want.Price = 4.99
	assert.Equal(t, want, got)
}

func TestCatalogUpdatePriceRange(t *testing.T) {
	ctx := context.Background()
	g := game("Known", "Studio", 10)
	c, store := newTestCatalog(t, g)

	for _, p := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -1, 0.99, 1000.01} {
		err := c.UpdatePrice(ctx, g.ID, p)
		assert.Equal(t, KindInvalid, KindOf(err), "%v", p)
	}

	got, ok, err := store.Get(ctx, g.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10.0, got.Price)

	require.NoError(t, c.UpdatePrice(ctx, g.ID, 1))
	require.NoError(t, c.UpdatePrice(ctx, g.ID, 1000))
}

func TestCatalogUpdate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(t)

	a, err := c.Insert(ctx, validInput("Alpha", "Studio", 10))
	require.NoError(t, err)
	b, err := c.Insert(ctx, validInput("Beta", "Studio", 20))
	require.NoError(t, err)

	require.NoError(t, c.Update(ctx, a.ID, validInput("Alpha II", "Studio 2", 15)))
	got, _, _ := c.Get(ctx, a.ID)
	assert.Equal(t, View{ID: a.ID, Name: "Alpha II", Producer: "Studio 2", Price: 15}, got)

	err = c.Update(ctx, a.ID, validInput("Beta", "Studio", 15))
	assert.Equal(t, KindDuplicate, KindOf(err))

	require.NoError(t, c.Update(ctx, b.ID, validInput("Beta", "Studio", 99)), "own pair is not a conflict")
}

func TestCatalogDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(t)

	created, err := c.Insert(ctx, validInput("Braid", "Number None", 9))
	require.NoError(t, err)
	require.NoError(t, c.Remove(ctx, created.ID))

	_, ok, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingStore struct {
	*MemStore
	err error
}

func (s failingStore) Get(context.Context, uuid.UUID) (Game, bool, error) {
	return Game{}, false, s.err
}

func (s failingStore) List(context.Context, int64, int) ([]Game, error) {
	return nil, s.err
}

func TestCatalogPropagatesStoreFailures(t *testing.T) {
	boom := errors.New("connection reset")
	c := NewCatalog(failingStore{MemStore: NewMemStore(), err: boom}, nil)

	_, _, err := c.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindOther, KindOf(err))

	_, err = c.List(context.Background(), DefaultPageRequest())
	assert.ErrorIs(t, err, boom)

	err = c.Update(context.Background(), uuid.New(), validInput("Alpha", "Studio", 1))
	assert.ErrorIs(t, err, boom)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, int64(0), Page{Number: 1, Size: 5}.Offset())
	assert.Equal(t, int64(45), Page{Number: 10, Size: 5}.Offset())
	assert.Equal(t, int64(MaxPage-1)*50, Page{Number: MaxPage, Size: 50}.Offset())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindOther, KindOf(nil))
	assert.Equal(t, KindDuplicate, KindOf(fmt.Errorf("wrap: %w", ErrDuplicate)))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", ErrNotFound)))
	assert.Equal(t, KindInvalid, KindOf(invalidField("page", "bad")))
	assert.Equal(t, "not_found", KindNotFound.String())
}

package games

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(name, producer string, price float64) Game {
	return Game{ID: uuid.New(), Name: name, Producer: producer, Price: price}
}

func TestMemStoreListOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(
		game("Zelda", "Nintendo", 300),
		game("Doom", "id Software", 50),
		game("Doom", "Bethesda", 60),
		game("Celeste", "Matt Makes Games", 20),
	)

	all, err := s.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)

	var got []string
	for _, g := range all {
		got = append(got, g.Name+"/"+g.Producer)
	}
	assert.Equal(t, []string{"Celeste/Matt Makes Games", "Doom/Bethesda", "Doom/id Software", "Zelda/Nintendo"}, got)

	second, err := s.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, all[2:], second)

	past, err := s.List(ctx, 4, 2)
	require.NoError(t, err)
	assert.NotNil(t, past)
	assert.Empty(t, past)

	tail, err := s.List(ctx, 3, 50)
	require.NoError(t, err)
	assert.Len(t, tail, 1)
}

func TestMemStoreInsertRejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Insert(ctx, game("A", "B", 1)))
	err := s.Insert(ctx, game("A", "B", 2))
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Insert(ctx, game("A", "C", 1)), "same name, other producer is fine")
}

func TestMemStoreConcurrentDuplicateInserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Insert(ctx, game("Race", "Same", 1)); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, s.Len())
}

func TestMemStoreUpdate(t *testing.T) {
	ctx := context.Background()
	a := game("Alpha", "Studio", 10)
	b := game("Beta", "Studio", 20)
	s := NewMemStore(a, b)

	renamed := Game{ID: a.ID, Name: "Gamma", Producer: "Studio", Price: 11}
	require.NoError(t, s.Update(ctx, renamed))

	got, ok, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, renamed, got)

	_, ok, _ = s.FindByNameProducer(ctx, "Alpha", "Studio")
	assert.False(t, ok, "old pair released")

	err = s.Update(ctx, Game{ID: a.ID, Name: "Beta", Producer: "Studio", Price: 1})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.Update(ctx, Game{ID: b.ID, Name: "Beta", Producer: "Studio", Price: 99}), "keeping own pair")

	err = s.Update(ctx, game("X", "Y", 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreUpdatePriceAndDelete(t *testing.T) {
	ctx := context.Background()
	g := game("Alpha", "Studio", 10)
	s := NewMemStore(g)

	require.NoError(t, s.UpdatePrice(ctx, g.ID, 42.5))
	got, _, _ := s.Get(ctx, g.ID)
	assert.Equal(t, 42.5, got.Price)
	assert.Equal(t, g.Name, got.Name)

	assert.ErrorIs(t, s.UpdatePrice(ctx, uuid.New(), 1), ErrNotFound)

	require.NoError(t, s.Delete(ctx, g.ID))
	_, ok, _ := s.Get(ctx, g.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Delete(ctx, g.ID), ErrNotFound)

	require.NoError(t, s.Insert(ctx, game("Alpha", "Studio", 1)), "pair reusable after delete")
}

func TestMemStoreListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Insert(ctx, game(fmt.Sprintf("G%d", i), "P", 1)))
	}

	first, err := s.List(ctx, 0, 3)
	require.NoError(t, err)
	first[0].Name = "mutated"

	again, err := s.List(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "G0", again[0].Name)
}

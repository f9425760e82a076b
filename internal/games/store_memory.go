package games

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type nameKey struct {
	name     string
	producer string
}

// MemStore keeps the catalog in process memory. Uniqueness checks and writes
// happen under one lock, so racing inserts of the same pair cannot both win.
type MemStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]Game
	byName map[nameKey]uuid.UUID
}

func NewMemStore(seed ...Game) *MemStore {
	s := &MemStore{
		byID:   make(map[uuid.UUID]Game, len(seed)),
		byName: make(map[nameKey]uuid.UUID, len(seed)),
	}
	for _, g := range seed {
		s.byID[g.ID] = g
		s.byName[nameKey{g.Name, g.Producer}] = g.ID
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) List(ctx context.Context, offset int64, limit int) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= int64(len(s.byID)) {
		return []Game{}, nil
	}

	all := make([]Game, 0, len(s.byID))
	for _, g := range s.byID {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })

	end := min(offset+int64(limit), int64(len(all)))
	out := make([]Game, end-offset)
	copy(out, all[offset:end])
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id uuid.UUID) (Game, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.byID[id]
	return g, ok, nil
}

func (s *MemStore) FindByNameProducer(ctx context.Context, name, producer string) (Game, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[nameKey{name, producer}]
	if !ok {
		return Game{}, false, nil
	}
	return s.byID[id], true, nil
}

func (s *MemStore) Insert(ctx context.Context, g Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameKey{g.Name, g.Producer}
	if _, taken := s.byName[key]; taken {
		return ErrDuplicate
	}
	if _, taken := s.byID[g.ID]; taken {
		return ErrDuplicate
	}

	s.byID[g.ID] = g
	s.byName[key] = g.ID
	return nil
}

func (s *MemStore) Update(ctx context.Context, g Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[g.ID]
	if !ok {
		return ErrNotFound
	}

	key := nameKey{g.Name, g.Producer}
	if owner, taken := s.byName[key]; taken && owner != g.ID {
		return ErrDuplicate
	}

	delete(s.byName, nameKey{old.Name, old.Producer})
	s.byID[g.ID] = g
	s.byName[key] = g.ID
	return nil
}

func (s *MemStore) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	g.Price = price
	s.byID[id] = g
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byName, nameKey{g.Name, g.Producer})
	return nil
}

// Len reports the number of stored games.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

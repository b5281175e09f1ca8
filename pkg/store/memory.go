package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps analyses in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*Analysis
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Analysis)}
}

func (s *MemoryStore) Save(_ context.Context, a *Analysis) error {
	if err := ValidateID(a.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.byID[a.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Analysis, error) {
	s.mu.RLock()
	out := make([]*Analysis, 0, len(s.byID))
	for _, a := range s.byID {
		cp := *a
		out = append(out, &cp)
	}
	s.mu.RUnlock()
	return newestFirst(out, limit), nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// newestFirst sorts by creation time descending, ID ascending on ties, and
// truncates to limit.
func newestFirst(as []*Analysis, limit int) []*Analysis {
	slices.SortFunc(as, func(a, b *Analysis) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	if limit > 0 && len(as) > limit {
		as = as[:limit]
	}
	return as
}

var _ Store = (*MemoryStore)(nil)

package scheme

import (
	"context"
	"sort"
	"sync"

	"janseva/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	schemes map[string]*Scheme
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{schemes: make(map[string]*Scheme)}
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scheme, ok := s.schemes[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *scheme
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Scheme, 0, len(s.schemes))
	for _, scheme := range s.schemes {
		cp := *scheme
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, scheme *Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *scheme
	s.schemes[scheme.ID] = &cp
	return nil
}

package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"janseva/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	cp := *user
	s.byID[user.ID] = &cp
	s.byEmail[key] = user.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

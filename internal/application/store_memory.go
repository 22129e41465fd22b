package application

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"janseva/pkg/platform/sentinel"
)

// InMemoryStore keeps aggregates in a map. Every read hands out a deep copy
// so callers cannot mutate stored state except through Update's version
// check; this is what makes concurrent review sessions safe without a
// database.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[uuid.UUID]*Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apps: make(map[uuid.UUID]*Application)}
}

func (s *InMemoryStore) Create(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apps[app.ID]; exists {
		return sentinel.ErrConflict
	}
	s.apps[app.ID] = app.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

func (s *InMemoryStore) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Application
	for _, app := range s.apps {
		if app.ApplicantID == applicantID {
			out = append(out, app.Clone())
		}
	}
	sortBySubmittedAt(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Application, 0, len(s.apps))
	for _, app := range s.apps {
		out = append(out, app.Clone())
	}
	sortBySubmittedAt(out)
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, app *Application, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.apps[app.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version() != expectedVersion {
		return sentinel.ErrConflict
	}
	s.apps[app.ID] = app.Clone()
	return nil
}

func sortBySubmittedAt(apps []*Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].SubmittedAt.Equal(apps[j].SubmittedAt) {
			return apps[i].ID.String() < apps[j].ID.String()
		}
		return apps[i].SubmittedAt.Before(apps[j].SubmittedAt)
	})
}

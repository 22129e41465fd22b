package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"janseva/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) newStored(applicantID uuid.UUID) *Application {
	app := New(uuid.New(), "pm-kisan", applicantID, requiredKinds(), nil, time.Now())
	s.Require().NoError(s.store.Create(context.Background(), app))
	return app
}

func (s *InMemoryStoreSuite) TestCreateAndGet() {
	app := s.newStored(uuid.New())

	got, err := s.store.Get(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Equal(app.ID, got.ID)
	s.Equal(StatusSubmitted, got.Status)
	s.Len(got.Documents, len(requiredKinds()))
}

func (s *InMemoryStoreSuite) TestGetUnknownID() {
	_, err := s.store.Get(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestCreateDuplicateID() {
	app := s.newStored(uuid.New())
	s.ErrorIs(s.store.Create(context.Background(), app), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestGetReturnsIsolatedCopy() {
	app := s.newStored(uuid.New())

	first, err := s.store.Get(context.Background(), app.ID)
	s.Require().NoError(err)
	first.Status = StatusApproved
	first.Documents[0].Status = DocVerified

	second, err := s.store.Get(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Equal(StatusSubmitted, second.Status)
	s.Equal(DocPending, second.Documents[0].Status)
}

func (s *InMemoryStoreSuite) TestListByApplicantFiltersAndOrders() {
	ctx := context.Background()
	mine := uuid.New()
	base := time.Now()

	second := New(uuid.New(), "pm-kisan", mine, requiredKinds(), nil, base.Add(time.Hour))
	s.Require().NoError(s.store.Create(ctx, second))
	first := New(uuid.New(), "mudra-yojana", mine, nil, nil, base)
	s.Require().NoError(s.store.Create(ctx, first))
	s.newStored(uuid.New()) // someone else's

	apps, err := s.store.ListByApplicant(ctx, mine)
	s.Require().NoError(err)
	s.Require().Len(apps, 2)
	s.Equal(first.ID, apps[0].ID)
	s.Equal(second.ID, apps[1].ID)
}

func (s *InMemoryStoreSuite) TestUpdateCompareAndSwap() {
	ctx := context.Background()
	app := s.newStored(uuid.New())

	working, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	loadedVersion := working.Version()
	s.Require().NoError(working.Apply(EventAssignReviewer, TransitionInput{Actor: officer, Now: time.Now()}))

	s.Require().NoError(s.store.Update(ctx, working, loadedVersion))

	stored, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusUnderReview, stored.Status)
	s.Equal(1, stored.Version())

	// A writer holding the stale version loses.
	stale, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.ErrorIs(s.store.Update(ctx, stale, loadedVersion), sentinel.ErrConflict)
}

// Two reviewers race to assign themselves; exactly one transition commits.
func (s *InMemoryStoreSuite) TestConcurrentAssignExactlyOneWins() {
	ctx := context.Background()
	app := s.newStored(uuid.New())

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			working, err := s.store.Get(ctx, app.ID)
			if err != nil {
				results <- err
				return
			}
			loadedVersion := working.Version()
			if err := working.Apply(EventAssignReviewer, TransitionInput{Actor: uuid.New(), Now: time.Now()}); err != nil {
				results <- err
				return
			}
			results <- s.store.Update(ctx, working, loadedVersion)
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		}
	}
	s.Equal(1, wins)

	stored, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.Version())
	s.Len(stored.History, 1)
}

//go:build integration

package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"janseva/internal/application"
	domain "janseva/pkg/domain"
	"janseva/pkg/platform/sentinel"
	"janseva/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *application.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), containers.Schema)
	s.store = application.NewPostgres(s.postgres.DB)

	_, err := s.postgres.DB.ExecContext(context.Background(), `
		INSERT INTO schemes (id, name, deadline) VALUES ('pm-kisan', 'PM-KISAN', now() + interval '30 days')
		ON CONFLICT (id) DO NOTHING
	`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.postgres.DB.ExecContext(context.Background(), `TRUNCATE applications`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newStored(applicantID uuid.UUID) *application.Application {
	app := application.New(uuid.New(), "pm-kisan", applicantID,
		[]domain.DocumentKind{"aadhaar_card", "bank_details"},
		map[string]any{"annual_income": float64(120000)},
		time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Create(context.Background(), app))
	return app
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	app := s.newStored(uuid.New())

	got, err := s.store.Get(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Equal(app.ID, got.ID)
	s.Equal(app.SchemeID, got.SchemeID)
	s.Equal(application.StatusSubmitted, got.Status)
	s.Equal(app.Facts, got.Facts)
	s.Len(got.Documents, 2)
	s.Nil(got.AssignedReviewerID)
	s.Nil(got.ClarifiedAt)
	s.Equal(0, got.Version())
}

func (s *PostgresStoreSuite) TestGetUnknownID() {
	_, err := s.store.Get(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatePersistsTransitionState() {
	ctx := context.Background()
	app := s.newStored(uuid.New())
	officer := uuid.New()

	working, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	loadedVersion := working.Version()
	s.Require().NoError(working.Apply(application.EventAssignReviewer, application.TransitionInput{
		Actor: officer, Now: time.Now().UTC().Truncate(time.Microsecond),
	}))
	s.Require().NoError(s.store.Update(ctx, working, loadedVersion))

	stored, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(application.StatusUnderReview, stored.Status)
	s.Require().NotNil(stored.AssignedReviewerID)
	s.Equal(officer, *stored.AssignedReviewerID)
	s.Require().Len(stored.History, 1)
	s.Equal(application.StatusSubmitted, stored.History[0].FromStatus)
}

func (s *PostgresStoreSuite) TestUpdateStaleVersionConflicts() {
	ctx := context.Background()
	app := s.newStored(uuid.New())

	first, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	second, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)

	s.Require().NoError(first.Apply(application.EventAssignReviewer, application.TransitionInput{
		Actor: uuid.New(), Now: time.Now(),
	}))
	s.Require().NoError(s.store.Update(ctx, first, 0))

	s.Require().NoError(second.Apply(application.EventAssignReviewer, application.TransitionInput{
		Actor: uuid.New(), Now: time.Now(),
	}))
	s.ErrorIs(s.store.Update(ctx, second, 0), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestConcurrentUpdatesExactlyOneWins() {
	ctx := context.Background()
	app := s.newStored(uuid.New())

	const racers = 10
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			working, err := s.store.Get(ctx, app.ID)
			if err != nil {
				errs <- err
				return
			}
			loadedVersion := working.Version()
			if err := working.Apply(application.EventAssignReviewer, application.TransitionInput{
				Actor: uuid.New(), Now: time.Now(),
			}); err != nil {
				errs <- err
				return
			}
			errs <- s.store.Update(ctx, working, loadedVersion)
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, sentinel.ErrConflict):
			conflicts++
		}
	}
	s.Equal(1, wins)

	stored, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.Version())
}

func (s *PostgresStoreSuite) TestListByApplicant() {
	ctx := context.Background()
	mine := uuid.New()
	s.newStored(mine)
	s.newStored(mine)
	s.newStored(uuid.New())

	apps, err := s.store.ListByApplicant(ctx, mine)
	s.Require().NoError(err)
	s.Len(apps, 2)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

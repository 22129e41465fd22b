package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"janseva/internal/application"
	"janseva/internal/eligibility"
	"janseva/internal/identity"
	"janseva/internal/scheme"
	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
	audit "janseva/pkg/platform/audit"
	"janseva/pkg/platform/sentinel"
)

type capturingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *capturingAuditor) Record(_ context.Context, event audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *capturingAuditor) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Action
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	apps    *application.InMemoryStore
	schemes *scheme.InMemoryStore
	auditor *capturingAuditor
	svc     *Service

	citizen identity.Identity
	officer identity.Identity
	admin   identity.Identity
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.apps = application.NewInMemoryStore()
	s.schemes = scheme.NewInMemoryStore()
	s.auditor = &capturingAuditor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = NewService(s.apps, s.schemes, s.auditor, nil, logger)

	s.Require().NoError(s.schemes.Upsert(context.Background(), &scheme.Scheme{
		ID:                "pm-kisan",
		Name:              "PM-KISAN",
		Deadline:          time.Now().Add(30 * 24 * time.Hour),
		RequiredDocuments: []domain.DocumentKind{"aadhaar_card", "bank_details"},
		Rules: []eligibility.Rule{
			{Name: "land_holding_within_limit", Fact: "land_holding_hectares", Op: eligibility.OpLte, Value: 2},
			{Name: "bank_account_linked", Fact: "bank_linked", Op: eligibility.OpEq, Value: true},
		},
	}))

	s.citizen = identity.Identity{ID: uuid.New(), DisplayName: "Ramesh Kumar", Role: domain.RoleCitizen}
	s.officer = identity.Identity{ID: uuid.New(), DisplayName: "Priya Sharma", Role: domain.RoleOfficer}
	s.admin = identity.Identity{ID: uuid.New(), DisplayName: "Admin", Role: domain.RoleAdmin}
}

func (s *ServiceSuite) eligibleFacts() map[string]any {
	return map[string]any{"land_holding_hectares": 1.5, "bank_linked": true}
}

func (s *ServiceSuite) submit() *application.Application {
	app, err := s.svc.Submit(context.Background(), s.citizen, "pm-kisan", s.eligibleFacts())
	s.Require().NoError(err)
	return app
}

func (s *ServiceSuite) verifyAll(appID uuid.UUID) {
	ctx := context.Background()
	for _, kind := range []domain.DocumentKind{"aadhaar_card", "bank_details"} {
		_, err := s.svc.SetDocumentStatus(ctx, s.officer, appID, kind, application.DocVerified, "")
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestSubmit() {
	s.Run("creates a pending application with required documents", func() {
		app := s.submit()

		s.Equal(application.StatusSubmitted, app.Status)
		s.Equal(s.citizen.ID, app.ApplicantID)
		s.Len(app.Documents, 2)
		for _, doc := range app.Documents {
			s.Equal(application.DocPending, doc.Status)
		}
		s.Contains(s.auditor.actions(), string(audit.EventApplicationSubmitted))
	})

	s.Run("rejects unknown scheme", func() {
		_, err := s.svc.Submit(context.Background(), s.citizen, "not-a-scheme", nil)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("rejects officers", func() {
		_, err := s.svc.Submit(context.Background(), s.officer, "pm-kisan", nil)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("rejects a closed scheme", func() {
		s.Require().NoError(s.schemes.Upsert(context.Background(), &scheme.Scheme{
			ID:       "closed",
			Name:     "Closed Scheme",
			Deadline: time.Now().Add(-time.Hour),
		}))
		_, err := s.svc.Submit(context.Background(), s.citizen, "closed", nil)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}

// A citizen submits, an officer takes the case, verifies every document, and
// approves: the canonical happy path end to end.
func (s *ServiceSuite) TestHappyPathToApproval() {
	ctx := context.Background()
	app := s.submit()

	assigned, err := s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	s.Equal(application.StatusUnderReview, assigned.Status)
	s.Require().NotNil(assigned.AssignedReviewerID)
	s.Equal(s.officer.ID, *assigned.AssignedReviewerID)

	s.verifyAll(app.ID)

	approved, err := s.svc.Approve(ctx, s.officer, app.ID, "all criteria met")
	s.Require().NoError(err)
	s.Equal(application.StatusApproved, approved.Status)
	s.Len(approved.History, 2)
	s.Require().Len(approved.Comments, 1)
	s.Equal("all criteria met", approved.Comments[0].Text)

	s.Contains(s.auditor.actions(), string(audit.EventReviewerAssigned))
	s.Contains(s.auditor.actions(), string(audit.EventApplicationApproved))
}

func (s *ServiceSuite) TestApproveBlockedByUnverifiedDocuments() {
	ctx := context.Background()
	app := s.submit()
	_, err := s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)

	_, err = s.svc.Approve(ctx, s.officer, app.ID, "looks fine")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidTransition))

	stored, err := s.svc.Get(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	s.Equal(application.StatusUnderReview, stored.Status)
}

func (s *ServiceSuite) TestApproveBlockedByIneligibility() {
	ctx := context.Background()
	app, err := s.svc.Submit(ctx, s.citizen, "pm-kisan", map[string]any{
		"land_holding_hectares": 5.0, "bank_linked": true,
	})
	s.Require().NoError(err)
	_, err = s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	s.verifyAll(app.ID)

	_, err = s.svc.Approve(ctx, s.officer, app.ID, "approve anyway")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidTransition))
}

func (s *ServiceSuite) TestRejectRequiresComment() {
	ctx := context.Background()
	app := s.submit()
	_, err := s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)

	_, err = s.svc.Reject(ctx, s.officer, app.ID, " ")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeValidation))

	rejected, err := s.svc.Reject(ctx, s.officer, app.ID, "income certificate is forged")
	s.Require().NoError(err)
	s.Equal(application.StatusRejected, rejected.Status)
	s.Require().Len(rejected.Comments, 1)
	s.Equal(domain.RoleOfficer, rejected.Comments[0].AuthorRole)
}

func (s *ServiceSuite) TestClarificationRoundTrip() {
	ctx := context.Background()
	app := s.submit()
	_, err := s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)

	clarified, err := s.svc.RequestClarification(ctx, s.officer, app.ID, "bank details are incomplete")
	s.Require().NoError(err)
	s.Equal(application.StatusClarificationRequested, clarified.Status)

	// The citizen cannot resubmit before re-uploading something.
	_, err = s.svc.Resubmit(ctx, s.citizen, app.ID, nil, "")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidTransition))

	_, err = s.svc.UploadDocument(ctx, s.citizen, app.ID, "bank_details")
	s.Require().NoError(err)

	resubmitted, err := s.svc.Resubmit(ctx, s.citizen, app.ID, map[string]any{"bank_linked": true}, "updated passbook attached")
	s.Require().NoError(err)
	s.Equal(application.StatusUnderReview, resubmitted.Status)
	s.Require().NotNil(resubmitted.AssignedReviewerID)
	s.Equal(s.officer.ID, *resubmitted.AssignedReviewerID)
	s.Contains(s.auditor.actions(), string(audit.EventApplicationResubmitted))
}

func (s *ServiceSuite) TestAuthorizationScoping() {
	ctx := context.Background()
	app := s.submit()
	_, err := s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)

	s.Run("citizen may never approve", func() {
		_, err := s.svc.Approve(ctx, s.citizen, app.ID, "self-service")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("another officer may not act on an assigned case", func() {
		other := identity.Identity{ID: uuid.New(), DisplayName: "Other Officer", Role: domain.RoleOfficer}
		_, err := s.svc.Reject(ctx, other, app.ID, "not my case but rejecting anyway")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
		s.Contains(s.auditor.actions(), string(audit.EventAccessDenied))
	})

	s.Run("admin overrides assignment", func() {
		s.verifyAll(app.ID)
		approved, err := s.svc.Approve(ctx, s.admin, app.ID, "escalated approval")
		s.Require().NoError(err)
		s.Equal(application.StatusApproved, approved.Status)
	})

	s.Run("another citizen cannot view the application", func() {
		stranger := identity.Identity{ID: uuid.New(), Role: domain.RoleCitizen}
		_, err := s.svc.Get(ctx, stranger, app.ID)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestListScopedByRole() {
	ctx := context.Background()
	mine := s.submit()
	otherCitizen := identity.Identity{ID: uuid.New(), Role: domain.RoleCitizen}
	_, err := s.svc.Submit(ctx, otherCitizen, "pm-kisan", s.eligibleFacts())
	s.Require().NoError(err)

	own, err := s.svc.List(ctx, s.citizen)
	s.Require().NoError(err)
	s.Require().Len(own, 1)
	s.Equal(mine.ID, own[0].ID)

	all, err := s.svc.List(ctx, s.officer)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ServiceSuite) TestCommentsAllowedOnTerminalApplications() {
	ctx := context.Background()
	app := s.submit()
	_, err := s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	_, err = s.svc.Reject(ctx, s.officer, app.ID, "deadline documents missing")
	s.Require().NoError(err)

	commented, err := s.svc.AddComment(ctx, s.citizen, app.ID, "please reconsider, uploading the missing certificate")
	s.Require().NoError(err)
	s.Equal(application.StatusRejected, commented.Status)
	s.Len(commented.Comments, 2)
	s.Equal(2, commented.Version(), "comments never advance the transition count")
}

func (s *ServiceSuite) TestDocumentsFrozenOnTerminalApplications() {
	ctx := context.Background()
	app := s.submit()
	_, err := s.svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	_, err = s.svc.Reject(ctx, s.officer, app.ID, "ineligible land holding")
	s.Require().NoError(err)

	_, err = s.svc.UploadDocument(ctx, s.citizen, app.ID, "aadhaar_card")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidTransition))

	_, err = s.svc.SetDocumentStatus(ctx, s.officer, app.ID, "aadhaar_card", application.DocVerified, "")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidTransition))

	stored, err := s.svc.Get(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	s.Equal(application.StatusRejected, stored.Status)
	s.Equal(application.DocPending, stored.Document("aadhaar_card").Status, "the decided record keeps its document state")
}

func (s *ServiceSuite) TestEligibilityBreakdown() {
	ctx := context.Background()
	app, err := s.svc.Submit(ctx, s.citizen, "pm-kisan", map[string]any{
		"land_holding_hectares": 3.0, "bank_linked": true,
	})
	s.Require().NoError(err)

	verdict, err := s.svc.Eligibility(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	s.False(verdict.OverallEligible)
	s.False(verdict.PerCriterion["land_holding_within_limit"])
	s.True(verdict.PerCriterion["bank_account_linked"])
}

// conflictingStore makes the first Update lose the race so the service's
// conflict translation is observable without real concurrency.
type conflictingStore struct {
	*application.InMemoryStore
	fired bool
}

func (c *conflictingStore) Update(ctx context.Context, app *application.Application, expectedVersion int) error {
	if !c.fired {
		c.fired = true
		return sentinel.ErrConflict
	}
	return c.InMemoryStore.Update(ctx, app, expectedVersion)
}

func (s *ServiceSuite) TestConcurrentModificationSurfacesConflict() {
	ctx := context.Background()
	store := &conflictingStore{InMemoryStore: s.apps}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, s.schemes, s.auditor, nil, logger)

	app := s.submit()

	_, err := svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeConflict))

	// After a reload the same intent goes through.
	assigned, err := svc.AssignReviewer(ctx, s.officer, app.ID)
	s.Require().NoError(err)
	s.Equal(application.StatusUnderReview, assigned.Status)
}

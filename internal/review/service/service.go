package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"janseva/internal/application"
	"janseva/internal/authz"
	"janseva/internal/eligibility"
	"janseva/internal/identity"
	"janseva/internal/review/metrics"
	"janseva/internal/scheme"
	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
	audit "janseva/pkg/platform/audit"
	"janseva/pkg/platform/sentinel"
)

// SchemeStore is the read-only slice of the catalog the review session needs.
type SchemeStore interface {
	Get(ctx context.Context, id string) (*scheme.Scheme, error)
}

// AuditRecorder receives lifecycle events; emission must never block or fail
// the request.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service orchestrates one actor's interaction with one application: gate
// check, state-machine or tracker call, comment append, and a single
// compare-and-swap commit. Every mutation follows the same shape — load,
// authorize, mutate a working copy, commit at the loaded version — so two
// racing actors can never interleave into a mixed state.
type Service struct {
	apps    application.Store
	schemes SchemeStore
	auditor AuditRecorder
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(apps application.Store, schemes SchemeStore, auditor AuditRecorder, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		apps:    apps,
		schemes: schemes,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit opens a new application for the actor under the given scheme. Only
// citizens apply; documents start Pending, one per required kind.
func (s *Service) Submit(ctx context.Context, actor identity.Identity, schemeID string, facts map[string]any) (*application.Application, error) {
	if actor.Role != domain.RoleCitizen {
		s.denied(ctx, actor, domain.ActionSubmit, uuid.Nil, "only citizens submit applications")
		return nil, dErrors.New(dErrors.CodeForbidden, "only citizens may submit applications")
	}
	sch, err := s.schemes.Get(ctx, schemeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown scheme: "+schemeID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheme")
	}
	now := s.now()
	if !sch.Open(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "the application deadline for this scheme has passed")
	}

	app := application.New(uuid.New(), sch.ID, actor.ID, sch.RequiredDocuments, facts, now)
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store application")
	}

	s.metrics.IncrementApplicationsOpened()
	s.record(ctx, actor, app, audit.EventApplicationSubmitted, "")
	return app, nil
}

// Get returns one application after a gate check.
func (s *Service) Get(ctx context.Context, actor identity.Identity, appID uuid.UUID) (*application.Application, error) {
	return s.load(ctx, actor, appID, domain.ActionView)
}

// List returns the applications the actor may see: citizens their own,
// reviewers everything.
func (s *Service) List(ctx context.Context, actor identity.Identity) ([]*application.Application, error) {
	var (
		apps []*application.Application
		err  error
	)
	if actor.Role.IsReviewer() {
		apps, err = s.apps.List(ctx)
	} else {
		apps, err = s.apps.ListByApplicant(ctx, actor.ID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// Eligibility evaluates the scheme's criteria against the application's
// declared facts. Reviewers use this to see the per-criterion breakdown
// before deciding; the approve path recomputes it itself.
func (s *Service) Eligibility(ctx context.Context, actor identity.Identity, appID uuid.UUID) (eligibility.Verdict, error) {
	app, err := s.load(ctx, actor, appID, domain.ActionView)
	if err != nil {
		return eligibility.Verdict{}, err
	}
	sch, err := s.schemes.Get(ctx, app.SchemeID)
	if err != nil {
		return eligibility.Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheme")
	}
	verdict, err := eligibility.Evaluate(sch.Rules, app.Facts)
	if err != nil {
		return eligibility.Verdict{}, err
	}
	s.metrics.ObserveEligibility(verdict.OverallEligible)
	return verdict, nil
}

// AssignReviewer moves Submitted → UnderReview with the actor as the
// assigned reviewer.
func (s *Service) AssignReviewer(ctx context.Context, actor identity.Identity, appID uuid.UUID) (*application.Application, error) {
	return s.transition(ctx, actor, appID, domain.ActionAssignReviewer, application.EventAssignReviewer, "", audit.EventReviewerAssigned)
}

// Approve commits the terminal Approved state. The state machine's
// preconditions — all required documents Verified, applicant eligible — are
// resolved here from the scheme and passed in.
func (s *Service) Approve(ctx context.Context, actor identity.Identity, appID uuid.UUID, comment string) (*application.Application, error) {
	return s.transition(ctx, actor, appID, domain.ActionApprove, application.EventApprove, comment, audit.EventApplicationApproved)
}

// Reject commits the terminal Rejected state; a reason comment is mandatory.
func (s *Service) Reject(ctx context.Context, actor identity.Identity, appID uuid.UUID, comment string) (*application.Application, error) {
	return s.transition(ctx, actor, appID, domain.ActionReject, application.EventReject, comment, audit.EventApplicationRejected)
}

// RequestClarification sends the application back to the citizen with an
// explanation of what is missing.
func (s *Service) RequestClarification(ctx context.Context, actor identity.Identity, appID uuid.UUID, comment string) (*application.Application, error) {
	return s.transition(ctx, actor, appID, domain.ActionRequestClarification, application.EventRequestClarification, comment, audit.EventClarificationRequested)
}

// Resubmit returns a clarified application to review. Declared facts may be
// revised here and only here; this is the single mutation path for facts
// after submission.
func (s *Service) Resubmit(ctx context.Context, actor identity.Identity, appID uuid.UUID, facts map[string]any, comment string) (*application.Application, error) {
	return s.commit(ctx, actor, appID, domain.ActionResubmit, func(app *application.Application) (audit.AuditEvent, string, error) {
		if len(facts) > 0 {
			for k, v := range facts {
				app.Facts[k] = v
			}
		}
		in := application.TransitionInput{Actor: actor.ID, Comment: comment, Now: s.now()}
		if err := app.Apply(application.EventResubmit, in); err != nil {
			s.metrics.ObserveTransition(string(application.EventResubmit), "rejected")
			return "", "", err
		}
		s.appendComment(app, actor, comment)
		s.metrics.ObserveTransition(string(application.EventResubmit), "committed")
		return audit.EventApplicationResubmitted, "", nil
	})
}

// SetDocumentStatus records a reviewer's verdict on one document.
func (s *Service) SetDocumentStatus(ctx context.Context, actor identity.Identity, appID uuid.UUID, kind domain.DocumentKind, status application.DocumentStatus, notes string) (*application.Application, error) {
	return s.commit(ctx, actor, appID, domain.ActionSetDocumentStatus, func(app *application.Application) (audit.AuditEvent, string, error) {
		if err := app.SetDocumentStatus(kind, status, actor.Role, notes); err != nil {
			return "", "", err
		}
		return audit.EventDocumentStatusChanged, string(kind) + " -> " + string(status), nil
	})
}

// UploadDocument records a citizen (re-)upload; the document returns to
// Pending and reviewer notes are cleared.
func (s *Service) UploadDocument(ctx context.Context, actor identity.Identity, appID uuid.UUID, kind domain.DocumentKind) (*application.Application, error) {
	return s.commit(ctx, actor, appID, domain.ActionUploadDocument, func(app *application.Application) (audit.AuditEvent, string, error) {
		if err := app.UploadDocument(kind, s.now()); err != nil {
			return "", "", err
		}
		return audit.EventDocumentUploaded, string(kind), nil
	})
}

// AddComment appends a note to the application. Comments are not
// state-affecting and remain allowed on terminal applications.
func (s *Service) AddComment(ctx context.Context, actor identity.Identity, appID uuid.UUID, text string) (*application.Application, error) {
	if strings.TrimSpace(text) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "comment text is required")
	}
	return s.commit(ctx, actor, appID, domain.ActionComment, func(app *application.Application) (audit.AuditEvent, string, error) {
		s.appendComment(app, actor, text)
		return audit.EventCommentAdded, "", nil
	})
}

// transition is the shared path for the four pure lifecycle events: resolve
// the approve preconditions from the scheme, apply, append the comment, and
// commit under the loaded version.
func (s *Service) transition(ctx context.Context, actor identity.Identity, appID uuid.UUID, action domain.Action, event application.Event, comment string, auditEvent audit.AuditEvent) (*application.Application, error) {
	return s.commit(ctx, actor, appID, action, func(app *application.Application) (audit.AuditEvent, string, error) {
		in := application.TransitionInput{Actor: actor.ID, Comment: comment, Now: s.now()}
		if event == application.EventApprove {
			sch, err := s.schemes.Get(ctx, app.SchemeID)
			if err != nil {
				return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheme")
			}
			verdict, err := eligibility.Evaluate(sch.Rules, app.Facts)
			if err != nil {
				return "", "", err
			}
			s.metrics.ObserveEligibility(verdict.OverallEligible)
			in.OverallEligible = verdict.OverallEligible
			in.AllRequiredVerified = app.AllRequiredVerified(sch.RequiredDocuments)
		}
		if err := app.Apply(event, in); err != nil {
			s.metrics.ObserveTransition(string(event), "rejected")
			return "", "", err
		}
		s.appendComment(app, actor, comment)
		s.metrics.ObserveTransition(string(event), "committed")
		return auditEvent, "", nil
	})
}

// commit is the single read-modify-write path: load, authorize, run the
// mutation on a working copy, then compare-and-swap at the version the copy
// was loaded at. A lost race surfaces as CodeConflict so the caller
// re-fetches and decides again on fresh state.
func (s *Service) commit(ctx context.Context, actor identity.Identity, appID uuid.UUID, action domain.Action, mutate func(*application.Application) (audit.AuditEvent, string, error)) (*application.Application, error) {
	app, err := s.load(ctx, actor, appID, action)
	if err != nil {
		return nil, err
	}

	working := app.Clone()
	loadedVersion := working.Version()
	auditEvent, reason, err := mutate(working)
	if err != nil {
		return nil, err
	}

	if err := s.apps.Update(ctx, working, loadedVersion); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.logger.WarnContext(ctx, "concurrent modification detected",
				"application_id", appID,
				"action", string(action),
				"version", loadedVersion,
			)
			return nil, dErrors.New(dErrors.CodeConflict, "the application changed while you were working; reload and try again")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store application")
	}

	s.record(ctx, actor, working, auditEvent, reason)
	return working, nil
}

func (s *Service) load(ctx context.Context, actor identity.Identity, appID uuid.UUID, action domain.Action) (*application.Application, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	if err := authz.Authorize(actor, action, app); err != nil {
		s.denied(ctx, actor, action, appID, err.Error())
		return nil, err
	}
	return app, nil
}

func (s *Service) appendComment(app *application.Application, actor identity.Identity, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	app.Comments = append(app.Comments, application.Comment{
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		Timestamp:  s.now(),
		Text:       text,
	})
}

func (s *Service) denied(ctx context.Context, actor identity.Identity, action domain.Action, appID uuid.UUID, reason string) {
	s.metrics.IncrementAuthzDenials()
	s.record0(ctx, audit.Event{
		ActorID:       actor.ID,
		ActorRole:     string(actor.Role),
		ApplicationID: appID,
		Action:        string(audit.EventAccessDenied),
		Decision:      "deny",
		Reason:        reason + " (" + string(action) + ")",
	})
}

func (s *Service) record(ctx context.Context, actor identity.Identity, app *application.Application, event audit.AuditEvent, reason string) {
	s.record0(ctx, audit.Event{
		ActorID:       actor.ID,
		ActorRole:     string(actor.Role),
		ApplicationID: app.ID,
		SchemeID:      app.SchemeID,
		Action:        string(event),
		Decision:      "allow",
		Reason:        reason,
	})
}

func (s *Service) record0(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Record(ctx, event)
	}
}

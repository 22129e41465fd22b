package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"janseva/internal/application"
	"janseva/internal/eligibility"
	"janseva/internal/identity"
	"janseva/internal/platform/metrics"
	"janseva/internal/platform/middleware"
	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
	"janseva/pkg/platform/httputil"
)

// Service defines the review-session operations the handler needs.
type Service interface {
	Submit(ctx context.Context, actor identity.Identity, schemeID string, facts map[string]any) (*application.Application, error)
	Get(ctx context.Context, actor identity.Identity, appID uuid.UUID) (*application.Application, error)
	List(ctx context.Context, actor identity.Identity) ([]*application.Application, error)
	Eligibility(ctx context.Context, actor identity.Identity, appID uuid.UUID) (eligibility.Verdict, error)
	AssignReviewer(ctx context.Context, actor identity.Identity, appID uuid.UUID) (*application.Application, error)
	Approve(ctx context.Context, actor identity.Identity, appID uuid.UUID, comment string) (*application.Application, error)
	Reject(ctx context.Context, actor identity.Identity, appID uuid.UUID, comment string) (*application.Application, error)
	RequestClarification(ctx context.Context, actor identity.Identity, appID uuid.UUID, comment string) (*application.Application, error)
	Resubmit(ctx context.Context, actor identity.Identity, appID uuid.UUID, facts map[string]any, comment string) (*application.Application, error)
	SetDocumentStatus(ctx context.Context, actor identity.Identity, appID uuid.UUID, kind domain.DocumentKind, status application.DocumentStatus, notes string) (*application.Application, error)
	UploadDocument(ctx context.Context, actor identity.Identity, appID uuid.UUID, kind domain.DocumentKind) (*application.Application, error)
	AddComment(ctx context.Context, actor identity.Identity, appID uuid.UUID, text string) (*application.Application, error)
}

//go:generate mockgen -source=handler.go -destination=mocks/review-mocks.go -package=mocks Service

// Handler exposes the application lifecycle over HTTP. Every route requires
// an authenticated identity; per-application permissions are the service's
// gate, not ours.
type Handler struct {
	service      Service
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, metrics: m, jwtValidator: jwtValidator}
}

// Register mounts the application routes on the router.
func (h *Handler) Register(r chi.Router) {
	appRouter := chi.NewRouter()
	appRouter.Use(middleware.Recovery(h.logger))
	appRouter.Use(middleware.RequestID)
	appRouter.Use(middleware.Logger(h.logger))
	appRouter.Use(middleware.Timeout(15 * time.Second))
	appRouter.Use(middleware.ContentTypeJSON)
	appRouter.Use(h.metrics.Latency("/applications"))
	appRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	appRouter.Post("/applications", h.handleSubmit)
	appRouter.Get("/applications", h.handleList)
	appRouter.Get("/applications/{id}", h.handleGet)
	appRouter.Get("/applications/{id}/eligibility", h.handleEligibility)
	appRouter.Post("/applications/{id}/assign", h.handleAssign)
	appRouter.Post("/applications/{id}/approve", h.handleApprove)
	appRouter.Post("/applications/{id}/reject", h.handleReject)
	appRouter.Post("/applications/{id}/request-clarification", h.handleRequestClarification)
	appRouter.Post("/applications/{id}/resubmit", h.handleResubmit)
	appRouter.Post("/applications/{id}/documents", h.handleUploadDocument)
	appRouter.Patch("/applications/{id}/documents/{kind}", h.handleSetDocumentStatus)
	appRouter.Post("/applications/{id}/comments", h.handleAddComment)

	r.Mount("/", appRouter)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.SchemeID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "scheme_id is required"))
		return
	}

	app, err := h.service.Submit(r.Context(), actor, req.SchemeID, req.Facts)
	if err != nil {
		h.warn(r, "submit failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	apps, err := h.service.List(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]applicationResponse, len(apps))
	for i, app := range apps {
		out[i] = toApplicationResponse(app)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.withApplication(w, r, func(actor identity.Identity, appID uuid.UUID) (*application.Application, error) {
		return h.service.Get(r.Context(), actor, appID)
	})
}

func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	appID, err := parseAppID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	verdict, err := h.service.Eligibility(r.Context(), actor, appID)
	if err != nil {
		h.warn(r, "eligibility evaluation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verdict)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	h.withApplication(w, r, func(actor identity.Identity, appID uuid.UUID) (*application.Application, error) {
		return h.service.AssignReviewer(r.Context(), actor, appID)
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, h.service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, h.service.Reject)
}

func (h *Handler) handleRequestClarification(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, h.service.RequestClarification)
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	appID, err := parseAppID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req resubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.service.Resubmit(r.Context(), actor, appID, req.Facts, req.Comment)
	if err != nil {
		h.warn(r, "resubmit failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	appID, err := parseAppID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req uploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.service.UploadDocument(r.Context(), actor, appID, domain.DocumentKind(req.Kind))
	if err != nil {
		h.warn(r, "document upload failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) handleSetDocumentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	appID, err := parseAppID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	kind := domain.DocumentKind(chi.URLParam(r, "kind"))
	var req setDocumentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.service.SetDocumentStatus(r.Context(), actor, appID, kind,
		application.DocumentStatus(req.Status), req.Notes)
	if err != nil {
		h.warn(r, "document status change failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	appID, err := parseAppID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.service.AddComment(r.Context(), actor, appID, req.Text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

// decision handles the three bodies-with-a-comment transitions.
func (h *Handler) decision(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor identity.Identity, appID uuid.UUID, comment string) (*application.Application, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	appID, err := parseAppID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := op(r.Context(), actor, appID, req.Comment)
	if err != nil {
		h.warn(r, "transition failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) withApplication(w http.ResponseWriter, r *http.Request, op func(actor identity.Identity, appID uuid.UUID) (*application.Application, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	appID, err := parseAppID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := op(actor, appID)
	if err != nil {
		h.warn(r, "application operation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	actor := middleware.GetIdentity(r.Context())
	if actor.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return identity.Identity{}, false
	}
	return actor, true
}

func (h *Handler) warn(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(r.Context()),
	)
}

func parseAppID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid application id")
	}
	return id, nil
}

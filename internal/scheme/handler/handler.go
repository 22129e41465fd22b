package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"janseva/internal/platform/metrics"
	"janseva/internal/platform/middleware"
	"janseva/internal/scheme"
	dErrors "janseva/pkg/domain-errors"
	"janseva/pkg/platform/httputil"
	"janseva/pkg/platform/sentinel"
)

// Handler serves the public scheme catalog. Browsing schemes needs no
// session; only applying does.
type Handler struct {
	store   scheme.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store scheme.Store, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{store: store, logger: logger, metrics: m}
}

func (h *Handler) Register(r chi.Router) {
	schemeRouter := chi.NewRouter()
	schemeRouter.Use(middleware.Recovery(h.logger))
	schemeRouter.Use(middleware.RequestID)
	schemeRouter.Use(middleware.Logger(h.logger))
	schemeRouter.Use(middleware.Timeout(10 * time.Second))
	schemeRouter.Use(middleware.ContentTypeJSON)
	schemeRouter.Use(h.metrics.Latency("/schemes"))

	schemeRouter.Get("/schemes", h.handleList)
	schemeRouter.Get("/schemes/{id}", h.handleGet)

	r.Mount("/", schemeRouter)
}

type schemeResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Benefits          string   `json:"benefits"`
	Deadline          string   `json:"deadline,omitempty"`
	RequiredDocuments []string `json:"required_documents"`
	Open              bool     `json:"open"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list schemes",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list schemes"))
		return
	}

	out := make([]schemeResponse, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, toResponse(s))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"schemes": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "scheme not found"))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get scheme",
			"error", err.Error(),
			"scheme_id", id,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to get scheme"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(s))
}

func toResponse(s *scheme.Scheme) schemeResponse {
	required := make([]string, len(s.RequiredDocuments))
	for i, kind := range s.RequiredDocuments {
		required[i] = string(kind)
	}
	resp := schemeResponse{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		Category:          s.Category,
		Benefits:          s.Benefits,
		RequiredDocuments: required,
		Open:              s.Open(time.Now()),
	}
	if !s.Deadline.IsZero() {
		resp.Deadline = s.Deadline.Format(time.DateOnly)
	}
	return resp
}

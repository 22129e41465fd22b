package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"janseva/internal/identity"
	identityservice "janseva/internal/identity/service"
	"janseva/internal/platform/metrics"
	"janseva/internal/platform/middleware"
	dErrors "janseva/pkg/domain-errors"
	"janseva/pkg/platform/httputil"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Register(ctx context.Context, name, email, password, role, adminToken string) (*identityservice.Session, error)
	Login(ctx context.Context, email, password string) (*identityservice.Session, error)
	Whoami(ctx context.Context, actorID uuid.UUID) (identity.Identity, error)
}

// Handler handles authentication endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, metrics: m, jwtValidator: jwtValidator}
}

// Register mounts the auth routes on the router.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.RequestID)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(10 * time.Second))
	authRouter.Use(middleware.ContentTypeJSON)
	authRouter.Use(h.metrics.Latency("/auth"))

	authRouter.Post("/auth/register", h.handleRegister)
	authRouter.Post("/auth/login", h.handleLogin)
	authRouter.With(middleware.RequireAuth(h.jwtValidator, h.logger)).Get("/auth/me", h.handleMe)

	r.Mount("/", authRouter)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	// AdminToken is only consulted when Role is Admin.
	AdminToken string `json:"admin_token,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token,omitempty"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, req.Role, req.AdminToken)
	if err != nil {
		h.logger.WarnContext(r.Context(), "registration failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncrementUsersCreated()
	httputil.WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "login failed",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetIdentity(r.Context())
	if actor.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	resolved, err := h.service.Whoami(r.Context(), actor.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sessionResponse{
		ID:    resolved.ID.String(),
		Name:  resolved.DisplayName,
		Email: resolved.Email,
		Role:  string(resolved.Role),
	})
}

func toSessionResponse(session *identityservice.Session) sessionResponse {
	return sessionResponse{
		ID:          session.Identity.ID.String(),
		Name:        session.Identity.DisplayName,
		Email:       session.Identity.Email,
		Role:        string(session.Identity.Role),
		AccessToken: session.AccessToken,
	}
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"janseva/internal/identity"
	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
	audit "janseva/pkg/platform/audit"
	"janseva/pkg/platform/sentinel"
)

// TokenIssuer signs access tokens for authenticated identities.
type TokenIssuer interface {
	GenerateAccessToken(actor identity.Identity, expiresIn time.Duration) (string, error)
}

// AuditRecorder receives identity events; nil-safe via the interface check in
// record().
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service owns registration and login. It is the session collaborator: the
// only output the rest of the core reads from it is the Identity value.
type Service struct {
	store      identity.Store
	tokens     TokenIssuer
	auditor    AuditRecorder
	tokenTTL   time.Duration
	adminToken string
}

// NewService builds the identity service. adminToken gates Admin
// self-registration; an empty token disables it entirely.
func NewService(store identity.Store, tokens TokenIssuer, auditor AuditRecorder, tokenTTL time.Duration, adminToken string) *Service {
	return &Service{store: store, tokens: tokens, auditor: auditor, tokenTTL: tokenTTL, adminToken: adminToken}
}

// Session is the login/registration result consumed by the transport layer.
type Session struct {
	Identity    identity.Identity
	AccessToken string
}

// Register creates an account and opens a session for it. Citizen and
// Officer accounts self-register; an Admin account additionally needs the
// bootstrap token the operator configured.
func (s *Service) Register(ctx context.Context, name, email, password, role, adminToken string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if parsedRole == domain.RoleAdmin {
		if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(adminToken), []byte(s.adminToken)) != 1 {
			s.record(ctx, audit.Event{Action: string(audit.EventAccessDenied), Reason: "admin registration without bootstrap token"})
			return nil, dErrors.New(dErrors.CodeForbidden, "admin registration requires the bootstrap token")
		}
	}
	hash, err := identity.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &identity.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Role:         parsedRole,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.record(ctx, audit.Event{
		ActorID:   user.ID,
		ActorRole: string(user.Role),
		Action:    string(audit.EventUserRegistered),
	})
	return s.open(user)
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password collapse into one error so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.record(ctx, audit.Event{Action: string(audit.EventLoginFailed), Reason: "unknown email"})
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	if !identity.VerifyPassword(password, user.PasswordHash) {
		s.record(ctx, audit.Event{ActorID: user.ID, Action: string(audit.EventLoginFailed), Reason: "bad password"})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	s.record(ctx, audit.Event{
		ActorID:   user.ID,
		ActorRole: string(user.Role),
		Action:    string(audit.EventUserLoggedIn),
	})
	return s.open(user)
}

// Whoami resolves the stored account for an authenticated actor.
func (s *Service) Whoami(ctx context.Context, actorID uuid.UUID) (identity.Identity, error) {
	user, err := s.store.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return identity.Identity{}, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return identity.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	return user.Identity(), nil
}

func (s *Service) open(user *identity.User) (*Session, error) {
	actor := user.Identity()
	token, err := s.tokens.GenerateAccessToken(actor, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &Session{Identity: actor, AccessToken: token}, nil
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Record(ctx, event)
	}
}

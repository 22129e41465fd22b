package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"janseva/internal/identity"
	domain "janseva/pkg/domain"
)

// JWTValidator defines the interface for validating access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for tests that need context.WithValue.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated actor from the context. The zero
// value (Nil ID) means no identity was attached.
func GetIdentity(ctx context.Context) identity.Identity {
	actor, ok := ctx.Value(ContextKeyIdentity).(identity.Identity)
	if !ok {
		return identity.Identity{}
	}
	return actor
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireAuth validates the bearer token and attaches the actor's Identity to
// the request context. Role values outside the three-role enumeration are
// rejected here so downstream code never sees a fourth role.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", GetRequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
				return
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - unknown role in token",
					"role", claims.Role,
					"request_id", GetRequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid token role")
				return
			}

			actor := identity.Identity{
				ID:          userID,
				DisplayName: claims.Name,
				Email:       claims.Email,
				Role:        role,
			}
			ctx := context.WithValue(r.Context(), ContextKeyIdentity, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package identity

import (
	"context"

	"github.com/google/uuid"
)

// Store persists user accounts. Implementations return sentinel.ErrNotFound
// for unknown users and sentinel.ErrConflict for duplicate emails.
type Store interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

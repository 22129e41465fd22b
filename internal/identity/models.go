package identity

import (
	"time"

	"github.com/google/uuid"

	domain "janseva/pkg/domain"
)

// Identity is the immutable view of an authenticated actor handed to the
// authorization gate and review session. It carries no credentials and is
// replaced wholesale on login/logout.
type Identity struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Role        domain.Role
}

// IsZero reports whether no actor is attached.
func (i Identity) IsZero() bool { return i.ID == uuid.Nil }

// User is the stored account record. Storage of the password hash stays in
// this package; the rest of the system only ever sees Identity.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Role         domain.Role
	PasswordHash string
	CreatedAt    time.Time
}

// Identity derives the session-facing view of the user.
func (u User) Identity() Identity {
	return Identity{
		ID:          u.ID,
		DisplayName: u.Name,
		Email:       u.Email,
		Role:        u.Role,
	}
}

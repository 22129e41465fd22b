package domain

import dErrors "janseva/pkg/domain-errors"

// Role is the actor classification carried by every authenticated identity.
// Invariant: the value must be one of the three portal roles; sessions with
// any other role value are a configuration error, not a fourth role.
//
// Usage: construct via ParseRole at trust boundaries (login, registration,
// token claims) to enforce the allowlist; direct casting bypasses validation.
type Role string

const (
	RoleCitizen Role = "Citizen"
	RoleOfficer Role = "Officer"
	RoleAdmin   Role = "Admin"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleCitizen: true,
	RoleOfficer: true,
	RoleAdmin:   true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported; no
// other errors are expected.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeValidation, "unsupported role: "+s)
	}
	return r, nil
}

// IsValid reports whether the role is one of the supported portal roles.
func (r Role) IsValid() bool { return validRoles[r] }

// IsReviewer reports whether the role may perform review actions at all.
// Per-application scoping is decided by the authorization gate.
func (r Role) IsReviewer() bool { return r == RoleOfficer || r == RoleAdmin }

func (r Role) String() string { return string(r) }

package scheme

import (
	"time"

	"janseva/internal/eligibility"
	domain "janseva/pkg/domain"
)

// Scheme is a government benefit program. Schemes are read-only reference
// data to the application core; only catalog administration (outside this
// service) changes them.
type Scheme struct {
	ID                string
	Name              string
	Description       string
	Category          string
	Benefits          string
	Deadline          time.Time
	RequiredDocuments []domain.DocumentKind
	Rules             []eligibility.Rule
}

// Open reports whether applications are still accepted at the given time.
// A zero deadline means the scheme has no closing date.
func (s Scheme) Open(now time.Time) bool {
	return s.Deadline.IsZero() || now.Before(s.Deadline)
}

// Requires reports whether the given kind is one of the scheme's required
// documents.
func (s Scheme) Requires(kind domain.DocumentKind) bool {
	for _, required := range s.RequiredDocuments {
		if required == kind {
			return true
		}
	}
	return false
}

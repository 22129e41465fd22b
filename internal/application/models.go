// Package application owns the benefit application aggregate and its
// lifecycle rules: the status state machine, the per-document verification
// tracker, and the stores that persist both. Authorization lives in the authz
// package; nothing here inspects the actor's identity beyond recording it.
package application

import (
	"time"

	"github.com/google/uuid"

	domain "janseva/pkg/domain"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusSubmitted              Status = "Submitted"
	StatusUnderReview            Status = "UnderReview"
	StatusClarificationRequested Status = "ClarificationRequested"
	StatusApproved               Status = "Approved"
	StatusRejected               Status = "Rejected"
)

// Terminal reports whether no further status transition is permitted.
// Terminal applications still accept comments; those are not state-affecting.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// DocumentStatus is the verification state of one attached document.
type DocumentStatus string

const (
	DocPending               DocumentStatus = "Pending"
	DocUnderReview           DocumentStatus = "UnderReview"
	DocVerified              DocumentStatus = "Verified"
	DocRequiresClarification DocumentStatus = "RequiresClarification"
)

var validDocumentStatuses = map[DocumentStatus]bool{
	DocPending: true, DocUnderReview: true, DocVerified: true, DocRequiresClarification: true,
}

// DocumentRecord tracks one required or supplementary document.
type DocumentRecord struct {
	Kind       domain.DocumentKind
	Status     DocumentStatus
	Notes      string
	UploadedAt time.Time
}

// Comment is one append-only review note.
type Comment struct {
	AuthorID   uuid.UUID
	AuthorRole domain.Role
	Timestamp  time.Time
	Text       string
}

// HistoryEntry records one committed status transition. The history is
// append-only, never truncated or reordered; its length doubles as the
// aggregate's optimistic concurrency version.
type HistoryEntry struct {
	FromStatus Status
	ToStatus   Status
	ActorID    uuid.UUID
	Timestamp  time.Time
}

// Application is the central aggregate: one citizen's request for benefits
// under a scheme. Status only ever changes through Apply (the state machine);
// documents only through the tracker functions.
type Application struct {
	ID                 uuid.UUID
	SchemeID           string
	ApplicantID        uuid.UUID
	Facts              map[string]any
	Documents          []DocumentRecord
	Status             Status
	AssignedReviewerID *uuid.UUID
	Comments           []Comment
	History            []HistoryEntry
	SubmittedAt        time.Time
	// ClarifiedAt is the time of the most recent clarification request; a
	// resubmit needs at least one document re-uploaded after this watermark.
	ClarifiedAt *time.Time
}

// Version is the optimistic concurrency token: the number of committed
// transitions. Stores compare-and-swap on it.
func (a *Application) Version() int { return len(a.History) }

// New builds a freshly submitted application with one Pending document per
// required kind of the scheme.
func New(id uuid.UUID, schemeID string, applicantID uuid.UUID, requiredKinds []domain.DocumentKind, facts map[string]any, now time.Time) *Application {
	docs := make([]DocumentRecord, len(requiredKinds))
	for i, kind := range requiredKinds {
		docs[i] = DocumentRecord{Kind: kind, Status: DocPending, UploadedAt: now}
	}
	copied := make(map[string]any, len(facts))
	for k, v := range facts {
		copied[k] = v
	}
	return &Application{
		ID:          id,
		SchemeID:    schemeID,
		ApplicantID: applicantID,
		Facts:       copied,
		Documents:   docs,
		Status:      StatusSubmitted,
		SubmittedAt: now,
	}
}

// Document returns the record for the given kind, or nil.
func (a *Application) Document(kind domain.DocumentKind) *DocumentRecord {
	for i := range a.Documents {
		if a.Documents[i].Kind == kind {
			return &a.Documents[i]
		}
	}
	return nil
}

// Clone deep-copies the aggregate so callers can mutate a working copy and
// commit it atomically through the store's version check.
func (a *Application) Clone() *Application {
	cp := *a
	cp.Facts = make(map[string]any, len(a.Facts))
	for k, v := range a.Facts {
		cp.Facts[k] = v
	}
	cp.Documents = append([]DocumentRecord(nil), a.Documents...)
	cp.Comments = append([]Comment(nil), a.Comments...)
	cp.History = append([]HistoryEntry(nil), a.History...)
	if a.AssignedReviewerID != nil {
		id := *a.AssignedReviewerID
		cp.AssignedReviewerID = &id
	}
	if a.ClarifiedAt != nil {
		t := *a.ClarifiedAt
		cp.ClarifiedAt = &t
	}
	return &cp
}

package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: submissions, decisions, document verification outcomes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: authorization denials, failed logins.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	ActorID       uuid.UUID
	ActorRole     string
	ApplicationID uuid.UUID
	SchemeID      string
	Action        string
	Decision      string
	Reason        string
	RequestID     string
}

type AuditEvent string

const (
	// Identity events
	EventUserRegistered AuditEvent = "user_registered"
	EventUserLoggedIn   AuditEvent = "user_logged_in"
	EventLoginFailed    AuditEvent = "login_failed"

	// Application lifecycle events
	EventApplicationSubmitted   AuditEvent = "application_submitted"
	EventReviewerAssigned       AuditEvent = "reviewer_assigned"
	EventApplicationApproved    AuditEvent = "application_approved"
	EventApplicationRejected    AuditEvent = "application_rejected"
	EventClarificationRequested AuditEvent = "clarification_requested"
	EventApplicationResubmitted AuditEvent = "application_resubmitted"

	// Document events
	EventDocumentStatusChanged AuditEvent = "document_status_changed"
	EventDocumentUploaded      AuditEvent = "document_uploaded"

	// Review events
	EventCommentAdded AuditEvent = "comment_added"
	EventAccessDenied AuditEvent = "access_denied"
)

// eventCategories maps each audit event to its category.
// Compliance: the application audit trail regulators can replay.
// Security: authorization and authentication failures.
// Operations: routine activity, can be sampled.
var eventCategories = map[AuditEvent]EventCategory{
	EventApplicationSubmitted:   CategoryCompliance,
	EventReviewerAssigned:       CategoryCompliance,
	EventApplicationApproved:    CategoryCompliance,
	EventApplicationRejected:    CategoryCompliance,
	EventClarificationRequested: CategoryCompliance,
	EventApplicationResubmitted: CategoryCompliance,
	EventDocumentStatusChanged:  CategoryCompliance,

	EventAccessDenied: CategorySecurity,
	EventLoginFailed:  CategorySecurity,

	EventUserRegistered:   CategoryOperations,
	EventUserLoggedIn:     CategoryOperations,
	EventDocumentUploaded: CategoryOperations,
	EventCommentAdded:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

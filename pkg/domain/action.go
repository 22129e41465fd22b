package domain

// Action identifies an operation an actor may request against an application.
// The authorization gate decides per (role, action, application); the state
// machine decides per (status, event). Keeping actions in one enum means
// every entry point names the same vocabulary.
type Action string

const (
	ActionView                 Action = "view"
	ActionSubmit               Action = "submit"
	ActionUploadDocument       Action = "upload_document"
	ActionResubmit             Action = "resubmit"
	ActionAssignReviewer       Action = "assign_reviewer"
	ActionApprove              Action = "approve"
	ActionReject               Action = "reject"
	ActionRequestClarification Action = "request_clarification"
	ActionSetDocumentStatus    Action = "set_document_status"
	ActionComment              Action = "comment"
)

// ReviewActions are the officer-side actions; citizens may never hold any of
// these regardless of ownership.
var ReviewActions = []Action{
	ActionAssignReviewer,
	ActionApprove,
	ActionReject,
	ActionRequestClarification,
	ActionSetDocumentStatus,
}

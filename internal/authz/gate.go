// Package authz is the authorization gate for application access. It is a
// pure policy table over (identity, action, application): no storage, no
// clock, no knowledge of lifecycle states. Every caller consults it before
// touching the aggregate so the policy lives in exactly one place.
package authz

import (
	"janseva/internal/application"
	"janseva/internal/identity"
	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
)

// CanPerform reports whether the actor may perform the action against the
// application. Pure and total: any (role, action) pair not granted below is
// denied.
func CanPerform(id identity.Identity, action domain.Action, app *application.Application) bool {
	switch id.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleOfficer:
		return officerMay(id, action, app)
	case domain.RoleCitizen:
		return citizenMay(id, action, app)
	default:
		return false
	}
}

// Authorize is CanPerform with a typed denial. The message names the action
// but never leaks another applicant's data.
func Authorize(id identity.Identity, action domain.Action, app *application.Application) error {
	if CanPerform(id, action, app) {
		return nil
	}
	return dErrors.Newf(dErrors.CodeForbidden, "role %s may not perform %s on this application",
		id.Role.String(), string(action))
}

func citizenMay(id identity.Identity, action domain.Action, app *application.Application) bool {
	if app == nil || app.ApplicantID != id.ID {
		return false
	}
	switch action {
	case domain.ActionView, domain.ActionUploadDocument, domain.ActionResubmit, domain.ActionComment:
		return true
	default:
		// Review actions stay denied even on the citizen's own application.
		return false
	}
}

func officerMay(id identity.Identity, action domain.Action, app *application.Application) bool {
	if action == domain.ActionView {
		return true
	}
	switch action {
	case domain.ActionAssignReviewer, domain.ActionApprove, domain.ActionReject,
		domain.ActionRequestClarification, domain.ActionSetDocumentStatus, domain.ActionComment:
		// An officer may not act on a case another officer holds.
		return app != nil && (app.AssignedReviewerID == nil || *app.AssignedReviewerID == id.ID)
	default:
		return false
	}
}

package application

import (
	"strings"
	"time"

	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
)

// SetDocumentStatus moves one document through verification. Only reviewers
// change verification state; the citizen's only move is re-uploading, which
// goes through UploadDocument. Moving a Verified document straight back to
// Pending is rejected so a verified fact cannot be silently undone without a
// re-upload.
func (a *Application) SetDocumentStatus(kind domain.DocumentKind, status DocumentStatus, actorRole domain.Role, notes string) error {
	if a.Status.Terminal() {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "a %s application is a closed record; documents cannot change", string(a.Status))
	}
	if !actorRole.IsReviewer() {
		return dErrors.New(dErrors.CodeForbidden, "only reviewers may change document verification status")
	}
	if !validDocumentStatuses[status] {
		return dErrors.Newf(dErrors.CodeValidation, "unknown document status %q", string(status))
	}
	doc := a.Document(kind)
	if doc == nil {
		return dErrors.Newf(dErrors.CodeNotFound, "application has no document of kind %q", string(kind))
	}
	if status == DocRequiresClarification && strings.TrimSpace(notes) == "" {
		return dErrors.New(dErrors.CodeValidation, "marking a document RequiresClarification needs explanatory notes")
	}
	if doc.Status == DocVerified && status == DocPending {
		return dErrors.New(dErrors.CodeInvalidTransition, "a verified document returns to Pending only through a re-upload")
	}
	doc.Status = status
	doc.Notes = notes
	return nil
}

// UploadDocument records a citizen (re-)upload of the given kind. An upload
// always resets the document to Pending and clears reviewer notes; uploading
// a kind the application does not yet track appends it as a supplementary
// document.
func (a *Application) UploadDocument(kind domain.DocumentKind, now time.Time) error {
	if a.Status.Terminal() {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "a %s application is a closed record; documents cannot change", string(a.Status))
	}
	if kind == "" {
		return dErrors.New(dErrors.CodeValidation, "document kind must not be empty")
	}
	if doc := a.Document(kind); doc != nil {
		doc.Status = DocPending
		doc.Notes = ""
		doc.UploadedAt = now
		return nil
	}
	a.Documents = append(a.Documents, DocumentRecord{
		Kind:       kind,
		Status:     DocPending,
		UploadedAt: now,
	})
	return nil
}

// AllRequiredVerified reports whether every document the scheme requires is
// present and Verified. Supplementary documents do not block approval.
func (a *Application) AllRequiredVerified(required []domain.DocumentKind) bool {
	for _, kind := range required {
		doc := a.Document(kind)
		if doc == nil || doc.Status != DocVerified {
			return false
		}
	}
	return true
}

package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
)

func TestSetDocumentStatusReviewerOnly(t *testing.T) {
	app := newSubmitted(t)

	err := app.SetDocumentStatus("aadhaar_card", DocVerified, domain.RoleCitizen, "")

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
	assert.Equal(t, DocPending, app.Document("aadhaar_card").Status)
}

func TestSetDocumentStatusValidMove(t *testing.T) {
	app := newSubmitted(t)

	require.NoError(t, app.SetDocumentStatus("aadhaar_card", DocUnderReview, domain.RoleOfficer, ""))
	require.NoError(t, app.SetDocumentStatus("aadhaar_card", DocVerified, domain.RoleAdmin, ""))

	assert.Equal(t, DocVerified, app.Document("aadhaar_card").Status)
}

func TestSetDocumentStatusClarificationNeedsNotes(t *testing.T) {
	app := newSubmitted(t)

	err := app.SetDocumentStatus("aadhaar_card", DocRequiresClarification, domain.RoleOfficer, "  ")

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))

	require.NoError(t, app.SetDocumentStatus("aadhaar_card", DocRequiresClarification, domain.RoleOfficer, "scan is blurry"))
	doc := app.Document("aadhaar_card")
	assert.Equal(t, DocRequiresClarification, doc.Status)
	assert.Equal(t, "scan is blurry", doc.Notes)
}

func TestSetDocumentStatusVerifiedCannotRevertDirectly(t *testing.T) {
	app := newSubmitted(t)
	require.NoError(t, app.SetDocumentStatus("aadhaar_card", DocVerified, domain.RoleOfficer, ""))

	err := app.SetDocumentStatus("aadhaar_card", DocPending, domain.RoleOfficer, "")

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidTransition))
	assert.Equal(t, DocVerified, app.Document("aadhaar_card").Status)
}

func TestSetDocumentStatusUnknownKindAndStatus(t *testing.T) {
	app := newSubmitted(t)

	err := app.SetDocumentStatus("voter_id", DocVerified, domain.RoleOfficer, "")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	err = app.SetDocumentStatus("aadhaar_card", DocumentStatus("Approved"), domain.RoleOfficer, "")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

func TestUploadDocumentResetsStateAndNotes(t *testing.T) {
	app := newSubmitted(t)
	require.NoError(t, app.SetDocumentStatus("bank_details", DocRequiresClarification, domain.RoleOfficer, "IFSC missing"))

	uploadedAt := time.Now().Add(time.Hour)
	require.NoError(t, app.UploadDocument("bank_details", uploadedAt))

	doc := app.Document("bank_details")
	assert.Equal(t, DocPending, doc.Status)
	assert.Empty(t, doc.Notes)
	assert.Equal(t, uploadedAt, doc.UploadedAt)
}

func TestUploadDocumentAppendsSupplementaryKind(t *testing.T) {
	app := newSubmitted(t)
	before := len(app.Documents)

	require.NoError(t, app.UploadDocument("income_certificate", time.Now()))

	require.Len(t, app.Documents, before+1)
	doc := app.Document("income_certificate")
	require.NotNil(t, doc)
	assert.Equal(t, DocPending, doc.Status)
}

func TestAllRequiredVerified(t *testing.T) {
	app := newSubmitted(t)
	required := requiredKinds()

	assert.False(t, app.AllRequiredVerified(required))

	require.NoError(t, app.SetDocumentStatus("aadhaar_card", DocVerified, domain.RoleOfficer, ""))
	assert.False(t, app.AllRequiredVerified(required))

	require.NoError(t, app.SetDocumentStatus("bank_details", DocVerified, domain.RoleOfficer, ""))
	assert.True(t, app.AllRequiredVerified(required))

	// A supplementary document in any state never blocks approval.
	require.NoError(t, app.UploadDocument("income_certificate", time.Now()))
	assert.True(t, app.AllRequiredVerified(required))
}

func TestDocumentsFrozenOnClosedApplications(t *testing.T) {
	for _, status := range []Status{StatusApproved, StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			app := newSubmitted(t)
			app.Status = status

			err := app.SetDocumentStatus("aadhaar_card", DocVerified, domain.RoleOfficer, "")
			require.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeInvalidTransition))
			assert.Equal(t, DocPending, app.Document("aadhaar_card").Status)

			err = app.UploadDocument("aadhaar_card", time.Now())
			require.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeInvalidTransition))
		})
	}
}

package handler

import (
	"time"

	"janseva/internal/application"
)

type submitRequest struct {
	SchemeID string         `json:"scheme_id"`
	Facts    map[string]any `json:"facts"`
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

type resubmitRequest struct {
	Facts   map[string]any `json:"facts"`
	Comment string         `json:"comment"`
}

type uploadDocumentRequest struct {
	Kind string `json:"kind"`
}

type setDocumentStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type documentResponse struct {
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type commentResponse struct {
	AuthorID   string    `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	Timestamp  time.Time `json:"timestamp"`
	Text       string    `json:"text"`
}

type historyResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	Timestamp  time.Time `json:"timestamp"`
}

type applicationResponse struct {
	ID                 string             `json:"id"`
	SchemeID           string             `json:"scheme_id"`
	ApplicantID        string             `json:"applicant_id"`
	Status             string             `json:"status"`
	Facts              map[string]any     `json:"facts"`
	Documents          []documentResponse `json:"documents"`
	AssignedReviewerID string             `json:"assigned_reviewer_id,omitempty"`
	Comments           []commentResponse  `json:"comments"`
	History            []historyResponse  `json:"history"`
	SubmittedAt        time.Time          `json:"submitted_at"`
	Version            int                `json:"version"`
}

func toApplicationResponse(app *application.Application) applicationResponse {
	resp := applicationResponse{
		ID:          app.ID.String(),
		SchemeID:    app.SchemeID,
		ApplicantID: app.ApplicantID.String(),
		Status:      string(app.Status),
		Facts:       app.Facts,
		Documents:   make([]documentResponse, len(app.Documents)),
		Comments:    make([]commentResponse, len(app.Comments)),
		History:     make([]historyResponse, len(app.History)),
		SubmittedAt: app.SubmittedAt,
		Version:     app.Version(),
	}
	if app.AssignedReviewerID != nil {
		resp.AssignedReviewerID = app.AssignedReviewerID.String()
	}
	for i, doc := range app.Documents {
		resp.Documents[i] = documentResponse{
			Kind:       string(doc.Kind),
			Status:     string(doc.Status),
			Notes:      doc.Notes,
			UploadedAt: doc.UploadedAt,
		}
	}
	for i, c := range app.Comments {
		resp.Comments[i] = commentResponse{
			AuthorID:   c.AuthorID.String(),
			AuthorRole: string(c.AuthorRole),
			Timestamp:  c.Timestamp,
			Text:       c.Text,
		}
	}
	for i, e := range app.History {
		resp.History[i] = historyResponse{
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			ActorID:    e.ActorID.String(),
			Timestamp:  e.Timestamp,
		}
	}
	return resp
}

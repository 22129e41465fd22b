package application

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "janseva/pkg/domain-errors"
)

// Event is a requested lifecycle transition. The state machine decides per
// (status, event); who may request an event is the authorization gate's
// concern and is settled before Apply is called.
type Event string

const (
	EventAssignReviewer       Event = "assignReviewer"
	EventApprove              Event = "approve"
	EventReject               Event = "reject"
	EventRequestClarification Event = "requestClarification"
	EventResubmit             Event = "resubmit"
)

// transitions is the complete lifecycle table. Any (status, event) pair not
// listed fails with CodeInvalidTransition; there is no other path that
// mutates Status.
var transitions = map[Status]map[Event]Status{
	StatusSubmitted: {
		EventAssignReviewer: StatusUnderReview,
	},
	StatusUnderReview: {
		EventApprove:              StatusApproved,
		EventReject:               StatusRejected,
		EventRequestClarification: StatusClarificationRequested,
	},
	StatusClarificationRequested: {
		EventResubmit: StatusUnderReview,
		EventReject:   StatusRejected,
	},
}

// TransitionInput carries everything a transition's precondition may need.
// The caller (review session) resolves eligibility and document state before
// asking for the transition so Apply stays pure.
type TransitionInput struct {
	Actor               uuid.UUID
	Comment             string
	Now                 time.Time
	AllRequiredVerified bool
	OverallEligible     bool
}

// Apply validates and commits one transition on the aggregate, appending
// exactly one history entry and, when a comment is supplied, one comment
// entry. The mutation happens on the receiver; persist the aggregate through
// the store's version check to make the pair atomic.
func (a *Application) Apply(event Event, in TransitionInput) error {
	next, ok := transitions[a.Status][event]
	if !ok {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"event %s not defined for status %s", string(event), string(a.Status))
	}

	if err := a.checkPrecondition(event, in); err != nil {
		return err
	}

	from := a.Status
	a.Status = next

	switch event {
	case EventAssignReviewer:
		reviewer := in.Actor
		a.AssignedReviewerID = &reviewer
	case EventRequestClarification:
		at := in.Now
		a.ClarifiedAt = &at
	}

	a.History = append(a.History, HistoryEntry{
		FromStatus: from,
		ToStatus:   next,
		ActorID:    in.Actor,
		Timestamp:  in.Now,
	})
	return nil
}

func (a *Application) checkPrecondition(event Event, in TransitionInput) error {
	switch event {
	case EventAssignReviewer:
		if a.AssignedReviewerID != nil {
			return dErrors.New(dErrors.CodeInvalidTransition, "application already has an assigned reviewer")
		}
	case EventApprove:
		if !in.AllRequiredVerified {
			return dErrors.New(dErrors.CodeInvalidTransition, "cannot approve: required documents are not all verified")
		}
		if !in.OverallEligible {
			return dErrors.New(dErrors.CodeInvalidTransition, "cannot approve: applicant does not meet eligibility criteria")
		}
	case EventReject:
		if strings.TrimSpace(in.Comment) == "" {
			return dErrors.New(dErrors.CodeValidation, "a rejection comment is required")
		}
	case EventRequestClarification:
		if strings.TrimSpace(in.Comment) == "" {
			return dErrors.New(dErrors.CodeValidation, "a clarification comment is required")
		}
	case EventResubmit:
		if !a.documentsRefreshedSinceClarification() {
			return dErrors.New(dErrors.CodeInvalidTransition,
				"cannot resubmit: no document has been re-uploaded since clarification was requested")
		}
	}
	return nil
}

// documentsRefreshedSinceClarification reports whether at least one document
// went back to Pending after the clarification watermark.
func (a *Application) documentsRefreshedSinceClarification() bool {
	if a.ClarifiedAt == nil {
		return false
	}
	for _, doc := range a.Documents {
		if doc.Status == DocPending && doc.UploadedAt.After(*a.ClarifiedAt) {
			return true
		}
	}
	return false
}

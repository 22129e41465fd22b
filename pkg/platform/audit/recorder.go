package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store persists audit events. Implementations must treat the trail as
// append-only; events are never updated or deleted.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByApplication(ctx context.Context, applicationID string) ([]Event, error)
}

// Recorder accepts events from domain services and hands them to the worker
// over a buffered channel so emission never blocks a request.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewRecorder builds a recorder with the given buffer size. The returned
// channel is drained by a Worker; run one per recorder.
func NewRecorder(buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{inbox: make(chan Event, buffer), logger: logger}
}

// Inbox exposes the receive side for the worker.
func (r *Recorder) Inbox() <-chan Event { return r.inbox }

// Record enqueues an event, filling category and timestamp when unset.
// A full buffer drops the event with a warning rather than blocking the
// request path; the synchronous application history remains the source of
// truth for lifecycle facts.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"application_id", event.ApplicationID,
		)
	}
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "janseva/pkg/platform/audit"
	txcontext "janseva/pkg/platform/tx"
)

// Store persists audit events in PostgreSQL. The table is append-only; there
// is no update or delete path by design of the trail.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes one audit event row.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events
			(id, category, occurred_at, actor_id, actor_role, application_id, scheme_id, action, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	occurredAt := event.Timestamp
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		occurredAt,
		nullUUID(event.ActorID),
		event.ActorRole,
		nullUUID(event.ApplicationID),
		event.SchemeID,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByApplication(ctx context.Context, applicationID string) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, actor_id, actor_role, application_id, scheme_id, action, decision, reason, request_id
		FROM audit_events
		WHERE application_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event   audit.Event
			actor   sql.NullString
			appID   sql.NullString
			categ   string
			occured time.Time
		)
		if err := rows.Scan(&categ, &occured, &actor, &event.ActorRole, &appID, &event.SchemeID,
			&event.Action, &event.Decision, &event.Reason, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(categ)
		event.Timestamp = occured
		if actor.Valid {
			event.ActorID, _ = uuid.Parse(actor.String)
		}
		if appID.Valid {
			event.ApplicationID, _ = uuid.Parse(appID.String)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

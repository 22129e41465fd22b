package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"janseva/pkg/platform/sentinel"
)

// PostgresStore persists aggregates in a single row per application. The
// document, comment and history collections live in JSONB columns: they are
// always read and written with the aggregate, never queried independently,
// and the version column carries the optimistic lock.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const applicationColumns = `
	id, scheme_id, applicant_id, facts, documents, status,
	assigned_reviewer_id, comments, history, submitted_at, clarified_at, version
`

func (s *PostgresStore) Create(ctx context.Context, app *Application) error {
	cols, err := marshalCollections(app)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		app.ID, app.SchemeID, app.ApplicantID, cols.facts, cols.documents, app.Status,
		app.AssignedReviewerID, cols.comments, cols.history, app.SubmittedAt,
		app.ClarifiedAt, app.Version())
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications WHERE applicant_id = $1 ORDER BY submitted_at, id`
	return s.queryList(ctx, query, applicantID)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY submitted_at, id`
	return s.queryList(ctx, query)
}

// Update commits the aggregate only when the stored version still matches
// the one the caller loaded. A lost race surfaces as sentinel.ErrConflict so
// the review session can tell the caller to retry on fresh state.
func (s *PostgresStore) Update(ctx context.Context, app *Application, expectedVersion int) error {
	cols, err := marshalCollections(app)
	if err != nil {
		return err
	}
	query := `
		UPDATE applications SET
			facts = $2, documents = $3, status = $4, assigned_reviewer_id = $5,
			comments = $6, history = $7, clarified_at = $8, version = $9
		WHERE id = $1 AND version = $10
	`
	res, err := s.db.ExecContext(ctx, query,
		app.ID, cols.facts, cols.documents, app.Status, app.AssignedReviewerID,
		cols.comments, cols.history, app.ClarifiedAt, app.Version(), expectedVersion)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or another writer bumped the version.
		if _, getErr := s.Get(ctx, app.ID); getErr != nil {
			return getErr
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) queryList(ctx context.Context, query string, args ...any) ([]*Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

type jsonColumns struct {
	facts     []byte
	documents []byte
	comments  []byte
	history   []byte
}

func marshalCollections(app *Application) (jsonColumns, error) {
	var cols jsonColumns
	var err error
	if cols.facts, err = json.Marshal(app.Facts); err != nil {
		return cols, fmt.Errorf("marshal facts: %w", err)
	}
	if cols.documents, err = json.Marshal(app.Documents); err != nil {
		return cols, fmt.Errorf("marshal documents: %w", err)
	}
	if cols.comments, err = json.Marshal(app.Comments); err != nil {
		return cols, fmt.Errorf("marshal comments: %w", err)
	}
	if cols.history, err = json.Marshal(app.History); err != nil {
		return cols, fmt.Errorf("marshal history: %w", err)
	}
	return cols, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*Application, error) {
	var (
		app       Application
		cols      jsonColumns
		reviewer  uuid.NullUUID
		clarified sql.NullTime
		version   int
	)
	if err := row.Scan(&app.ID, &app.SchemeID, &app.ApplicantID, &cols.facts,
		&cols.documents, &app.Status, &reviewer, &cols.comments,
		&cols.history, &app.SubmittedAt, &clarified, &version); err != nil {
		return nil, err
	}
	if reviewer.Valid {
		id := reviewer.UUID
		app.AssignedReviewerID = &id
	}
	if clarified.Valid {
		t := clarified.Time
		app.ClarifiedAt = &t
	}
	if err := json.Unmarshal(cols.facts, &app.Facts); err != nil {
		return nil, fmt.Errorf("unmarshal facts: %w", err)
	}
	if err := json.Unmarshal(cols.documents, &app.Documents); err != nil {
		return nil, fmt.Errorf("unmarshal documents: %w", err)
	}
	if err := json.Unmarshal(cols.comments, &app.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	if err := json.Unmarshal(cols.history, &app.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return &app, nil
}

package scheme

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "janseva/pkg/domain"
	"janseva/pkg/platform/sentinel"
	txcontext "janseva/pkg/platform/tx"
)

// PostgresStore persists the scheme catalog. Eligibility rules are stored as
// JSONB since their shape is owned by the evaluator, not the schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer picks the transaction from context when one is active, so catalog
// writes can be grouped atomically (seeding writes the whole catalog or none
// of it).
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if sqlTx, ok := txcontext.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Scheme, error) {
	query := `
		SELECT id, name, description, category, benefits, deadline, required_documents, rules
		FROM schemes
		WHERE id = $1
	`
	scheme, err := scanScheme(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get scheme: %w", err)
	}
	return scheme, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Scheme, error) {
	query := `
		SELECT id, name, description, category, benefits, deadline, required_documents, rules
		FROM schemes
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	defer rows.Close()

	var schemes []*Scheme
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("list schemes: %w", err)
		}
		schemes = append(schemes, scheme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemes: %w", err)
	}
	return schemes, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, scheme *Scheme) error {
	rules, err := json.Marshal(scheme.Rules)
	if err != nil {
		return fmt.Errorf("marshal scheme rules: %w", err)
	}
	required := make([]string, len(scheme.RequiredDocuments))
	for i, kind := range scheme.RequiredDocuments {
		required[i] = string(kind)
	}

	query := `
		INSERT INTO schemes (id, name, description, category, benefits, deadline, required_documents, rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			benefits = EXCLUDED.benefits,
			deadline = EXCLUDED.deadline,
			required_documents = EXCLUDED.required_documents,
			rules = EXCLUDED.rules
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		scheme.ID, scheme.Name, scheme.Description, scheme.Category, scheme.Benefits,
		scheme.Deadline, pq.Array(required), rules)
	if err != nil {
		return fmt.Errorf("upsert scheme: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheme(row rowScanner) (*Scheme, error) {
	var (
		scheme   Scheme
		required pq.StringArray
		rules    []byte
	)
	if err := row.Scan(&scheme.ID, &scheme.Name, &scheme.Description, &scheme.Category,
		&scheme.Benefits, &scheme.Deadline, &required, &rules); err != nil {
		return nil, err
	}
	scheme.RequiredDocuments = make([]domain.DocumentKind, len(required))
	for i, kind := range required {
		scheme.RequiredDocuments[i] = domain.DocumentKind(kind)
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &scheme.Rules); err != nil {
			return nil, fmt.Errorf("unmarshal scheme rules: %w", err)
		}
	}
	return &scheme, nil
}

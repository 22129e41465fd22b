package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	domain "janseva/pkg/domain"
	"janseva/pkg/platform/sentinel"
)

// PostgresStore persists user accounts in PostgreSQL.
// This store is pure I/O; credential checks and role policy live in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Name, strings.ToLower(user.Email), string(user.Role), user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, name, email, role, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, role, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user User
		role string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}

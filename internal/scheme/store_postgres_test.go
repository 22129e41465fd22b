package scheme

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	txcontext "janseva/pkg/platform/tx"
)

// Upsert must route through an active context transaction so catalog seeding
// is all-or-nothing.
func TestPostgresUpsertJoinsContextTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	entry := &Scheme{
		ID:       "pm-awas",
		Name:     "PM Awas Yojana",
		Deadline: time.Now().Add(24 * time.Hour),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schemes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = txcontext.Within(context.Background(), db, func(ctx context.Context) error {
		return store.Upsert(ctx, entry)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertOutsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	mock.ExpectExec("INSERT INTO schemes").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Upsert(context.Background(), &Scheme{ID: "pm-kisan", Name: "PM-KISAN"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

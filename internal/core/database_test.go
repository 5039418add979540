// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaVersionQuery = regexp.QuoteMeta("to_regclass('schema_migrations')")

func TestSchemaVersion(t *testing.T) {
	db, mock := newMockDB(t)
	d := &Database{DB: db}

	mock.ExpectQuery(schemaVersionQuery).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	version, err := d.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	mock.ExpectQuery(schemaVersionQuery).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	version, err = d.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, version, "fresh database before migrate")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := InTx(context.Background(), db, func(*sqlx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = InTx(context.Background(), db, func(*sqlx.Tx) error { panic("boom") })
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDuplicateKeyError(errors.New("23505")))
}

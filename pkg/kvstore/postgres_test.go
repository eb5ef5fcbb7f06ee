package kvstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_entries").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgresStore(sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT value FROM kv_entries WHERE key = \\$1").
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[{"id":"u-1"}]`)))

	raw, err := store.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"u-1"}]`, string(raw))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMiss(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT value FROM kv_entries WHERE key = \\$1").
		WithArgs("users").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "users")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrKeyMiss))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetUpserts(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("users", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), "users", []byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

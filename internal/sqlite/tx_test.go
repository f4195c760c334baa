package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// mockBackend returns a backend attached to a sqlmock connection.
func mockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	b := NewBackend()
	b.db = db
	b.config = types.DefaultConfig(t.TempDir())
	b.attached = true
	return b, mock
}

func TestWithTx(t *testing.T) {
	diskErr := errors.New("disk I/O error")

	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		fn    func(tx *sql.Tx) error
		check func(t *testing.T, err error)
	}{
		{
			name: "begin failure is a storage error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(diskErr)
			},
			fn: func(tx *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, types.ErrStorage)
				assert.ErrorIs(t, err, diskErr)
				var se *types.StorageError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "begin", se.Op)
			},
		},
		{
			name: "commit failure is a storage error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(diskErr)
			},
			fn: func(tx *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) {
				var se *types.StorageError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "commit", se.Op)
			},
		},
		{
			name: "domain error rolls back and passes through",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(tx *sql.Tx) error { return types.ErrLimitExceeded },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, types.ErrLimitExceeded)
				assert.NotErrorIs(t, err, types.ErrStorage)
			},
		},
		{
			name: "success commits",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(tx *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)
			tt.check(t, withTx(context.Background(), db, tt.fn))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_QueryFailureRollsBack(t *testing.T) {
	b, mock := mockBackend(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM project`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := b.Projects().Create(context.Background(), types.NewProject{Title: "Home"})
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.False(t, types.IsUserError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_NotFoundIsNotStorage(t *testing.T) {
	b, mock := mockBackend(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, description`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := b.Projects().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.True(t, types.IsUserError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageErr(t *testing.T) {
	assert.NoError(t, storageErr("op", nil))

	wrapped := storageErr("op", errors.New("boom"))
	assert.ErrorIs(t, wrapped, types.ErrStorage)
	assert.Equal(t, "storage: op: boom", wrapped.Error())

	assert.Same(t, types.ErrNotFound, storageErr("op", types.ErrNotFound))
}

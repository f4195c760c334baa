package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// querier is satisfied by *sql.Tx; helpers take it so they compose inside
// one transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx executes fn within a database transaction. It rolls back when fn
// fails and commits otherwise. Begin and commit failures come back as
// *types.StorageError; errors from fn are returned unchanged.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &types.StorageError{Op: "begin", Err: err}
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &types.StorageError{Op: "commit", Err: err}
	}
	return nil
}

// storageErr wraps a driver error. Domain errors pass through.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if types.IsUserError(err) || errors.Is(err, types.ErrStorage) {
		return err
	}
	return &types.StorageError{Op: op, Err: err}
}

func asStorageErr(err error, target **types.StorageError) bool {
	return err != nil && errors.As(err, target)
}

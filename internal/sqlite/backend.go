// Package sqlite implements the SQLite storage backend for corkboard.
//
// The backend keeps a single writer connection. Every store call runs in
// one transaction, so the dense ordering and cascade invariants are never
// observable half-applied.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// Backend implements types.Board on top of SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock replaces time.Now as the source of timestamps and of "now"
// for status derivation.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithLogger sets the logger used for lifecycle and storage events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens (or creates) the database file in config.DataDir and
// applies the schema. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, config.DatabaseFile())
	db, err := openDB(context.Background(), dbPath)
	if err != nil {
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	b.logger.Debug("board attached", "path", dbPath)
	return nil
}

// openDB opens the database, sets the connection pragmas and applies the
// schema.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &types.StorageError{Op: "open", Err: err}
	}

	// SQLite benefits from a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, &types.StorageError{Op: p, Err: err}
		}
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range schemaDDL {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return storageErr("create schema", err)
			}
		}
		for _, stmt := range indexDDL {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return storageErr("create index", err)
			}
		}
		return nil
	})
}

// Detach closes the database. After Detach every store call returns
// ErrBoardDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return &types.StorageError{Op: "close", Err: err}
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Projects returns the project store.
func (b *Backend) Projects() types.ProjectStore { return &projectsTable{b: b} }

// Lists returns the list store.
func (b *Backend) Lists() types.ListStore { return &listsTable{b: b} }

// Labels returns the label store.
func (b *Backend) Labels() types.LabelStore { return &labelsTable{b: b} }

// Cards returns the card store.
func (b *Backend) Cards() types.CardStore { return &cardsTable{b: b} }

// CardLabels returns the card-label association store.
func (b *Backend) CardLabels() types.CardLabelStore { return &cardLabelsTable{b: b} }

// Subtasks returns the subtask store.
func (b *Backend) Subtasks() types.SubtaskStore { return &subtasksTable{b: b} }

// write runs fn in one transaction under the write lock.
func (b *Backend) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBoardDetached
	}
	err := withTx(ctx, b.db, fn)
	b.logStorageErr(err)
	return err
}

// read runs fn in one transaction under the read lock so a multi-query
// read sees a single snapshot.
func (b *Backend) read(ctx context.Context, fn func(tx *sql.Tx) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBoardDetached
	}
	err := withTx(ctx, b.db, fn)
	b.logStorageErr(err)
	return err
}

func (b *Backend) logStorageErr(err error) {
	var se *types.StorageError
	if asStorageErr(err, &se) {
		b.logger.Error("storage failure", "op", se.Op, "error", se.Err)
	}
}

var _ types.Board = (*Backend)(nil)

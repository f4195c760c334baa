// Package sqlite provides the public API for the SQLite board backend.
// It exposes the factory while keeping the implementation internal.
package sqlite

import (
	"log/slog"
	"time"

	"github.com/mesh-intelligence/corkboard/internal/sqlite"
	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithClock sets the clock used for timestamps and status derivation.
func WithClock(now func() time.Time) Option { return sqlite.WithClock(now) }

// WithLogger sets the logger used for lifecycle and storage events.
func WithLogger(logger *slog.Logger) Option { return sqlite.WithLogger(logger) }

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	board := sqlite.NewBackend()
//	err := board.Attach(types.DefaultConfig(".corkboard-db"))
//	defer board.Detach()
func NewBackend(opts ...Option) types.Board {
	return sqlite.NewBackend(opts...)
}

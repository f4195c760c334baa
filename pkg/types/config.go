package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and parameters for Board.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DBFile is the database file name inside DataDir. Profiles select
	// separate files so their data never mixes.
	DBFile string `json:"db_file" yaml:"db_file"`

	// DueSoonDays is the window, in days before the due date, in which a
	// card is reported as StatusDueSoon.
	DueSoonDays int `json:"due_soon_days" yaml:"due_soon_days"`

	// MaxLists caps the active lists of a single project. Zero disables
	// the cap.
	MaxLists int `json:"max_lists" yaml:"max_lists"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Configuration defaults.
const (
	DefaultDBFile      = "corkboard.db"
	DefaultDueSoonDays = 3
	DefaultMaxLists    = 5
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrDueSoonDaysInvalid = errors.New("due_soon_days must not be negative")
	ErrMaxListsInvalid    = errors.New("max_lists must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// DefaultConfig returns a sqlite Config rooted at dataDir with default
// thresholds.
func DefaultConfig(dataDir string) Config {
	return Config{
		Backend:     BackendSQLite,
		DataDir:     dataDir,
		DBFile:      DefaultDBFile,
		DueSoonDays: DefaultDueSoonDays,
		MaxLists:    DefaultMaxLists,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if c.DueSoonDays < 0 {
		return ErrDueSoonDaysInvalid
	}
	if c.MaxLists < 0 {
		return ErrMaxListsInvalid
	}
	return nil
}

// DatabaseFile returns DBFile, falling back to DefaultDBFile.
func (c Config) DatabaseFile() string {
	if c.DBFile == "" {
		return DefaultDBFile
	}
	return c.DBFile
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/internal/config"
	"github.com/mesh-intelligence/corkboard/internal/logging"
	"github.com/mesh-intelligence/corkboard/internal/paths"
	"github.com/mesh-intelligence/corkboard/pkg/sqlite"
	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// session is an attached board plus the settings it was opened with.
type session struct {
	board    types.Board
	settings config.Settings
	dataDir  string
	out      *printer
	closeLog func() error
}

// environment resolves directories and the active profile without
// touching the database.
func (a *app) environment() (configDir, dataDir string, settings config.Settings, err error) {
	configDir, err = paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return "", "", config.Settings{}, fmt.Errorf("resolve config dir: %w", err)
	}
	file, err := config.Load(configDir)
	if err != nil {
		return "", "", config.Settings{}, err
	}
	settings, err = file.Resolve(a.flags.profile)
	if err != nil {
		return "", "", config.Settings{}, err
	}
	dataDir, err = paths.ResolveDataDir(a.flags.dataDir, settings.DataDir)
	if err != nil {
		return "", "", config.Settings{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return configDir, dataDir, settings, nil
}

// open attaches the board for one command. The caller must call close.
func (a *app) open(cmd *cobra.Command) (*session, error) {
	configDir, dataDir, settings, err := a.environment()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := logging.Init(settings.LogLevel, paths.ResolveLogFile(configDir, settings.LogFile))
	if err != nil {
		return nil, err
	}

	board := sqlite.NewBackend(sqlite.WithLogger(logger))
	if err := board.Attach(settings.BoardConfig(dataDir)); err != nil {
		closeLog()
		return nil, fmt.Errorf("attach board: %w", err)
	}
	logger.Debug("session opened", "command", cmd.CommandPath(), "profile", settings.Profile, "data_dir", dataDir)

	return &session{
		board:    board,
		settings: settings,
		dataDir:  dataDir,
		out:      a.printer(cmd),
		closeLog: closeLog,
	}, nil
}

func (s *session) close() {
	s.board.Detach()
	s.closeLog()
}

// run opens a session, calls fn and closes the session.
func (a *app) run(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

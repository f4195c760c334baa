package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/internal/config"
	"github.com/mesh-intelligence/corkboard/internal/paths"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize corkboard storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"when none exists, then create the database schema.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	// Record an explicit --data-dir so later runs find the same database.
	created, err := config.WriteDefault(configDir, a.flags.dataDir)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return a.run(cmd, func(s *session) error {
		result := map[string]any{
			"config_dir":     configDir,
			"data_dir":       s.dataDir,
			"config_created": created,
		}
		return s.out.emit(result, func(w io.Writer) {
			if created {
				fmt.Fprintf(w, "Wrote %s\n", filepath.Join(configDir, config.FileName))
			}
			fmt.Fprintf(w, "Corkboard initialized in %s\n", s.dataDir)
		})
	})
}

// Package cli implements the corkboard command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	profile   string
	jsonMode  bool
}

// app carries the flag values of one command tree.
type app struct {
	flags rootFlags
}

// NewRootCmd creates the top-level "corkboard" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "corkboard",
		Short: "A local kanban board",
		Long: "Corkboard keeps projects, lists, cards, labels and subtasks in a local\n" +
			"SQLite database and prints boards to the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: .corkboard-db)")
	root.PersistentFlags().StringVar(&a.flags.profile, "profile", "", "profile from config.yaml")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newCheckCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newBoardCmd(),
		a.newProjectCmd(),
		a.newListCmd(),
		a.newCardCmd(),
		a.newLabelCmd(),
		a.newSubtaskCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps storage failures to exitSysError and everything else,
// including usage errors, to exitUserError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrStorage):
		return exitSysError
	default:
		return exitUserError
	}
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ordering and reference invariants",
		Long: `Check scans every ordered scope for gaps or duplicate positions and every
copied project reference for drift. It exits non-zero when it finds any.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				violations, err := s.board.Verify(cmd.Context())
				if err != nil {
					return fmt.Errorf("verify: %w", err)
				}
				if violations == nil {
					violations = []types.Violation{}
				}
				if err := s.out.emit(violations, func(w io.Writer) {
					if len(violations) == 0 {
						fmt.Fprintln(w, "Board is consistent")
					}
					for _, v := range violations {
						fmt.Fprintln(w, v.String())
					}
				}); err != nil {
					return err
				}
				if len(violations) > 0 {
					return fmt.Errorf("%d violations found", len(violations))
				}
				return nil
			})
		},
	}
}

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table to JSONL files in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				if err := s.board.Export(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("export: %w", err)
				}
				return s.out.emit(map[string]string{"status": "exported", "dir": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Exported board to %s\n", args[0])
				})
			})
		},
	}
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Replace the board with the JSONL files in a directory",
		Long: `Import validates the JSONL files written by export and replaces every
stored row with them in one transaction. Positions are compacted on load.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				if err := s.board.Import(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("import: %w", err)
				}
				return s.out.emit(map[string]string{"status": "imported", "dir": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Imported board from %s\n", args[0])
				})
			})
		},
	}
}

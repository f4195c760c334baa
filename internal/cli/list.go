package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func (a *app) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage the lists of a project",
	}
	cmd.AddCommand(
		a.newListCreateCmd(),
		a.newListLsCmd(),
		a.newListUpdateCmd(),
		a.newListMoveCmd(),
	)
	cmd.AddCommand(a.lifecycleCmds(types.KindList, func(b types.Board) lifecycleStore { return b.Lists() })...)
	return cmd
}

func (a *app) newListCreateCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Create a list in a project",
		Long: `Create adds a list to the project. A project holds at most max_lists
active lists; max_lists 0 removes the cap.

Example:
  corkboard list create 0190... --title "Doing"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				l, err := s.board.Lists().Create(cmd.Context(), types.NewList{
					ProjectID: args[0],
					Title:     title,
					Index:     indexFlag(cmd, "at"),
				})
				if err != nil {
					return fmt.Errorf("create list: %w", err)
				}
				return s.out.emit(l, func(w io.Writer) {
					fmt.Fprintf(w, "Created list: %s\n", l.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "list title (required)")
	cmd.Flags().Int("at", 0, "position to insert at (default: end)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) newListLsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ls <project-id>",
		Short: "List the lists of a project in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				lists, err := s.board.Lists().ByProject(cmd.Context(), args[0], all)
				if err != nil {
					return fmt.Errorf("list lists: %w", err)
				}
				return s.out.emit(lists, func(w io.Writer) {
					for _, l := range lists {
						fmt.Fprintln(w, entityLine(l.Position, l.ID, l.Title, l.Archived))
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived lists")
	return cmd
}

func (a *app) newListUpdateCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				l, err := s.board.Lists().Update(cmd.Context(), args[0], title)
				if err != nil {
					return fmt.Errorf("update list: %w", err)
				}
				return s.out.emit(l, func(w io.Writer) {
					fmt.Fprintf(w, "Updated list: %s\n", l.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title (required)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) newListMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a list within its project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, func(s *session) error {
				l, err := s.board.Lists().Move(cmd.Context(), args[0], index)
				if err != nil {
					return fmt.Errorf("move list: %w", err)
				}
				return s.out.emit(l, func(w io.Writer) {
					fmt.Fprintf(w, "Moved list %s to %d\n", l.ID, l.Position)
				})
			})
		},
	}
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func (a *app) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(
		a.newProjectCreateCmd(),
		a.newProjectListCmd(),
		a.newProjectShowCmd(),
		a.newProjectUpdateCmd(),
		a.newProjectMoveCmd(),
	)
	cmd.AddCommand(a.lifecycleCmds(types.KindProject, func(b types.Board) lifecycleStore { return b.Projects() })...)
	return cmd
}

func (a *app) newProjectCreateCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long: `Create adds a project at the end of the project order, or at --at.

Example:
  corkboard project create --title "Home"
  corkboard project create --title "Work" --at 0 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				p, err := s.board.Projects().Create(cmd.Context(), types.NewProject{
					Title:       title,
					Description: description,
					Index:       indexFlag(cmd, "at"),
				})
				if err != nil {
					return fmt.Errorf("create project: %w", err)
				}
				return s.out.emit(p, func(w io.Writer) {
					fmt.Fprintf(w, "Created project: %s\n", p.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "project title (required)")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().Int("at", 0, "position to insert at (default: end)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) newProjectListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects in order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				projects, err := s.board.Projects().List(cmd.Context(), all)
				if err != nil {
					return fmt.Errorf("list projects: %w", err)
				}
				return s.out.emit(projects, func(w io.Writer) {
					for _, p := range projects {
						fmt.Fprintln(w, entityLine(p.Position, p.ID, p.Title, p.Archived))
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived projects")
	return cmd
}

func (a *app) newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				p, err := s.board.Projects().Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("get project: %w", err)
				}
				return s.out.emit(p, func(w io.Writer) {
					fmt.Fprintln(w, titleStyle.Render(p.Title)+archivedMark(p.Archived))
					fmt.Fprintln(w, dimStyle.Render(p.ID))
					if p.Description != "" {
						fmt.Fprintln(w, renderMarkdown(p.Description, 80))
					}
				})
			})
		},
	}
}

func (a *app) newProjectUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a project's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				p, err := s.board.Projects().Update(cmd.Context(), args[0], types.ProjectUpdate{
					Title:       stringFlag(cmd, "title"),
					Description: stringFlag(cmd, "description"),
				})
				if err != nil {
					return fmt.Errorf("update project: %w", err)
				}
				return s.out.emit(p, func(w io.Writer) {
					fmt.Fprintf(w, "Updated project: %s\n", p.ID)
				})
			})
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("description", "", "new description")
	return cmd
}

func (a *app) newProjectMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a project to a new position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, func(s *session) error {
				p, err := s.board.Projects().Move(cmd.Context(), args[0], index)
				if err != nil {
					return fmt.Errorf("move project: %w", err)
				}
				return s.out.emit(p, func(w io.Writer) {
					fmt.Fprintf(w, "Moved project %s to %d\n", p.ID, p.Position)
				})
			})
		},
	}
}

// entityLine formats one row of a listing.
func entityLine(position int, id, title string, archived bool) string {
	return fmt.Sprintf("%3d  %s  %s%s", position, dimStyle.Render(id), title, archivedMark(archived))
}

func archivedMark(archived bool) string {
	if !archived {
		return ""
	}
	return dimStyle.Render(" (archived)")
}

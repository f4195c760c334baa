package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func (a *app) newSubtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage the checklist of a card",
	}
	cmd.AddCommand(
		a.newSubtaskAddCmd(),
		a.newSubtaskLsCmd(),
		a.newSubtaskUpdateCmd(),
		a.newSubtaskToggleCmd(),
		a.newSubtaskMoveCmd(),
	)
	cmd.AddCommand(a.lifecycleCmds(types.KindSubtask, func(b types.Board) lifecycleStore { return b.Subtasks() })...)
	return cmd
}

func (a *app) newSubtaskAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <card-id> <value>",
		Short: "Add a subtask to a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				st, err := s.board.Subtasks().Create(cmd.Context(), types.NewSubtask{
					CardID: args[0],
					Value:  args[1],
					Index:  indexFlag(cmd, "at"),
				})
				if err != nil {
					return fmt.Errorf("add subtask: %w", err)
				}
				return s.out.emit(st, func(w io.Writer) {
					fmt.Fprintf(w, "Added subtask: %s\n", st.ID)
				})
			})
		},
	}
	cmd.Flags().Int("at", 0, "position to insert at (default: end)")
	return cmd
}

func (a *app) newSubtaskLsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ls <card-id>",
		Short: "List the subtasks of a card in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				subtasks, err := s.board.Subtasks().ByCard(cmd.Context(), args[0], all)
				if err != nil {
					return fmt.Errorf("list subtasks: %w", err)
				}
				return s.out.emit(subtasks, func(w io.Writer) {
					for _, st := range subtasks {
						fmt.Fprintln(w, entityLine(st.Position, st.ID, checkbox(st.Completed)+" "+st.Value, st.Archived))
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived subtasks")
	return cmd
}

func (a *app) newSubtaskUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <value>",
		Short: "Change the text of a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				st, err := s.board.Subtasks().Update(cmd.Context(), args[0], args[1])
				if err != nil {
					return fmt.Errorf("update subtask: %w", err)
				}
				return s.out.emit(st, func(w io.Writer) {
					fmt.Fprintf(w, "Updated subtask: %s\n", st.ID)
				})
			})
		},
	}
}

func (a *app) newSubtaskToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the completed state of a subtask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				ctx := cmd.Context()
				cur, err := s.board.Subtasks().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("toggle subtask: %w", err)
				}
				st, err := s.board.Subtasks().SetCompleted(ctx, cur.ID, !cur.Completed)
				if err != nil {
					return fmt.Errorf("toggle subtask: %w", err)
				}
				return s.out.emit(st, func(w io.Writer) {
					fmt.Fprintf(w, "%s %s\n", checkbox(st.Completed), st.Value)
				})
			})
		},
	}
}

func (a *app) newSubtaskMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a subtask within its card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, func(s *session) error {
				st, err := s.board.Subtasks().Move(cmd.Context(), args[0], index)
				if err != nil {
					return fmt.Errorf("move subtask: %w", err)
				}
				return s.out.emit(st, func(w io.Writer) {
					fmt.Fprintf(w, "Moved subtask %s to %d\n", st.ID, st.Position)
				})
			})
		},
	}
}

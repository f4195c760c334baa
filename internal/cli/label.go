package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func (a *app) newLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage project labels and attach them to cards",
	}
	cmd.AddCommand(
		a.newLabelCreateCmd(),
		a.newLabelLsCmd(),
		a.newLabelUpdateCmd(),
		a.newLabelMoveCmd(),
		a.newLabelAttachCmd(),
		a.newLabelDetachCmd(),
	)
	cmd.AddCommand(a.lifecycleCmds(types.KindLabel, func(b types.Board) lifecycleStore { return b.Labels() })...)
	return cmd
}

func (a *app) newLabelCreateCmd() *cobra.Command {
	var title, color string
	cmd := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Create a label in a project",
		Long: `Create adds a label to the project. The color is a hex value (#RRGGBB),
an ANSI color name such as "red" or "brightblue", or an ANSI index 0-255.

Example:
  corkboard label create 0190... --title bug --color red
  corkboard label create 0190... --title docs --color "#7aa2f7"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				l, err := s.board.Labels().Create(cmd.Context(), types.NewLabel{
					ProjectID: args[0],
					Title:     title,
					Color:     color,
					Index:     indexFlag(cmd, "at"),
				})
				if err != nil {
					return fmt.Errorf("create label: %w", err)
				}
				return s.out.emit(l, func(w io.Writer) {
					fmt.Fprintf(w, "Created label %s: %s\n", labelChip(l), l.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "label title (required)")
	cmd.Flags().StringVar(&color, "color", "", "label color (required)")
	cmd.Flags().Int("at", 0, "position to insert at (default: end)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("color")
	return cmd
}

func (a *app) newLabelLsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ls <project-id>",
		Short: "List the labels of a project in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				labels, err := s.board.Labels().ByProject(cmd.Context(), args[0], all)
				if err != nil {
					return fmt.Errorf("list labels: %w", err)
				}
				return s.out.emit(labels, func(w io.Writer) {
					for _, l := range labels {
						fmt.Fprintln(w, entityLine(l.Position, l.ID, labelChip(l), l.Archived))
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived labels")
	return cmd
}

func (a *app) newLabelUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a label's title or color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				l, err := s.board.Labels().Update(cmd.Context(), args[0], types.LabelUpdate{
					Title: stringFlag(cmd, "title"),
					Color: stringFlag(cmd, "color"),
				})
				if err != nil {
					return fmt.Errorf("update label: %w", err)
				}
				return s.out.emit(l, func(w io.Writer) {
					fmt.Fprintf(w, "Updated label %s: %s\n", labelChip(l), l.ID)
				})
			})
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("color", "", "new color")
	return cmd
}

func (a *app) newLabelMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a label within its project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, func(s *session) error {
				l, err := s.board.Labels().Move(cmd.Context(), args[0], index)
				if err != nil {
					return fmt.Errorf("move label: %w", err)
				}
				return s.out.emit(l, func(w io.Writer) {
					fmt.Fprintf(w, "Moved label %s to %d\n", l.ID, l.Position)
				})
			})
		},
	}
}

func (a *app) newLabelAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <card-id> <label-id>",
		Short: "Attach a label to a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				cl, err := s.board.CardLabels().Attach(cmd.Context(), args[0], args[1])
				if err != nil {
					return fmt.Errorf("attach label: %w", err)
				}
				return s.out.emit(cl, func(w io.Writer) {
					fmt.Fprintf(w, "Attached label %s to card %s\n", cl.LabelID, cl.CardID)
				})
			})
		},
	}
}

func (a *app) newLabelDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <card-id> <label-id>",
		Short: "Detach a label from a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				if err := s.board.CardLabels().Detach(cmd.Context(), args[0], args[1]); err != nil {
					return fmt.Errorf("detach label: %w", err)
				}
				return s.out.emit(map[string]string{"status": "detached", "card_id": args[0], "label_id": args[1]}, func(w io.Writer) {
					fmt.Fprintf(w, "Detached label %s from card %s\n", args[1], args[0])
				})
			})
		},
	}
}

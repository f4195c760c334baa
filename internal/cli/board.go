package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func (a *app) newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board [project-id]",
		Short: "Print a project board, or every active project",
		Long: `Board prints the lists of a project side by side with their cards, labels,
subtask progress and derived status. Without an argument it prints every
active project in order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				if len(args) == 1 {
					view, err := s.board.ProjectView(cmd.Context(), args[0])
					if err != nil {
						return fmt.Errorf("project view: %w", err)
					}
					return s.out.emit(view, func(w io.Writer) { writeBoard(w, view) })
				}
				views, err := s.board.Overview(cmd.Context())
				if err != nil {
					return fmt.Errorf("overview: %w", err)
				}
				return s.out.emit(views, func(w io.Writer) {
					if len(views) == 0 {
						fmt.Fprintln(w, dimStyle.Render("No projects"))
					}
					for i, v := range views {
						if i > 0 {
							fmt.Fprintln(w)
						}
						writeBoard(w, v)
					}
				})
			})
		},
	}
}

func writeBoard(w io.Writer, v *types.ProjectView) {
	p := v.Project
	fmt.Fprintf(w, "%s %s%s\n", titleStyle.Render(p.Title), dimStyle.Render(p.ID), archivedMark(p.Archived))
	if len(v.Labels) > 0 {
		fmt.Fprintln(w, labelChips(v.Labels))
	}
	if len(v.Lists) == 0 {
		return
	}
	columns := make([]string, len(v.Lists))
	for i, lv := range v.Lists {
		columns[i] = renderColumn(lv)
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
}

func renderColumn(lv *types.ListView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(lv.List.Title))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d)", len(lv.Cards))))
	for _, cv := range lv.Cards {
		b.WriteString("\n\n")
		b.WriteString(renderCardLine(cv))
	}
	return columnStyle.Render(b.String())
}

func renderCardLine(cv *types.CardView) string {
	var parts []string
	title := cv.Card.Title
	if cv.Card.Important {
		title = importantStyle.Render("! ") + title
	}
	parts = append(parts, title)
	if badge := statusBadge(cv.Status); badge != "" {
		parts = append(parts, badge)
	}
	if len(cv.Labels) > 0 {
		parts = append(parts, labelChips(cv.Labels))
	}
	if cv.SubtasksTotal > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d/%d subtasks", cv.SubtasksDone, cv.SubtasksTotal)))
	}
	return strings.Join(parts, "\n")
}

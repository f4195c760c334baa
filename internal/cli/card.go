package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func (a *app) newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}
	cmd.AddCommand(
		a.newCardCreateCmd(),
		a.newCardLsCmd(),
		a.newCardShowCmd(),
		a.newCardUpdateCmd(),
		a.newCardMoveCmd(),
		a.newCardShiftCmd(),
		a.newCardCompleteCmd(),
		a.newCardImportantCmd(),
		a.newCardRemindersCmd(),
	)
	cmd.AddCommand(a.lifecycleCmds(types.KindCard, func(b types.Board) lifecycleStore { return b.Cards() })...)
	return cmd
}

// addCardDateFlags registers the optional date and reminder flags.
func addCardDateFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", `start date ("YYYY-MM-DD HH:MM" or "YYYY-MM-DD")`)
	cmd.Flags().String("due", "", `due date ("YYYY-MM-DD HH:MM" or "YYYY-MM-DD")`)
	cmd.Flags().String("reminder", "", "remind this long before the due date (e.g. 90m, 24h)")
}

// cardDates reads the flags registered by addCardDateFlags.
func cardDates(cmd *cobra.Command) (start, due *time.Time, reminder *time.Duration, err error) {
	if start, err = dateFlag(cmd, "start"); err != nil {
		return nil, nil, nil, err
	}
	if due, err = dateFlag(cmd, "due"); err != nil {
		return nil, nil, nil, err
	}
	if reminder, err = durationFlag(cmd, "reminder"); err != nil {
		return nil, nil, nil, err
	}
	return start, due, reminder, nil
}

func (a *app) newCardCreateCmd() *cobra.Command {
	var (
		title, description string
		important          bool
	)
	cmd := &cobra.Command{
		Use:   "create <list-id>",
		Short: "Create a card in a list",
		Long: `Create adds a card to the list, at the end or at --at.

Example:
  corkboard card create 0190... --title "Write report" --due "2024-03-01 17:00" --reminder 24h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, due, reminder, err := cardDates(cmd)
			if err != nil {
				return err
			}
			return a.run(cmd, func(s *session) error {
				c, err := s.board.Cards().Create(cmd.Context(), types.NewCard{
					ListID:      args[0],
					Title:       title,
					Description: description,
					Important:   important,
					StartDate:   start,
					DueDate:     due,
					Reminder:    reminder,
					Index:       indexFlag(cmd, "at"),
				})
				if err != nil {
					return fmt.Errorf("create card: %w", err)
				}
				return s.out.emit(c, func(w io.Writer) {
					fmt.Fprintf(w, "Created card: %s\n", c.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "card title (required)")
	cmd.Flags().StringVar(&description, "description", "", "card description (markdown)")
	cmd.Flags().BoolVar(&important, "important", false, "mark the card important")
	cmd.Flags().Int("at", 0, "position to insert at (default: end)")
	addCardDateFlags(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) newCardLsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ls <list-id>",
		Short: "List the cards of a list in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				cards, err := s.board.Cards().ByList(cmd.Context(), args[0], all)
				if err != nil {
					return fmt.Errorf("list cards: %w", err)
				}
				now := time.Now()
				return s.out.emit(cards, func(w io.Writer) {
					for _, c := range cards {
						line := entityLine(c.Position, c.ID, c.Title, c.Archived)
						if badge := statusBadge(c.Status(now, s.settings.DueSoonDays)); badge != "" {
							line += " " + badge
						}
						fmt.Fprintln(w, line)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived cards")
	return cmd
}

func (a *app) newCardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a card with its labels and subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				ctx := cmd.Context()
				c, err := s.board.Cards().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get card: %w", err)
				}
				links, err := s.board.CardLabels().ByCard(ctx, c.ID, false)
				if err != nil {
					return fmt.Errorf("get card labels: %w", err)
				}
				labels := make([]*types.Label, 0, len(links))
				for _, cl := range links {
					l, err := s.board.Labels().Get(ctx, cl.LabelID)
					if err != nil {
						return fmt.Errorf("get label: %w", err)
					}
					if !l.Archived {
						labels = append(labels, l)
					}
				}
				subtasks, err := s.board.Subtasks().ByCard(ctx, c.ID, false)
				if err != nil {
					return fmt.Errorf("get subtasks: %w", err)
				}

				view := &types.CardView{
					Card:          c,
					Status:        c.Status(time.Now(), s.settings.DueSoonDays),
					Labels:        labels,
					Subtasks:      subtasks,
					SubtasksTotal: len(subtasks),
				}
				for _, st := range subtasks {
					if st.Completed {
						view.SubtasksDone++
					}
				}
				return s.out.emit(view, func(w io.Writer) { writeCardDetail(w, view) })
			})
		},
	}
}

func writeCardDetail(w io.Writer, v *types.CardView) {
	c := v.Card
	header := titleStyle.Render(c.Title)
	if c.Important {
		header = importantStyle.Render("! ") + header
	}
	if badge := statusBadge(v.Status); badge != "" {
		header += " " + badge
	}
	fmt.Fprintln(w, header+archivedMark(c.Archived))
	fmt.Fprintln(w, dimStyle.Render(c.ID))
	if len(v.Labels) > 0 {
		fmt.Fprintln(w, labelChips(v.Labels))
	}
	fmt.Fprintf(w, "Start:    %s\n", formatTime(c.StartDate))
	fmt.Fprintf(w, "Due:      %s\n", formatTime(c.DueDate))
	fmt.Fprintf(w, "Reminder: %s\n", formatDuration(c.Reminder))
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderMarkdown(c.Description, 80))
	if v.SubtasksTotal > 0 {
		fmt.Fprintf(w, "\nSubtasks %d/%d\n", v.SubtasksDone, v.SubtasksTotal)
		for _, st := range v.Subtasks {
			fmt.Fprintf(w, "  %s %s  %s\n", checkbox(st.Completed), st.Value, dimStyle.Render(st.ID))
		}
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func (a *app) newCardUpdateCmd() *cobra.Command {
	var clearStart, clearDue, clearReminder bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change card fields",
		Long: `Update changes only the fields given on the command line.

Example:
  corkboard card update 0190... --title "Write final report"
  corkboard card update 0190... --clear-due --clear-reminder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, due, reminder, err := cardDates(cmd)
			if err != nil {
				return err
			}
			u := types.CardUpdate{
				Title:          stringFlag(cmd, "title"),
				Description:    stringFlag(cmd, "description"),
				Important:      boolFlag(cmd, "important"),
				StartDate:      start,
				DueDate:        due,
				Reminder:       reminder,
				ClearStartDate: clearStart,
				ClearDueDate:   clearDue,
				ClearReminder:  clearReminder,
			}
			return a.run(cmd, func(s *session) error {
				c, err := s.board.Cards().Update(cmd.Context(), args[0], u)
				if err != nil {
					return fmt.Errorf("update card: %w", err)
				}
				return s.out.emit(c, func(w io.Writer) {
					fmt.Fprintf(w, "Updated card: %s\n", c.ID)
				})
			})
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("description", "", "new description (markdown)")
	cmd.Flags().Bool("important", false, "set the important flag")
	addCardDateFlags(cmd)
	cmd.Flags().BoolVar(&clearStart, "clear-start", false, "remove the start date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().BoolVar(&clearReminder, "clear-reminder", false, "remove the reminder")
	return cmd
}

func (a *app) newCardMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <list-id>",
		Short: "Move a card to a list of the same project",
		Long: `Move places the card in the target list at --at, or at the end. The target
may be the card's own list.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				ctx := cmd.Context()
				index := indexFlag(cmd, "at")
				if index == nil {
					n, err := endOfList(s, cmd, args[0], args[1])
					if err != nil {
						return err
					}
					index = &n
				}
				c, err := s.board.Cards().Move(ctx, args[0], args[1], *index)
				if err != nil {
					return fmt.Errorf("move card: %w", err)
				}
				return s.out.emit(c, func(w io.Writer) {
					fmt.Fprintf(w, "Moved card %s to list %s at %d\n", c.ID, c.ListID, c.Position)
				})
			})
		},
	}
	cmd.Flags().Int("at", 0, "position in the target list (default: end)")
	return cmd
}

// endOfList returns the last valid slot for cardID in listID.
func endOfList(s *session, cmd *cobra.Command, cardID, listID string) (int, error) {
	card, err := s.board.Cards().Get(cmd.Context(), cardID)
	if err != nil {
		return 0, fmt.Errorf("move card: %w", err)
	}
	cards, err := s.board.Cards().ByList(cmd.Context(), listID, false)
	if err != nil {
		return 0, fmt.Errorf("move card: %w", err)
	}
	if card.ListID == listID && !card.Archived {
		return len(cards) - 1, nil
	}
	return len(cards), nil
}

func (a *app) newCardShiftCmd() *cobra.Command {
	var by int
	cmd := &cobra.Command{
		Use:   "shift <id>",
		Short: "Move a card to a neighboring list",
		Long: `Shift moves the card --by lists to the right (positive) or left (negative)
and appends it to that list.

Example:
  corkboard card shift 0190...
  corkboard card shift 0190... --by -1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				c, err := s.board.Cards().MoveAdjacent(cmd.Context(), args[0], by)
				if err != nil {
					return fmt.Errorf("shift card: %w", err)
				}
				return s.out.emit(c, func(w io.Writer) {
					fmt.Fprintf(w, "Moved card %s to list %s\n", c.ID, c.ListID)
				})
			})
		},
	}
	cmd.Flags().IntVar(&by, "by", 1, "number of lists to move; negative moves left")
	return cmd
}

func (a *app) newCardCompleteCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a card completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				c, err := s.board.Cards().SetCompleted(cmd.Context(), args[0], !undo)
				if err != nil {
					return fmt.Errorf("complete card: %w", err)
				}
				return s.out.emit(c, func(w io.Writer) {
					fmt.Fprintf(w, "Card %s completed: %t\n", c.ID, c.Completed)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the card not completed")
	return cmd
}

func (a *app) newCardImportantCmd() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "important <id>",
		Short: "Flag a card as important",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				c, err := s.board.Cards().SetImportant(cmd.Context(), args[0], !off)
				if err != nil {
					return fmt.Errorf("flag card: %w", err)
				}
				return s.out.emit(c, func(w io.Writer) {
					fmt.Fprintf(w, "Card %s important: %t\n", c.ID, c.Important)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "clear the important flag")
	return cmd
}

func (a *app) newCardRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List cards whose reminder is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				cards, err := s.board.Cards().DueReminders(cmd.Context(), time.Now())
				if err != nil {
					return fmt.Errorf("due reminders: %w", err)
				}
				return s.out.emit(cards, func(w io.Writer) {
					if len(cards) == 0 {
						fmt.Fprintln(w, dimStyle.Render("No reminders due"))
						return
					}
					for _, c := range cards {
						fmt.Fprintf(w, "%s  %s  due %s\n", dimStyle.Render(c.ID), c.Title, formatTime(c.DueDate))
					}
				})
			})
		},
	}
}

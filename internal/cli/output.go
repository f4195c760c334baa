package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// printer writes command results as text or JSON.
type printer struct {
	w    io.Writer
	json bool
}

func (a *app) printer(cmd *cobra.Command) *printer {
	return &printer{w: cmd.OutOrStdout(), json: a.flags.jsonMode}
}

// emit writes v as indented JSON in JSON mode and calls text otherwise.
func (p *printer) emit(v any, text func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(p.w)
	return nil
}

// done reports a mutation that returns no entity.
func (p *printer) done(verb string, kind types.Kind, id string) error {
	return p.emit(map[string]string{"status": verb, "kind": string(kind), "id": id}, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s %s\n", kind, id, verb)
	})
}

var (
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
	importantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Bold(true)
	columnStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3b4261")).
			Padding(0, 1).
			Width(28)
)

// statusColors maps derived statuses to badge colors.
var statusColors = map[types.Status]lipgloss.Color{
	types.StatusCompleted:  lipgloss.Color("#9ece6a"),
	types.StatusOverdue:    lipgloss.Color("#f7768e"),
	types.StatusDueSoon:    lipgloss.Color("#e0af68"),
	types.StatusInProgress: lipgloss.Color("#7aa2f7"),
}

func statusBadge(s types.Status) string {
	c, ok := statusColors[s]
	if !ok {
		return ""
	}
	return lipgloss.NewStyle().Foreground(c).Render("[" + strings.ReplaceAll(string(s), "_", " ") + "]")
}

// ansiNames maps the named color tokens to ANSI indexes.
var ansiNames = map[string]string{
	"black": "0", "red": "1", "green": "2", "yellow": "3",
	"blue": "4", "magenta": "5", "cyan": "6", "white": "7",
	"brightblack": "8", "brightred": "9", "brightgreen": "10", "brightyellow": "11",
	"brightblue": "12", "brightmagenta": "13", "brightcyan": "14", "brightwhite": "15",
}

// labelColor converts a label color token to a lipgloss color.
func labelColor(token string) lipgloss.Color {
	if idx, ok := ansiNames[strings.ToLower(token)]; ok {
		return lipgloss.Color(idx)
	}
	return lipgloss.Color(token)
}

func labelChip(l *types.Label) string {
	return lipgloss.NewStyle().
		Background(labelColor(l.Color)).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Render(l.Title)
}

func labelChips(labels []*types.Label) string {
	chips := make([]string, len(labels))
	for i, l := range labels {
		chips[i] = labelChip(l)
	}
	return strings.Join(chips, " ")
}

// Cache glamour renderers by width.
var rendererCache sync.Map // map[int]*glamour.TermRenderer

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	rendererCache.Store(width, renderer)
	return renderer, nil
}

// renderMarkdown renders a card description, falling back to the raw text.
func renderMarkdown(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return dimStyle.Italic(true).Render("No description")
	}
	renderer, err := getRenderer(width)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return types.FormatUserTime(*t, time.Local)
}

func formatDuration(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

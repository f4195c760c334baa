package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// writeConfig replaces config.yaml with content.
func (e *testEnv) writeConfig(content string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(e.t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(content), 0o644))
}

// run executes the command tree in-process and returns stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "corkboard %s", strings.Join(args, " "))
	return out
}

// runJSON runs the command with --json and decodes its output.
func runJSON[T any](e *testEnv, args ...string) T {
	e.t.Helper()
	out := e.mustRun(append([]string{"--json"}, args...)...)
	var v T
	require.NoError(e.t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "corkboard v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	first := runJSON[map[string]any](env, "init")
	assert.Equal(t, true, first["config_created"])
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(env.dataDir, types.DefaultDBFile))

	second := runJSON[map[string]any](env, "init")
	assert.Equal(t, false, second["config_created"])
}

func TestBoardFlow(t *testing.T) {
	env := newTestEnv(t)

	project := runJSON[types.Project](env, "project", "create", "--title", "Home")
	todo := runJSON[types.List](env, "list", "create", project.ID, "--title", "Todo")
	runJSON[types.List](env, "list", "create", project.ID, "--title", "Done")
	label := runJSON[types.Label](env, "label", "create", project.ID, "--title", "chore", "--color", "brightred")
	card := runJSON[types.Card](env, "card", "create", todo.ID,
		"--title", "Paint fence", "--due", "2000-01-01", "--reminder", "24h", "--important")
	runJSON[types.CardLabel](env, "label", "attach", card.ID, label.ID)
	sub := runJSON[types.Subtask](env, "subtask", "add", card.ID, "Buy paint")
	runJSON[types.Subtask](env, "subtask", "add", card.ID, "Sand boards")
	toggled := runJSON[types.Subtask](env, "subtask", "toggle", sub.ID)
	assert.True(t, toggled.Completed)

	assert.Equal(t, project.ID, card.ProjectID)
	require.NotNil(t, card.Reminder)
	assert.Equal(t, "24h0m0s", card.Reminder.String())

	view := runJSON[types.ProjectView](env, "board", project.ID)
	require.Len(t, view.Lists, 2)
	require.Len(t, view.Lists[0].Cards, 1)
	cv := view.Lists[0].Cards[0]
	assert.Equal(t, card.ID, cv.Card.ID)
	assert.Equal(t, types.StatusOverdue, cv.Status)
	require.Len(t, cv.Labels, 1)
	assert.Equal(t, label.ID, cv.Labels[0].ID)
	assert.Equal(t, 1, cv.SubtasksDone)
	assert.Equal(t, 2, cv.SubtasksTotal)

	reminders := runJSON[[]types.Card](env, "card", "reminders")
	require.Len(t, reminders, 1)
	assert.Equal(t, card.ID, reminders[0].ID)

	text := env.mustRun("board", project.ID)
	assert.Contains(t, text, "Home")
	assert.Contains(t, text, "Paint fence")
	assert.Contains(t, text, "1/2 subtasks")

	detail := env.mustRun("card", "show", card.ID)
	assert.Contains(t, detail, "Paint fence")
	assert.Contains(t, detail, "Sand boards")
}

func TestCardMoves(t *testing.T) {
	env := newTestEnv(t)

	project := runJSON[types.Project](env, "project", "create", "--title", "Work")
	left := runJSON[types.List](env, "list", "create", project.ID, "--title", "Left")
	right := runJSON[types.List](env, "list", "create", project.ID, "--title", "Right")
	a := runJSON[types.Card](env, "card", "create", left.ID, "--title", "A")
	b := runJSON[types.Card](env, "card", "create", left.ID, "--title", "B")

	shifted := runJSON[types.Card](env, "card", "shift", a.ID)
	assert.Equal(t, right.ID, shifted.ListID)
	assert.Equal(t, 0, shifted.Position)

	moved := runJSON[types.Card](env, "card", "move", a.ID, left.ID)
	assert.Equal(t, left.ID, moved.ListID)
	assert.Equal(t, 1, moved.Position)

	moved = runJSON[types.Card](env, "card", "move", a.ID, left.ID, "--at", "0")
	assert.Equal(t, 0, moved.Position)

	cards := runJSON[[]types.Card](env, "card", "ls", left.ID)
	require.Len(t, cards, 2)
	assert.Equal(t, a.ID, cards[0].ID)
	assert.Equal(t, b.ID, cards[1].ID)

	_, err := env.run("card", "shift", b.ID, "--by", "-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidPosition)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestLifecycleCommands(t *testing.T) {
	env := newTestEnv(t)

	project := runJSON[types.Project](env, "project", "create", "--title", "Garden")
	runJSON[map[string]string](env, "project", "archive", project.ID)

	active := runJSON[[]types.Project](env, "project", "list")
	assert.Empty(t, active)
	all := runJSON[[]types.Project](env, "project", "list", "--all")
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)

	_, err := env.run("list", "create", project.ID, "--title", "Todo")
	assert.ErrorIs(t, err, types.ErrValidation)

	runJSON[map[string]string](env, "project", "restore", project.ID)
	got := runJSON[types.Project](env, "project", "show", project.ID)
	assert.False(t, got.Archived)

	runJSON[map[string]string](env, "project", "delete", project.ID)
	_, err = env.run("project", "show", project.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestProfileMaxLists(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(`backend: sqlite
db_file: corkboard.db
log_level: info
due_soon_days: 3
max_lists: 5
profiles:
  - name: tight
    db_file: tight.db
    max_lists: 1
`)

	project := runJSON[types.Project](env, "--profile", "tight", "project", "create", "--title", "Small")
	runJSON[types.List](env, "--profile", "tight", "list", "create", project.ID, "--title", "One")
	_, err := env.run("--profile", "tight", "list", "create", project.ID, "--title", "Two")
	assert.ErrorIs(t, err, types.ErrLimitExceeded)

	// The default profile uses a separate database.
	_, err = env.run("project", "show", project.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.FileExists(t, filepath.Join(env.dataDir, "tight.db"))

	_, err = env.run("--profile", "missing", "project", "list")
	assert.Error(t, err)
}

func TestCheckExportImport(t *testing.T) {
	env := newTestEnv(t)

	project := runJSON[types.Project](env, "project", "create", "--title", "Trip")
	list := runJSON[types.List](env, "list", "create", project.ID, "--title", "Pack")
	runJSON[types.Card](env, "card", "create", list.ID, "--title", "Tent")

	violations := runJSON[[]types.Violation](env, "check")
	assert.Empty(t, violations)
	assert.Contains(t, env.mustRun("check"), "consistent")

	dir := filepath.Join(t.TempDir(), "export")
	env.mustRun("export", dir)
	assert.FileExists(t, filepath.Join(dir, "project_card.jsonl"))

	runJSON[map[string]string](env, "project", "delete", project.ID)
	env.mustRun("import", dir)

	view := runJSON[types.ProjectView](env, "board", project.ID)
	require.Len(t, view.Lists, 1)
	require.Len(t, view.Lists[0].Cards, 1)
	assert.Equal(t, "Tent", view.Lists[0].Cards[0].Card.Title)
}

func TestUsageErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing title", []string{"project", "create"}},
		{"bad index", []string{"project", "move", "id", "first"}},
		{"bad date", []string{"card", "create", "list", "--title", "x", "--due", "tomorrow"}},
		{"bad reminder", []string{"card", "create", "list", "--title", "x", "--reminder", "soon"}},
		{"bad color", []string{"label", "create", "p", "--title", "x", "--color", "mauve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"not found", fmt.Errorf("get card: %w", types.ErrNotFound), exitUserError},
		{"plain", errors.New("unknown command"), exitUserError},
		{"storage", fmt.Errorf("create card: %w", &types.StorageError{Op: "commit", Err: errors.New("disk full")}), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, src, "Home")
	l := createList(t, src, p.ID, "Todo")
	label := createLabel(t, src, p.ID, "bug")
	card := createCard(t, src, l.ID, "A")
	archived := createCard(t, src, l.ID, "B")
	_, err := src.CardLabels().Attach(ctx, card.ID, label.ID)
	require.NoError(t, err)
	_, err = src.Subtasks().Create(ctx, types.NewSubtask{CardID: card.ID, Value: "step"})
	require.NoError(t, err)
	require.NoError(t, src.Cards().Archive(ctx, archived.ID))

	dir := t.TempDir()
	require.NoError(t, src.Export(ctx, dir))
	for _, tf := range tableFiles {
		_, err := os.Stat(filepath.Join(dir, tf.file))
		assert.NoError(t, err, tf.file)
	}

	dst := setupBackend(t)
	createProject(t, dst, "replaced")
	require.NoError(t, dst.Import(ctx, dir))

	projects, err := dst.Projects().List(ctx, true)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Home", projects[0].Title)

	want, err := src.ProjectView(ctx, p.ID)
	require.NoError(t, err)
	got, err := dst.ProjectView(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	gotArchived, err := dst.Cards().Get(ctx, archived.ID)
	require.NoError(t, err)
	assert.True(t, gotArchived.Archived)
	requireDense(t, dst)
}

func TestImport_CompactsPositions(t *testing.T) {
	b := setupBackend(t)
	dir := t.TempDir()
	writeFile(t, dir, "project.jsonl",
		`{"id":"p2","title":"B","description":"","position":7,"archived":0,"created_at":"2024-01-01T00:00:00.000000Z","updated_at":"2024-01-01T00:00:00.000000Z"}`+"\n"+
			`{"id":"p1","title":"A","description":"","position":3,"archived":false,"created_at":"2024-01-01T00:00:00.000000Z","updated_at":"2024-01-01T00:00:00.000000Z","extra":"ignored"}`+"\n")

	require.NoError(t, b.Import(context.Background(), dir))

	projects, err := b.Projects().List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "A", projects[0].Title)
	assert.Equal(t, 0, projects[0].Position)
	assert.Equal(t, 1, projects[1].Position)
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "malformed line",
			file:    "project.jsonl",
			content: "{not json\n",
			wantErr: types.ErrValidation,
		},
		{
			name: "dangling reference",
			file: "project_list.jsonl",
			content: `{"id":"l1","project_id":"nope","title":"Todo","position":0,"archived":0,` +
				`"created_at":"2024-01-01T00:00:00.000000Z","updated_at":"2024-01-01T00:00:00.000000Z"}` + "\n",
			wantErr: types.ErrReferentialViolation,
		},
		{
			name: "unparsable timestamp",
			file: "project.jsonl",
			content: `{"id":"p1","title":"Home","position":0,"archived":0,` +
				`"created_at":"yesterday","updated_at":"2024-01-01T00:00:00.000000Z"}` + "\n",
			wantErr: types.ErrValidation,
		},
		{
			name: "invalid label color",
			file: "project_label.jsonl",
			content: `{"id":"lb1","project_id":"keep","title":"bug","color":"chartreuse","position":0,"archived":0,` +
				`"created_at":"2024-01-01T00:00:00.000000Z","updated_at":"2024-01-01T00:00:00.000000Z"}` + "\n",
			wantErr: types.ErrValidation,
		},
		{
			name:    "empty title",
			file:    "project.jsonl",
			content: `{"id":"p1","title":"","position":0,"archived":0,"created_at":"x","updated_at":"x"}` + "\n",
			wantErr: types.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			ctx := context.Background()
			keep := createProject(t, b, "keep")
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			assert.ErrorIs(t, b.Import(ctx, dir), tt.wantErr)

			_, err := b.Projects().Get(ctx, keep.ID)
			assert.NoError(t, err, "failed import leaves data untouched")
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestImport_MissingDirectory(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	keep := createProject(t, b, "keep")

	err := b.Import(ctx, filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = b.Projects().Get(ctx, keep.ID)
	assert.NoError(t, err)
}

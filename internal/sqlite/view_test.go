package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func TestProjectView(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	todo := createList(t, b, p.ID, "Todo")
	done := createList(t, b, p.ID, "Done")
	bug := createLabel(t, b, p.ID, "bug")

	day := func(d int) *time.Time {
		t := time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
		return &t
	}
	mk := func(listID, title string, start, due *time.Time) *types.Card {
		c, err := b.Cards().Create(ctx, types.NewCard{ListID: listID, Title: title, StartDate: start, DueDate: due})
		require.NoError(t, err)
		return c
	}
	overdue := mk(todo.ID, "overdue", nil, day(9))
	mk(todo.ID, "soon", nil, day(12))
	mk(todo.ID, "started", day(1), day(20))
	mk(done.ID, "plain", nil, nil)

	_, err := b.CardLabels().Attach(ctx, overdue.ID, bug.ID)
	require.NoError(t, err)
	s1, err := b.Subtasks().Create(ctx, types.NewSubtask{CardID: overdue.ID, Value: "a"})
	require.NoError(t, err)
	_, err = b.Subtasks().Create(ctx, types.NewSubtask{CardID: overdue.ID, Value: "b"})
	require.NoError(t, err)
	_, err = b.Subtasks().SetCompleted(ctx, s1.ID, true)
	require.NoError(t, err)

	view, err := b.ProjectView(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", view.Project.Title)
	require.Len(t, view.Labels, 1)
	require.Len(t, view.Lists, 2)
	assert.Equal(t, 4, view.CardCount())

	cards := view.Lists[0].Cards
	require.Len(t, cards, 3)
	assert.Equal(t, types.StatusOverdue, cards[0].Status)
	assert.Equal(t, types.StatusDueSoon, cards[1].Status)
	assert.Equal(t, types.StatusInProgress, cards[2].Status)
	assert.Equal(t, types.StatusDefault, view.Lists[1].Cards[0].Status)

	require.Len(t, cards[0].Labels, 1)
	assert.Equal(t, "bug", cards[0].Labels[0].Title)
	assert.Equal(t, 1, cards[0].SubtasksDone)
	assert.Equal(t, 2, cards[0].SubtasksTotal)
	assert.Empty(t, cards[1].Labels)
}

func TestProjectView_NotFound(t *testing.T) {
	b := setupBackend(t)
	_, err := b.ProjectView(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestOverview(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	createProject(t, b, "A")
	hidden := createProject(t, b, "B")
	createProject(t, b, "C")
	require.NoError(t, b.Projects().Archive(ctx, hidden.ID))

	views, err := b.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "A", views[0].Project.Title)
	assert.Equal(t, "C", views[1].Project.Title)
	assert.Equal(t, 1, views[1].Project.Position)
}

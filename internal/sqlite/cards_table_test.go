package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func TestCardCreate(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	l := createList(t, b, p.ID, "Todo")
	due := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)
	reminder := 2 * time.Hour

	c, err := b.Cards().Create(ctx, types.NewCard{
		ListID:      l.ID,
		Title:       "Ship",
		Description: "**now**",
		Important:   true,
		DueDate:     &due,
		Reminder:    &reminder,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, p.ID, c.ProjectID, "project copied from the list")
	assert.True(t, c.Important)
	require.NotNil(t, c.DueDate)
	assert.True(t, c.DueDate.Equal(due))
	require.NotNil(t, c.Reminder)
	assert.Equal(t, reminder, *c.Reminder)
	assert.Nil(t, c.StartDate)
	assert.Equal(t, types.StatusDueSoon, c.Status(testNow, 3))
}

func TestCardCreate_ProjectMismatch(t *testing.T) {
	b := setupBackend(t)
	p := createProject(t, b, "Home")
	other := createProject(t, b, "Work")
	l := createList(t, b, p.ID, "Todo")

	_, err := b.Cards().Create(context.Background(), types.NewCard{ListID: l.ID, ProjectID: other.ID, Title: "A"})
	assert.ErrorIs(t, err, types.ErrReferentialViolation)
}

func TestCardUpdate(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	l := createList(t, b, p.ID, "Todo")
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	c, err := b.Cards().Create(ctx, types.NewCard{ListID: l.ID, Title: "A", StartDate: &start})
	require.NoError(t, err)

	title := "B"
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := b.Cards().Update(ctx, c.ID, types.CardUpdate{Title: &title, DueDate: &due, ClearStartDate: true})
	require.NoError(t, err)
	assert.Equal(t, "B", got.Title)
	assert.Nil(t, got.StartDate)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))

	empty := ""
	_, err = b.Cards().Update(ctx, c.ID, types.CardUpdate{Title: &empty})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = b.Cards().Update(ctx, "missing", types.CardUpdate{Title: &title})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCardFlags(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	l := createList(t, b, p.ID, "Todo")
	c := createCard(t, b, l.ID, "A")

	got, err := b.Cards().SetCompleted(ctx, c.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, types.StatusCompleted, got.Status(testNow, 3))

	got, err = b.Cards().SetImportant(ctx, c.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Important)
	assert.True(t, got.Completed)
}

func TestCardMove_AcrossLists(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	todo := createList(t, b, p.ID, "Todo")
	done := createList(t, b, p.ID, "Done")
	a := createCard(t, b, todo.ID, "A")
	createCard(t, b, todo.ID, "B")
	createCard(t, b, done.ID, "X")

	moved, err := b.Cards().Move(ctx, a.ID, done.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, done.ID, moved.ListID)
	assert.Equal(t, p.ID, moved.ProjectID)

	assert.Equal(t, []string{"B"}, cardTitles(t, b, todo.ID))
	assert.Equal(t, []string{"A", "X"}, cardTitles(t, b, done.ID))
	requireDense(t, b)

	_, err = b.Cards().Move(ctx, a.ID, todo.ID, 5)
	assert.ErrorIs(t, err, types.ErrInvalidPosition)
	assert.Equal(t, []string{"A", "X"}, cardTitles(t, b, done.ID), "failed move changes nothing")
}

func TestCardMove_OtherProject(t *testing.T) {
	b := setupBackend(t)
	p := createProject(t, b, "Home")
	other := createProject(t, b, "Work")
	l := createList(t, b, p.ID, "Todo")
	foreign := createList(t, b, other.ID, "Todo")
	c := createCard(t, b, l.ID, "A")

	_, err := b.Cards().Move(context.Background(), c.ID, foreign.ID, 0)
	assert.ErrorIs(t, err, types.ErrReferentialViolation)
}

func TestCardMoveAdjacent(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	todo := createList(t, b, p.ID, "Todo")
	doing := createList(t, b, p.ID, "Doing")
	createCard(t, b, doing.ID, "X")
	a := createCard(t, b, todo.ID, "A")

	moved, err := b.Cards().MoveAdjacent(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, doing.ID, moved.ListID)
	assert.Equal(t, []string{"X", "A"}, cardTitles(t, b, doing.ID), "appended at the end")

	_, err = b.Cards().MoveAdjacent(ctx, a.ID, 1)
	assert.ErrorIs(t, err, types.ErrInvalidPosition)

	moved, err = b.Cards().MoveAdjacent(ctx, a.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, todo.ID, moved.ListID)
	requireDense(t, b)
}

func TestCardDueReminders(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	l := createList(t, b, p.ID, "Todo")

	mk := func(title string, due time.Time, reminder time.Duration) *types.Card {
		c, err := b.Cards().Create(ctx, types.NewCard{ListID: l.ID, Title: title, DueDate: &due, Reminder: &reminder})
		require.NoError(t, err)
		return c
	}
	fired := mk("fired", testNow.Add(time.Hour), 2*time.Hour)
	mk("later", testNow.Add(48*time.Hour), time.Hour)
	done := mk("done", testNow.Add(time.Hour), 2*time.Hour)
	_, err := b.Cards().SetCompleted(ctx, done.ID, true)
	require.NoError(t, err)
	createCard(t, b, l.ID, "no due date")

	due, err := b.Cards().DueReminders(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, fired.ID, due[0].ID)

	require.NoError(t, b.Lists().Archive(ctx, l.ID))
	due, err = b.Cards().DueReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Empty(t, due)
}

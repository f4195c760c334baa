package sqlite

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func TestCardMove_WithinList(t *testing.T) {
	tests := []struct {
		name string
		from int
		to   int
		want []string
	}{
		{"first to third", 0, 2, []string{"B", "C", "A", "D"}},
		{"last to first", 3, 0, []string{"D", "A", "B", "C"}},
		{"second to last", 1, 3, []string{"A", "C", "D", "B"}},
		{"in place", 2, 2, []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			p := createProject(t, b, "Home")
			l := createList(t, b, p.ID, "Todo")
			var cards []*types.Card
			for _, title := range []string{"A", "B", "C", "D"} {
				cards = append(cards, createCard(t, b, l.ID, title))
			}

			moved, err := b.Cards().Move(context.Background(), cards[tt.from].ID, l.ID, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, moved.Position)
			assert.Equal(t, tt.want, cardTitles(t, b, l.ID))
		})
	}
}

func TestCardMove_InvalidIndex(t *testing.T) {
	b := setupBackend(t)
	p := createProject(t, b, "Home")
	l := createList(t, b, p.ID, "Todo")
	a := createCard(t, b, l.ID, "A")
	createCard(t, b, l.ID, "B")

	for _, idx := range []int{-1, 2, 10} {
		_, err := b.Cards().Move(context.Background(), a.ID, l.ID, idx)
		assert.ErrorIs(t, err, types.ErrInvalidPosition, "index %d", idx)
	}
	assert.Equal(t, []string{"A", "B"}, cardTitles(t, b, l.ID))
}

func TestCreate_AtIndex(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	l := createList(t, b, p.ID, "Todo")
	createCard(t, b, l.ID, "A")
	createCard(t, b, l.ID, "C")

	c, err := b.Cards().Create(ctx, types.NewCard{ListID: l.ID, Title: "B", Index: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Position)

	_, err = b.Cards().Create(ctx, types.NewCard{ListID: l.ID, Title: "Z", Index: intPtr(0)})
	require.NoError(t, err)
	_, err = b.Cards().Create(ctx, types.NewCard{ListID: l.ID, Title: "E", Index: intPtr(4)})
	require.NoError(t, err)

	assert.Equal(t, []string{"Z", "A", "B", "C", "E"}, cardTitles(t, b, l.ID))

	_, err = b.Cards().Create(ctx, types.NewCard{ListID: l.ID, Title: "X", Index: intPtr(6)})
	assert.ErrorIs(t, err, types.ErrInvalidPosition)
	_, err = b.Cards().Create(ctx, types.NewCard{ListID: l.ID, Title: "X", Index: intPtr(-1)})
	assert.ErrorIs(t, err, types.ErrInvalidPosition)
}

func TestProjectMove(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	a := createProject(t, b, "A")
	createProject(t, b, "B")
	createProject(t, b, "C")

	_, err := b.Projects().Move(ctx, a.ID, 2)
	require.NoError(t, err)

	projects, err := b.Projects().List(ctx, false)
	require.NoError(t, err)
	var titles []string
	for i, p := range projects {
		titles = append(titles, p.Title)
		assert.Equal(t, i, p.Position)
	}
	assert.Equal(t, []string{"B", "C", "A"}, titles)
}

func TestArchiveClosesGap(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")
	l := createList(t, b, p.ID, "Todo")
	createCard(t, b, l.ID, "A")
	bc := createCard(t, b, l.ID, "B")
	createCard(t, b, l.ID, "C")

	require.NoError(t, b.Cards().Archive(ctx, bc.ID))
	assert.Equal(t, []string{"A", "C"}, cardTitles(t, b, l.ID))

	require.NoError(t, b.Cards().Restore(ctx, bc.ID))
	assert.Equal(t, []string{"A", "C", "B"}, cardTitles(t, b, l.ID), "restore appends")
	requireDense(t, b)
}

// TestDensityUnderRandomOperations drives a seeded random mix of creates,
// moves, cross-list moves, archives, restores and deletes and checks after
// every step that each scope stays dense.
func TestDensityUnderRandomOperations(t *testing.T) {
	b := setupBackend(t, func(c *types.Config) { c.MaxLists = 0 })
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	p := createProject(t, b, "Home")
	lists := []*types.List{
		createList(t, b, p.ID, "Todo"),
		createList(t, b, p.ID, "Doing"),
		createList(t, b, p.ID, "Done"),
	}
	var cards []string
	archived := map[string]bool{}

	pickActive := func() (string, bool) {
		var active []string
		for _, id := range cards {
			if !archived[id] {
				active = append(active, id)
			}
		}
		if len(active) == 0 {
			return "", false
		}
		return active[rng.Intn(len(active))], true
	}

	for step := 0; step < 200; step++ {
		list := lists[rng.Intn(len(lists))]
		switch op := rng.Intn(6); op {
		case 0, 1:
			n, err := b.Cards().ByList(ctx, list.ID, false)
			require.NoError(t, err)
			c, err := b.Cards().Create(ctx, types.NewCard{ListID: list.ID, Title: "card", Index: intPtr(rng.Intn(len(n) + 1))})
			require.NoError(t, err)
			cards = append(cards, c.ID)
		case 2:
			id, ok := pickActive()
			if !ok {
				continue
			}
			n, err := b.Cards().ByList(ctx, list.ID, false)
			require.NoError(t, err)
			c, err := b.Cards().Get(ctx, id)
			require.NoError(t, err)
			limit := len(n)
			if c.ListID == list.ID {
				limit--
			}
			_, err = b.Cards().Move(ctx, id, list.ID, rng.Intn(limit+1))
			require.NoError(t, err)
		case 3:
			id, ok := pickActive()
			if !ok {
				continue
			}
			require.NoError(t, b.Cards().Archive(ctx, id))
			archived[id] = true
		case 4:
			for id := range archived {
				if archived[id] {
					require.NoError(t, b.Cards().Restore(ctx, id))
					archived[id] = false
					break
				}
			}
		case 5:
			id, ok := pickActive()
			if !ok {
				continue
			}
			require.NoError(t, b.Cards().Delete(ctx, id))
			for i, c := range cards {
				if c == id {
					cards = append(cards[:i], cards[i+1:]...)
					break
				}
			}
		}
		requireDense(t, b)
	}
}

package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func TestCardLabelAttach(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend, card *types.Card, label *types.Label)
	}{
		{
			name: "attach creates an active association",
			check: func(t *testing.T, b *Backend, card *types.Card, label *types.Label) {
				cl, err := b.CardLabels().Attach(context.Background(), card.ID, label.ID)
				require.NoError(t, err)
				assert.Equal(t, card.ProjectID, cl.ProjectID)
				assert.False(t, cl.Archived)
			},
		},
		{
			name: "duplicate active pair fails",
			check: func(t *testing.T, b *Backend, card *types.Card, label *types.Label) {
				ctx := context.Background()
				_, err := b.CardLabels().Attach(ctx, card.ID, label.ID)
				require.NoError(t, err)
				_, err = b.CardLabels().Attach(ctx, card.ID, label.ID)
				assert.ErrorIs(t, err, types.ErrDuplicateAssociation)
			},
		},
		{
			name: "attaching a detached pair restores it",
			check: func(t *testing.T, b *Backend, card *types.Card, label *types.Label) {
				ctx := context.Background()
				first, err := b.CardLabels().Attach(ctx, card.ID, label.ID)
				require.NoError(t, err)
				require.NoError(t, b.CardLabels().Detach(ctx, card.ID, label.ID))

				active, err := b.CardLabels().ByCard(ctx, card.ID, false)
				require.NoError(t, err)
				assert.Empty(t, active)

				again, err := b.CardLabels().Attach(ctx, card.ID, label.ID)
				require.NoError(t, err)
				assert.Equal(t, first.ID, again.ID)
				assert.False(t, again.Archived)
			},
		},
		{
			name: "label from another project fails",
			check: func(t *testing.T, b *Backend, card *types.Card, label *types.Label) {
				other := createProject(t, b, "Work")
				foreign := createLabel(t, b, other.ID, "bug")
				_, err := b.CardLabels().Attach(context.Background(), card.ID, foreign.ID)
				assert.ErrorIs(t, err, types.ErrReferentialViolation)
			},
		},
		{
			name: "archived label fails",
			check: func(t *testing.T, b *Backend, card *types.Card, label *types.Label) {
				ctx := context.Background()
				require.NoError(t, b.Labels().Archive(ctx, label.ID))
				_, err := b.CardLabels().Attach(ctx, card.ID, label.ID)
				assert.ErrorIs(t, err, types.ErrValidation)
			},
		},
		{
			name: "detach of a missing pair",
			check: func(t *testing.T, b *Backend, card *types.Card, label *types.Label) {
				err := b.CardLabels().Detach(context.Background(), card.ID, label.ID)
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
		{
			name: "delete removes the association only",
			check: func(t *testing.T, b *Backend, card *types.Card, label *types.Label) {
				ctx := context.Background()
				cl, err := b.CardLabels().Attach(ctx, card.ID, label.ID)
				require.NoError(t, err)
				require.NoError(t, b.CardLabels().Delete(ctx, cl.ID))
				_, err = b.CardLabels().Get(ctx, cl.ID)
				assert.ErrorIs(t, err, types.ErrNotFound)
				_, err = b.Labels().Get(ctx, label.ID)
				assert.NoError(t, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			p := createProject(t, b, "Home")
			l := createList(t, b, p.ID, "Todo")
			tt.check(t, b, createCard(t, b, l.ID, "A"), createLabel(t, b, p.ID, "bug"))
		})
	}
}

func TestLabelCRUD(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	p := createProject(t, b, "Home")

	_, err := b.Labels().Create(ctx, types.NewLabel{ProjectID: p.ID, Title: "bug", Color: "not-a-color"})
	assert.ErrorIs(t, err, types.ErrValidation)

	bug, err := b.Labels().Create(ctx, types.NewLabel{ProjectID: p.ID, Title: "bug", Color: "#FF0000"})
	require.NoError(t, err)
	ui, err := b.Labels().Create(ctx, types.NewLabel{ProjectID: p.ID, Title: "ui", Color: "42", Index: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, ui.Position)

	color := "brightBlue"
	got, err := b.Labels().Update(ctx, bug.ID, types.LabelUpdate{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "brightBlue", got.Color)
	assert.Equal(t, "bug", got.Title)

	_, err = b.Labels().Move(ctx, bug.ID, 0)
	require.NoError(t, err)
	labels, err := b.Labels().ByProject(ctx, p.ID, false)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "bug", labels[0].Title)
	requireDense(t, b)
}

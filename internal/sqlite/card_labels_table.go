package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.CardLabelStore = (*cardLabelsTable)(nil)

const cardLabelColumns = "id, project_id, card_id, label_id, archived, created_at, updated_at"

// cardLabelsTable implements types.CardLabelStore. Associations are
// unordered; a (card, label) pair is stored at most once.
type cardLabelsTable struct {
	b *Backend
}

func (t *cardLabelsTable) Attach(ctx context.Context, cardID, labelID string) (*types.CardLabel, error) {
	var out *types.CardLabel
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		card, err := getCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		label, err := getLabel(ctx, tx, labelID)
		if err != nil {
			return err
		}
		if card.ProjectID != label.ProjectID {
			return fmt.Errorf("%w: card %s and label %s belong to different projects",
				types.ErrReferentialViolation, cardID, labelID)
		}
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindCard, ID: cardID}); err != nil {
			return err
		}
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindLabel, ID: labelID}); err != nil {
			return err
		}

		existing, err := findCardLabel(ctx, tx, cardID, labelID)
		switch {
		case errors.Is(err, types.ErrNotFound):
		case err != nil:
			return err
		case !existing.Archived:
			return fmt.Errorf("%w: label %s already on card %s", types.ErrDuplicateAssociation, labelID, cardID)
		default:
			if err := t.b.restore(ctx, tx, types.Ref{Kind: types.KindCardLabel, ID: existing.ID}); err != nil {
				return err
			}
			out, err = getCardLabel(ctx, tx, existing.ID)
			return err
		}

		id := newUUID()
		now := formatTime(t.b.timestamp())
		_, err = tx.ExecContext(ctx,
			"INSERT INTO card_label ("+cardLabelColumns+") VALUES (?, ?, ?, ?, 0, ?, ?)",
			id, card.ProjectID, cardID, labelID, now, now)
		if err != nil {
			return storageErr("insert card label", err)
		}
		out, err = getCardLabel(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("attach label: %w", err)
	}
	return out, nil
}

func (t *cardLabelsTable) Detach(ctx context.Context, cardID, labelID string) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		cl, err := findCardLabel(ctx, tx, cardID, labelID)
		if err != nil {
			return err
		}
		return t.b.archive(ctx, tx, types.Ref{Kind: types.KindCardLabel, ID: cl.ID})
	})
	if err != nil {
		return fmt.Errorf("detach label: %w", err)
	}
	return nil
}

func (t *cardLabelsTable) Get(ctx context.Context, id string) (*types.CardLabel, error) {
	var out *types.CardLabel
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = getCardLabel(ctx, tx, id)
		return err
	})
	return out, err
}

func (t *cardLabelsTable) ByCard(ctx context.Context, cardID string, includeArchived bool) ([]*types.CardLabel, error) {
	query := "SELECT " + cardLabelColumns + " FROM card_label WHERE card_id = ?"
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY created_at, id"

	var out []*types.CardLabel
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		if _, err := getCard(ctx, tx, cardID); err != nil {
			return err
		}
		var err error
		out, err = queryCardLabels(ctx, tx, query, cardID)
		return err
	})
	return out, err
}

func (t *cardLabelsTable) Archive(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "archive", id, t.b.archive)
}

func (t *cardLabelsTable) Restore(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "restore", id, t.b.restore)
}

func (t *cardLabelsTable) Delete(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "delete", id, t.b.remove)
}

func (t *cardLabelsTable) lifecycle(ctx context.Context, op, id string, fn lifecycleFunc) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		return fn(ctx, tx, types.Ref{Kind: types.KindCardLabel, ID: id})
	})
	if err != nil {
		return fmt.Errorf("%s card label: %w", op, err)
	}
	return nil
}

func findCardLabel(ctx context.Context, q querier, cardID, labelID string) (*types.CardLabel, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+cardLabelColumns+" FROM card_label WHERE card_id = ? AND label_id = ?", cardID, labelID)
	cl, err := hydrateCardLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: label %s on card %s", types.ErrNotFound, labelID, cardID)
	}
	if err != nil {
		return nil, storageErr("find card label", err)
	}
	return cl, nil
}

func getCardLabel(ctx context.Context, q querier, id string) (*types.CardLabel, error) {
	row := q.QueryRowContext(ctx, "SELECT "+cardLabelColumns+" FROM card_label WHERE id = ?", id)
	cl, err := hydrateCardLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: card label %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get card label", err)
	}
	return cl, nil
}

func queryCardLabels(ctx context.Context, q querier, query string, args ...any) ([]*types.CardLabel, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query card labels", err)
	}
	defer rows.Close()

	var out []*types.CardLabel
	for rows.Next() {
		cl, err := hydrateCardLabel(rows)
		if err != nil {
			return nil, storageErr("scan card label", err)
		}
		out = append(out, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query card labels", err)
	}
	return out, nil
}

func hydrateCardLabel(row rowScanner) (*types.CardLabel, error) {
	var (
		cl                   types.CardLabel
		archived             int
		createdAt, updatedAt string
	)
	if err := row.Scan(&cl.ID, &cl.ProjectID, &cl.CardID, &cl.LabelID, &archived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	cl.Archived = archived == 1
	var err error
	if cl.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if cl.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &cl, nil
}

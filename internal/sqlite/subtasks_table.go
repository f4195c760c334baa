package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.SubtaskStore = (*subtasksTable)(nil)

const subtaskColumns = "id, project_id, card_id, value, completed, position, archived, created_at, updated_at"

// subtasksTable implements types.SubtaskStore.
type subtasksTable struct {
	b *Backend
}

func (t *subtasksTable) Create(ctx context.Context, s types.NewSubtask) (*types.Subtask, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	var out *types.Subtask
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindCard, ID: s.CardID}); err != nil {
			return err
		}
		card, err := getCard(ctx, tx, s.CardID)
		if err != nil {
			return err
		}
		id := newUUID()
		pos, err := insertAt(ctx, tx, scope{kind: types.KindSubtask, parentID: card.ID}, id, s.Index)
		if err != nil {
			return err
		}
		now := formatTime(t.b.timestamp())
		_, err = tx.ExecContext(ctx,
			"INSERT INTO card_subtask ("+subtaskColumns+") VALUES (?, ?, ?, ?, 0, ?, 0, ?, ?)",
			id, card.ProjectID, card.ID, s.Value, pos, now, now)
		if err != nil {
			return storageErr("insert subtask", err)
		}
		out, err = getSubtask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	return out, nil
}

func (t *subtasksTable) Get(ctx context.Context, id string) (*types.Subtask, error) {
	var out *types.Subtask
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = getSubtask(ctx, tx, id)
		return err
	})
	return out, err
}

func (t *subtasksTable) ByCard(ctx context.Context, cardID string, includeArchived bool) ([]*types.Subtask, error) {
	query := "SELECT " + subtaskColumns + " FROM card_subtask WHERE card_id = ?"
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY archived, position, created_at"

	var out []*types.Subtask
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		if _, err := getCard(ctx, tx, cardID); err != nil {
			return err
		}
		var err error
		out, err = querySubtasks(ctx, tx, query, cardID)
		return err
	})
	return out, err
}

func (t *subtasksTable) Update(ctx context.Context, id, value string) (*types.Subtask, error) {
	if err := types.ValidateValue(value); err != nil {
		return nil, fmt.Errorf("update subtask: %w", err)
	}
	return t.set(ctx, "update subtask", id, "value = ?", value)
}

func (t *subtasksTable) SetCompleted(ctx context.Context, id string, completed bool) (*types.Subtask, error) {
	return t.set(ctx, "complete subtask", id, "completed = ?", boolInt(completed))
}

func (t *subtasksTable) set(ctx context.Context, op, id, assign string, value any) (*types.Subtask, error) {
	var out *types.Subtask
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if _, err := getSubtask(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE card_subtask SET "+assign+", updated_at = ? WHERE id = ?",
			value, formatTime(t.b.timestamp()), id)
		if err != nil {
			return storageErr(op, err)
		}
		out, err = getSubtask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (t *subtasksTable) Move(ctx context.Context, id string, index int) (*types.Subtask, error) {
	var out *types.Subtask
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindSubtask, ID: id}); err != nil {
			return err
		}
		s, err := getSubtask(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := moveTo(ctx, tx, scope{kind: types.KindSubtask, parentID: s.CardID}, id, index); err != nil {
			return err
		}
		if err := touch(ctx, tx, types.KindSubtask, id, t.b.timestamp()); err != nil {
			return err
		}
		out, err = getSubtask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move subtask: %w", err)
	}
	return out, nil
}

func (t *subtasksTable) Archive(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "archive", id, t.b.archive)
}

func (t *subtasksTable) Restore(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "restore", id, t.b.restore)
}

func (t *subtasksTable) Delete(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "delete", id, t.b.remove)
}

func (t *subtasksTable) lifecycle(ctx context.Context, op, id string, fn lifecycleFunc) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		return fn(ctx, tx, types.Ref{Kind: types.KindSubtask, ID: id})
	})
	if err != nil {
		return fmt.Errorf("%s subtask: %w", op, err)
	}
	return nil
}

func getSubtask(ctx context.Context, q querier, id string) (*types.Subtask, error) {
	row := q.QueryRowContext(ctx, "SELECT "+subtaskColumns+" FROM card_subtask WHERE id = ?", id)
	s, err := hydrateSubtask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: subtask %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get subtask", err)
	}
	return s, nil
}

func querySubtasks(ctx context.Context, q querier, query string, args ...any) ([]*types.Subtask, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query subtasks", err)
	}
	defer rows.Close()

	var out []*types.Subtask
	for rows.Next() {
		s, err := hydrateSubtask(rows)
		if err != nil {
			return nil, storageErr("scan subtask", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query subtasks", err)
	}
	return out, nil
}

func hydrateSubtask(row rowScanner) (*types.Subtask, error) {
	var (
		s                    types.Subtask
		completed, archived  int
		createdAt, updatedAt string
	)
	err := row.Scan(&s.ID, &s.ProjectID, &s.CardID, &s.Value, &completed, &s.Position, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	s.Completed = completed == 1
	s.Archived = archived == 1
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

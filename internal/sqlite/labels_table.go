package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.LabelStore = (*labelsTable)(nil)

const labelColumns = "id, project_id, title, color, position, archived, created_at, updated_at"

// labelsTable implements types.LabelStore.
type labelsTable struct {
	b *Backend
}

func (t *labelsTable) Create(ctx context.Context, l types.NewLabel) (*types.Label, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("create label: %w", err)
	}
	var out *types.Label
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindProject, ID: l.ProjectID}); err != nil {
			return err
		}
		id := newUUID()
		pos, err := insertAt(ctx, tx, scope{kind: types.KindLabel, parentID: l.ProjectID}, id, l.Index)
		if err != nil {
			return err
		}
		now := formatTime(t.b.timestamp())
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_label (id, project_id, title, color, position, archived, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
			id, l.ProjectID, l.Title, l.Color, pos, now, now)
		if err != nil {
			return storageErr("insert label", err)
		}
		out, err = getLabel(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create label: %w", err)
	}
	return out, nil
}

func (t *labelsTable) Get(ctx context.Context, id string) (*types.Label, error) {
	var out *types.Label
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = getLabel(ctx, tx, id)
		return err
	})
	return out, err
}

func (t *labelsTable) ByProject(ctx context.Context, projectID string, includeArchived bool) ([]*types.Label, error) {
	query := "SELECT " + labelColumns + " FROM project_label WHERE project_id = ?"
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY archived, position, created_at"

	var out []*types.Label
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		if _, err := getProject(ctx, tx, projectID); err != nil {
			return err
		}
		var err error
		out, err = queryLabels(ctx, tx, query, projectID)
		return err
	})
	return out, err
}

func (t *labelsTable) Update(ctx context.Context, id string, u types.LabelUpdate) (*types.Label, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("update label: %w", err)
	}
	var out *types.Label
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		l, err := getLabel(ctx, tx, id)
		if err != nil {
			return err
		}
		if u.Title != nil {
			l.Title = *u.Title
		}
		if u.Color != nil {
			l.Color = *u.Color
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE project_label SET title = ?, color = ?, updated_at = ? WHERE id = ?",
			l.Title, l.Color, formatTime(t.b.timestamp()), id)
		if err != nil {
			return storageErr("update label", err)
		}
		out, err = getLabel(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update label: %w", err)
	}
	return out, nil
}

func (t *labelsTable) Move(ctx context.Context, id string, index int) (*types.Label, error) {
	var out *types.Label
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindLabel, ID: id}); err != nil {
			return err
		}
		l, err := getLabel(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := moveTo(ctx, tx, scope{kind: types.KindLabel, parentID: l.ProjectID}, id, index); err != nil {
			return err
		}
		if err := touch(ctx, tx, types.KindLabel, id, t.b.timestamp()); err != nil {
			return err
		}
		out, err = getLabel(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move label: %w", err)
	}
	return out, nil
}

// Archive hides the label and, through the cascade, its associations.
// Cards keep their other labels.
func (t *labelsTable) Archive(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "archive", id, t.b.archive)
}

func (t *labelsTable) Restore(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "restore", id, t.b.restore)
}

func (t *labelsTable) Delete(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "delete", id, t.b.remove)
}

func (t *labelsTable) lifecycle(ctx context.Context, op, id string, fn lifecycleFunc) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		return fn(ctx, tx, types.Ref{Kind: types.KindLabel, ID: id})
	})
	if err != nil {
		return fmt.Errorf("%s label: %w", op, err)
	}
	return nil
}

func getLabel(ctx context.Context, q querier, id string) (*types.Label, error) {
	row := q.QueryRowContext(ctx, "SELECT "+labelColumns+" FROM project_label WHERE id = ?", id)
	l, err := hydrateLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: label %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get label", err)
	}
	return l, nil
}

func queryLabels(ctx context.Context, q querier, query string, args ...any) ([]*types.Label, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query labels", err)
	}
	defer rows.Close()

	var out []*types.Label
	for rows.Next() {
		l, err := hydrateLabel(rows)
		if err != nil {
			return nil, storageErr("scan label", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query labels", err)
	}
	return out, nil
}

func hydrateLabel(row rowScanner) (*types.Label, error) {
	var (
		l                    types.Label
		archived             int
		createdAt, updatedAt string
	)
	if err := row.Scan(&l.ID, &l.ProjectID, &l.Title, &l.Color, &l.Position, &archived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.Archived = archived == 1
	var err error
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

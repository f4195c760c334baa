package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.ListStore = (*listsTable)(nil)

const listColumns = "id, project_id, title, position, archived, created_at, updated_at"

// listsTable implements types.ListStore. It enforces the per-project
// max_lists limit on create and restore.
type listsTable struct {
	b *Backend
}

func (t *listsTable) Create(ctx context.Context, l types.NewList) (*types.List, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	var out *types.List
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindProject, ID: l.ProjectID}); err != nil {
			return err
		}
		id := newUUID()
		s := scope{kind: types.KindList, parentID: l.ProjectID}
		if err := t.checkLimit(ctx, tx, s, id); err != nil {
			return err
		}
		pos, err := insertAt(ctx, tx, s, id, l.Index)
		if err != nil {
			return err
		}
		now := formatTime(t.b.timestamp())
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_list (id, project_id, title, position, archived, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 0, ?, ?)`,
			id, l.ProjectID, l.Title, pos, now, now)
		if err != nil {
			return storageErr("insert list", err)
		}
		out, err = getList(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	return out, nil
}

// checkLimit fails when the scope already holds max_lists active lists.
// Zero means unlimited.
func (t *listsTable) checkLimit(ctx context.Context, q querier, s scope, exclude string) error {
	limit := t.b.config.MaxLists
	if limit <= 0 {
		return nil
	}
	n, err := activeCount(ctx, q, s, exclude)
	if err != nil {
		return err
	}
	if n >= limit {
		return fmt.Errorf("%w: project %s already has %d lists (max %d)", types.ErrLimitExceeded, s.parentID, n, limit)
	}
	return nil
}

func (t *listsTable) Get(ctx context.Context, id string) (*types.List, error) {
	var out *types.List
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = getList(ctx, tx, id)
		return err
	})
	return out, err
}

func (t *listsTable) ByProject(ctx context.Context, projectID string, includeArchived bool) ([]*types.List, error) {
	query := "SELECT " + listColumns + " FROM project_list WHERE project_id = ?"
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY archived, position, created_at"

	var out []*types.List
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		if _, err := getProject(ctx, tx, projectID); err != nil {
			return err
		}
		var err error
		out, err = queryLists(ctx, tx, query, projectID)
		return err
	})
	return out, err
}

func (t *listsTable) Update(ctx context.Context, id, title string) (*types.List, error) {
	if err := types.ValidateTitle(title); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	var out *types.List
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if _, err := getList(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE project_list SET title = ?, updated_at = ? WHERE id = ?",
			title, formatTime(t.b.timestamp()), id)
		if err != nil {
			return storageErr("update list", err)
		}
		out, err = getList(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return out, nil
}

func (t *listsTable) Move(ctx context.Context, id string, index int) (*types.List, error) {
	var out *types.List
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindList, ID: id}); err != nil {
			return err
		}
		l, err := getList(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := moveTo(ctx, tx, scope{kind: types.KindList, parentID: l.ProjectID}, id, index); err != nil {
			return err
		}
		if err := touch(ctx, tx, types.KindList, id, t.b.timestamp()); err != nil {
			return err
		}
		out, err = getList(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move list: %w", err)
	}
	return out, nil
}

func (t *listsTable) Archive(ctx context.Context, id string) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		return t.b.archive(ctx, tx, types.Ref{Kind: types.KindList, ID: id})
	})
	if err != nil {
		return fmt.Errorf("archive list: %w", err)
	}
	return nil
}

// Restore re-checks max_lists before the list rejoins its project.
func (t *listsTable) Restore(ctx context.Context, id string) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		l, err := getList(ctx, tx, id)
		if err != nil {
			return err
		}
		if !l.Archived {
			return nil
		}
		if err := t.checkLimit(ctx, tx, scope{kind: types.KindList, parentID: l.ProjectID}, id); err != nil {
			return err
		}
		return t.b.restore(ctx, tx, types.Ref{Kind: types.KindList, ID: id})
	})
	if err != nil {
		return fmt.Errorf("restore list: %w", err)
	}
	return nil
}

func (t *listsTable) Delete(ctx context.Context, id string) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		return t.b.remove(ctx, tx, types.Ref{Kind: types.KindList, ID: id})
	})
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

func getList(ctx context.Context, q querier, id string) (*types.List, error) {
	row := q.QueryRowContext(ctx, "SELECT "+listColumns+" FROM project_list WHERE id = ?", id)
	l, err := hydrateList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: list %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get list", err)
	}
	return l, nil
}

func queryLists(ctx context.Context, q querier, query string, args ...any) ([]*types.List, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query lists", err)
	}
	defer rows.Close()

	var out []*types.List
	for rows.Next() {
		l, err := hydrateList(rows)
		if err != nil {
			return nil, storageErr("scan list", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query lists", err)
	}
	return out, nil
}

func hydrateList(row rowScanner) (*types.List, error) {
	var (
		l                    types.List
		archived             int
		createdAt, updatedAt string
	)
	if err := row.Scan(&l.ID, &l.ProjectID, &l.Title, &l.Position, &archived, &createdAt, &updatedAt); err != nil {
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

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.ProjectStore = (*projectsTable)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const projectColumns = "id, title, description, position, archived, created_at, updated_at"

// projectsTable implements types.ProjectStore.
type projectsTable struct {
	b *Backend
}

func (t *projectsTable) Create(ctx context.Context, p types.NewProject) (*types.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	var out *types.Project
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		id := newUUID()
		pos, err := insertAt(ctx, tx, scope{kind: types.KindProject}, id, p.Index)
		if err != nil {
			return err
		}
		now := formatTime(t.b.timestamp())
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project (id, title, description, position, archived, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 0, ?, ?)`,
			id, p.Title, p.Description, pos, now, now)
		if err != nil {
			return storageErr("insert project", err)
		}
		out, err = getProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return out, nil
}

func (t *projectsTable) Get(ctx context.Context, id string) (*types.Project, error) {
	var out *types.Project
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = getProject(ctx, tx, id)
		return err
	})
	return out, err
}

func (t *projectsTable) List(ctx context.Context, includeArchived bool) ([]*types.Project, error) {
	query := "SELECT " + projectColumns + " FROM project"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY archived, position, created_at"

	var out []*types.Project
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = queryProjects(ctx, tx, query)
		return err
	})
	return out, err
}

func (t *projectsTable) Update(ctx context.Context, id string, u types.ProjectUpdate) (*types.Project, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	var out *types.Project
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		p, err := getProject(ctx, tx, id)
		if err != nil {
			return err
		}
		if u.Title != nil {
			p.Title = *u.Title
		}
		if u.Description != nil {
			p.Description = *u.Description
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE project SET title = ?, description = ?, updated_at = ? WHERE id = ?",
			p.Title, p.Description, formatTime(t.b.timestamp()), id)
		if err != nil {
			return storageErr("update project", err)
		}
		out, err = getProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return out, nil
}

func (t *projectsTable) Move(ctx context.Context, id string, index int) (*types.Project, error) {
	var out *types.Project
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindProject, ID: id}); err != nil {
			return err
		}
		if err := moveTo(ctx, tx, scope{kind: types.KindProject}, id, index); err != nil {
			return err
		}
		if err := touch(ctx, tx, types.KindProject, id, t.b.timestamp()); err != nil {
			return err
		}
		var err error
		out, err = getProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move project: %w", err)
	}
	return out, nil
}

func (t *projectsTable) Archive(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "archive", id, t.b.archive)
}

// Restore reactivates the project and the lists its archive cascaded onto.
// It fails with ErrLimitExceeded when that would leave more than max_lists
// active lists, which happens when a list was restored while the project
// was archived.
func (t *projectsTable) Restore(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "restore", id, func(ctx context.Context, q querier, ref types.Ref) error {
		if err := t.b.restore(ctx, q, ref); err != nil {
			return err
		}
		limit := t.b.config.MaxLists
		if limit <= 0 {
			return nil
		}
		n, err := activeCount(ctx, q, scope{kind: types.KindList, parentID: id}, "")
		if err != nil {
			return err
		}
		if n > limit {
			return fmt.Errorf("%w: project %s would have %d lists (max %d)", types.ErrLimitExceeded, id, n, limit)
		}
		return nil
	})
}

func (t *projectsTable) Delete(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "delete", id, t.b.remove)
}

func (t *projectsTable) lifecycle(ctx context.Context, op, id string, fn lifecycleFunc) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		return fn(ctx, tx, types.Ref{Kind: types.KindProject, ID: id})
	})
	if err != nil {
		return fmt.Errorf("%s project: %w", op, err)
	}
	return nil
}

// lifecycleFunc is the shape of Backend.archive, restore and remove.
type lifecycleFunc func(ctx context.Context, q querier, ref types.Ref) error

func getProject(ctx context.Context, q querier, id string) (*types.Project, error) {
	row := q.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM project WHERE id = ?", id)
	p, err := hydrateProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get project", err)
	}
	return p, nil
}

func queryProjects(ctx context.Context, q querier, query string, args ...any) ([]*types.Project, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query projects", err)
	}
	defer rows.Close()

	var out []*types.Project
	for rows.Next() {
		p, err := hydrateProject(rows)
		if err != nil {
			return nil, storageErr("scan project", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query projects", err)
	}
	return out, nil
}

func hydrateProject(row rowScanner) (*types.Project, error) {
	var (
		p                    types.Project
		archived             int
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Position, &archived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Archived = archived == 1
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// kindInfo describes where an entity kind lives and how it is scoped.
type kindInfo struct {
	table     string
	parentCol string // Empty for projects, which form one root scope.
	ordered   bool
}

var kinds = map[types.Kind]kindInfo{
	types.KindProject:   {table: "project", ordered: true},
	types.KindList:      {table: "project_list", parentCol: "project_id", ordered: true},
	types.KindLabel:     {table: "project_label", parentCol: "project_id", ordered: true},
	types.KindCard:      {table: "project_card", parentCol: "list_id", ordered: true},
	types.KindCardLabel: {table: "card_label", parentCol: "card_id"},
	types.KindSubtask:   {table: "card_subtask", parentCol: "card_id", ordered: true},
}

// scope is one ordered sibling set: all entities of a kind sharing a parent.
type scope struct {
	kind     types.Kind
	parentID string
}

func (s scope) info() kindInfo { return kinds[s.kind] }

// where returns the filter selecting the active siblings of the scope.
func (s scope) where() (string, []any) {
	info := s.info()
	if info.parentCol == "" {
		return "archived = 0", nil
	}
	return info.parentCol + " = ? AND archived = 0", []any{s.parentID}
}

// activeCount returns the number of active siblings, not counting exclude.
func activeCount(ctx context.Context, q querier, s scope, exclude string) (int, error) {
	where, args := s.where()
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s AND id <> ?", s.info().table, where)
	var n int
	if err := q.QueryRowContext(ctx, query, append(args, exclude)...).Scan(&n); err != nil {
		return 0, storageErr("count "+string(s.kind), err)
	}
	return n, nil
}

// insertAt opens a slot at index among the active siblings and returns it.
// A nil index appends. Valid indexes are 0..count inclusive. The row being
// placed (exclude) is not shifted; the caller writes its position.
func insertAt(ctx context.Context, q querier, s scope, exclude string, index *int) (int, error) {
	n, err := activeCount(ctx, q, s, exclude)
	if err != nil {
		return 0, err
	}
	if index == nil {
		return n, nil
	}
	idx := *index
	if idx < 0 || idx > n {
		return 0, fmt.Errorf("%w: index %d outside 0..%d", types.ErrInvalidPosition, idx, n)
	}

	where, args := s.where()
	query := fmt.Sprintf("UPDATE %s SET position = position + 1 WHERE %s AND position >= ? AND id <> ?",
		s.info().table, where)
	if _, err := q.ExecContext(ctx, query, append(args, idx, exclude)...); err != nil {
		return 0, storageErr("shift "+string(s.kind), err)
	}
	return idx, nil
}

// removeFrom closes the gap left by id, which must already be excluded
// from the active set or is about to be.
func removeFrom(ctx context.Context, q querier, s scope, id string, position int) error {
	where, args := s.where()
	query := fmt.Sprintf("UPDATE %s SET position = position - 1 WHERE %s AND position > ? AND id <> ?",
		s.info().table, where)
	if _, err := q.ExecContext(ctx, query, append(args, position, id)...); err != nil {
		return storageErr("close gap "+string(s.kind), err)
	}
	return nil
}

// moveTo relocates an active row to index within its scope. The index is
// interpreted against the ordering without the row, so 0..count-1 is valid.
func moveTo(ctx context.Context, q querier, s scope, id string, index int) error {
	current, err := positionOf(ctx, q, s.kind, id)
	if err != nil {
		return err
	}
	n, err := activeCount(ctx, q, s, id)
	if err != nil {
		return err
	}
	if index < 0 || index > n {
		return fmt.Errorf("%w: index %d outside 0..%d", types.ErrInvalidPosition, index, n)
	}
	if err := removeFrom(ctx, q, s, id, current); err != nil {
		return err
	}
	idx, err := insertAt(ctx, q, s, id, &index)
	if err != nil {
		return err
	}
	return setPosition(ctx, q, s.kind, id, idx)
}

// moveAcross takes an active row out of one scope and places it in another.
func moveAcross(ctx context.Context, q querier, from, to scope, id string, index *int) (int, error) {
	current, err := positionOf(ctx, q, from.kind, id)
	if err != nil {
		return 0, err
	}
	// Validate the destination before touching the source.
	n, err := activeCount(ctx, q, to, id)
	if err != nil {
		return 0, err
	}
	if index != nil && (*index < 0 || *index > n) {
		return 0, fmt.Errorf("%w: index %d outside 0..%d", types.ErrInvalidPosition, *index, n)
	}
	if err := removeFrom(ctx, q, from, id, current); err != nil {
		return 0, err
	}
	return insertAt(ctx, q, to, id, index)
}

// compact renumbers the active siblings of s to 0..n-1, keeping their
// relative order.
func compact(ctx context.Context, q querier, s scope) error {
	if !s.info().ordered {
		return nil
	}
	where, args := s.where()
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s ORDER BY position, created_at, id", s.info().table, where)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return storageErr("compact "+string(s.kind), err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return storageErr("compact "+string(s.kind), err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return storageErr("compact "+string(s.kind), err)
	}
	rows.Close()

	for i, id := range ids {
		if err := setPosition(ctx, q, s.kind, id, i); err != nil {
			return err
		}
	}
	return nil
}

func positionOf(ctx context.Context, q querier, kind types.Kind, id string) (int, error) {
	query := fmt.Sprintf("SELECT position FROM %s WHERE id = ?", kinds[kind].table)
	var pos int
	err := q.QueryRowContext(ctx, query, id).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %s", types.ErrNotFound, kind, id)
	}
	if err != nil {
		return 0, storageErr("read position", err)
	}
	return pos, nil
}

func setPosition(ctx context.Context, q querier, kind types.Kind, id string, pos int) error {
	query := fmt.Sprintf("UPDATE %s SET position = ? WHERE id = ?", kinds[kind].table)
	if _, err := q.ExecContext(ctx, query, pos, id); err != nil {
		return storageErr("set position", err)
	}
	return nil
}

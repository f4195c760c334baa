package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// relation is one parent-to-child edge of the ownership graph.
type relation struct {
	parent types.Kind
	child  types.Kind
	column string
}

// relations drives archive, restore and delete traversal. A card-label
// association has two parents, so it is reached from cards and labels.
var relations = []relation{
	{parent: types.KindProject, child: types.KindList, column: "project_id"},
	{parent: types.KindProject, child: types.KindLabel, column: "project_id"},
	{parent: types.KindList, child: types.KindCard, column: "list_id"},
	{parent: types.KindCard, child: types.KindCardLabel, column: "card_id"},
	{parent: types.KindCard, child: types.KindSubtask, column: "card_id"},
	{parent: types.KindLabel, child: types.KindCardLabel, column: "label_id"},
}

// owners maps a kind to the kind of its scope parent.
var owners = map[types.Kind]types.Kind{
	types.KindList:      types.KindProject,
	types.KindLabel:     types.KindProject,
	types.KindCard:      types.KindList,
	types.KindCardLabel: types.KindCard,
	types.KindSubtask:   types.KindCard,
}

func childRelations(k types.Kind) []relation {
	var out []relation
	for _, r := range relations {
		if r.parent == k {
			out = append(out, r)
		}
	}
	return out
}

// rowState is the lifecycle-relevant part of a row.
type rowState struct {
	archived bool
	via      sql.NullString
	parentID string
	position int
}

func (s rowState) scope(k types.Kind) scope {
	return scope{kind: k, parentID: s.parentID}
}

func loadState(ctx context.Context, q querier, ref types.Ref) (rowState, error) {
	info, ok := kinds[ref.Kind]
	if !ok {
		return rowState{}, fmt.Errorf("unknown kind %q", ref.Kind)
	}
	parentExpr, posExpr := "''", "0"
	if info.parentCol != "" {
		parentExpr = info.parentCol
	}
	if info.ordered {
		posExpr = "position"
	}
	query := fmt.Sprintf("SELECT archived, archived_via, %s, %s FROM %s WHERE id = ?", parentExpr, posExpr, info.table)

	var st rowState
	var archived int
	err := q.QueryRowContext(ctx, query, ref.ID).Scan(&archived, &st.via, &st.parentID, &st.position)
	if errors.Is(err, sql.ErrNoRows) {
		return rowState{}, fmt.Errorf("%w: %s %s", types.ErrNotFound, ref.Kind, ref.ID)
	}
	if err != nil {
		return rowState{}, storageErr("load "+string(ref.Kind), err)
	}
	st.archived = archived == 1
	return st, nil
}

// requireActive checks that ref exists and that neither it nor any of its
// owners is archived. It guards every write that places a row under ref.
func requireActive(ctx context.Context, q querier, ref types.Ref) error {
	for {
		st, err := loadState(ctx, q, ref)
		if err != nil {
			return err
		}
		if st.archived {
			return fmt.Errorf("%w: parent is archived: %s", types.ErrValidation, ref)
		}
		owner, ok := owners[ref.Kind]
		if !ok {
			return nil
		}
		ref = types.Ref{Kind: owner, ID: st.parentID}
	}
}

// archive marks ref archived, closes its gap and archives every active
// descendant with archived_via set to ref.ID.
func (b *Backend) archive(ctx context.Context, q querier, ref types.Ref) error {
	st, err := loadState(ctx, q, ref)
	if err != nil {
		return err
	}
	info := kinds[ref.Kind]
	now := formatTime(b.timestamp())

	if st.archived {
		if !st.via.Valid {
			return nil
		}
		// Archived by a cascade; the row becomes explicitly archived.
		query := fmt.Sprintf("UPDATE %s SET archived_via = NULL, updated_at = ? WHERE id = ?", info.table)
		if _, err := q.ExecContext(ctx, query, now, ref.ID); err != nil {
			return storageErr("archive "+string(ref.Kind), err)
		}
		return nil
	}

	query := fmt.Sprintf("UPDATE %s SET archived = 1, archived_via = NULL, updated_at = ? WHERE id = ?", info.table)
	if _, err := q.ExecContext(ctx, query, now, ref.ID); err != nil {
		return storageErr("archive "+string(ref.Kind), err)
	}
	if info.ordered {
		if err := removeFrom(ctx, q, st.scope(ref.Kind), ref.ID, st.position); err != nil {
			return err
		}
	}

	n, err := archiveDescendants(ctx, q, ref, ref.ID, now)
	if err != nil {
		return err
	}
	b.logger.Debug("archived", "kind", ref.Kind, "id", ref.ID, "cascaded", n)
	return nil
}

// archiveDescendants archives the active children of parent and recurses
// into every child, archived or not, so rows restored under an archived
// owner are caught too. Returns the number of rows it archived.
func archiveDescendants(ctx context.Context, q querier, parent types.Ref, root, now string) (int, error) {
	total := 0
	for _, rel := range childRelations(parent.Kind) {
		table := kinds[rel.child].table
		query := fmt.Sprintf("UPDATE %s SET archived = 1, archived_via = ?, updated_at = ? WHERE %s = ? AND archived = 0",
			table, rel.column)
		res, err := q.ExecContext(ctx, query, root, now, parent.ID)
		if err != nil {
			return 0, storageErr("archive "+string(rel.child), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		}

		ids, err := childIDs(ctx, q, rel, parent.ID)
		if err != nil {
			return 0, err
		}
		for _, id := range ids {
			n, err := archiveDescendants(ctx, q, types.Ref{Kind: rel.child, ID: id}, root, now)
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}

// restore reactivates ref at the end of its scope, then reactivates the
// descendants its own archive cascaded onto. Rows archived on their own
// stay archived.
func (b *Backend) restore(ctx context.Context, q querier, ref types.Ref) error {
	st, err := loadState(ctx, q, ref)
	if err != nil {
		return err
	}
	if !st.archived {
		return nil
	}
	info := kinds[ref.Kind]
	now := formatTime(b.timestamp())

	if info.ordered {
		end, err := activeCount(ctx, q, st.scope(ref.Kind), ref.ID)
		if err != nil {
			return err
		}
		query := fmt.Sprintf("UPDATE %s SET archived = 0, archived_via = NULL, position = ?, updated_at = ? WHERE id = ?", info.table)
		if _, err := q.ExecContext(ctx, query, end, now, ref.ID); err != nil {
			return storageErr("restore "+string(ref.Kind), err)
		}
	} else {
		query := fmt.Sprintf("UPDATE %s SET archived = 0, archived_via = NULL, updated_at = ? WHERE id = ?", info.table)
		if _, err := q.ExecContext(ctx, query, now, ref.ID); err != nil {
			return storageErr("restore "+string(ref.Kind), err)
		}
	}

	n, err := restoreDescendants(ctx, q, ref, ref.ID, now)
	if err != nil {
		return err
	}
	b.logger.Debug("restored", "kind", ref.Kind, "id", ref.ID, "cascaded", n)
	return nil
}

func restoreDescendants(ctx context.Context, q querier, parent types.Ref, root, now string) (int, error) {
	total := 0
	for _, rel := range childRelations(parent.Kind) {
		info := kinds[rel.child]
		query := fmt.Sprintf("UPDATE %s SET archived = 0, archived_via = NULL, updated_at = ? WHERE %s = ? AND archived_via = ?",
			info.table, rel.column)
		res, err := q.ExecContext(ctx, query, now, parent.ID, root)
		if err != nil {
			return 0, storageErr("restore "+string(rel.child), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		}
		// Restored rows still carry their pre-archive positions.
		if rel.column == info.parentCol {
			if err := compact(ctx, q, scope{kind: rel.child, parentID: parent.ID}); err != nil {
				return 0, err
			}
		}

		ids, err := childIDs(ctx, q, rel, parent.ID)
		if err != nil {
			return 0, err
		}
		for _, id := range ids {
			n, err := restoreDescendants(ctx, q, types.Ref{Kind: rel.child, ID: id}, root, now)
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}

// remove hard-deletes ref and everything beneath it, children first.
// Deleting a label removes its associations but never the cards.
func (b *Backend) remove(ctx context.Context, q querier, ref types.Ref) error {
	st, err := loadState(ctx, q, ref)
	if err != nil {
		return err
	}
	n, err := deleteDescendants(ctx, q, ref)
	if err != nil {
		return err
	}

	info := kinds[ref.Kind]
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", info.table)
	if _, err := q.ExecContext(ctx, query, ref.ID); err != nil {
		return storageErr("delete "+string(ref.Kind), err)
	}
	if info.ordered && !st.archived {
		if err := removeFrom(ctx, q, st.scope(ref.Kind), ref.ID, st.position); err != nil {
			return err
		}
	}
	b.logger.Debug("deleted", "kind", ref.Kind, "id", ref.ID, "cascaded", n)
	return nil
}

func deleteDescendants(ctx context.Context, q querier, parent types.Ref) (int, error) {
	total := 0
	for _, rel := range childRelations(parent.Kind) {
		ids, err := childIDs(ctx, q, rel, parent.ID)
		if err != nil {
			return 0, err
		}
		for _, id := range ids {
			n, err := deleteDescendants(ctx, q, types.Ref{Kind: rel.child, ID: id})
			if err != nil {
				return 0, err
			}
			total += n
		}
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", kinds[rel.child].table, rel.column)
		res, err := q.ExecContext(ctx, query, parent.ID)
		if err != nil {
			return 0, storageErr("delete "+string(rel.child), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		}
	}
	return total, nil
}

// childIDs lists every child of parentID along rel, archived or not.
func childIDs(ctx context.Context, q querier, rel relation, parentID string) ([]string, error) {
	if len(childRelations(rel.child)) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", kinds[rel.child].table, rel.column)
	rows, err := q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, storageErr("list "+string(rel.child), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("list "+string(rel.child), err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list "+string(rel.child), err)
	}
	return ids, nil
}

// touch bumps updated_at on a row.
func touch(ctx context.Context, q querier, kind types.Kind, id string, now time.Time) error {
	query := fmt.Sprintf("UPDATE %s SET updated_at = ? WHERE id = ?", kinds[kind].table)
	if _, err := q.ExecContext(ctx, query, formatTime(now), id); err != nil {
		return storageErr("touch "+string(kind), err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// denormChecks find rows whose copied project_id disagrees with their
// owner's.
var denormChecks = []struct {
	kind  types.Kind
	query string
}{
	{types.KindCard, `SELECT c.id FROM project_card c JOIN project_list l ON l.id = c.list_id
		WHERE c.project_id <> l.project_id`},
	{types.KindSubtask, `SELECT s.id FROM card_subtask s JOIN project_card c ON c.id = s.card_id
		WHERE s.project_id <> c.project_id`},
	{types.KindCardLabel, `SELECT cl.id FROM card_label cl
		JOIN project_card c ON c.id = cl.card_id
		JOIN project_label lb ON lb.id = cl.label_id
		WHERE cl.project_id <> c.project_id OR cl.project_id <> lb.project_id`},
}

// Verify reports every scope whose active positions are not exactly
// 0..n-1 and every row whose project_id disagrees with its owner.
func (b *Backend) Verify(ctx context.Context) ([]types.Violation, error) {
	var out []types.Violation
	err := b.read(ctx, func(tx *sql.Tx) error {
		for _, k := range types.Kinds {
			vs, err := verifyDensity(ctx, tx, k)
			if err != nil {
				return err
			}
			out = append(out, vs...)
		}
		for _, c := range denormChecks {
			ids, err := queryIDs(ctx, tx, c.query)
			if err != nil {
				return err
			}
			for _, id := range ids {
				out = append(out, types.Violation{
					Kind:    c.kind,
					Message: fmt.Sprintf("%s has a project id that differs from its owner", id),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	return out, nil
}

func verifyDensity(ctx context.Context, q querier, k types.Kind) ([]types.Violation, error) {
	info := kinds[k]
	if !info.ordered {
		return nil, nil
	}
	parentExpr := "''"
	if info.parentCol != "" {
		parentExpr = info.parentCol
	}
	query := fmt.Sprintf("SELECT %s, position FROM %s WHERE archived = 0 ORDER BY 1, position", parentExpr, info.table)
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("verify "+string(k), err)
	}
	defer rows.Close()

	var (
		out     []types.Violation
		current string
		next    int
		broken  bool
		first   = true
	)
	for rows.Next() {
		var parent string
		var pos int
		if err := rows.Scan(&parent, &pos); err != nil {
			return nil, storageErr("verify "+string(k), err)
		}
		if first || parent != current {
			current, next, broken, first = parent, 0, false, false
		}
		if pos != next && !broken {
			out = append(out, types.Violation{
				Kind:    k,
				ScopeID: parent,
				Message: fmt.Sprintf("expected position %d, found %d", next, pos),
			})
			broken = true
		}
		next++
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("verify "+string(k), err)
	}
	return out, nil
}

func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("query ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query ids", err)
	}
	return ids, nil
}

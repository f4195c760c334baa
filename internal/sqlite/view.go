package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// ProjectView assembles the visible hierarchy of one project in a single
// read transaction. An archived project comes back with no children.
func (b *Backend) ProjectView(ctx context.Context, projectID string) (*types.ProjectView, error) {
	var out *types.ProjectView
	err := b.read(ctx, func(tx *sql.Tx) error {
		p, err := getProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		out, err = b.buildView(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("project view: %w", err)
	}
	return out, nil
}

// Overview returns a view of every active project in position order.
func (b *Backend) Overview(ctx context.Context) ([]*types.ProjectView, error) {
	var out []*types.ProjectView
	err := b.read(ctx, func(tx *sql.Tx) error {
		projects, err := queryProjects(ctx, tx,
			"SELECT "+projectColumns+" FROM project WHERE archived = 0 ORDER BY position")
		if err != nil {
			return err
		}
		for _, p := range projects {
			v, err := b.buildView(ctx, tx, p)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	return out, nil
}

func (b *Backend) buildView(ctx context.Context, q querier, p *types.Project) (*types.ProjectView, error) {
	view := &types.ProjectView{Project: p}
	if p.Archived {
		return view, nil
	}

	var err error
	view.Labels, err = queryLabels(ctx, q,
		"SELECT "+labelColumns+" FROM project_label WHERE project_id = ? AND archived = 0 ORDER BY position", p.ID)
	if err != nil {
		return nil, err
	}
	lists, err := queryLists(ctx, q,
		"SELECT "+listColumns+" FROM project_list WHERE project_id = ? AND archived = 0 ORDER BY position", p.ID)
	if err != nil {
		return nil, err
	}
	cards, err := queryCards(ctx, q,
		"SELECT "+cardColumns+" FROM project_card WHERE project_id = ? AND archived = 0 ORDER BY list_id, position", p.ID)
	if err != nil {
		return nil, err
	}
	labels, err := cardLabelsOf(ctx, q, p.ID)
	if err != nil {
		return nil, err
	}
	subtasks, err := querySubtasks(ctx, q,
		"SELECT "+subtaskColumns+" FROM card_subtask WHERE project_id = ? AND archived = 0 ORDER BY card_id, position", p.ID)
	if err != nil {
		return nil, err
	}
	subtasksByCard := make(map[string][]*types.Subtask)
	for _, s := range subtasks {
		subtasksByCard[s.CardID] = append(subtasksByCard[s.CardID], s)
	}

	now := b.now()
	dueSoon := b.config.DueSoonDays
	cardsByList := make(map[string][]*types.CardView)
	for _, c := range cards {
		cv := &types.CardView{
			Card:     c,
			Status:   c.Status(now, dueSoon),
			Labels:   labels[c.ID],
			Subtasks: subtasksByCard[c.ID],
		}
		cv.SubtasksTotal = len(cv.Subtasks)
		for _, s := range cv.Subtasks {
			if s.Completed {
				cv.SubtasksDone++
			}
		}
		cardsByList[c.ListID] = append(cardsByList[c.ListID], cv)
	}

	for _, l := range lists {
		view.Lists = append(view.Lists, &types.ListView{List: l, Cards: cardsByList[l.ID]})
	}
	return view, nil
}

// cardLabelsOf maps card id to the active labels actively attached to it.
func cardLabelsOf(ctx context.Context, q querier, projectID string) (map[string][]*types.Label, error) {
	rows, err := q.QueryContext(ctx, `SELECT cl.card_id, lb.id, lb.project_id, lb.title, lb.color, lb.position,
		lb.archived, lb.created_at, lb.updated_at
		FROM card_label cl JOIN project_label lb ON lb.id = cl.label_id
		WHERE cl.project_id = ? AND cl.archived = 0 AND lb.archived = 0
		ORDER BY cl.card_id, lb.position`, projectID)
	if err != nil {
		return nil, storageErr("query card labels", err)
	}
	defer rows.Close()

	out := make(map[string][]*types.Label)
	for rows.Next() {
		var cardID string
		l, err := hydrateLabel(prefixScanner{rowScanner: rows, prefix: []any{&cardID}})
		if err != nil {
			return nil, storageErr("scan card label", err)
		}
		out[cardID] = append(out[cardID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query card labels", err)
	}
	return out, nil
}

// prefixScanner scans leading columns into prefix before handing the rest
// to a hydrate function.
type prefixScanner struct {
	rowScanner
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	all := make([]any, 0, len(p.prefix)+len(dest))
	all = append(all, p.prefix...)
	return p.rowScanner.Scan(append(all, dest...)...)
}

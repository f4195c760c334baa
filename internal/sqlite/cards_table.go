package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.CardStore = (*cardsTable)(nil)

var cardFields = []string{
	"id", "project_id", "list_id", "title", "description", "important",
	"start_date", "due_date", "reminder", "completed", "position", "archived",
	"created_at", "updated_at",
}

var cardColumns = strings.Join(cardFields, ", ")

// cardColumnsAs returns the card columns qualified with alias.
func cardColumnsAs(alias string) string {
	cols := make([]string, len(cardFields))
	for i, f := range cardFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

// cardsTable implements types.CardStore. A card's project_id always
// equals the project of its list.
type cardsTable struct {
	b *Backend
}

func (t *cardsTable) Create(ctx context.Context, c types.NewCard) (*types.Card, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	var out *types.Card
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, types.Ref{Kind: types.KindList, ID: c.ListID}); err != nil {
			return err
		}
		list, err := getList(ctx, tx, c.ListID)
		if err != nil {
			return err
		}
		if c.ProjectID != "" && c.ProjectID != list.ProjectID {
			return fmt.Errorf("%w: list %s belongs to project %s, not %s",
				types.ErrReferentialViolation, list.ID, list.ProjectID, c.ProjectID)
		}

		id := newUUID()
		pos, err := insertAt(ctx, tx, scope{kind: types.KindCard, parentID: list.ID}, id, c.Index)
		if err != nil {
			return err
		}
		now := formatTime(t.b.timestamp())
		_, err = tx.ExecContext(ctx,
			"INSERT INTO project_card ("+cardColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, 0, ?, ?)",
			id, list.ProjectID, list.ID, c.Title, c.Description, boolInt(c.Important),
			nullTime(c.StartDate), nullTime(c.DueDate), nullDuration(c.Reminder),
			pos, now, now)
		if err != nil {
			return storageErr("insert card", err)
		}
		out, err = getCard(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return out, nil
}

func (t *cardsTable) Get(ctx context.Context, id string) (*types.Card, error) {
	var out *types.Card
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = getCard(ctx, tx, id)
		return err
	})
	return out, err
}

func (t *cardsTable) ByList(ctx context.Context, listID string, includeArchived bool) ([]*types.Card, error) {
	query := "SELECT " + cardColumns + " FROM project_card WHERE list_id = ?"
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY archived, position, created_at"

	var out []*types.Card
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		if _, err := getList(ctx, tx, listID); err != nil {
			return err
		}
		var err error
		out, err = queryCards(ctx, tx, query, listID)
		return err
	})
	return out, err
}

func (t *cardsTable) Update(ctx context.Context, id string, u types.CardUpdate) (*types.Card, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	var out *types.Card
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		c, err := getCard(ctx, tx, id)
		if err != nil {
			return err
		}
		u.Apply(c)
		_, err = tx.ExecContext(ctx,
			`UPDATE project_card SET title = ?, description = ?, important = ?, completed = ?,
			 start_date = ?, due_date = ?, reminder = ?, updated_at = ? WHERE id = ?`,
			c.Title, c.Description, boolInt(c.Important), boolInt(c.Completed),
			nullTime(c.StartDate), nullTime(c.DueDate), nullDuration(c.Reminder),
			formatTime(t.b.timestamp()), id)
		if err != nil {
			return storageErr("update card", err)
		}
		out, err = getCard(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	return out, nil
}

func (t *cardsTable) SetCompleted(ctx context.Context, id string, completed bool) (*types.Card, error) {
	return t.Update(ctx, id, types.CardUpdate{Completed: &completed})
}

func (t *cardsTable) SetImportant(ctx context.Context, id string, important bool) (*types.Card, error) {
	return t.Update(ctx, id, types.CardUpdate{Important: &important})
}

func (t *cardsTable) Move(ctx context.Context, id, listID string, index int) (*types.Card, error) {
	var out *types.Card
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = t.move(ctx, tx, id, listID, &index)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move card: %w", err)
	}
	return out, nil
}

// MoveAdjacent moves the card to the list delta slots away among the
// project's active lists and appends it there.
func (t *cardsTable) MoveAdjacent(ctx context.Context, id string, delta int) (*types.Card, error) {
	var out *types.Card
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		c, err := getCard(ctx, tx, id)
		if err != nil {
			return err
		}
		if delta == 0 {
			out = c
			return nil
		}
		lists, err := queryLists(ctx, tx,
			"SELECT "+listColumns+" FROM project_list WHERE project_id = ? AND archived = 0 ORDER BY position",
			c.ProjectID)
		if err != nil {
			return err
		}
		current := -1
		for i, l := range lists {
			if l.ID == c.ListID {
				current = i
				break
			}
		}
		if current < 0 {
			return fmt.Errorf("%w: parent is archived: list %s", types.ErrValidation, c.ListID)
		}
		target := current + delta
		if target < 0 || target >= len(lists) {
			return fmt.Errorf("%w: no list %d slots from %s", types.ErrInvalidPosition, delta, c.ListID)
		}
		out, err = t.move(ctx, tx, id, lists[target].ID, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move card: %w", err)
	}
	return out, nil
}

// move places an active card in listID at index, or at the end when index
// is nil. The target list must be active and in the card's project.
func (t *cardsTable) move(ctx context.Context, tx *sql.Tx, id, listID string, index *int) (*types.Card, error) {
	if err := requireActive(ctx, tx, types.Ref{Kind: types.KindCard, ID: id}); err != nil {
		return nil, err
	}
	if err := requireActive(ctx, tx, types.Ref{Kind: types.KindList, ID: listID}); err != nil {
		return nil, err
	}
	c, err := getCard(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	target, err := getList(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if target.ProjectID != c.ProjectID {
		return nil, fmt.Errorf("%w: list %s is not in project %s",
			types.ErrReferentialViolation, target.ID, c.ProjectID)
	}

	now := formatTime(t.b.timestamp())
	if target.ID == c.ListID {
		if index == nil {
			n, err := activeCount(ctx, tx, scope{kind: types.KindCard, parentID: c.ListID}, id)
			if err != nil {
				return nil, err
			}
			index = &n
		}
		if err := moveTo(ctx, tx, scope{kind: types.KindCard, parentID: c.ListID}, id, *index); err != nil {
			return nil, err
		}
		if err := touch(ctx, tx, types.KindCard, id, t.b.timestamp()); err != nil {
			return nil, err
		}
		return getCard(ctx, tx, id)
	}

	from := scope{kind: types.KindCard, parentID: c.ListID}
	to := scope{kind: types.KindCard, parentID: target.ID}
	pos, err := moveAcross(ctx, tx, from, to, id, index)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE project_card SET list_id = ?, position = ?, updated_at = ? WHERE id = ?",
		target.ID, pos, now, id)
	if err != nil {
		return nil, storageErr("move card", err)
	}
	t.b.logger.Debug("card moved", "id", id, "from", c.ListID, "to", target.ID, "position", pos)
	return getCard(ctx, tx, id)
}

func (t *cardsTable) Archive(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "archive", id, t.b.archive)
}

func (t *cardsTable) Restore(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "restore", id, t.b.restore)
}

func (t *cardsTable) Delete(ctx context.Context, id string) error {
	return t.lifecycle(ctx, "delete", id, t.b.remove)
}

func (t *cardsTable) lifecycle(ctx context.Context, op, id string, fn lifecycleFunc) error {
	err := t.b.write(ctx, func(tx *sql.Tx) error {
		return fn(ctx, tx, types.Ref{Kind: types.KindCard, ID: id})
	})
	if err != nil {
		return fmt.Errorf("%s card: %w", op, err)
	}
	return nil
}

func (t *cardsTable) DueReminders(ctx context.Context, now time.Time) ([]*types.Card, error) {
	query := "SELECT " + cardColumnsAs("c") + ` FROM project_card c
		JOIN project_list l ON l.id = c.list_id
		JOIN project p ON p.id = c.project_id
		WHERE c.archived = 0 AND l.archived = 0 AND p.archived = 0 AND c.completed = 0
		  AND c.due_date IS NOT NULL AND c.reminder IS NOT NULL
		ORDER BY c.due_date, c.id`

	var cards []*types.Card
	err := t.b.read(ctx, func(tx *sql.Tx) error {
		var err error
		cards, err = queryCards(ctx, tx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}

	var out []*types.Card
	for _, c := range cards {
		if at, ok := c.ReminderAt(); ok && !at.After(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func getCard(ctx context.Context, q querier, id string) (*types.Card, error) {
	row := q.QueryRowContext(ctx, "SELECT "+cardColumns+" FROM project_card WHERE id = ?", id)
	c, err := hydrateCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: card %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get card", err)
	}
	return c, nil
}

func queryCards(ctx context.Context, q querier, query string, args ...any) ([]*types.Card, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query cards", err)
	}
	defer rows.Close()

	var out []*types.Card
	for rows.Next() {
		c, err := hydrateCard(rows)
		if err != nil {
			return nil, storageErr("scan card", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query cards", err)
	}
	return out, nil
}

func hydrateCard(row rowScanner) (*types.Card, error) {
	var (
		c                    types.Card
		important, completed int
		archived             int
		startDate, dueDate   sql.NullString
		reminder             sql.NullInt64
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.ProjectID, &c.ListID, &c.Title, &c.Description, &important,
		&startDate, &dueDate, &reminder, &completed, &c.Position, &archived,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Important = important == 1
	c.Completed = completed == 1
	c.Archived = archived == 1
	c.Reminder = parseNullDuration(reminder)
	if c.StartDate, err = parseNullTime(startDate); err != nil {
		return nil, err
	}
	if c.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

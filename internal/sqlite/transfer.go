package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// tableFile maps a table to its JSONL file and persisted columns. Entries
// are ordered parents first.
type tableFile struct {
	kind    types.Kind
	file    string
	columns []string
}

var tableFiles = []tableFile{
	{types.KindProject, "project.jsonl", []string{
		"id", "title", "description", "position", "archived", "archived_via", "created_at", "updated_at"}},
	{types.KindList, "project_list.jsonl", []string{
		"id", "project_id", "title", "position", "archived", "archived_via", "created_at", "updated_at"}},
	{types.KindLabel, "project_label.jsonl", []string{
		"id", "project_id", "title", "color", "position", "archived", "archived_via", "created_at", "updated_at"}},
	{types.KindCard, "project_card.jsonl", append(append([]string{}, cardFields...), "archived_via")},
	{types.KindCardLabel, "card_label.jsonl", []string{
		"id", "project_id", "card_id", "label_id", "archived", "archived_via", "created_at", "updated_at"}},
	{types.KindSubtask, "card_subtask.jsonl", []string{
		"id", "project_id", "card_id", "value", "completed", "position", "archived", "archived_via", "created_at", "updated_at"}},
}

// Export writes every table to a JSONL file in dir, one object per row.
func (b *Backend) Export(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: create dir: %w", err)
	}
	tables := make(map[types.Kind][]map[string]any)
	err := b.read(ctx, func(tx *sql.Tx) error {
		for _, tf := range tableFiles {
			records, err := dumpTable(ctx, tx, tf)
			if err != nil {
				return err
			}
			tables[tf.kind] = records
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for _, tf := range tableFiles {
		if err := writeJSONL(filepath.Join(dir, tf.file), tables[tf.kind]); err != nil {
			return fmt.Errorf("export %s: %w", tf.file, err)
		}
	}
	b.logger.Info("board exported", "dir", dir)
	return nil
}

func dumpTable(ctx context.Context, q querier, tf tableFile) ([]map[string]any, error) {
	info := kinds[tf.kind]
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at, id", strings.Join(tf.columns, ", "), info.table)
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("export "+info.table, err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(tf.columns))
		ptrs := make([]any, len(tf.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storageErr("export "+info.table, err)
		}
		rec := make(map[string]any, len(tf.columns))
		for i, col := range tf.columns {
			if v, ok := values[i].([]byte); ok {
				rec[col] = string(v)
				continue
			}
			rec[col] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("export "+info.table, err)
	}
	return out, nil
}

// Import replaces all stored data with the JSONL files in dir. Missing
// files import as empty tables. The import runs in one transaction and
// renumbers every scope afterwards, so a partial or hand-edited export
// still yields dense orderings.
func (b *Backend) Import(ctx context.Context, dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("import: %w: %s is not a directory", types.ErrValidation, dir)
	}
	tables := make(map[types.Kind][]map[string]any)
	for _, tf := range tableFiles {
		records, err := readJSONL(filepath.Join(dir, tf.file))
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		tables[tf.kind] = records
	}

	err := b.write(ctx, func(tx *sql.Tx) error {
		// Checked at commit, so rows may arrive in any order within a file.
		if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
			return storageErr("defer foreign keys", err)
		}
		for i := len(tableFiles) - 1; i >= 0; i-- {
			table := kinds[tableFiles[i].kind].table
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return storageErr("clear "+table, err)
			}
		}
		for _, tf := range tableFiles {
			if err := loadTable(ctx, tx, tf, tables[tf.kind]); err != nil {
				return err
			}
		}
		if err := checkForeignKeys(ctx, tx); err != nil {
			return err
		}
		for _, c := range denormChecks {
			ids, err := queryIDs(ctx, tx, c.query)
			if err != nil {
				return err
			}
			if len(ids) > 0 {
				return fmt.Errorf("%w: %s %s has a project id that differs from its owner",
					types.ErrReferentialViolation, c.kind, ids[0])
			}
		}
		return compactAll(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	b.logger.Info("board imported", "dir", dir)
	return nil
}

func loadTable(ctx context.Context, tx *sql.Tx, tf tableFile, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}
	table := kinds[tf.kind].table
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tf.columns)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(tf.columns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return storageErr("prepare "+table, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		args := make([]any, len(tf.columns))
		for j, col := range tf.columns {
			v, err := columnValue(rec[col])
			if err == nil {
				err = checkColumn(col, v)
			}
			if err != nil {
				return fmt.Errorf("%w: %s record %d: %s: %v", types.ErrValidation, tf.file, i+1, col, err)
			}
			args[j] = v
		}
		// Unknown fields are ignored; rejected rows fail the whole import.
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("%w: %s record %d: %v", types.ErrValidation, tf.file, i+1, err)
		}
	}
	return nil
}

// columnValue converts a decoded JSON value to a column argument.
func columnValue(v any) (any, error) {
	switch v := v.(type) {
	case nil, string:
		return v, nil
	case bool:
		return boolInt(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		return v.Float64()
	default:
		return nil, fmt.Errorf("unsupported value %v", v)
	}
}

// checkColumn rejects values the schema accepts but reads cannot decode.
func checkColumn(col string, v any) error {
	switch col {
	case "created_at", "updated_at", "start_date", "due_date":
		if v == nil && (col == "start_date" || col == "due_date") {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("timestamp must be a string, got %v", v)
		}
		_, err := parseTime(s)
		return err
	case "color":
		s, ok := v.(string)
		if !ok || !types.ValidColor(s) {
			return fmt.Errorf("invalid color %v", v)
		}
	}
	return nil
}

// checkForeignKeys reports the first dangling reference left by an import.
func checkForeignKeys(ctx context.Context, q querier) error {
	rows, err := q.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return storageErr("foreign key check", err)
	}
	defer rows.Close()
	if rows.Next() {
		var (
			table, parent string
			rowid         sql.NullInt64
			fkid          int
		)
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return storageErr("foreign key check", err)
		}
		return fmt.Errorf("%w: %s row %d references a missing %s",
			types.ErrReferentialViolation, table, rowid.Int64, parent)
	}
	return storageErr("foreign key check", rows.Err())
}

// compactAll renumbers every ordered scope.
func compactAll(ctx context.Context, q querier) error {
	for _, k := range types.Kinds {
		info := kinds[k]
		if !info.ordered {
			continue
		}
		if info.parentCol == "" {
			if err := compact(ctx, q, scope{kind: k}); err != nil {
				return err
			}
			continue
		}
		parents, err := queryIDs(ctx, q,
			fmt.Sprintf("SELECT DISTINCT %s FROM %s", info.parentCol, info.table))
		if err != nil {
			return err
		}
		for _, p := range parents {
			if err := compact(ctx, q, scope{kind: k, parentID: p}); err != nil {
				return err
			}
		}
	}
	return nil
}

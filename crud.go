package dragondb

import (
	"context"
	"fmt"
)

type insertMode int

const (
	insertPlain insertMode = iota
	insertIgnore
	insertReplace
	insertUpdate
)

// Insert inserts one row given as a Hash, Named, Row or map[string]any and
// returns the number of affected rows. InsertID reports the generated id.
func (db *DB) Insert(ctx context.Context, table string, row any) (int64, error) {
	return db.insert(ctx, insertPlain, table, []any{row}, nil)
}

// InsertMany inserts several rows in one statement. Columns are taken from
// the first row; every other row must carry the same columns.
func (db *DB) InsertMany(ctx context.Context, table string, rows ...any) (int64, error) {
	return db.insert(ctx, insertPlain, table, rows, nil)
}

// InsertIgnore inserts rows, skipping those that violate a unique key.
func (db *DB) InsertIgnore(ctx context.Context, table string, rows ...any) (int64, error) {
	return db.insert(ctx, insertIgnore, table, rows, nil)
}

// Replace inserts rows, replacing those with a conflicting unique key.
// PostgreSQL has no REPLACE and fails with ErrUnsupported.
func (db *DB) Replace(ctx context.Context, table string, rows ...any) (int64, error) {
	return db.insert(ctx, insertReplace, table, rows, nil)
}

// InsertUpdate inserts row or, on a duplicate key, updates the existing
// row with update. A nil update reuses row. MySQL only.
func (db *DB) InsertUpdate(ctx context.Context, table string, row, update any) (int64, error) {
	if update == nil {
		update = row
	}
	return db.insert(ctx, insertUpdate, table, []any{row}, update)
}

func (db *DB) insert(ctx context.Context, mode insertMode, table string, rows []any, update any) (int64, error) {
	head, tail, err := db.dialect.insertVerb(mode)
	if err != nil {
		return 0, err
	}
	columns, values, err := insertValues(rows)
	if err != nil {
		return 0, err
	}

	tmpl := head + " %b %lb VALUES %ll?" + tail
	args := []any{table, columns, values}
	if mode == insertUpdate {
		tmpl += " ON DUPLICATE KEY UPDATE %hc"
		args = append(args, update)
	}
	return db.Exec(ctx, db.engine.expand(tmpl), args...)
}

// insertValues lines the rows up behind the columns of the first one.
func insertValues(rows []any) ([]string, [][]any, error) {
	if len(rows) == 0 {
		return nil, nil, &ArgumentError{Kind: ErrEmptyArray, Arg: "rows", Msg: "nothing to insert"}
	}
	first, ok := asHash(rows[0])
	if !ok {
		return nil, nil, typeMismatch("rows", "row 0: expected a hash, got %T", rows[0])
	}
	if len(first) == 0 {
		return nil, nil, &ArgumentError{Kind: ErrEmptyArray, Arg: "rows", Msg: "row 0 has no columns"}
	}
	columns := first.Keys()

	values := make([][]any, len(rows))
	for i, r := range rows {
		h, ok := asHash(r)
		if !ok {
			return nil, nil, typeMismatch("rows", "row %d: expected a hash, got %T", i, r)
		}
		if len(h) != len(columns) {
			return nil, nil, typeMismatch("rows", "row %d has %d columns, expected %d", i, len(h), len(columns))
		}
		values[i] = make([]any, len(columns))
		for j, c := range columns {
			v, ok := h.Get(c)
			if !ok {
				return nil, nil, typeMismatch("rows", "row %d is missing column %q", i, c)
			}
			values[i][j] = v
		}
	}
	return columns, values, nil
}

// Update sets the columns of set on the rows matching where, which is a
// template rendered with args. It returns the number of affected rows.
//
//	db.Update(ctx, "users", dragondb.H("name", "Ann"), "id = %i", 7)
func (db *DB) Update(ctx context.Context, table string, set any, where string, args ...any) (int64, error) {
	cond, err := db.engine.render(where, args)
	if err != nil {
		return 0, fmt.Errorf("where clause: %w", err)
	}
	return db.Exec(ctx, db.engine.expand("UPDATE %b SET %hc WHERE %l"), table, set, Raw(cond))
}

// Delete removes the rows matching where and returns how many were removed.
func (db *DB) Delete(ctx context.Context, table string, where string, args ...any) (int64, error) {
	cond, err := db.engine.render(where, args)
	if err != nil {
		return 0, fmt.Errorf("where clause: %w", err)
	}
	return db.Exec(ctx, db.engine.expand("DELETE FROM %b WHERE %l"), table, Raw(cond))
}

package dragondb

import (
	"context"

	"github.com/jmoiron/sqlx"
)

/*
Walker streams the rows of a statement one at a time.

While a Walker is open the connection belongs to it and every other
statement on the DB fails with ErrConnectionBusy. Draining it with Next
releases the connection; call Free to stop early.

	w, err := db.QueryWalk(ctx, "SELECT * FROM %b", "events")
	if err != nil {
		return err
	}
	defer w.Free()
	for {
		row, err := w.Next()
		if err != nil || row == nil {
			return err
		}
		process(row)
	}
*/
type Walker struct {
	db   *DB
	rows *sqlx.Rows
	n    int64
}

// QueryWalk runs a statement and returns a Walker over its rows. It
// returns a nil Walker when a run-failed hook handled the error.
func (db *DB) QueryWalk(ctx context.Context, tmpl string, args ...any) (*Walker, error) {
	rows, err := db.open(ctx, tmpl, args)
	if err != nil || rows == nil {
		return nil, err
	}
	return &Walker{db: db, rows: rows}, nil
}

// Next returns the next row, or nil once the rows are exhausted. The
// connection is released at the end of the rows and on error.
func (w *Walker) Next() (Row, error) {
	if w == nil || w.rows == nil {
		return nil, nil
	}
	if !w.rows.Next() {
		return nil, w.Free()
	}
	row := make(Row)
	if err := w.rows.MapScan(row); err != nil {
		w.Free()
		return nil, err
	}
	w.n++
	return normalizeRow(row), nil
}

// Free closes the rows and releases the connection. It is safe to call
// more than once.
func (w *Walker) Free() error {
	if w == nil || w.rows == nil {
		return nil
	}
	err := w.rows.Err()
	if closeErr := w.rows.Close(); err == nil {
		err = closeErr
	}
	w.db.release(w.rows)
	w.rows = nil
	w.db.numRows = w.n
	w.db.affectedRows = w.n
	return err
}

// RawRows is the unprocessed driver result of a statement. Close it to
// release the connection.
type RawRows struct {
	*sqlx.Rows
	db *DB
}

// QueryRaw runs a statement and returns its rows untouched. It returns nil
// when a run-failed hook handled the error.
func (db *DB) QueryRaw(ctx context.Context, tmpl string, args ...any) (*RawRows, error) {
	rows, err := db.open(ctx, tmpl, args)
	if err != nil || rows == nil {
		return nil, err
	}
	return &RawRows{Rows: rows, db: db}, nil
}

// Close closes the rows and releases the connection.
func (r *RawRows) Close() error {
	if r == nil || r.Rows == nil {
		return nil
	}
	err := r.Rows.Close()
	r.db.release(r.Rows)
	r.Rows = nil
	return err
}

// open runs a statement and marks the connection busy until its rows are
// released.
func (db *DB) open(ctx context.Context, tmpl string, args []any) (*sqlx.Rows, error) {
	query, err := db.prepare(tmpl, args)
	if err != nil {
		return nil, err
	}
	var rows *sqlx.Rows
	err = db.run(ctx, query, func(ex Executor) (outcome, error) {
		r, err := ex.QueryxContext(ctx, query)
		if err != nil {
			return outcome{}, err
		}
		rows = r
		return outcome{}, nil
	})
	if err != nil || rows == nil {
		return nil, err
	}
	db.active = rows
	return rows, nil
}

// release frees the connection if rows is still its active result set.
func (db *DB) release(rows *sqlx.Rows) {
	if db.active == rows {
		db.active = nil
	}
}

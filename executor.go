package dragondb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Executor is the connection surface statements run on.
// *sqlx.Conn, *sqlx.DB and *sqlx.Tx all satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

// outcome is what a statement reports back to the snapshot.
type outcome struct {
	rows     int64
	affected int64
	insertID int64
}

// prepare runs the pre-parse hooks, renders the template and runs the
// pre-run hooks.
func (db *DB) prepare(tmpl string, args []any) (string, error) {
	ev := &ParseEvent{Query: tmpl, Args: args}
	db.hooks.preParse(ev)
	query, err := db.engine.render(ev.Query, ev.Args)
	if err != nil {
		return "", err
	}
	run := &PreRunEvent{Query: query}
	db.hooks.preRun(run)
	return run.Query, nil
}

// run sends query on the pinned connection and records the outcome.
// A failure handled by a run-failed hook yields a nil error.
func (db *DB) run(ctx context.Context, query string, fn func(Executor) (outcome, error)) error {
	conn, err := db.connection(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := fn(conn)
	ev := RunEvent{
		Query:    query,
		Runtime:  time.Since(start),
		Rows:     out.rows,
		Affected: out.affected,
		InsertID: out.insertID,
	}
	db.lastQuery = query
	db.insertID, db.affectedRows, db.numRows = out.insertID, out.affected, out.rows

	if err != nil && !errors.Is(err, ErrConnectionBusy) {
		err = &SQLError{Query: query, Code: db.dialect.errorCode(err), Err: err}
	}
	ev.Err = err
	db.hooks.notify(HookPostRun, ev)

	if err != nil {
		db.log.ErrorContext(ctx, "query failed",
			slog.String("query", query),
			slog.Duration("runtime", ev.Runtime),
			slog.Any("error", err),
		)
		if db.hooks.failed(ev) {
			return nil
		}
		return err
	}

	db.log.DebugContext(ctx, "query",
		slog.String("query", query),
		slog.Duration("runtime", ev.Runtime),
		slog.Int64("rows", ev.Rows),
		slog.Int64("affected", ev.Affected),
	)
	db.hooks.notify(HookRunSuccess, ev)
	return nil
}

// Exec runs a statement that returns no rows and returns the number of
// affected rows. InsertID and AffectedRows are updated.
func (db *DB) Exec(ctx context.Context, tmpl string, args ...any) (int64, error) {
	query, err := db.prepare(tmpl, args)
	if err != nil {
		return 0, err
	}
	var affected int64
	err = db.run(ctx, query, func(ex Executor) (outcome, error) {
		res, err := ex.ExecContext(ctx, query)
		if err != nil {
			return outcome{}, err
		}
		var out outcome
		// Drivers without the feature report an error; zero is the answer then.
		out.affected, _ = res.RowsAffected()
		out.insertID, _ = res.LastInsertId()
		affected = out.affected
		return out, nil
	})
	return affected, err
}

// query runs a statement and hands the open rows to scan.
func (db *DB) query(ctx context.Context, tmpl string, args []any, scan func(*sqlx.Rows) (int64, error)) error {
	query, err := db.prepare(tmpl, args)
	if err != nil {
		return err
	}
	return db.run(ctx, query, func(ex Executor) (outcome, error) {
		rows, err := ex.QueryxContext(ctx, query)
		if err != nil {
			return outcome{}, err
		}
		n, err := scan(rows)
		if closeErr := rows.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return outcome{}, err
		}
		return outcome{rows: n, affected: n}, nil
	})
}

// Query runs a statement and returns every row keyed by column name.
func (db *DB) Query(ctx context.Context, tmpl string, args ...any) ([]Row, error) {
	var result []Row
	err := db.query(ctx, tmpl, args, func(rows *sqlx.Rows) (int64, error) {
		for rows.Next() {
			row := make(Row)
			if err := rows.MapScan(row); err != nil {
				return 0, err
			}
			result = append(result, normalizeRow(row))
		}
		return int64(len(result)), rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryAllLists runs a statement and returns every row as a value list in
// column order.
func (db *DB) QueryAllLists(ctx context.Context, tmpl string, args ...any) ([][]any, error) {
	var result [][]any
	err := db.query(ctx, tmpl, args, func(rows *sqlx.Rows) (int64, error) {
		for rows.Next() {
			list, err := rows.SliceScan()
			if err != nil {
				return 0, err
			}
			result = append(result, normalizeList(list))
		}
		return int64(len(result)), rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryFirstRow returns the first row, or nil when there is none.
func (db *DB) QueryFirstRow(ctx context.Context, tmpl string, args ...any) (Row, error) {
	rows, err := db.Query(ctx, tmpl, args...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// QueryFirstList returns the first row as a value list, or nil.
func (db *DB) QueryFirstList(ctx context.Context, tmpl string, args ...any) ([]any, error) {
	lists, err := db.QueryAllLists(ctx, tmpl, args...)
	if err != nil || len(lists) == 0 {
		return nil, err
	}
	return lists[0], nil
}

// QueryFirstColumn returns the first column of every row.
func (db *DB) QueryFirstColumn(ctx context.Context, tmpl string, args ...any) ([]any, error) {
	lists, err := db.QueryAllLists(ctx, tmpl, args...)
	if err != nil {
		return nil, err
	}
	column := make([]any, 0, len(lists))
	for _, list := range lists {
		if len(list) > 0 {
			column = append(column, list[0])
		}
	}
	return column, nil
}

// QueryFirstField returns the first column of the first row, or nil.
func (db *DB) QueryFirstField(ctx context.Context, tmpl string, args ...any) (any, error) {
	list, err := db.QueryFirstList(ctx, tmpl, args...)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// QueryOneColumn returns the named column of every row.
func (db *DB) QueryOneColumn(ctx context.Context, column, tmpl string, args ...any) ([]any, error) {
	rows, err := db.Query(ctx, tmpl, args...)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(rows))
	for i, row := range rows {
		values[i] = row[column]
	}
	return values, nil
}

// QueryOneField returns the named column of the first row, or nil.
func (db *DB) QueryOneField(ctx context.Context, field, tmpl string, args ...any) (any, error) {
	row, err := db.QueryFirstRow(ctx, tmpl, args...)
	if err != nil || row == nil {
		return nil, err
	}
	return row[field], nil
}

// normalizeRow turns driver byte slices into strings.
func normalizeRow(row Row) Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}

func normalizeList(list []any) []any {
	for i, v := range list {
		if b, ok := v.([]byte); ok {
			list[i] = string(b)
		}
	}
	return list
}

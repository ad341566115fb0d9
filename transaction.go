package dragondb

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hashicorp/go-version"
)

var versionPrefix = regexp.MustCompile(`^\d+(\.\d+)*`)

// StartTransaction begins a transaction and returns the new depth. With
// nested transactions enabled, a call inside an open transaction creates
// the savepoint LEVEL<depth> instead.
func (db *DB) StartTransaction(ctx context.Context) (int, error) {
	if db.cfg.NestedTransactions {
		if err := db.checkSavepoints(ctx); err != nil {
			return db.depth, err
		}
	}

	if !db.cfg.NestedTransactions || db.depth == 0 {
		if err := db.execSQL(ctx, db.dialect.begin); err != nil {
			return db.depth, err
		}
		db.depth = 1
		return db.depth, nil
	}

	if err := db.execSQL(ctx, "SAVEPOINT "+savepointName(db.depth)); err != nil {
		return db.depth, err
	}
	db.depth++
	return db.depth, nil
}

// Commit commits the innermost level and returns the new depth.
func (db *DB) Commit(ctx context.Context) (int, error) {
	return db.finish(ctx, "COMMIT", "RELEASE SAVEPOINT ", false)
}

// CommitAll commits the whole transaction regardless of depth.
func (db *DB) CommitAll(ctx context.Context) (int, error) {
	return db.finish(ctx, "COMMIT", "RELEASE SAVEPOINT ", true)
}

// Rollback rolls back the innermost level and returns the new depth.
func (db *DB) Rollback(ctx context.Context) (int, error) {
	return db.finish(ctx, "ROLLBACK", "ROLLBACK TO SAVEPOINT ", false)
}

// RollbackAll rolls back the whole transaction regardless of depth.
func (db *DB) RollbackAll(ctx context.Context) (int, error) {
	return db.finish(ctx, "ROLLBACK", "ROLLBACK TO SAVEPOINT ", true)
}

// finish leaves the innermost level, or the whole transaction. The depth
// only changes once the statement succeeds.
func (db *DB) finish(ctx context.Context, top, savepoint string, all bool) (int, error) {
	nested := db.cfg.NestedTransactions
	level := db.depth
	if nested && level > 0 {
		level--
	}

	query := savepoint + savepointName(level)
	if !nested || all || level == 0 {
		level, query = 0, top
	}
	if err := db.execSQL(ctx, query); err != nil {
		return db.depth, err
	}
	db.depth = level
	return level, nil
}

// ServerVersion returns the version string reported by the server. It is
// queried once per DB.
func (db *DB) ServerVersion(ctx context.Context) (string, error) {
	if db.serverVersion != "" {
		return db.serverVersion, nil
	}
	v, err := db.QueryFirstField(ctx, db.dialect.versionQuery)
	if err != nil {
		return "", err
	}
	s, err := toString("version", v)
	if err != nil {
		return "", err
	}
	db.serverVersion = s
	return s, nil
}

// checkSavepoints fails with ErrTransactionVersion when the server is older
// than the first version of its dialect with SAVEPOINT.
func (db *DB) checkSavepoints(ctx context.Context) error {
	raw, err := db.ServerVersion(ctx)
	if err != nil {
		return err
	}
	current, err := version.NewVersion(versionPrefix.FindString(raw))
	if err != nil {
		return fmt.Errorf("%w: unreadable server version %q", ErrTransactionVersion, raw)
	}
	if current.LessThan(version.Must(version.NewVersion(db.dialect.savepointsSince))) {
		return fmt.Errorf("%w: %s %s, need %s", ErrTransactionVersion, db.dialect.name, raw, db.dialect.savepointsSince)
	}
	return nil
}

// execSQL runs a statement that is not a template.
func (db *DB) execSQL(ctx context.Context, query string) error {
	return db.run(ctx, query, func(ex Executor) (outcome, error) {
		res, err := ex.ExecContext(ctx, query)
		if err != nil {
			return outcome{}, err
		}
		var out outcome
		out.affected, _ = res.RowsAffected()
		return out, nil
	})
}

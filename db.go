package dragondb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Option adjusts a DB at construction.
type Option func(*DB)

// WithLogger sets the logger. Statements are logged at debug level,
// failures at error level.
func WithLogger(log *slog.Logger) Option {
	return func(db *DB) {
		if log != nil {
			db.log = log
		}
	}
}

// WithNestedTransactions turns nested StartTransaction calls into savepoints.
func WithNestedTransactions(enabled bool) Option {
	return func(db *DB) {
		db.cfg.NestedTransactions = enabled
	}
}

// WithParamChar changes the placeholder marker.
func WithParamChar(marker string) Option {
	return func(db *DB) {
		if marker != "" {
			db.cfg.ParamChar = marker
		}
	}
}

// WithNamedSeparator changes the separator of named references.
func WithNamedSeparator(sep string) Option {
	return func(db *DB) {
		db.cfg.NamedSeparator = sep
	}
}

// WithNullAsEmpty renders nil bound to %? as '' instead of NULL.
func WithNullAsEmpty(enabled bool) Option {
	return func(db *DB) {
		db.cfg.NullAsEmpty = enabled
	}
}

// WithParseCacheSize sets how many parsed templates are kept.
// Zero or a negative size disables the cache.
func WithParseCacheSize(size int) Option {
	return func(db *DB) {
		db.cfg.ParseCacheSize = size
	}
}

/*
DB renders templates and runs them on a single database connection.

The connection is established on first use. Every statement runs on that
one connection, so a DB is meant to be owned by one request or goroutine
at a time; use a Registry to hand out DBs by name.

	db, err := dragondb.New(cfg)
	if err != nil {
		panic(err)
	}
	defer db.Disconnect()

	rows, err := db.Query(ctx, "SELECT * FROM %b WHERE id IN %li", "users", []int{1, 2, 3})
*/
type DB struct {
	cfg     Config
	dialect *Dialect
	engine  *engine
	log     *slog.Logger
	hooks   hookTable

	pool     *sqlx.DB
	ownsPool bool
	conn     *sqlx.Conn
	// active is the open result set of a Walker or RawRows.
	active *sqlx.Rows

	depth         int
	serverVersion string

	insertID     int64
	affectedRows int64
	numRows      int64
	lastQuery    string
}

// New creates a DB from cfg. No connection is made until the first statement.
func New(cfg Config, opts ...Option) (*DB, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialect, _ := DialectFor(cfg.Driver)
	return newDB(cfg, dialect, nil, opts), nil
}

/*
Wrap creates a DB on top of an already opened pool. The pool is not closed
by Disconnect.

	sqlDB, _ := sql.Open("sqlite3", ":memory:")
	db := dragondb.Wrap(sqlDB, dragondb.SQLite)
*/
func Wrap(sqlDB *sql.DB, dialect *Dialect, opts ...Option) *DB {
	if dialect == nil {
		dialect = MySQL
	}
	cfg := Config{Driver: dialect.driver}.withDefaults()
	return newDB(cfg, dialect, sqlx.NewDb(sqlDB, dialect.driver), opts)
}

func newDB(cfg Config, dialect *Dialect, pool *sqlx.DB, opts []Option) *DB {
	db := &DB{
		cfg:     cfg,
		dialect: dialect,
		pool:    pool,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.engine = newEngine(db.cfg, dialect)
	return db
}

// Dialect returns the dialect statements are rendered for.
func (db *DB) Dialect() *Dialect {
	return db.dialect
}

// Parse renders a template without running it.
func (db *DB) Parse(tmpl string, args ...any) (string, error) {
	return db.engine.render(tmpl, args)
}

// ClearCache drops the parsed template cache.
func (db *DB) ClearCache() {
	db.engine.cache.Purge()
}

// InsertID returns the id generated by the last statement.
func (db *DB) InsertID() int64 {
	return db.insertID
}

// AffectedRows returns the number of rows changed by the last statement.
func (db *DB) AffectedRows() int64 {
	return db.affectedRows
}

// NumRows returns the number of rows returned by the last query.
func (db *DB) NumRows() int64 {
	return db.numRows
}

// LastQuery returns the SQL text of the last statement sent.
func (db *DB) LastQuery() string {
	return db.lastQuery
}

// TransactionDepth returns the current transaction nesting level.
func (db *DB) TransactionDepth() int {
	return db.depth
}

// connection returns the pinned connection, connecting on first use.
func (db *DB) connection(ctx context.Context) (*sqlx.Conn, error) {
	if db.active != nil {
		return nil, ErrConnectionBusy
	}
	if db.conn != nil {
		return db.conn, nil
	}

	if db.pool == nil {
		raw, err := sql.Open(db.dialect.driver, db.cfg.dataSource(db.dialect))
		if err != nil {
			return nil, errors.Join(ErrConnection, err)
		}
		db.pool = sqlx.NewDb(raw, db.dialect.driver)
		db.ownsPool = true
	}

	cctx := ctx
	if db.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, db.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.pool.PingContext(cctx); err != nil {
		return nil, errors.Join(ErrConnection, err)
	}
	conn, err := db.pool.Connx(cctx)
	if err != nil {
		return nil, errors.Join(ErrConnection, err)
	}
	db.conn = conn
	db.log.InfoContext(ctx, "database connected", slog.String("dialect", db.dialect.name))
	return conn, nil
}

// Disconnect releases the connection, closing any result set still open
// on it. A DB made by New also closes its pool; the next statement
// connects again.
func (db *DB) Disconnect() error {
	var errs []error
	if db.active != nil {
		errs = append(errs, db.active.Close())
		db.active = nil
	}
	if db.conn != nil {
		errs = append(errs, db.conn.Close())
		db.conn = nil
	}
	if db.ownsPool && db.pool != nil {
		errs = append(errs, db.pool.Close())
		db.pool = nil
		db.ownsPool = false
	}
	db.depth = 0
	db.log.Info("database disconnected", slog.String("dialect", db.dialect.name))
	return errors.Join(errs...)
}

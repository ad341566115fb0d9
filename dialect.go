package dragondb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

type dialectKind int

const (
	kindMySQL dialectKind = iota
	kindSQLite
	kindPostgreSQL
)

/*
Dialect defines how values and identifiers are quoted and which
statements drive transactions and schema introspection.

	db, err := dragondb.New(cfg)            // dialect picked from cfg.Driver
	db := dragondb.Wrap(sqlDB, dragondb.SQLite)

MySQL escapes strings with backslashes the way mysql_real_escape_string
does. SQLite and PostgreSQL double single quotes. MySQL and SQLite quote
identifiers with backticks, PostgreSQL with double quotes.
*/
type Dialect struct {
	kind   dialectKind
	name   string
	driver string
	quote  byte
	begin  string
	// savepointsSince is the first server version with SAVEPOINT support.
	savepointsSince string
	versionQuery    string
}

var (
	// MySQL is the default dialect, backed by github.com/go-sql-driver/mysql.
	MySQL = &Dialect{
		kind:            kindMySQL,
		name:            "mysql",
		driver:          "mysql",
		quote:           '`',
		begin:           "START TRANSACTION",
		savepointsSince: "5.5",
		versionQuery:    "SELECT VERSION()",
	}
	// SQLite is backed by github.com/mattn/go-sqlite3.
	SQLite = &Dialect{
		kind:            kindSQLite,
		name:            "sqlite",
		driver:          "sqlite3",
		quote:           '`',
		begin:           "BEGIN",
		savepointsSince: "3.6.8",
		versionQuery:    "SELECT sqlite_version()",
	}
	// PostgreSQL is backed by the database/sql driver of github.com/jackc/pgx/v5.
	PostgreSQL = &Dialect{
		kind:            kindPostgreSQL,
		name:            "postgresql",
		driver:          "pgx",
		quote:           '"',
		begin:           "BEGIN",
		savepointsSince: "8.0",
		versionQuery:    "SHOW server_version",
	}
)

// DialectFor returns the dialect serving a database/sql driver name.
func DialectFor(driver string) (*Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return PostgreSQL, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return d.name
}

// DriverName returns the database/sql driver name used to open connections.
func (d *Dialect) DriverName() string {
	return d.driver
}

// QuoteString returns s as a SQL string literal.
func (d *Dialect) QuoteString(s string) string {
	if d.kind != kindMySQL {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// QuoteIdent quotes a table or column name. Dots separate segments, so
// "db.users" becomes `db`.`users`. Embedded quote characters are doubled.
func (d *Dialect) QuoteIdent(name string) string {
	q := string(d.quote)
	parts := strings.Split(strings.Trim(name, q), ".")
	for i, p := range parts {
		p = strings.Trim(p, q)
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

// likePattern escapes LIKE wildcards in s and wraps it in %...%.
func (d *Dialect) likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	quoted := d.QuoteString("%" + r.Replace(s) + "%")
	if d.kind == kindSQLite {
		// SQLite LIKE has no default escape character.
		return quoted + ` ESCAPE '\'`
	}
	return quoted
}

func (d *Dialect) formatBool(b bool) string {
	switch {
	case d.kind == kindPostgreSQL && b:
		return "TRUE"
	case d.kind == kindPostgreSQL:
		return "FALSE"
	case b:
		return "1"
	}
	return "0"
}

func savepointName(level int) string {
	return "LEVEL" + strconv.Itoa(level)
}

// insertVerb returns the statement head and tail for the insert modes.
func (d *Dialect) insertVerb(mode insertMode) (head, tail string, err error) {
	switch mode {
	case insertPlain:
		return "INSERT INTO", "", nil
	case insertIgnore:
		switch d.kind {
		case kindMySQL:
			return "INSERT IGNORE INTO", "", nil
		case kindSQLite:
			return "INSERT OR IGNORE INTO", "", nil
		}
		return "INSERT INTO", " ON CONFLICT DO NOTHING", nil
	case insertReplace:
		if d.kind == kindPostgreSQL {
			return "", "", fmt.Errorf("%w: REPLACE on %s", ErrUnsupported, d.name)
		}
		return "REPLACE INTO", "", nil
	case insertUpdate:
		if d.kind != kindMySQL {
			return "", "", fmt.Errorf("%w: ON DUPLICATE KEY UPDATE on %s", ErrUnsupported, d.name)
		}
		return "INSERT INTO", "", nil
	}
	return "", "", fmt.Errorf("%w: insert mode %d", ErrUnsupported, mode)
}

// errorCode extracts the backend error code from a driver error.
func (d *Dialect) errorCode(err error) string {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return strconv.Itoa(int(myErr.Number))
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return strconv.Itoa(int(liteErr.ExtendedCode))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

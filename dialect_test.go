package dragondb

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	for driver, want := range map[string]*Dialect{
		"":           MySQL,
		"MySQL":      MySQL,
		"mariadb":    MySQL,
		"sqlite3":    SQLite,
		"sqlite":     SQLite,
		"pgx":        PostgreSQL,
		"postgres":   PostgreSQL,
		"postgresql": PostgreSQL,
	} {
		d, err := DialectFor(driver)
		require.NoError(t, err, driver)
		assert.Same(t, want, d, driver)
	}

	_, err := DialectFor("oracle")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`users`", MySQL.QuoteIdent("users"))
	assert.Equal(t, "`db`.`users`", MySQL.QuoteIdent("db.users"))
	assert.Equal(t, "`users`", MySQL.QuoteIdent("`users`"))
	assert.Equal(t, "`we``ird`", MySQL.QuoteIdent("we`ird"))
	assert.Equal(t, `"public"."users"`, PostgreSQL.QuoteIdent("public.users"))
	assert.Equal(t, `"a""b"`, PostgreSQL.QuoteIdent(`a"b`))
	assert.Equal(t, "`t`", SQLite.QuoteIdent("t"))
}

func TestInsertVerb(t *testing.T) {
	for _, tc := range []struct {
		d          *Dialect
		mode       insertMode
		head, tail string
	}{
		{MySQL, insertPlain, "INSERT INTO", ""},
		{MySQL, insertIgnore, "INSERT IGNORE INTO", ""},
		{MySQL, insertReplace, "REPLACE INTO", ""},
		{MySQL, insertUpdate, "INSERT INTO", ""},
		{SQLite, insertIgnore, "INSERT OR IGNORE INTO", ""},
		{SQLite, insertReplace, "REPLACE INTO", ""},
		{PostgreSQL, insertIgnore, "INSERT INTO", " ON CONFLICT DO NOTHING"},
	} {
		head, tail, err := tc.d.insertVerb(tc.mode)
		require.NoError(t, err)
		assert.Equal(t, tc.head, head, tc.d.Name())
		assert.Equal(t, tc.tail, tail, tc.d.Name())
	}

	_, _, err := SQLite.insertVerb(insertUpdate)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, _, err = PostgreSQL.insertVerb(insertReplace)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "1062", MySQL.errorCode(&mysql.MySQLError{Number: 1062}))
	assert.Equal(t, "23505", PostgreSQL.errorCode(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, "2067", SQLite.errorCode(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.Empty(t, MySQL.errorCode(errors.New("boom")))
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "1", MySQL.formatBool(true))
	assert.Equal(t, "0", SQLite.formatBool(false))
	assert.Equal(t, "TRUE", PostgreSQL.formatBool(true))
	assert.Equal(t, "FALSE", PostgreSQL.formatBool(false))
	assert.Equal(t, "LEVEL3", savepointName(3))
}

package dragondb

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(d *Dialect) *engine {
	return newEngine(Config{}.withDefaults(), d)
}

func TestRender(t *testing.T) {
	e := testEngine(MySQL)
	for _, tc := range []struct {
		name string
		tmpl string
		args []any
		want string
	}{
		{"ident and int list", "SELECT * FROM %b WHERE id IN %li", []any{"users", []int{1, 2, 3}}, "SELECT * FROM `users` WHERE id IN (1, 2, 3)"},
		{"hash update", "UPDATE %b SET %hc WHERE id = %i", []any{"users", H("name", "Bob"), 7}, "UPDATE `users` SET `name`='Bob' WHERE id = 7"},
		{"hash keeps order", "%hc", []any{H("b", 1, "a", "x")}, "`b`=1, `a`='x'"},
		{"map hash is sorted", "%ha", []any{map[string]any{"b": 2, "a": 1}}, "`a`=1 AND `b`=2"},
		{"or hash", "%ho", []any{H("a", nil, "b", true)}, "`a`=NULL OR `b`=1"},
		{"int floors", "%i %i %i", []any{3.7, "-2.5", "12"}, "3 -3 12"},
		{"double", "%d %d", []any{1.5, "2"}, "1.5 2"},
		{"dotted ident", "%b", []any{"db.users"}, "`db`.`users`"},
		{"ident list", "%lb", []any{[]string{"a", "b"}}, "(`a`, `b`)"},
		{"string list", "%ls", []any{[]string{"a", "b"}}, "('a', 'b')"},
		{"double list", "%ld", []any{[]any{1.5, "2", 3}}, "(1.5, 2, 3)"},
		{"time list", "%lt", []any{[]any{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02"}}, "('2024-01-02 03:04:05', '2024-01-02 00:00:00')"},
		{"raw list", "%ll", []any{[]string{"a+1", "b"}}, "(a+1, b)"},
		{"time", "%t", []any{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}, "'2024-01-02 03:04:05'"},
		{"time from string", "%t", []any{"2024-01-02"}, "'2024-01-02 00:00:00'"},
		{"like", "%ss", []any{"50%_off"}, `'%50\\%\\_off%'`},
		{"any", "%? %? %? %? %?", []any{nil, true, 12, Raw("NOW()"), "x"}, "NULL 1 12 NOW() 'x'"},
		{"any list", "%l?", []any{[]any{1, "a", nil}}, "(1, 'a', NULL)"},
		{"any lists", "VALUES %ll?", []any{[][]any{{1, "a"}, {2, "b"}}}, "VALUES (1, 'a'), (2, 'b')"},
		{"explicit index", "%s1 %s0 %s1", []any{"a", "b"}, "'b' 'a' 'b'"},
		{"named", "SELECT * FROM %b_table WHERE id = %i_id", []any{Named{"table": "users", "id": 7}}, "SELECT * FROM `users` WHERE id = 7"},
		{"escaped marker", "%%s %s", []any{"x"}, "%s 'x'"},
		{"no placeholders", "SELECT 1", nil, "SELECT 1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sql, err := e.render(tc.tmpl, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sql)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	e := testEngine(MySQL)
	for _, tc := range []struct {
		name string
		tmpl string
		args []any
		want error
	}{
		{"empty list", "%li", []any{[]int{}}, ErrEmptyArray},
		{"empty hash", "%hc", []any{Hash{}}, ErrEmptyArray},
		{"list to scalar", "%s", []any{[]int{1}}, ErrTypeMismatch},
		{"array to any", "%?", []any{[]string{"a"}}, ErrTypeMismatch},
		{"scalar to list", "%li", []any{5}, ErrTypeMismatch},
		{"not a number", "%i", []any{"abc"}, ErrTypeMismatch},
		{"bad time", "%t", []any{"yesterday"}, ErrTypeMismatch},
		{"string in double list", "%ld", []any{[]string{"x"}}, ErrTypeMismatch},
		{"bad time in time list", "%lt", []any{[]any{"2024-01-02", "soon"}}, ErrTypeMismatch},
		{"nil where", "WHERE %l", []any{(*Where)(nil)}, ErrTypeMismatch},
		{"nil where as any", "WHERE %?", []any{(*Where)(nil)}, ErrTypeMismatch},
		{"nested list element", "%li", []any{[]any{[]int{1}}}, ErrTypeMismatch},
		{"unknown named", "WHERE id = %i_id", []any{Named{"x": 1}}, ErrUnknownNamedArgument},
		{"too few args", "%s %s", []any{"a"}, ErrTemplate},
		{"mixed", "%s0 %s_a", []any{"a"}, ErrTemplate},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.render(tc.tmpl, tc.args)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRenderUnknownNamedArgument(t *testing.T) {
	_, err := testEngine(MySQL).render("WHERE id = %i_id", []any{Named{"x": 1}})
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "id", argErr.Arg)
	assert.Contains(t, err.Error(), `couldn't find named arg "id"`)
}

// unescapeMySQL reverses backslash escaping the way the MySQL parser does.
func unescapeMySQL(lit string) string {
	lit = lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' || i+1 == len(lit) {
			b.WriteByte(c)
			continue
		}
		i++
		switch lit[i] {
		case '0':
			b.WriteByte(0)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'Z':
			b.WriteByte('\x1a')
		default:
			b.WriteByte(lit[i])
		}
	}
	return b.String()
}

func TestQuoteStringRoundTrip(t *testing.T) {
	values := []string{`O'Neil`, `back\slash`, `it's a \'trap\'`, "nul\x00 line\nfeed\r ctrl\x1a \"q\"", ""}
	for _, v := range values {
		assert.Equal(t, v, unescapeMySQL(MySQL.QuoteString(v)))

		lit := SQLite.QuoteString(v)
		assert.Equal(t, v, strings.ReplaceAll(lit[1:len(lit)-1], "''", "'"))
	}
	assert.Equal(t, `'O\'Neil \\ x'`, MySQL.QuoteString(`O'Neil \ x`))
	assert.Equal(t, `'O''Neil \ x'`, SQLite.QuoteString(`O'Neil \ x`))
}

func TestRenderDialects(t *testing.T) {
	sql, err := testEngine(PostgreSQL).render("SELECT %b FROM %b WHERE a = %? AND b = %s", []any{"name", "db.users", false, "it's"})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name" FROM "db"."users" WHERE a = FALSE AND b = 'it''s'`, sql)

	sql, err = testEngine(SQLite).render("name LIKE %ss", []any{"50%_off"})
	require.NoError(t, err)
	assert.Equal(t, `name LIKE '%50\%\_off%' ESCAPE '\'`, sql)
}

func TestRenderOptions(t *testing.T) {
	cfg := Config{ParamChar: ":", NullAsEmpty: true}.withDefaults()
	e := newEngine(cfg, MySQL)

	sql, err := e.render("SELECT * FROM :b WHERE a = :? AND b = :s_x", []any{"t", nil})
	require.Error(t, err, "mixed styles")
	assert.Empty(t, sql)

	sql, err = e.render("SELECT * FROM :b WHERE a = :? AND b = :s AND c = '::'", []any{"t", nil, "x"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `t` WHERE a = '' AND b = 'x' AND c = ':'", sql)

	assert.Equal(t, "INSERT INTO :b", e.expand("INSERT INTO %b"))
}

func TestRenderWhere(t *testing.T) {
	e := testEngine(MySQL)
	where := NewWhere(And)
	where.Add("age > %i", 18)
	where.Add("name IN %ls", []string{"a", "b"})

	sql, err := e.render("SELECT * FROM users WHERE %l", []any{where})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE (age > 18) AND (name IN ('a', 'b'))", sql)

	_, err = e.render("WHERE %s", []any{where})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

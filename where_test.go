package dragondb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereEmpty(t *testing.T) {
	sql, args := NewWhere(And).TextAndArgs()
	assert.Equal(t, "(1=1)", sql)
	assert.Empty(t, args)
}

func TestWhereNested(t *testing.T) {
	where := NewWhere(And)
	where.Add("age > %i", 18)
	sub := where.AddClause(Or)
	sub.Add("role = %s", "admin")
	sub.Add("role = %s", "owner")
	where.NegateLast()

	sql, args := where.TextAndArgs()
	assert.Equal(t, "(age > %i) AND ((NOT ((role = %s) OR (role = %s))))", sql)
	assert.Equal(t, []any{18, "admin", "owner"}, args)

	rendered, err := testEngine(MySQL).render(sql, args)
	require.NoError(t, err)
	assert.Equal(t, "(age > 18) AND ((NOT ((role = 'admin') OR (role = 'owner'))))", rendered)
}

func TestWhereNegate(t *testing.T) {
	where := NewWhere("or").Add("a = %i", 1).Add("b = %i", 2).NegateLast()
	sql, _ := where.TextAndArgs()
	assert.Equal(t, "(a = %i) OR (NOT (b = %i))", sql)

	where.Negate()
	sql, _ = where.TextAndArgs()
	assert.Equal(t, "(NOT ((a = %i) OR (NOT (b = %i))))", sql)

	assert.Equal(t, 0, NewWhere(And).NegateLast().Len())
}

func TestWhereAddWhereCopies(t *testing.T) {
	sub := NewWhere(Or).Add("x = %i", 1)
	where := NewWhere(And).AddWhere(sub)
	sub.Add("y = %i", 2)

	sql, args := where.TextAndArgs()
	assert.Equal(t, "((x = %i))", sql)
	assert.Equal(t, []any{1}, args)
	assert.Equal(t, 2, sub.Len())
}

func TestWhereEmptyClause(t *testing.T) {
	where := NewWhere(And).Add("a = %s", "x")
	where.AddClause(Or)
	rendered, err := testEngine(SQLite).render("SELECT * FROM t WHERE %l", []any{where})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE (a = 'x') AND ((1=1))", rendered)
}

package dragondb

import "strings"

// Combinator joins the children of a Where node.
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

// whereNode is a child of a Where: either a whereLeaf or a *Where.
type whereNode interface {
	textAndArgs() (string, []any)
	clone() whereNode
}

type whereLeaf struct {
	sql  string
	args []any
}

func (l whereLeaf) textAndArgs() (string, []any) {
	return l.sql, l.args
}

func (l whereLeaf) clone() whereNode {
	return whereLeaf{sql: l.sql, args: append([]any(nil), l.args...)}
}

/*
Where builds a boolean expression from template fragments.

	where := dragondb.NewWhere(dragondb.And)
	where.Add("age > %i", 18)
	sub := where.AddClause(dragondb.Or)
	sub.Add("role = %s", "admin")
	sub.Add("role = %s", "owner")
	where.NegateLast()

	rows, err := db.Query(ctx, "SELECT * FROM users WHERE %l", where)
	// SELECT * FROM users WHERE (age > 18) AND ((NOT ((role = 'admin') OR (role = 'owner'))))

Every fragment is wrapped in parentheses and the arguments of all
fragments are merged in order, so fragments should use implicit
positional placeholders (%s, %i, ...). An empty Where renders as (1=1).
*/
type Where struct {
	combinator Combinator
	negate     bool
	children   []whereNode
}

// NewWhere creates an empty tree joined by c. Anything but Or means And.
func NewWhere(c Combinator) *Where {
	if !strings.EqualFold(string(c), string(Or)) {
		c = And
	} else {
		c = Or
	}
	return &Where{combinator: c}
}

// Add appends a fragment with its arguments.
func (w *Where) Add(sql string, args ...any) *Where {
	w.children = append(w.children, whereLeaf{sql: sql, args: args})
	return w
}

// AddWhere appends a copy of sub. Later changes to sub do not affect w.
func (w *Where) AddWhere(sub *Where) *Where {
	w.children = append(w.children, sub.clone())
	return w
}

// AddClause appends a new empty group joined by c and returns it.
func (w *Where) AddClause(c Combinator) *Where {
	sub := NewWhere(c)
	w.children = append(w.children, sub)
	return sub
}

// Negate flips the negation of the whole tree.
func (w *Where) Negate() *Where {
	w.negate = !w.negate
	return w
}

// NegateLast negates the most recently added child.
func (w *Where) NegateLast() *Where {
	i := len(w.children) - 1
	if i < 0 {
		return w
	}
	switch c := w.children[i].(type) {
	case *Where:
		c.Negate()
	case whereLeaf:
		c.sql = "NOT (" + c.sql + ")"
		w.children[i] = c
	}
	return w
}

// Len returns the number of direct children.
func (w *Where) Len() int {
	return len(w.children)
}

// TextAndArgs flattens the tree into one template and its merged arguments.
func (w *Where) TextAndArgs() (string, []any) {
	return w.textAndArgs()
}

func (w *Where) textAndArgs() (string, []any) {
	if len(w.children) == 0 {
		return "(1=1)", nil
	}

	parts := make([]string, len(w.children))
	var args []any
	for i, c := range w.children {
		sql, a := c.textAndArgs()
		parts[i] = "(" + sql + ")"
		args = append(args, a...)
	}
	sql := strings.Join(parts, " "+string(w.combinator)+" ")
	if w.negate {
		sql = "(NOT (" + sql + "))"
	}
	return sql, args
}

func (w *Where) clone() whereNode {
	c := &Where{combinator: w.combinator, negate: w.negate, children: make([]whereNode, len(w.children))}
	for i, child := range w.children {
		c.children[i] = child.clone()
	}
	return c
}

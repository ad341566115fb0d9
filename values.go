package dragondb

import (
	"sort"
	"strconv"
)

// Raw is a literal SQL fragment. Bound to %? it is emitted as is:
//
//	db.Exec(ctx, "UPDATE %b SET seen = %?", "users", dragondb.Raw("NOW()"))
//
// Never build a Raw value from user input.
type Raw string

// Row is a result row keyed by column name.
type Row map[string]any

// Pair is one key/value entry of a Hash.
type Pair struct {
	Key   string
	Value any
}

/*
Hash is an ordered column => value list for the %hc, %ha and %ho
placeholders and for the Insert family of helpers.

	dragondb.Hash{{"name", "Bob"}, {"age", 42}}

Plain map[string]any values are accepted too, but Go maps have no order,
so their keys are emitted sorted.
*/
type Hash []Pair

// H builds a Hash from alternating keys and values.
// A trailing key without a value is bound to nil.
func H(kv ...any) Hash {
	h := make(Hash, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		h = append(h, Pair{Key: keyString(kv[i]), Value: v})
	}
	return h
}

// Keys returns the hash keys in order.
func (h Hash) Keys() []string {
	keys := make([]string, len(h))
	for i, p := range h {
		keys[i] = p.Key
	}
	return keys
}

// Get returns the value stored under key.
func (h Hash) Get(key string) (any, bool) {
	for _, p := range h {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

func keyString(k any) string {
	switch v := k.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	s, _ := toString("key", k)
	return s
}

func hashFromMap(m map[string]any) Hash {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := make(Hash, len(keys))
	for i, k := range keys {
		h[i] = Pair{Key: k, Value: m[k]}
	}
	return h
}

// asHash converts any of the supported associative types.
func asHash(v any) (Hash, bool) {
	switch h := v.(type) {
	case Hash:
		return h, true
	case Named:
		return hashFromMap(h), true
	case map[string]any:
		return hashFromMap(h), true
	case Row:
		return hashFromMap(h), true
	}
	return nil, false
}

// Bindings is the argument set of one template invocation: either
// Positional or Named.
type Bindings interface {
	lookup(tok token) (any, error)
}

// Positional binds placeholders by zero-based index.
type Positional []any

// Named binds placeholders by name (%s_name). Pass it as the only argument:
//
//	db.Query(ctx, "SELECT * FROM users WHERE id = %i_id", dragondb.Named{"id": 7})
type Named map[string]any

func (p Positional) lookup(tok token) (any, error) {
	return p[tok.index], nil
}

func (n Named) lookup(tok token) (any, error) {
	v, ok := n[tok.name]
	if !ok {
		return nil, &ArgumentError{
			Kind: ErrUnknownNamedArgument,
			Arg:  tok.name,
			Msg:  "couldn't find named arg " + strconv.Quote(tok.name),
		}
	}
	return v, nil
}

func asNamed(v any) (Named, bool) {
	switch m := v.(type) {
	case Named:
		return m, true
	case map[string]any:
		return Named(m), true
	case Row:
		return Named(m), true
	case Hash:
		n := make(Named, len(m))
		for _, p := range m {
			n[p.Key] = p.Value
		}
		return n, true
	}
	return nil, false
}

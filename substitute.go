package dragondb

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"
)

// engine renders templates into final SQL text.
type engine struct {
	scanner     scanner
	dialect     *Dialect
	cache       *parseCache
	nullAsEmpty bool
}

func newEngine(cfg Config, dialect *Dialect) *engine {
	return &engine{
		scanner:     scanner{marker: cfg.ParamChar, sep: cfg.NamedSeparator},
		dialect:     dialect,
		cache:       newParseCache(cfg.ParseCacheSize),
		nullAsEmpty: cfg.NullAsEmpty,
	}
}

// expand rewrites the % markers of a built-in template to the configured
// marker.
func (e *engine) expand(tmpl string) string {
	if e.scanner.marker == "%" {
		return tmpl
	}
	return strings.ReplaceAll(tmpl, "%", e.scanner.marker)
}

func (e *engine) parse(src string) (*template, error) {
	if t, ok := e.cache.get(src); ok {
		return t, nil
	}
	t, err := e.scanner.parse(src)
	if err != nil {
		return nil, err
	}
	e.cache.put(src, t)
	return t, nil
}

// render parses src, binds args and substitutes every placeholder.
func (e *engine) render(src string, args []any) (string, error) {
	t, err := e.parse(src)
	if err != nil {
		return "", err
	}
	b, err := t.bind(args)
	if err != nil {
		return "", err
	}

	buf := getBuffer()
	defer putBuffer(buf)
	if err := e.substitute(buf, t, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *engine) substitute(buf *bytebufferpool.ByteBuffer, t *template, b Bindings) error {
	for _, f := range t.frags {
		if !f.isTok {
			buf.WriteString(f.text)
			continue
		}
		if f.tok.code == codeEscape {
			buf.WriteString(e.scanner.marker)
			continue
		}
		v, err := b.lookup(f.tok)
		if err != nil {
			return err
		}
		s, err := e.convert(f.tok, v)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	}
	return nil
}

func (e *engine) convert(tok token, v any) (string, error) {
	arg := tok.key()

	// WHERE trees flatten and go through the whole pipeline again.
	if w, ok := v.(*Where); ok {
		if w == nil {
			return "", typeMismatch(arg, "nil WHERE clause")
		}
		if tok.code != CodeRaw && tok.code != CodeAny {
			return "", typeMismatch(arg, "a WHERE clause must use the %%l placeholder, not %%%s", tok.code)
		}
		sql, args := w.TextAndArgs()
		return e.render(sql, args)
	}

	switch tok.code {
	case CodeHashComma:
		return e.hash(arg, v, ", ")
	case CodeHashAnd:
		return e.hash(arg, v, " AND ")
	case CodeHashOr:
		return e.hash(arg, v, " OR ")
	case CodeAnyLists:
		return e.doubleList(arg, v)
	}
	if elem, ok := listElem[tok.code]; ok {
		items, err := listItems(arg, v)
		if err != nil {
			return "", err
		}
		return e.list(arg, elem, items)
	}
	if isCollection(v) {
		return "", typeMismatch(arg, "expected a single value for %%%s, got %T", tok.code, v)
	}
	return e.scalar(arg, tok.code, v)
}

func (e *engine) scalar(arg string, code Code, v any) (string, error) {
	switch code {
	case CodeString:
		s, err := toString(arg, v)
		if err != nil {
			return "", err
		}
		return e.dialect.QuoteString(s), nil
	case CodeInt:
		n, err := toInt(arg, v)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case CodeDouble:
		f, err := toFloat(arg, v)
		if err != nil {
			return "", err
		}
		return formatFloat(f), nil
	case CodeIdent:
		s, err := toString(arg, v)
		if err != nil {
			return "", err
		}
		return e.dialect.QuoteIdent(s), nil
	case CodeRaw:
		return toString(arg, v)
	case CodeTime:
		ts, err := toTimestamp(arg, v)
		if err != nil {
			return "", err
		}
		return e.dialect.QuoteString(ts), nil
	case CodeLike:
		s, err := toString(arg, v)
		if err != nil {
			return "", err
		}
		return e.dialect.likePattern(s), nil
	case CodeAny:
		return e.sanitize(arg, v)
	}
	return "", typeMismatch(arg, "unknown placeholder %%%s", code)
}

// sanitize renders a %? value. The accepted kinds are a closed set; slices,
// maps and structs are refused instead of degrading to an empty string.
func (e *engine) sanitize(arg string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		if e.nullAsEmpty {
			return "''", nil
		}
		return "NULL", nil
	case Raw:
		return string(x), nil
	case bool:
		return e.dialect.formatBool(x), nil
	case string:
		return e.dialect.QuoteString(x), nil
	case []byte:
		return e.dialect.QuoteString(string(x)), nil
	case time.Time:
		return e.dialect.QuoteString(x.Format(TimestampLayout)), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		f, err := toFloat(arg, x)
		if err != nil {
			return "", err
		}
		return formatFloat(f), nil
	case json.Number:
		if _, err := x.Float64(); err != nil {
			return "", typeMismatch(arg, "%q is not a number", x.String())
		}
		return x.String(), nil
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return "", typeMismatch(arg, "%v", err)
		}
		return e.sanitize(arg, dv)
	case fmt.Stringer:
		return e.dialect.QuoteString(x.String()), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return e.dialect.QuoteString(rv.String()), nil
	case reflect.Bool:
		return e.dialect.formatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return toString(arg, v)
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(arg, v)
		if err != nil {
			return "", err
		}
		return formatFloat(f), nil
	case reflect.Ptr:
		if rv.IsNil() {
			return e.sanitize(arg, nil)
		}
		return e.sanitize(arg, rv.Elem().Interface())
	}
	return "", typeMismatch(arg, "can't use %T with the %%? placeholder", v)
}

func (e *engine) list(arg string, elem Code, items []any) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		if isCollection(item) {
			return "", typeMismatch(arg, "element %d: expected a single value, got %T", i, item)
		}
		s, err := e.scalar(arg, elem, item)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// doubleList renders rows for multi-row VALUES: (a, b), (c, d).
func (e *engine) doubleList(arg string, v any) (string, error) {
	rows, err := listItems(arg, v)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(rows))
	for i, row := range rows {
		if !isCollection(row) {
			return "", typeMismatch(arg, "expected an array of arrays, element %d is %T", i, row)
		}
		items, err := listItems(arg, row)
		if err != nil {
			return "", err
		}
		if parts[i], err = e.list(arg, CodeAny, items); err != nil {
			return "", err
		}
	}
	return strings.Join(parts, ", "), nil
}

func (e *engine) hash(arg string, v any, sep string) (string, error) {
	h, ok := asHash(v)
	if !ok {
		return "", typeMismatch(arg, "expected a hash, got %T", v)
	}
	if len(h) == 0 {
		return "", &ArgumentError{Kind: ErrEmptyArray, Arg: arg, Msg: "hash can't be empty"}
	}
	parts := make([]string, len(h))
	for i, p := range h {
		if isCollection(p.Value) {
			return "", typeMismatch(arg, "hash value %q: expected a single value, got %T", p.Key, p.Value)
		}
		s, err := e.sanitize(arg, p.Value)
		if err != nil {
			return "", err
		}
		parts[i] = e.dialect.QuoteIdent(p.Key) + "=" + s
	}
	return strings.Join(parts, sep), nil
}

package dragondb

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the canonical form of %t values.
const TimestampLayout = "2006-01-02 15:04:05"

var timeLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

func formatFloat(f float64) string {
	if a := math.Abs(f); a == 0 || (a >= 1e-6 && a < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// isCollection reports values that only list and hash codes accept.
func isCollection(v any) bool {
	switch v.(type) {
	case nil, []byte, Raw:
		return false
	case Hash, Named:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// listItems returns the elements of a list argument.
func listItems(arg string, v any) ([]any, error) {
	var items []any
	switch x := v.(type) {
	case nil, []byte:
		return nil, typeMismatch(arg, "expected an array, got %T", v)
	case []any:
		items = x
	case Hash:
		items = make([]any, len(x))
		for i, p := range x {
			items[i] = p.Value
		}
	default:
		if h, ok := asHash(v); ok {
			return listItems(arg, h)
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, typeMismatch(arg, "expected an array, got %T", v)
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}
	if len(items) == 0 {
		return nil, &ArgumentError{Kind: ErrEmptyArray, Arg: arg, Msg: "array can't be empty"}
	}
	return items, nil
}

func toString(arg string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case Raw:
		return string(x), nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return formatFloat(x), nil
	case time.Time:
		return x.Format(TimestampLayout), nil
	case json.Number:
		return x.String(), nil
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return "", typeMismatch(arg, "%v", err)
		}
		return toString(arg, dv)
	case fmt.Stringer:
		return x.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float()), nil
	case reflect.Bool:
		return toString(arg, rv.Bool())
	case reflect.Ptr:
		if rv.IsNil() {
			return "", nil
		}
		return toString(arg, rv.Elem().Interface())
	}
	return "", typeMismatch(arg, "can't convert %T to a string", v)
}

// toInt coerces v to an integer, flooring fractional values.
func toInt(arg string, v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		return parseInt(arg, x)
	case []byte:
		return parseInt(arg, string(x))
	case json.Number:
		return parseInt(arg, string(x))
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return 0, typeMismatch(arg, "%v", err)
		}
		return toInt(arg, dv)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, typeMismatch(arg, "%d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return floorInt(arg, rv.Float())
	case reflect.String:
		return parseInt(arg, rv.String())
	case reflect.Bool:
		return toInt(arg, rv.Bool())
	case reflect.Ptr:
		if rv.IsNil() {
			return 0, nil
		}
		return toInt(arg, rv.Elem().Interface())
	}
	return 0, typeMismatch(arg, "can't convert %T to an integer", v)
}

func parseInt(arg, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, typeMismatch(arg, "%q is not a number", s)
	}
	return floorInt(arg, f)
}

func floorInt(arg string, f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, typeMismatch(arg, "%v is out of integer range", f)
	}
	return int64(math.Floor(f)), nil
}

func toFloat(arg string, v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		f = x
	case string, []byte, json.Number:
		s, _ := toString(arg, x)
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, typeMismatch(arg, "%q is not a number", s)
		}
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return 0, typeMismatch(arg, "%v", err)
		}
		return toFloat(arg, dv)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			f = float64(rv.Uint())
		case reflect.Bool:
			if rv.Bool() {
				f = 1
			}
		case reflect.String:
			return toFloat(arg, rv.String())
		case reflect.Ptr:
			if rv.IsNil() {
				return 0, nil
			}
			return toFloat(arg, rv.Elem().Interface())
		default:
			return 0, typeMismatch(arg, "can't convert %T to a number", v)
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, typeMismatch(arg, "%v is not a finite number", f)
	}
	return f, nil
}

// toTimestamp renders v in TimestampLayout.
func toTimestamp(arg string, v any) (string, error) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(TimestampLayout), nil
	case *time.Time:
		if x != nil {
			return x.Format(TimestampLayout), nil
		}
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(TimestampLayout), nil
			}
		}
		return "", typeMismatch(arg, "can't parse %q as a timestamp", x)
	case []byte:
		return toTimestamp(arg, string(x))
	}
	return "", typeMismatch(arg, "can't convert %T to a timestamp", v)
}

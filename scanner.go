package dragondb

import (
	"math"
	"strconv"
	"strings"
)

// Code is a placeholder type code, the text between the marker and the
// optional argument reference: "s" in %s, "li" in %li2, "hc" in %hc_fields.
type Code string

const (
	CodeString     Code = "s"   // escaped string
	CodeInt        Code = "i"   // integer
	CodeDouble     Code = "d"   // floating point number
	CodeIdent      Code = "b"   // quoted identifier, dots split segments
	CodeRaw        Code = "l"   // raw text, not escaped
	CodeTime       Code = "t"   // timestamp
	CodeLike       Code = "ss"  // %value% LIKE pattern
	CodeStringList Code = "ls"  // (s, s, ...)
	CodeIntList    Code = "li"  // (i, i, ...)
	CodeDoubleList Code = "ld"  // (d, d, ...)
	CodeIdentList  Code = "lb"  // (b, b, ...)
	CodeRawList    Code = "ll"  // (l, l, ...)
	CodeTimeList   Code = "lt"  // (t, t, ...)
	CodeAny        Code = "?"   // type chosen by the value
	CodeAnyList    Code = "l?"  // (?, ?, ...)
	CodeAnyLists   Code = "ll?" // (?, ?), (?, ?), ...
	CodeHashComma  Code = "hc"  // `k`=v, `k`=v
	CodeHashAnd    Code = "ha"  // `k`=v AND `k`=v
	CodeHashOr     Code = "ho"  // `k`=v OR `k`=v

	// codeEscape is a doubled marker, emitted as a single marker.
	codeEscape Code = "\x00"
)

// codes is ordered longest first so the first match at a position wins.
var codes = [...]Code{
	CodeAnyLists,
	CodeLike, CodeStringList, CodeIntList, CodeDoubleList, CodeIdentList,
	CodeRawList, CodeTimeList, CodeAnyList, CodeHashComma, CodeHashAnd, CodeHashOr,
	CodeString, CodeInt, CodeDouble, CodeIdent, CodeRaw, CodeTime, CodeAny,
}

// listElem maps list codes to the scalar code applied to each element.
var listElem = map[Code]Code{
	CodeStringList: CodeString,
	CodeIntList:    CodeInt,
	CodeDoubleList: CodeDouble,
	CodeIdentList:  CodeIdent,
	CodeRawList:    CodeRaw,
	CodeTimeList:   CodeTime,
	CodeAnyList:    CodeAny,
}

// IsList reports whether the code expects a collection value.
func (c Code) IsList() bool {
	switch c {
	case CodeAnyLists, CodeHashComma, CodeHashAnd, CodeHashOr:
		return true
	}
	_, ok := listElem[c]
	return ok
}

// token is one placeholder occurrence. index is -1 for named references.
type token struct {
	code     Code
	index    int
	name     string
	explicit bool
	pos      int
	end      int
}

func (t token) key() string {
	if t.name != "" {
		return t.name
	}
	return strconv.Itoa(t.index)
}

type scanner struct {
	marker string
	sep    string
}

// next finds the earliest placeholder at or after from.
func (s scanner) next(src string, from int) (token, bool) {
	for i := from; i < len(src); {
		j := strings.Index(src[i:], s.marker)
		if j < 0 {
			return token{}, false
		}
		p := i + j
		start := p + len(s.marker)
		if code, ok := s.match(src[start:]); ok {
			t := token{code: code, index: -1, pos: p}
			if code == codeEscape {
				t.end = start + len(s.marker)
				return t, true
			}
			t.end = start + len(code)
			s.suffix(src, &t)
			return t, true
		}
		i = start
	}
	return token{}, false
}

func (s scanner) match(rest string) (Code, bool) {
	for _, c := range codes {
		if strings.HasPrefix(rest, string(c)) {
			return c, true
		}
	}
	if strings.HasPrefix(rest, s.marker) {
		return codeEscape, true
	}
	return "", false
}

// suffix consumes an explicit index (%s2) or a name (%s_name).
func (s scanner) suffix(src string, t *token) {
	rest := src[t.end:]
	if n := spanOf(rest, isDigit); n > 0 {
		idx, err := strconv.Atoi(rest[:n])
		if err != nil {
			idx = math.MaxInt32
		}
		t.index = idx
		t.explicit = true
		t.end += n
		return
	}
	if s.sep == "" || !strings.HasPrefix(rest, s.sep) {
		return
	}
	name := rest[len(s.sep):]
	if n := spanOf(name, isNameChar); n > 0 {
		t.name = name[:n]
		t.end += len(s.sep) + n
	}
}

func spanOf(s string, fn func(byte) bool) int {
	n := 0
	for n < len(s) && fn(s[n]) {
		n++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameChar(c byte) bool {
	return isDigit(c) || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

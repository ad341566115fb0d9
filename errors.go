package dragondb

import (
	"errors"
	"fmt"
)

var (
	ErrTemplate             = errors.New("dragondb: invalid template")
	ErrTypeMismatch         = errors.New("dragondb: argument type mismatch")
	ErrEmptyArray           = errors.New("dragondb: empty array argument")
	ErrUnknownNamedArgument = errors.New("dragondb: unknown named argument")
	ErrSQL                  = errors.New("dragondb: statement failed")
	ErrConnection           = errors.New("dragondb: failed to connect")
	ErrConnectionBusy       = errors.New("dragondb: connection is busy with an unfinished result set")
	ErrTransactionVersion   = errors.New("dragondb: server does not support nested transactions")
	ErrUnsupported          = errors.New("dragondb: not supported by dialect")
	ErrUnknownDriver        = errors.New("dragondb: unknown driver")
	ErrUnknownConnection    = errors.New("dragondb: unknown connection name")
	ErrInvalidConfig        = errors.New("dragondb: invalid configuration")
)

// TemplateErrorKind tells which template rule a caller broke.
type TemplateErrorKind int

const (
	// MixedReferenceStyle: positional and named placeholders in one template.
	MixedReferenceStyle TemplateErrorKind = iota + 1
	// MissingNamedMap: named placeholders without exactly one map argument.
	MissingNamedMap
	// ArgumentCountMismatch: fewer arguments than the highest index needs.
	ArgumentCountMismatch
)

func (k TemplateErrorKind) String() string {
	switch k {
	case MixedReferenceStyle:
		return "mixed-reference-style"
	case MissingNamedMap:
		return "missing-named-map"
	case ArgumentCountMismatch:
		return "argument-count-mismatch"
	}
	return "unknown"
}

// TemplateError reports a template that is inconsistent with its arguments.
// It is a caller bug and retrying the same call never helps.
type TemplateError struct {
	Kind     TemplateErrorKind
	Template string
	Msg      string
}

func (e *TemplateError) Error() string {
	return "dragondb: " + e.Msg
}

// Is matches ErrTemplate.
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}

// ArgumentError reports a bound value that cannot be substituted.
// Kind is one of ErrTypeMismatch, ErrEmptyArray or ErrUnknownNamedArgument,
// and errors.Is matches it.
type ArgumentError struct {
	Kind error
	Arg  string
	Msg  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("dragondb: arg %s: %s", e.Arg, e.Msg)
}

func (e *ArgumentError) Is(target error) bool {
	return target == e.Kind
}

func typeMismatch(arg, format string, a ...any) error {
	return &ArgumentError{Kind: ErrTypeMismatch, Arg: arg, Msg: fmt.Sprintf(format, a...)}
}

// SQLError is returned when the backend rejects a statement.
type SQLError struct {
	Query string
	// Code is the backend error code: the MySQL error number, the SQLite
	// extended result code or the PostgreSQL SQLSTATE. Empty when unknown.
	Code string
	Err  error
}

func (e *SQLError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dragondb: %v (code %s) in query: %s", e.Err, e.Code, e.Query)
	}
	return fmt.Sprintf("dragondb: %v in query: %s", e.Err, e.Query)
}

func (e *SQLError) Unwrap() error {
	return e.Err
}

func (e *SQLError) Is(target error) bool {
	return target == ErrSQL
}

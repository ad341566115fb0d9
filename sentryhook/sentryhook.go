// Package sentryhook reports statements rejected by the database to Sentry.
package sentryhook

import (
	"errors"

	"github.com/getsentry/sentry-go"

	"github.com/stefanak-michal/dragondb"
)

// Option adjusts what is sent with each event.
type Option func(*reporter)

// WithRedact rewrites the SQL text before it leaves the process.
func WithRedact(fn func(query string) string) Option {
	return func(r *reporter) {
		r.redact = fn
	}
}

type reporter struct {
	hub    *sentry.Hub
	redact func(string) string
}

/*
Install registers a run-failed hook on db that captures every failed
statement on hub, or on the current hub when hub is nil. The hook never
marks an error as handled.

	id := sentryhook.Install(db, nil, sentryhook.WithRedact(stripLiterals))
	defer db.RemoveHook(id)
*/
func Install(db *dragondb.DB, hub *sentry.Hub, opts ...Option) dragondb.HookID {
	r := &reporter{hub: hub}
	for _, opt := range opts {
		opt(r)
	}
	dialect := db.Dialect().Name()

	return db.OnRunFailed(func(ev dragondb.RunEvent) bool {
		r.capture(dialect, ev)
		return false
	})
}

func (r *reporter) capture(dialect string, ev dragondb.RunEvent) {
	hub := r.hub
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	query := ev.Query
	if r.redact != nil {
		query = r.redact(query)
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("db.system", dialect)
		var sqlErr *dragondb.SQLError
		if errors.As(ev.Err, &sqlErr) && sqlErr.Code != "" {
			scope.SetTag("db.error_code", sqlErr.Code)
		}
		scope.SetContext("sql", sentry.Context{
			"query":      query,
			"runtime_ms": ev.Runtime.Milliseconds(),
		})
		scope.SetFingerprint([]string{"dragondb", dialect, query})
		// The driver error, so the unredacted query stays out of the message.
		cause := errors.Unwrap(ev.Err)
		if cause == nil {
			cause = ev.Err
		}
		hub.CaptureException(cause)
	})
}

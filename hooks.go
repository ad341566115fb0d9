package dragondb

import (
	"time"
)

// HookKind names the points of the statement pipeline handlers attach to.
type HookKind int

const (
	// HookPreParse runs before a template is parsed; it may rewrite it.
	HookPreParse HookKind = iota
	// HookPreRun runs before final SQL is sent; it may rewrite it.
	HookPreRun
	// HookPostRun runs after every statement.
	HookPostRun
	// HookRunSuccess runs after a statement succeeded.
	HookRunSuccess
	// HookRunFailed runs after the backend rejected a statement.
	HookRunFailed
)

// HookID identifies a registered handler.
type HookID int

// ParseEvent is handed to pre-parse handlers. Both fields may be replaced.
type ParseEvent struct {
	Query string
	Args  []any
}

// PreRunEvent is handed to pre-run handlers. Query may be replaced.
type PreRunEvent struct {
	Query string
}

// RunEvent describes a finished statement.
type RunEvent struct {
	Query    string
	Runtime  time.Duration
	Rows     int64
	Affected int64
	InsertID int64
	// Err is a *SQLError for failed statements.
	Err error
}

type hookEntry struct {
	id HookID
	fn any
}

// hookTable keeps handlers per kind in registration order.
type hookTable struct {
	last    HookID
	entries map[HookKind][]hookEntry
}

func (t *hookTable) add(kind HookKind, fn any) HookID {
	if t.entries == nil {
		t.entries = make(map[HookKind][]hookEntry)
	}
	t.last++
	t.entries[kind] = append(t.entries[kind], hookEntry{id: t.last, fn: fn})
	return t.last
}

func (t *hookTable) remove(id HookID) bool {
	for kind, list := range t.entries {
		for i, e := range list {
			if e.id == id {
				t.entries[kind] = append(list[:i:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (t *hookTable) preParse(ev *ParseEvent) {
	for _, e := range t.entries[HookPreParse] {
		e.fn.(func(*ParseEvent))(ev)
	}
}

func (t *hookTable) preRun(ev *PreRunEvent) {
	for _, e := range t.entries[HookPreRun] {
		e.fn.(func(*PreRunEvent))(ev)
	}
}

func (t *hookTable) notify(kind HookKind, ev RunEvent) {
	for _, e := range t.entries[kind] {
		e.fn.(func(RunEvent))(ev)
	}
}

// failed runs every failure handler and reports whether one handled the error.
func (t *hookTable) failed(ev RunEvent) bool {
	handled := false
	for _, e := range t.entries[HookRunFailed] {
		if e.fn.(func(RunEvent) bool)(ev) {
			handled = true
		}
	}
	return handled
}

// OnPreParse registers a handler that may rewrite templates and arguments.
func (db *DB) OnPreParse(fn func(*ParseEvent)) HookID {
	return db.hooks.add(HookPreParse, fn)
}

// OnPreRun registers a handler that may rewrite the final SQL text.
func (db *DB) OnPreRun(fn func(*PreRunEvent)) HookID {
	return db.hooks.add(HookPreRun, fn)
}

// OnPostRun registers a handler called after every statement.
func (db *DB) OnPostRun(fn func(RunEvent)) HookID {
	return db.hooks.add(HookPostRun, fn)
}

// OnRunSuccess registers a handler called after successful statements.
func (db *DB) OnRunSuccess(fn func(RunEvent)) HookID {
	return db.hooks.add(HookRunSuccess, fn)
}

/*
OnRunFailed registers a handler called when the backend rejects a statement.
Returning true marks the error as handled: the failing call then returns
its zero result and a nil error.

	db.OnRunFailed(func(ev dragondb.RunEvent) bool {
		var sqlErr *dragondb.SQLError
		return errors.As(ev.Err, &sqlErr) && sqlErr.Code == "1062" // duplicate key
	})
*/
func (db *DB) OnRunFailed(fn func(RunEvent) bool) HookID {
	return db.hooks.add(HookRunFailed, fn)
}

// RemoveHook unregisters a handler. It reports whether id was registered.
func (db *DB) RemoveHook(id HookID) bool {
	return db.hooks.remove(id)
}

// RemoveHooks unregisters every handler of a kind.
func (db *DB) RemoveHooks(kind HookKind) {
	delete(db.hooks.entries, kind)
}

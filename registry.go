package dragondb

import (
	"errors"
	"fmt"
	"sync"
)

/*
Registry hands out one DB per connection name. Each DB is created on first
Get and reused afterwards.

	reg := dragondb.NewRegistry(dragondb.WithLogger(log))
	reg.Register("main", mainCfg)
	reg.Register("reports", reportsCfg)
	defer reg.Close()

	db, err := reg.Get("reports")

The registry itself is safe for concurrent use; the DBs it returns are not.
*/
type Registry struct {
	mu      sync.Mutex
	opts    []Option
	configs map[string]Config
	dbs     map[string]*DB
}

// NewRegistry creates an empty registry. opts are applied to every DB it
// creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:    opts,
		configs: make(map[string]Config),
		dbs:     make(map[string]*DB),
	}
}

// Register adds or replaces the config of a connection name. A DB already
// created under the name is kept until Close.
func (r *Registry) Register(name string, cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("connection %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
	return nil
}

// Get returns the DB of a connection name, creating it on first use.
func (r *Registry) Get(name string) (*DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.dbs[name]; ok {
		return db, nil
	}
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
	}
	db, err := New(cfg, r.opts...)
	if err != nil {
		return nil, err
	}
	r.dbs[name] = db
	return db, nil
}

// Names returns the registered connection names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	return names
}

// Close disconnects every DB handed out so far.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, db := range r.dbs {
		if err := db.Disconnect(); err != nil {
			errs = append(errs, fmt.Errorf("connection %q: %w", name, err))
		}
		delete(r.dbs, name)
	}
	return errors.Join(errs...)
}

package dragondb

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultParseCacheSize is the number of parsed templates kept per DB.
const DefaultParseCacheSize = 256

// parseCache keeps parsed templates keyed by their source text.
// A nil cache is valid and caches nothing.
type parseCache struct {
	lru *lru.Cache[string, *template]
}

func newParseCache(size int) *parseCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[string, *template](size)
	if err != nil {
		return nil
	}
	return &parseCache{lru: c}
}

func (c *parseCache) get(src string) (*template, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(src)
}

func (c *parseCache) put(src string, t *template) {
	if c == nil {
		return
	}
	c.lru.Add(src, t)
}

// Len returns the number of cached templates.
func (c *parseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every cached template.
func (c *parseCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

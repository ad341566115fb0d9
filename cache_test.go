package dragondb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCache(t *testing.T) {
	e := testEngine(MySQL)
	_, err := e.render("SELECT %i", []any{1})
	require.NoError(t, err)
	_, err = e.render("SELECT %i", []any{2})
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.Len())

	e.cache.Purge()
	assert.Equal(t, 0, e.cache.Len())

	var none *parseCache
	none.put("x", &template{})
	_, ok := none.get("x")
	assert.False(t, ok)
	assert.Nil(t, newParseCache(0))
}

func TestTemplateCacheEvicts(t *testing.T) {
	e := newEngine(Config{ParseCacheSize: 2}.withDefaults(), MySQL)
	for _, src := range []string{"SELECT %i", "SELECT %s", "SELECT %d"} {
		_, err := e.parse(src)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, e.cache.Len())
	_, ok := e.cache.get("SELECT %i")
	assert.False(t, ok)
	_, ok = e.cache.get("SELECT %d")
	assert.True(t, ok)
}

func TestTemplateCacheKeepsErrorsOut(t *testing.T) {
	e := testEngine(MySQL)
	_, err := e.parse("%s0 %s_a")
	require.Error(t, err)
	assert.Equal(t, 0, e.cache.Len())
}

package dragondb

import (
	"database/sql"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want int64
	}{
		{nil, 0},
		{true, 1},
		{int8(-4), -4},
		{uint32(9), 9},
		{float32(2.9), 2},
		{-0.5, -1},
		{" 17 ", 17},
		{"", 0},
		{json.Number("12.75"), 12},
		{sql.NullInt64{Int64: 5, Valid: true}, 5},
		{sql.NullInt64{}, 0},
	} {
		got, err := toInt("0", tc.in)
		require.NoError(t, err, "%#v", tc.in)
		assert.Equal(t, tc.want, got, "%#v", tc.in)
	}

	for _, bad := range []any{uint64(math.MaxUint64), math.NaN(), math.Inf(1), "12abc", struct{}{}} {
		_, err := toInt("0", bad)
		assert.ErrorIs(t, err, ErrTypeMismatch, "%#v", bad)
	}
}

func TestToFloat(t *testing.T) {
	f, err := toFloat("0", "1e3")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, f)

	_, err = toFloat("0", math.Inf(-1))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assert.Equal(t, "0.000001", formatFloat(1e-6))
	assert.Equal(t, "1e-07", formatFloat(1e-7))
	assert.Equal(t, "1e+21", formatFloat(1e21))
}

func TestToTimestamp(t *testing.T) {
	want := "2024-03-09 14:05:00"
	for _, in := range []any{
		time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC),
		"2024-03-09T14:05:00Z",
		"2024-03-09 14:05",
		[]byte("2024/03/09 14:05:00"),
	} {
		got, err := toTimestamp("0", in)
		require.NoError(t, err, "%v", in)
		assert.Equal(t, want, got)
	}

	_, err := toTimestamp("0", 1700000000)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestIsCollection(t *testing.T) {
	assert.True(t, isCollection([]int{1}))
	assert.True(t, isCollection(map[string]any{}))
	assert.True(t, isCollection(H("a", 1)))
	assert.False(t, isCollection([]byte("x")))
	assert.False(t, isCollection(Raw("x")))
	assert.False(t, isCollection(nil))
	assert.False(t, isCollection("x"))
}

func TestListItemsFromHash(t *testing.T) {
	items, err := listItems("0", H("a", 1, "b", 2))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, items)

	_, err = listItems("0", [0]int{})
	assert.ErrorIs(t, err, ErrEmptyArray)
}

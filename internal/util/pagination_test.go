package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size         int
		wantOffset, wantLi int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 0, 0, DefaultPageSize},
		{2, 500, DefaultPageSize, DefaultPageSize},
		{100000000000000000, MaxPageSize, (MaxPage - 1) * MaxPageSize, MaxPageSize},
		{math.MaxInt, 1, MaxPage - 1, 1},
	}
	for _, tt := range tests {
		off, lim := Calculate(tt.page, tt.size)
		assert.GreaterOrEqual(t, off, 0)
		assert.Equal(t, tt.wantOffset, off)
		assert.Equal(t, tt.wantLi, lim)
	}
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault(" 3 ", 7))

	_, ok := ParseUint("0")
	assert.False(t, ok)
	_, ok = ParseUint("-2")
	assert.False(t, ok)
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity", "1e400", "x", ""} {
		_, ok := ParseFloat(raw)
		assert.False(t, ok, raw)
	}
	v, ok := ParseFloat(" 9.99 ")
	assert.True(t, ok)
	assert.Equal(t, 9.99, v)

	id, ok := ParseUint("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	p := NewPage(2, 10, 25)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)

	last := NewPage(3, 10, 25)
	assert.False(t, last.HasNext)

	huge := NewPage(math.MaxInt, 10, 25)
	assert.Equal(t, MaxPage, huge.Number)
	assert.False(t, huge.HasNext)

	empty := NewPage(1, 10, 0)
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

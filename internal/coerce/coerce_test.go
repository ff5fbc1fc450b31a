package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt_FromStringAndNumeric(t *testing.T) {
	n, ok := Int("42")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	n, ok = Int(int64(7))
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = Int("not-a-number")
	assert.False(t, ok)
}

func TestBool_TruthyStrings(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "1", "yes", "Yes"} {
		b, ok := Bool(s)
		assert.True(t, ok)
		assert.True(t, b, s)
	}

	b, ok := Bool("no")
	assert.True(t, ok)
	assert.False(t, b)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty([]string{}))
	assert.True(t, IsEmpty(map[string]any{}))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(0))
	assert.False(t, IsEmpty(false))
}

func TestStringSlice_FromAnySlice(t *testing.T) {
	out, ok := StringSlice([]any{"a", 1, "b"})
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "1", "b"}, out)
}

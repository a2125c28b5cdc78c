package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"a", "b"}, "a"))
	assert.False(t, ContainsString([]string{}, "a"))
	assert.False(t, ContainsString([]string{"a", "b"}, "c"))
}

func TestContainsInt64(t *testing.T) {
	assert.True(t, ContainsInt64([]int64{1, 2}, 2))
	assert.False(t, ContainsInt64(nil, 2))
}

func TestIntersectsInt64(t *testing.T) {
	assert.True(t, IntersectsInt64([]int64{1, 2, 3}, []int64{9, 3}))
	assert.False(t, IntersectsInt64([]int64{1, 2, 3}, []int64{4}))
	assert.False(t, IntersectsInt64(nil, []int64{4}))
	assert.Len(t, Int64Set([]int64{1, 1, 2}), 2)
}

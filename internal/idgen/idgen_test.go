package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFunctionCallID(t *testing.T) {
	t.Parallel()

	id := NewFunctionCallID()
	assert.True(t, strings.HasPrefix(id, "func_"))
	assert.Greater(t, len(id), len("func_"))
}

func TestNewToolUseID(t *testing.T) {
	t.Parallel()

	id := NewToolUseID()
	assert.NotEmpty(t, id)
	assert.False(t, strings.HasPrefix(id, "func_"))
}

func TestIDsAreUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 256; i++ {
		id := NewFunctionCallID()
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

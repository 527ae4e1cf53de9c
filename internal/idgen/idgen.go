// Package idgen synthesizes identifiers for tool calls whose provider
// payload carried none, so every call node stays addressable.
package idgen

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var fallbackCounter atomic.Uint64

// NewFunctionCallID returns an OpenAI-style identifier for a tool call
// missing its provider-supplied id.
func NewFunctionCallID() string {
	return "func_" + newBody()
}

// NewToolUseID returns a fresh identifier for an Anthropic-style tool_use
// block missing its id.
func NewToolUseID() string {
	return newBody()
}

func newBody() string {
	generated, err := uuid.NewRandom()
	if err == nil {
		return generated.String()
	}
	// Entropy exhaustion is effectively theoretical; fall back to a
	// process-unique counter rather than failing the parse.
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), fallbackCounter.Add(1))
}

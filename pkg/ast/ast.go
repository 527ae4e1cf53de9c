// Package ast defines the provider-agnostic response tree that every
// extractor populates and every downstream consumer programs against.
package ast

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Arguments is a key-ordered mapping of tool argument names to values. Key
// insertion order follows the source payload so re-serialization is
// deterministic.
type Arguments = orderedmap.OrderedMap[string, any]

// NewArguments returns an empty argument mapping.
func NewArguments() *Arguments {
	return orderedmap.New[string, any]()
}

// Response is the root of one parse. It is constructed once per parse call
// and not mutated afterwards.
type Response struct {
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	Metadata    Metadata     `json:"metadata"`
}

// Empty reports whether the response carries no usable content. The
// orchestrator uses this to decide that a structured extraction attempt
// produced nothing and the fallback path should run instead.
func (r *Response) Empty() bool {
	if r == nil {
		return true
	}
	return r.Text == "" && len(r.ToolCalls) == 0 && len(r.ToolResults) == 0
}

// ToolCall is one tool invocation requested by the model. RawArguments is
// always the verbatim provider payload; Arguments and ParseError are
// mutually exclusive.
type ToolCall struct {
	ID           string       `json:"call_id"`
	Name         string       `json:"tool_name"`
	RawArguments string       `json:"raw_arguments"`
	Arguments    *Arguments   `json:"parsed_arguments,omitempty"`
	ParseError   *ErrorDetail `json:"parse_error,omitempty"`
}

// Valid reports whether the call satisfies the arguments-or-error invariant:
// exactly one of Arguments and ParseError is set.
func (c ToolCall) Valid() bool {
	return (c.Arguments != nil) != (c.ParseError != nil)
}

// ToolResult is a prior tool execution echoed back by the provider. The
// parser does not verify that ID references a ToolCall in the same
// response; call/result pairing usually spans conversation turns and
// belongs to the history layer.
type ToolResult struct {
	ID           string `json:"call_id"`
	Name         string `json:"tool_name,omitempty"`
	Result       any    `json:"result"`
	Success      bool   `json:"is_success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Metadata describes the parse without driving control flow.
type Metadata struct {
	Provider     string      `json:"provider"`
	Model        string      `json:"model,omitempty"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"token_usage,omitempty"`
	// FallbackReason records why a structured extraction attempt was
	// abandoned in favor of the text fallback, when that happened.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// TokenUsage tracks token consumption as reported by the provider.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ErrorDetail captures a recoverable parse failure together with the
// original unparseable text, so callers can log or retry without
// re-fetching the response.
type ErrorDetail struct {
	Message  string `json:"message"`
	RawInput string `json:"raw_input"`
}

func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

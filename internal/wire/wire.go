// Package wire declares the provider response shapes this module consumes.
// One envelope covers the OpenAI and Anthropic families so the classifier
// can decode a payload once and hand the same tree to the extractor.
// Unknown fields are ignored everywhere; absent fields read as zero values.
package wire

import (
	"strings"

	"unify/internal/jsonx"
)

// Envelope is the union of the top-level provider response shapes.
type Envelope struct {
	// OpenAI chat-completions family.
	Choices []Choice `json:"choices"`
	// Bare single-message forms accepted without the choices wrapper.
	Message   *Message         `json:"message"`
	ToolCalls []ToolCall       `json:"tool_calls"`
	Content   jsonx.RawMessage `json:"content"`
	// OpenAI responses-API family.
	Output []OutputItem `json:"output"`
	// Anthropic family.
	StopReason string `json:"stop_reason"`

	ID    string `json:"id"`
	Model string `json:"model"`
	Usage *Usage `json:"usage"`
}

// Choice is one entry of an OpenAI choices array.
type Choice struct {
	Message      *Message `json:"message"`
	FinishReason string   `json:"finish_reason"`
}

// Message carries the assistant turn inside a choice.
type Message struct {
	Content      jsonx.RawMessage `json:"content"`
	ToolCalls    []ToolCall       `json:"tool_calls"`
	FunctionCall *FunctionCall    `json:"function_call"`
}

// ToolCall is the OpenAI structured tool-call entry.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds a function name plus its raw argument payload. The
// payload is usually a JSON-encoded string, but some OpenAI-compatible
// servers inline a bare object; ArgumentString absorbs both.
type FunctionCall struct {
	Name      string           `json:"name"`
	Arguments jsonx.RawMessage `json:"arguments"`
}

// OutputItem is one entry of a responses-API output array.
type OutputItem struct {
	Type      string           `json:"type"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Arguments jsonx.RawMessage `json:"arguments"`
	Content   []OutputContent  `json:"content"`
	ToolCalls []ToolCall       `json:"tool_calls"`
}

// OutputContent is a typed part inside a responses-API message item.
type OutputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ContentBlock is one typed element of an Anthropic content array.
type ContentBlock struct {
	Type      string           `json:"type"`
	Text      string           `json:"text"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Input     jsonx.RawMessage `json:"input"`
	ToolUseID string           `json:"tool_use_id"`
	Content   any              `json:"content"`
	IsError   bool             `json:"is_error"`
}

// Usage is the union of the provider token-usage shapes.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	InputTokens      int `json:"input_tokens"`
	OutputTokens     int `json:"output_tokens"`
}

// Decode unmarshals a raw provider body into the envelope.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := jsonx.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// TextOf reads a content field that holds a plain JSON string. It reports
// false for null, absent, or non-string content.
func TextOf(raw jsonx.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var text string
	if err := jsonx.Unmarshal(raw, &text); err != nil {
		return "", false
	}
	return text, true
}

// BlocksOf reads a content field that holds an Anthropic-style block array.
func BlocksOf(raw jsonx.RawMessage) ([]ContentBlock, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed[0] != '[' {
		return nil, false
	}
	var blocks []ContentBlock
	if err := jsonx.Unmarshal(raw, &blocks); err != nil {
		return nil, false
	}
	return blocks, true
}

// ArgumentString flattens a raw arguments value to the payload string the
// argument parser consumes: JSON-encoded strings are unquoted, everything
// else passes through verbatim.
func ArgumentString(raw jsonx.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := jsonx.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	return string(raw)
}

// Package classify decides whether a raw response body looks like a
// structured provider payload and, if so, which extractor family owns it.
// Classification decodes the payload once; the resulting envelope travels
// with the detection so extraction never re-parses the document.
package classify

import (
	"strings"

	"unify/internal/jsonx"
	"unify/internal/wire"
)

// Kind reports the routing decision for a payload.
type Kind int

const (
	// Unstructured routes the payload to the text fallback parser.
	Unstructured Kind = iota
	// Structured routes the payload to a provider extractor.
	Structured
)

// Provider names the extractor family selected for a structured payload.
// The set is closed: the orchestrator switches over it exhaustively.
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderOpenAI
	ProviderAnthropic
	ProviderGeneric
)

func (p Provider) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Hint biases classification when the caller knows the provider in advance.
// It only breaks ties; recognizable wire markers win on their own.
type Hint struct {
	Provider string
}

// Detection is the classifier verdict plus the parse state extraction
// reuses.
type Detection struct {
	Kind     Kind
	Provider Provider
	Envelope *wire.Envelope
	// Blocks holds the decoded Anthropic content array when that family
	// matched.
	Blocks []wire.ContentBlock
	// Side holds the decoded side-channel value for the generic extractor.
	Side any
}

// Classify inspects raw and routes it. Malformed JSON never errors; it
// degrades to the unstructured verdict so the fallback path can run.
func Classify(raw string, hint Hint) Detection {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed[0] != '{' {
		return Detection{Kind: Unstructured}
	}

	env, err := wire.Decode([]byte(trimmed))
	if err != nil {
		return Detection{Kind: Unstructured}
	}

	det := Detection{Kind: Unstructured, Envelope: env}
	hinted := normalizeHint(hint.Provider)

	blocks, hasBlockArray := wire.BlocksOf(env.Content)
	anthropicMarked := hasBlockArray && hasTypedBlock(blocks)
	openaiMarked := hasOpenAIShape(env)

	switch {
	case anthropicMarked && !(openaiMarked && hinted == ProviderOpenAI):
		det.Kind, det.Provider, det.Blocks = Structured, ProviderAnthropic, blocks
	case openaiMarked:
		det.Kind, det.Provider = Structured, ProviderOpenAI
	case hinted == ProviderAnthropic && hasBlockArray:
		det.Kind, det.Provider, det.Blocks = Structured, ProviderAnthropic, blocks
	case hinted == ProviderOpenAI && isJSONString(env.Content):
		// A provider known to speak the OpenAI shape returned a bare
		// {content: "..."} object.
		det.Kind, det.Provider = Structured, ProviderOpenAI
	default:
		if side, ok := genericCandidate([]byte(trimmed), hinted); ok {
			det.Kind, det.Provider, det.Side = Structured, ProviderGeneric, side
		}
	}

	return det
}

func hasOpenAIShape(env *wire.Envelope) bool {
	for _, choice := range env.Choices {
		if choice.Message != nil {
			return true
		}
	}
	return env.Message != nil || len(env.ToolCalls) > 0 || len(env.Output) > 0
}

func hasTypedBlock(blocks []wire.ContentBlock) bool {
	for _, block := range blocks {
		switch strings.ToLower(strings.TrimSpace(block.Type)) {
		case "text", "tool_use", "tool_result", "thinking":
			return true
		}
	}
	return false
}

func isJSONString(raw jsonx.RawMessage) bool {
	_, ok := wire.TextOf(raw)
	return ok
}

// genericCandidate spots schema-less tool-call data: either the object
// itself names a tool and carries an argument payload, or it wraps an array
// of such objects under a conventional key. A generic provider hint accepts
// any JSON object and lets the extractor probe it.
func genericCandidate(raw []byte, hinted Provider) (any, bool) {
	var doc map[string]any
	if err := jsonx.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	if hinted == ProviderGeneric {
		return doc, true
	}
	if hasAnyKey(doc, "name", "function", "tool") && hasAnyKey(doc, "arguments", "parameters", "input") {
		return doc, true
	}
	for _, key := range []string{"calls", "tools"} {
		if arr, ok := doc[key].([]any); ok && len(arr) > 0 {
			return arr, true
		}
	}
	return nil, false
}

func hasAnyKey(doc map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := doc[key]; ok {
			return true
		}
	}
	return false
}

func normalizeHint(provider string) Provider {
	normalized := strings.ToLower(strings.TrimSpace(provider))
	switch {
	case normalized == "":
		return ProviderUnknown
	case strings.Contains(normalized, "anthropic") || strings.Contains(normalized, "claude"):
		return ProviderAnthropic
	case strings.Contains(normalized, "openai"),
		strings.Contains(normalized, "gpt"),
		strings.Contains(normalized, "openrouter"),
		strings.Contains(normalized, "deepseek"),
		strings.Contains(normalized, "azure"):
		return ProviderOpenAI
	default:
		return ProviderGeneric
	}
}

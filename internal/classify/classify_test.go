package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStructuredMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		provider Provider
	}{
		{
			"openai tool_calls",
			`{"choices":[{"message":{"content":"hi","tool_calls":[{"id":"c1","type":"function","function":{"name":"search","arguments":"{}"}}]}}]}`,
			ProviderOpenAI,
		},
		{
			"openai legacy function_call",
			`{"choices":[{"message":{"function_call":{"name":"search","arguments":"{}"}}}]}`,
			ProviderOpenAI,
		},
		{
			"openai text only choice",
			`{"choices":[{"message":{"content":"hello"},"finish_reason":"stop"}]}`,
			ProviderOpenAI,
		},
		{
			"openai message wrapper",
			`{"message":{"content":"hello"}}`,
			ProviderOpenAI,
		},
		{
			"openai bare tool_calls",
			`{"content":"hello","tool_calls":[{"id":"c1","function":{"name":"search","arguments":"{}"}}]}`,
			ProviderOpenAI,
		},
		{
			"responses output items",
			`{"output":[{"type":"function_call","id":"fc1","name":"search","arguments":"{}"}]}`,
			ProviderOpenAI,
		},
		{
			"anthropic tool_use",
			`{"content":[{"type":"tool_use","id":"t1","name":"search","input":{}}],"stop_reason":"tool_use"}`,
			ProviderAnthropic,
		},
		{
			"anthropic text blocks",
			`{"content":[{"type":"text","text":"hello"}],"stop_reason":"end_turn"}`,
			ProviderAnthropic,
		},
		{
			"anthropic tool_result",
			`{"content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"}]}`,
			ProviderAnthropic,
		},
		{
			"generic single candidate",
			`{"tool":"search","parameters":{"q":"x"}}`,
			ProviderGeneric,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			detection := Classify(tt.raw, Hint{})
			require.Equal(t, Structured, detection.Kind)
			assert.Equal(t, tt.provider, detection.Provider)
			require.NotNil(t, detection.Envelope)
		})
	}
}

func TestClassifyUnstructured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"plain prose", "Hello from a text-based response!"},
		{"malformed provider lookalike", `{"choices":[{"message":{"tool_calls":[`},
		{"json without markers", `{"temperature":0.7,"note":"nothing to see"}`},
		{"top level array", `[{"type":"text"}]`},
		{"scalar json", `42`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			detection := Classify(tt.raw, Hint{})
			assert.Equal(t, Unstructured, detection.Kind)
		})
	}
}

func TestClassifyHintBreaksTies(t *testing.T) {
	t.Parallel()

	// Valid JSON with no family markers at all.
	bareContent := `{"content":"hello there"}`

	detection := Classify(bareContent, Hint{})
	assert.Equal(t, Unstructured, detection.Kind)

	detection = Classify(bareContent, Hint{Provider: "openai"})
	require.Equal(t, Structured, detection.Kind)
	assert.Equal(t, ProviderOpenAI, detection.Provider)

	// A provider the classifier has never heard of routes to the generic
	// extractor when the payload is a JSON object.
	detection = Classify(`{"reply":"ok","tool":"search","input":{"q":"x"}}`, Hint{Provider: "homegrown-llm"})
	require.Equal(t, Structured, detection.Kind)
	assert.Equal(t, ProviderGeneric, detection.Provider)
	assert.NotNil(t, detection.Side)
}

func TestClassifyHintDoesNotOverrideMarkers(t *testing.T) {
	t.Parallel()

	anthropicPayload := `{"content":[{"type":"tool_use","id":"t1","name":"search","input":{}}]}`
	detection := Classify(anthropicPayload, Hint{Provider: "claude-proxy"})
	require.Equal(t, Structured, detection.Kind)
	assert.Equal(t, ProviderAnthropic, detection.Provider)
	assert.NotEmpty(t, detection.Blocks)

	// Prose stays unstructured no matter how confident the hint is.
	detection = Classify("just words", Hint{Provider: "anthropic"})
	assert.Equal(t, Unstructured, detection.Kind)
}

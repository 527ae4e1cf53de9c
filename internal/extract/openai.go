package extract

import (
	"strings"

	"unify/internal/idgen"
	"unify/internal/wire"
	"unify/pkg/ast"
)

const providerOpenAI = "openai"

// OpenAI walks an OpenAI-family envelope: the chat-completions choices
// array, the bare {content, tool_calls} and {message: {...}} single-message
// forms, and responses-API output items. Text segments from multiple
// choices are joined with a newline so none is silently dropped; the
// last-seen finish_reason wins.
func OpenAI(env *wire.Envelope, cfg Config) *ast.Response {
	resp := &ast.Response{Metadata: ast.Metadata{
		Provider: providerOpenAI,
		Model:    env.Model,
		Usage:    usageOf(env.Usage),
	}}

	var textParts []string
	appendText := func(text string) {
		if text != "" {
			textParts = append(textParts, text)
		}
	}

	choices := env.Choices
	if len(choices) == 0 {
		if msg := bareMessage(env); msg != nil {
			choices = []wire.Choice{{Message: msg}}
		}
	}

	for _, choice := range choices {
		// A message-less choice still carries a finish_reason, e.g. when
		// the provider filtered the content out.
		if choice.FinishReason != "" {
			resp.Metadata.FinishReason = choice.FinishReason
		}
		msg := choice.Message
		if msg == nil {
			continue
		}
		if text, ok := wire.TextOf(msg.Content); ok {
			appendText(text)
		}
		for _, tc := range msg.ToolCalls {
			appendToolCall(resp, cfg, tc.ID, tc.Function.Name, wire.ArgumentString(tc.Function.Arguments), idgen.NewFunctionCallID)
		}
		if fc := msg.FunctionCall; fc != nil {
			// Legacy singular function_call; ids were never supplied here.
			appendToolCall(resp, cfg, "", fc.Name, wire.ArgumentString(fc.Arguments), idgen.NewFunctionCallID)
		}
	}

	for _, item := range env.Output {
		switch normalizedType(item.Type) {
		case "message":
			for _, part := range item.Content {
				switch normalizedType(part.Type) {
				case "output_text", "text":
					appendText(part.Text)
				}
			}
			for _, tc := range item.ToolCalls {
				appendToolCall(resp, cfg, tc.ID, tc.Function.Name, wire.ArgumentString(tc.Function.Arguments), idgen.NewFunctionCallID)
			}
		case "function_call", "tool_call":
			appendToolCall(resp, cfg, item.ID, item.Name, wire.ArgumentString(item.Arguments), idgen.NewFunctionCallID)
		}
	}

	resp.Text = strings.Join(textParts, "\n")
	return resp
}

// bareMessage lifts the wrapper-less single-message forms into a synthetic
// choice so the walk above handles all three shapes the same way.
func bareMessage(env *wire.Envelope) *wire.Message {
	if env.Message != nil {
		return env.Message
	}
	if _, ok := wire.TextOf(env.Content); ok || len(env.ToolCalls) > 0 {
		return &wire.Message{Content: env.Content, ToolCalls: env.ToolCalls}
	}
	return nil
}

package extract

import (
	"strings"

	"unify/internal/idgen"
	"unify/internal/jsonx"
	"unify/internal/wire"
	"unify/pkg/ast"
)

const providerAnthropic = "anthropic"

// Anthropic walks a content array of typed blocks. Text blocks are
// newline-joined into the text segment, tool_use blocks become tool calls
// with their input object re-serialized through the argument parser, and
// tool_result blocks fold prior executions back in as result nodes. blocks
// may be pre-decoded by the classifier; pass nil to decode here.
func Anthropic(env *wire.Envelope, blocks []wire.ContentBlock, cfg Config) *ast.Response {
	if blocks == nil {
		blocks, _ = wire.BlocksOf(env.Content)
	}

	resp := &ast.Response{Metadata: ast.Metadata{
		Provider:     providerAnthropic,
		Model:        env.Model,
		FinishReason: env.StopReason,
		Usage:        usageOf(env.Usage),
	}}

	var textParts []string
	for _, block := range blocks {
		switch normalizedType(block.Type) {
		case "text":
			if block.Text != "" {
				textParts = append(textParts, block.Text)
			}
		case "tool_use":
			appendToolCall(resp, cfg, block.ID, block.Name, inputPayload(block.Input), idgen.NewToolUseID)
		case "tool_result":
			resp.ToolResults = append(resp.ToolResults, toolResult(block))
		}
	}

	resp.Text = strings.Join(textParts, "\n")
	return resp
}

// inputPayload flattens a tool_use input object to the JSON string the
// argument parser consumes. Absent and null inputs read as a call with no
// arguments.
func inputPayload(input jsonx.RawMessage) string {
	trimmed := strings.TrimSpace(string(input))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	return trimmed
}

func toolResult(block wire.ContentBlock) ast.ToolResult {
	result := ast.ToolResult{
		ID:      block.ToolUseID,
		Name:    block.Name,
		Result:  block.Content,
		Success: !block.IsError,
	}
	if block.IsError {
		if message, ok := block.Content.(string); ok {
			result.ErrorMessage = message
		}
	}
	return result
}

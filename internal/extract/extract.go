// Package extract converts classified provider payloads into the uniform
// response tree. One extractor per provider family; each knows only its own
// wire shape and funnels every argument payload through the argument
// parser so structured and text-derived calls obey the same contract.
package extract

import (
	"strings"

	"unify/internal/args"
	"unify/internal/logging"
	"unify/internal/wire"
	"unify/pkg/ast"
)

// Config carries the knobs shared by all extractors.
type Config struct {
	// Lenient enables jsonrepair recovery of malformed argument payloads.
	// Off by default: a repaired mapping is a guess about what the model
	// meant, so callers opt in rather than receiving one silently.
	Lenient bool
	Logger  logging.Logger
}

func (c Config) logger() logging.Logger {
	return logging.OrNop(c.Logger)
}

func (c Config) parseArguments(raw string) (*ast.Arguments, *ast.ErrorDetail) {
	if c.Lenient {
		return args.ParseLenient(raw)
	}
	return args.Parse(raw)
}

// appendToolCall builds a call node and attaches it to the response. A call
// without a resolvable name is not actionable and is dropped rather than
// synthesized into a misleading placeholder; the drop is logged so it stays
// observable. synthesizeID supplies an identifier when the provider sent
// none.
func appendToolCall(resp *ast.Response, cfg Config, id, name, rawArgs string, synthesizeID func() string) {
	name = strings.TrimSpace(name)
	if name == "" {
		cfg.logger().Debug("dropping tool call candidate without a resolvable name")
		return
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = synthesizeID()
	}

	call := ast.ToolCall{ID: id, Name: name, RawArguments: rawArgs}
	call.Arguments, call.ParseError = cfg.parseArguments(rawArgs)
	if call.ParseError != nil {
		cfg.logger().Debug("tool call %s (%s): arguments failed to parse: %s", id, name, call.ParseError.Message)
	}
	resp.ToolCalls = append(resp.ToolCalls, call)
}

// usageOf normalizes the two provider usage vocabularies onto one record.
func usageOf(u *wire.Usage) *ast.TokenUsage {
	if u == nil {
		return nil
	}
	in := u.PromptTokens
	if in == 0 {
		in = u.InputTokens
	}
	out := u.CompletionTokens
	if out == 0 {
		out = u.OutputTokens
	}
	total := u.TotalTokens
	if total == 0 {
		total = in + out
	}
	if in == 0 && out == 0 && total == 0 {
		return nil
	}
	return &ast.TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: total}
}

func normalizedType(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

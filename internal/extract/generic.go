package extract

import (
	"strings"

	"unify/internal/idgen"
	"unify/internal/jsonx"
	"unify/pkg/ast"
)

const providerGeneric = "generic"

// Generic extracts tool calls from providers with no documented schema: a
// plain text segment plus an optional side-channel value holding tool-call
// data in an unknown shape. Candidate field names are consulted in priority
// order; array elements are attempted independently so one undecodable
// element never aborts its siblings.
func Generic(text string, side any, cfg Config) *ast.Response {
	resp := &ast.Response{
		Text:     text,
		Metadata: ast.Metadata{Provider: providerGeneric},
	}
	for _, candidate := range candidateElements(side) {
		appendCandidate(resp, candidate, cfg)
	}
	return resp
}

func candidateElements(side any) []any {
	switch value := side.(type) {
	case nil:
		return nil
	case []any:
		return value
	default:
		return []any{value}
	}
}

func appendCandidate(resp *ast.Response, candidate any, cfg Config) {
	fields, ok := candidate.(map[string]any)
	if !ok {
		cfg.logger().Debug("skipping non-object tool call candidate")
		return
	}

	// Wrapper objects carry their candidates one level down.
	if arr := wrappedCandidates(fields); arr != nil {
		for _, element := range arr {
			appendCandidate(resp, element, cfg)
		}
		return
	}

	name, argSources := resolveIdentity(fields)
	id := firstString(argSources, "id", "call_id")
	rawArgs := resolveArguments(argSources)
	appendToolCall(resp, cfg, id, name, rawArgs, idgen.NewFunctionCallID)
}

func wrappedCandidates(fields map[string]any) []any {
	for _, key := range []string{"tool_calls", "calls", "tools"} {
		if arr, ok := fields[key].([]any); ok && len(arr) > 0 {
			return arr
		}
	}
	return nil
}

// resolveIdentity probes name, function, tool in that order. A function
// field holding an object (the OpenAI-ish nesting) contributes both the
// inner name and an extra source for argument probing, consulted before the
// outer object.
func resolveIdentity(fields map[string]any) (string, []map[string]any) {
	sources := []map[string]any{fields}
	for _, key := range []string{"name", "function", "tool"} {
		switch value := fields[key].(type) {
		case string:
			if name := strings.TrimSpace(value); name != "" {
				return name, sources
			}
		case map[string]any:
			if key != "function" {
				continue
			}
			if name, ok := value["name"].(string); ok && strings.TrimSpace(name) != "" {
				return strings.TrimSpace(name), []map[string]any{value, fields}
			}
		}
	}
	return "", sources
}

// resolveArguments consults arguments, parameters, input in priority order
// across the probe sources. String payloads pass through verbatim; any
// other JSON value is re-serialized so it still funnels through the
// argument parser.
func resolveArguments(sources []map[string]any) string {
	for _, source := range sources {
		for _, key := range []string{"arguments", "parameters", "input"} {
			value, ok := source[key]
			if !ok || value == nil {
				continue
			}
			if text, isString := value.(string); isString {
				return text
			}
			if data, err := jsonx.Marshal(value); err == nil {
				return string(data)
			}
		}
	}
	return ""
}

func firstString(sources []map[string]any, keys ...string) string {
	for _, source := range sources {
		for _, key := range keys {
			if value, ok := source[key].(string); ok {
				if trimmed := strings.TrimSpace(value); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

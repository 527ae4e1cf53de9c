// Package args turns raw tool-argument payloads into key-ordered mappings.
// Failure is always represented as returned data, never a panic or a Go
// error; the rest of the parser depends on that guarantee.
package args

import (
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"unify/internal/jsonx"
	"unify/pkg/ast"
)

// Parse decodes raw into an argument mapping that preserves key insertion
// order. Empty or all-whitespace input succeeds with an empty mapping.
// Anything that is not a single JSON object fails with an ErrorDetail that
// carries raw verbatim.
func Parse(raw string) (*ast.Arguments, *ast.ErrorDetail) {
	return parse(raw, false)
}

// ParseLenient behaves like Parse but runs the payload through jsonrepair
// before reporting failure, recovering the almost-JSON that models without
// strict function calling tend to emit.
func ParseLenient(raw string) (*ast.Arguments, *ast.ErrorDetail) {
	return parse(raw, true)
}

func parse(raw string, lenient bool) (*ast.Arguments, *ast.ErrorDetail) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ast.NewArguments(), nil
	}

	if parsed, ok := decodeObject(trimmed); ok {
		return parsed, nil
	}

	if lenient {
		if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
			if parsed, ok := decodeObject(strings.TrimSpace(repaired)); ok {
				return parsed, nil
			}
		}
	}

	return nil, &ast.ErrorDetail{
		Message:  describeFailure(trimmed),
		RawInput: raw,
	}
}

// decodeObject token-walks the top level of the payload so key encounter
// order survives into the mapping; nested values decode as ordinary JSON
// values.
func decodeObject(trimmed string) (*ast.Arguments, bool) {
	if trimmed[0] != '{' {
		return nil, false
	}

	dec := jsonx.NewDecoder(strings.NewReader(trimmed))
	opening, err := dec.Token()
	if err != nil || opening != jsonx.Delim('{') {
		return nil, false
	}

	parsed := ast.NewArguments()
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyToken.(string)
		if !ok {
			return nil, false
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		parsed.Set(key, value)
	}
	if closing, err := dec.Token(); err != nil || closing != jsonx.Delim('}') {
		return nil, false
	}
	// Trailing garbage after the object is still a malformed payload.
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return parsed, true
}

// describeFailure keeps messages short and deterministic so repeated parses
// of the same input compare equal.
func describeFailure(trimmed string) string {
	switch trimmed[0] {
	case '[':
		return "tool arguments must be a JSON object, got array"
	case '{':
		return "tool arguments are not valid JSON"
	default:
		if jsonx.Valid([]byte(trimmed)) {
			return "tool arguments must be a JSON object, got scalar"
		}
		return "tool arguments are not valid JSON"
	}
}

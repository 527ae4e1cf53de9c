// Package textparse is the default text fallback parser: it adopts
// unstructured prose as the text segment and recovers tool invocations that
// models without native function calling print inline, either as
// <tool_call>{"name": ..., "args": {...}}</tool_call> blocks or as
// Gemma-style <start_function_call>call:name{...}<end_function_call>
// markers.
package textparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"unify/internal/args"
	"unify/internal/jsonx"
	"unify/internal/logging"
	"unify/pkg/ast"
)

const providerText = "text"

const (
	functionCallStart = "<start_function_call>call:"
	functionCallEnd   = "<end_function_call>"
	escapeToken       = "<escape>"
)

var (
	toolCallPattern = regexp.MustCompile(`(?s)<tool_call>(.*?)</tool_call>`)
	// Tool names are alphanumeric plus underscore; anything else is a
	// hallucinated or truncated block.
	validToolNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

	// Incomplete markers some models leak mid-generation.
	leakedMarkerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<\|tool_call_begin\|>.*?(?:<\|tool_call_end\|>|$)`),
		regexp.MustCompile(`user<\|tool_call_begin\|>.*`),
		regexp.MustCompile(`functions\.[\w_]+:\d+\(.*?\)`),
	}
)

// Parser implements the text fallback contract: for any input it returns a
// response and never fails.
type Parser struct {
	logger logging.Logger
}

func New(logger logging.Logger) *Parser {
	return &Parser{logger: logging.OrNop(logger)}
}

// ParseUnstructured parses prose. Marker-free input is returned as-is in
// the text segment; recognized call blocks are lifted out of the text and
// converted to call nodes. The Gemma grammar is tried first; when it yields
// calls, the XML-style grammar is skipped.
func (p *Parser) ParseUnstructured(raw string) *ast.Response {
	resp := &ast.Response{Metadata: ast.Metadata{Provider: providerText}}

	if calls, remainder, ok := p.extractFunctionCalls(raw); ok {
		resp.ToolCalls = calls
		resp.Text = strings.TrimSpace(remainder)
		return resp
	}

	cleaned := cleanLeakedMarkers(raw)
	matches := toolCallPattern.FindAllStringSubmatchIndex(cleaned, -1)
	if len(matches) == 0 {
		resp.Text = raw
		return resp
	}

	var textBuilder strings.Builder
	cursor := 0
	for _, match := range matches {
		textBuilder.WriteString(cleaned[cursor:match[0]])
		cursor = match[1]
		p.appendBlock(resp, strings.TrimSpace(cleaned[match[2]:match[3]]))
	}
	textBuilder.WriteString(cleaned[cursor:])

	resp.Text = strings.TrimSpace(textBuilder.String())
	return resp
}

func (p *Parser) appendBlock(resp *ast.Response, body string) {
	var block struct {
		Name string           `json:"name"`
		Args jsonx.RawMessage `json:"args"`
	}
	if err := jsonx.Unmarshal([]byte(body), &block); err != nil {
		p.logger.Debug("ignoring undecodable tool_call block: %v", err)
		return
	}
	if !validToolNamePattern.MatchString(block.Name) {
		p.logger.Debug("ignoring tool_call block with invalid name %q", block.Name)
		return
	}

	rawArgs := strings.TrimSpace(string(block.Args))
	if rawArgs == "null" {
		rawArgs = ""
	}

	call := ast.ToolCall{
		ID:           fmt.Sprintf("call_%d", len(resp.ToolCalls)),
		Name:         block.Name,
		RawArguments: rawArgs,
	}
	call.Arguments, call.ParseError = args.Parse(rawArgs)
	resp.ToolCalls = append(resp.ToolCalls, call)
}

func cleanLeakedMarkers(content string) string {
	cleaned := content
	for _, pattern := range leakedMarkerPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	return cleaned
}

// extractFunctionCalls walks <start_function_call>call:name{...} blocks.
// The argument syntax is relaxed: bare keys, bare scalar tokens, and
// <escape>-delimited strings. Undecodable blocks are dropped; the
// surrounding prose is kept as the text remainder.
func (p *Parser) extractFunctionCalls(content string) ([]ast.ToolCall, string, bool) {
	var calls []ast.ToolCall
	var kept strings.Builder

	rest := content
	for {
		startIdx := strings.Index(rest, functionCallStart)
		if startIdx == -1 {
			break
		}
		after := rest[startIdx+len(functionCallStart):]
		nameEnd := strings.Index(after, "{")
		if nameEnd == -1 {
			break
		}
		name := strings.TrimSpace(after[:nameEnd])
		if name == "" {
			break
		}
		argBlock, consumed, ok := scanArgumentBlock(after[nameEnd+1:])
		if !ok {
			break
		}
		afterArgs := after[nameEnd+1+consumed:]
		endIdx := strings.Index(afterArgs, functionCallEnd)
		if endIdx == -1 {
			break
		}

		kept.WriteString(rest[:startIdx])
		rest = afterArgs[endIdx+len(functionCallEnd):]

		if !validToolNamePattern.MatchString(name) {
			p.logger.Debug("ignoring function call block with invalid name %q", name)
			continue
		}
		parsed, err := parseCallArguments(argBlock)
		if err != nil {
			p.logger.Debug("ignoring function call block %s: %v", name, err)
			continue
		}
		calls = append(calls, ast.ToolCall{
			ID:           fmt.Sprintf("call_%d", len(calls)),
			Name:         name,
			RawArguments: "{" + argBlock + "}",
			Arguments:    parsed,
		})
	}

	if len(calls) == 0 {
		return nil, "", false
	}
	kept.WriteString(rest)
	return calls, kept.String(), true
}

// scanArgumentBlock consumes input up to the brace that closes the block
// opened just before it, treating <escape>...<escape> spans as opaque.
func scanArgumentBlock(input string) (string, int, bool) {
	depth := 1
	i := 0
	for i < len(input) {
		if strings.HasPrefix(input[i:], escapeToken) {
			i += len(escapeToken)
			end := strings.Index(input[i:], escapeToken)
			if end == -1 {
				return "", 0, false
			}
			i += end + len(escapeToken)
			continue
		}
		switch input[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[:i], i + 1, true
			}
		}
		i++
	}
	return "", 0, false
}

type argScanner struct {
	input string
	pos   int
}

// parseCallArguments decodes the relaxed argument syntax inside a function
// call block. Top-level key encounter order is preserved.
func parseCallArguments(block string) (*ast.Arguments, error) {
	scanner := &argScanner{input: strings.TrimSpace(block)}
	parsed := ast.NewArguments()
	if scanner.input == "" {
		return parsed, nil
	}
	if err := scanner.parseMembers(func(key string, value any) { parsed.Set(key, value) }); err != nil {
		return nil, err
	}
	return parsed, nil
}

func (s *argScanner) parseMembers(set func(key string, value any)) error {
	for {
		s.skipSpaces()
		if s.eof() {
			return nil
		}
		if s.peek() == '}' {
			s.pos++
			return nil
		}
		key, err := s.parseKey()
		if err != nil {
			return err
		}
		s.skipSpaces()
		if !s.consume(':') {
			return errors.New("missing ':' after key")
		}
		s.skipSpaces()
		value, err := s.parseValue()
		if err != nil {
			return err
		}
		set(key, value)
		s.skipSpaces()
		if s.consume(',') {
			continue
		}
		if s.eof() {
			return nil
		}
		if s.peek() == '}' {
			s.pos++
			return nil
		}
	}
}

func (s *argScanner) parseKey() (string, error) {
	if strings.HasPrefix(s.input[s.pos:], escapeToken) {
		return s.parseEscapedString()
	}
	start := s.pos
	for !s.eof() {
		r := rune(s.input[s.pos])
		if r == ':' || r == ',' || r == '}' || r == ']' || unicode.IsSpace(r) {
			break
		}
		s.pos++
	}
	key := strings.TrimSpace(s.input[start:s.pos])
	if key == "" {
		return "", errors.New("empty key")
	}
	return key, nil
}

func (s *argScanner) parseValue() (any, error) {
	if s.eof() {
		return nil, nil
	}
	if strings.HasPrefix(s.input[s.pos:], escapeToken) {
		return s.parseEscapedString()
	}
	switch s.peek() {
	case '{':
		s.pos++
		nested := make(map[string]any)
		if err := s.parseMembers(func(key string, value any) { nested[key] = value }); err != nil {
			return nil, err
		}
		return nested, nil
	case '[':
		s.pos++
		return s.parseArray()
	}

	token := s.readBareToken()
	if token == "" {
		return nil, nil
	}
	switch token {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f, nil
	}
	return token, nil
}

func (s *argScanner) parseArray() ([]any, error) {
	var out []any
	for {
		s.skipSpaces()
		if s.eof() {
			return out, nil
		}
		if s.peek() == ']' {
			s.pos++
			return out, nil
		}
		value, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, value)
		s.skipSpaces()
		if s.consume(',') {
			continue
		}
		if !s.eof() && s.peek() == ']' {
			s.pos++
			return out, nil
		}
	}
}

func (s *argScanner) parseEscapedString() (string, error) {
	s.pos += len(escapeToken)
	end := strings.Index(s.input[s.pos:], escapeToken)
	if end == -1 {
		return "", errors.New("unterminated escape token")
	}
	value := s.input[s.pos : s.pos+end]
	s.pos += end + len(escapeToken)
	return value, nil
}

func (s *argScanner) readBareToken() string {
	start := s.pos
	for !s.eof() {
		r := rune(s.input[s.pos])
		if r == ',' || r == '}' || r == ']' || unicode.IsSpace(r) {
			break
		}
		s.pos++
	}
	return strings.TrimSpace(s.input[start:s.pos])
}

func (s *argScanner) skipSpaces() {
	for !s.eof() && unicode.IsSpace(rune(s.input[s.pos])) {
		s.pos++
	}
}

func (s *argScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.input[s.pos]
}

func (s *argScanner) consume(ch byte) bool {
	if s.eof() || s.input[s.pos] != ch {
		return false
	}
	s.pos++
	return true
}

func (s *argScanner) eof() bool {
	return s.pos >= len(s.input)
}

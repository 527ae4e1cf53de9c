// Package unify normalizes large-language-model provider responses into one
// uniform tree regardless of how the provider reported tool calls:
// structured fields, legacy function calls, typed content blocks, or a JSON
// blob embedded in free text. The public parse entry point is total — for
// any string input it returns a response and never panics; malformed
// provider output is a recoverable data problem carried inside the tree.
package unify

import (
	"fmt"

	"unify/internal/classify"
	"unify/internal/extract"
	"unify/internal/logging"
	"unify/internal/textparse"
	"unify/pkg/ast"
)

// Logger is re-exported so callers can inject their own backend without
// importing internal packages.
type Logger = logging.Logger

// FallbackParser is the contract the text fallback collaborator satisfies:
// same node shapes, same never-fails guarantee. The orchestrator treats it
// as a black box.
type FallbackParser interface {
	ParseUnstructured(raw string) *ast.Response
}

// Context biases parsing when the caller knows the provider in advance. It
// only breaks classification ties; wire markers win on their own.
type Context struct {
	ModelProvider string
	ModelName     string
	// LenientMode runs jsonrepair over malformed tool-call argument
	// payloads before reporting them as parse errors. By default invalid
	// argument JSON surfaces as a ParseError with the raw payload intact.
	LenientMode bool
}

// Parser is the hybrid orchestrator. It holds no per-parse state, so a
// single Parser is safe for concurrent use.
type Parser struct {
	fallback FallbackParser
	logger   logging.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithFallback replaces the default text fallback parser.
func WithFallback(fallback FallbackParser) Option {
	return func(p *Parser) {
		if fallback != nil {
			p.fallback = fallback
		}
	}
}

// WithLogger injects a logger. Defaults to a logrus-backed component logger
// at warn level.
func WithLogger(logger Logger) Option {
	return func(p *Parser) {
		p.logger = logging.OrNop(logger)
	}
}

// New constructs a Parser with the default fallback and logger.
func New(opts ...Option) *Parser {
	p := &Parser{logger: logging.NewComponentLogger("unify")}
	for _, opt := range opts {
		opt(p)
	}
	if p.fallback == nil {
		p.fallback = textparse.New(p.logger)
	}
	return p
}

// Parse normalizes a complete provider response body.
func (p *Parser) Parse(raw string) *ast.Response {
	return p.ParseWithContext(raw, Context{})
}

// ParseWithContext is Parse with a caller-supplied parser context. The
// sequence is classify, structured extraction, fallback: when the
// structured attempt fails or yields no usable content the raw input goes
// to the fallback parser instead of returning an empty tree. The
// orchestrator adopts whichever tree was produced; it fabricates no nodes
// itself.
func (p *Parser) ParseWithContext(raw string, pctx Context) *ast.Response {
	resp, reason := p.parseStructured(raw, pctx)
	if resp != nil && !resp.Empty() {
		return resp
	}

	fallbackResp := p.parseFallback(raw)
	if reason != "" {
		p.logger.Debug("structured parse abandoned: %s", reason)
		fallbackResp.Metadata.FallbackReason = reason
	}
	if fallbackResp.Metadata.Model == "" {
		fallbackResp.Metadata.Model = pctx.ModelName
	}
	return fallbackResp
}

// ParseGeneric normalizes a plain text segment plus a side-channel value
// holding tool-call data in an unknown shape, for callers that receive the
// two separately instead of as one wire payload.
func (p *Parser) ParseGeneric(text string, side any) *ast.Response {
	return extract.Generic(text, side, p.extractConfig(Context{}))
}

// parseStructured runs classification and extraction. Extractor panics on
// pathological payloads are converted here into a fallback reason instead
// of escaping the public entry point.
func (p *Parser) parseStructured(raw string, pctx Context) (resp *ast.Response, reason string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			resp = nil
			reason = fmt.Sprintf("structured extraction panicked: %v", recovered)
		}
	}()

	detection := classify.Classify(raw, classify.Hint{Provider: pctx.ModelProvider})
	if detection.Kind != classify.Structured {
		return nil, ""
	}

	cfg := p.extractConfig(pctx)
	switch detection.Provider {
	case classify.ProviderOpenAI:
		resp = extract.OpenAI(detection.Envelope, cfg)
	case classify.ProviderAnthropic:
		resp = extract.Anthropic(detection.Envelope, detection.Blocks, cfg)
	case classify.ProviderGeneric:
		resp = extract.Generic("", detection.Side, cfg)
	default:
		return nil, fmt.Sprintf("classifier returned unknown provider %v", detection.Provider)
	}

	if resp.Empty() {
		return resp, fmt.Sprintf("%s extraction yielded no content", detection.Provider)
	}
	if resp.Metadata.Model == "" {
		resp.Metadata.Model = pctx.ModelName
	}
	return resp, ""
}

// parseFallback invokes the collaborator. A fallback that panics or
// returns nil still leaves the caller with the raw input as a text-only
// response.
func (p *Parser) parseFallback(raw string) (resp *ast.Response) {
	defer func() {
		if recovered := recover(); recovered != nil {
			p.logger.Warn("fallback parser panicked: %v", recovered)
			resp = &ast.Response{Text: raw, Metadata: ast.Metadata{Provider: "text"}}
		}
	}()

	resp = p.fallback.ParseUnstructured(raw)
	if resp == nil {
		resp = &ast.Response{Text: raw, Metadata: ast.Metadata{Provider: "text"}}
	}
	return resp
}

func (p *Parser) extractConfig(pctx Context) extract.Config {
	return extract.Config{Lenient: pctx.LenientMode, Logger: p.logger}
}

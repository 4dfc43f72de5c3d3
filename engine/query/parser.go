// Package query turns free-text shopping queries into structured form.
// The primary path asks the reasoning backend; the heuristic path keeps the
// parser fully operable without it.
package query

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

// Backend is the reasoning capability the parser consumes.
type Backend interface {
	ParseQuery(ctx context.Context, rawQuery string) (domain.SearchQuery, error)
}

// Parser produces a StructuredQuery from raw text. A nil backend skips the
// remote path entirely.
type Parser struct {
	backend Backend
	logger  *slog.Logger
}

// NewParser builds a Parser. backend may be nil.
func NewParser(backend Backend, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{backend: backend, logger: logger}
}

// Parse extracts structured fields from text. It fails with a query parse
// error only when the input carries no usable signal at all; backend
// failures degrade to the heuristic path instead.
func (p *Parser) Parse(ctx context.Context, text string) (domain.SearchQuery, error) {
	text = strings.TrimSpace(text)
	if !hasSignal(text) {
		return domain.SearchQuery{}, domain.E(domain.CodeQueryParse, "query has no usable product signal").
			With("query", text)
	}

	if p.backend != nil {
		q, err := p.backend.ParseQuery(ctx, text)
		if err == nil {
			return q, nil
		}
		p.logger.Warn("remote query parse failed, using heuristic", "err", err)
	}

	return HeuristicParse(text), nil
}

// hasSignal rejects empty and pure-noise input: at least one rune must be
// a letter or digit.
func hasSignal(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

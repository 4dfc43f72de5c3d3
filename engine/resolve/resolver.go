// Package resolve classifies scraped listings against a structured query.
// The Resolver is a strategy wrapper: it tries the remote reasoning backend
// first and falls back to the deterministic heuristic on any failure, so
// classification never fails outward.
package resolve

import (
	"context"
	"log/slog"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

// Backend is the remote reasoning capability the resolver consumes.
type Backend interface {
	AlignListing(ctx context.Context, q domain.SearchQuery, l domain.Listing) (domain.Match, error)
}

// Resolver produces exactly one Match per listing. A nil backend runs the
// heuristic path only.
type Resolver struct {
	backend   Backend
	heuristic Heuristic
	logger    *slog.Logger
}

// New builds a Resolver around an optional backend.
func New(backend Backend, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{backend: backend, heuristic: DefaultHeuristic, logger: logger}
}

// Classify returns a verdict for the listing. It never returns an error:
// remote failures of any kind degrade to the heuristic classifier.
func (r *Resolver) Classify(ctx context.Context, q domain.SearchQuery, l domain.Listing) domain.Match {
	if r.backend != nil {
		m, err := r.backend.AlignListing(ctx, q, l)
		if err == nil {
			return m
		}
		r.logger.Warn("remote alignment failed, using heuristic",
			"title", l.Title,
			"marketplace", l.Marketplace,
			"err", err,
		)
	}
	return r.heuristic.Classify(q, l)
}

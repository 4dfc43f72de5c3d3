// Package fuse deduplicates, scores, and orders classified listings into
// the final ranked result.
package fuse

import (
	"sort"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

// Options tunes the composite score. Confidence is the primary signal;
// price is a secondary signal among listings of the same verdict tier.
type Options struct {
	ConfidenceWeight float64
	PriceWeight      float64
}

// DefaultOptions weight confidence four to one over price.
var DefaultOptions = Options{ConfidenceWeight: 0.8, PriceWeight: 0.2}

// Engine fuses classified listings.
type Engine struct {
	opts Options
}

// New builds an Engine; zero-valued options use DefaultOptions.
func New(opts Options) *Engine {
	if opts.ConfidenceWeight == 0 && opts.PriceWeight == 0 {
		opts = DefaultOptions
	}
	return &Engine{opts: opts}
}

// Rank produces the fully ordered result list plus the excluded unrelated
// listings for the audit trail. An empty input yields empty slices.
//
// Steps: drop unrelated verdicts, fill fingerprints and normalized prices,
// collapse exact duplicates, score, sort deterministically.
func (e *Engine) Rank(classified []domain.Match) (ranked, excluded []domain.Match) {
	byID := make(map[string]domain.Match)
	var order []string

	for _, m := range classified {
		if p, ok := ParsePrice(m.Listing.PriceStr); ok && m.Listing.Price == 0 {
			m.Listing.Price = p
		}
		m.ID = domain.Fingerprint(m.Listing)

		if m.Kind == domain.MatchUnrelated {
			excluded = append(excluded, m)
			continue
		}

		prev, seen := byID[m.ID]
		if !seen {
			byID[m.ID] = m
			order = append(order, m.ID)
			continue
		}
		if betterDuplicate(m, prev) {
			byID[m.ID] = m
		}
	}

	minPrice := int64(0)
	for _, id := range order {
		if p := byID[id].Listing.Price; p > 0 && (minPrice == 0 || p < minPrice) {
			minPrice = p
		}
	}

	ranked = make([]domain.Match, 0, len(order))
	for _, id := range order {
		m := byID[id]
		m.Score = e.score(m, minPrice)
		ranked = append(ranked, m)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Kind.Rank() != b.Kind.Rank() {
			return a.Kind.Rank() < b.Kind.Rank()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ap, bp := a.Listing.Price, b.Listing.Price
		if ap != bp {
			// Unknown prices sort after known ones.
			if ap == 0 {
				return false
			}
			if bp == 0 {
				return true
			}
			return ap < bp
		}
		if a.Listing.Marketplace != b.Listing.Marketplace {
			return a.Listing.Marketplace < b.Listing.Marketplace
		}
		return a.ID < b.ID
	})

	return ranked, excluded
}

// score combines confidence with a cheapness factor relative to the best
// known price in the set. An unknown price contributes nothing.
func (e *Engine) score(m domain.Match, minPrice int64) float64 {
	priceScore := 0.0
	if m.Listing.Price > 0 && minPrice > 0 {
		priceScore = float64(minPrice) / float64(m.Listing.Price)
	}
	return e.opts.ConfidenceWeight*m.Confidence + e.opts.PriceWeight*priceScore
}

// betterDuplicate picks the duplicate to keep: higher confidence wins,
// ties go to the higher-priority marketplace.
func betterDuplicate(candidate, incumbent domain.Match) bool {
	if candidate.Confidence != incumbent.Confidence {
		return candidate.Confidence > incumbent.Confidence
	}
	return candidate.Listing.Marketplace.Priority() < incumbent.Listing.Marketplace.Priority()
}

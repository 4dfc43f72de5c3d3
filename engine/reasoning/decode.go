package reasoning

import (
	"encoding/json"
	"strings"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

type queryResponse struct {
	ProductName string `json:"product_name"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	StorageGB   int    `json:"storage_gb"`
	RAMGB       int    `json:"ram_gb"`
	Color       string `json:"color"`
}

type alignResponse struct {
	Confidence     string  `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
	ExtractedSpecs *struct {
		StorageGB int    `json:"storage_gb"`
		RAMGB     int    `json:"ram_gb"`
		Color     string `json:"color"`
	} `json:"extracted_specs"`
	RelevanceScore float64 `json:"relevance_score"`
}

// decodeQueryResponse validates a structured query-parse response. The raw
// query is always preserved; a missing product name falls back to it.
func decodeQueryResponse(raw, rawQuery string) (domain.SearchQuery, error) {
	var r queryResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return domain.SearchQuery{}, domain.E(domain.CodeLLMResponse, "malformed query parse JSON").
			With("body", truncate(raw, 200)).Wrap(err)
	}

	q := domain.SearchQuery{
		RawQuery:    rawQuery,
		ProductName: strings.TrimSpace(r.ProductName),
		Brand:       strings.TrimSpace(r.Brand),
		Model:       strings.TrimSpace(r.Model),
		StorageGB:   r.StorageGB,
		RAMGB:       r.RAMGB,
		Color:       strings.TrimSpace(r.Color),
	}
	if q.ProductName == "" {
		q.ProductName = rawQuery
	}
	return q, nil
}

// decodeAlignResponse validates a structured alignment response against the
// expected schema. Any deviation, including an unknown verdict, is a typed
// response error so the caller can fall back.
func decodeAlignResponse(raw string, l domain.Listing) (domain.Match, error) {
	var r alignResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return domain.Match{}, domain.E(domain.CodeLLMResponse, "malformed alignment JSON").
			With("body", truncate(raw, 200)).Wrap(err)
	}

	kind := domain.MatchKind(strings.ToLower(strings.TrimSpace(r.Confidence)))
	if !domain.ValidMatchKinds[kind] {
		return domain.Match{}, domain.E(domain.CodeLLMResponse, "unknown match verdict").
			With("verdict", r.Confidence)
	}

	m := domain.Match{
		Listing:    l,
		Kind:       kind,
		Confidence: clamp01(r.RelevanceScore),
		Reasoning:  strings.TrimSpace(r.Reasoning),
	}
	if r.ExtractedSpecs != nil {
		m.Specs = domain.ExtractedSpecs{
			StorageGB: r.ExtractedSpecs.StorageGB,
			RAMGB:     r.ExtractedSpecs.RAMGB,
			Color:     strings.TrimSpace(r.ExtractedSpecs.Color),
		}
	}
	if m.Reasoning == "" {
		m.Reasoning = "model verdict: " + string(kind)
	}
	return m, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Package reasoning implements the remote reasoning backend on the Gemini
// API. It handles query parsing and listing alignment as structured JSON
// calls; both return typed errors so callers can fall back to heuristics.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
	"github.com/UzMarketAI/scout-mvp/pkg/resilience"
)

// Options configures the reasoning engine.
type Options struct {
	APIKey      string
	Model       string
	Temperature float64
	// RateRPS paces outbound calls; zero disables pacing.
	RateRPS float64
}

// Engine is a rate-limited, breaker-guarded wrapper around the Gemini
// client. A dead backend trips the breaker so callers degrade to their
// heuristic paths without waiting out every timeout.
type Engine struct {
	client      *genai.Client
	model       string
	temperature float32
	limiter     *rate.Limiter
	breaker     *resilience.Breaker
	logger      *slog.Logger
}

// New builds an Engine. An empty API key is an error; callers that want a
// purely heuristic run should not construct an Engine at all.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Engine, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("reasoning: API key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("reasoning: model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(opts.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning: create client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateRPS), 1)
	}

	return &Engine{
		client:      client,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		limiter:     limiter,
		breaker:     resilience.NewBreaker(resilience.DefaultBreakerOpts),
		logger:      logger,
	}, nil
}

var querySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"product_name": {Type: genai.TypeString},
		"brand":        {Type: genai.TypeString},
		"model":        {Type: genai.TypeString},
		"storage_gb":   {Type: genai.TypeInteger},
		"ram_gb":       {Type: genai.TypeInteger},
		"color":        {Type: genai.TypeString},
	},
	Required: []string{"product_name"},
}

var alignSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"confidence": {
			Type: genai.TypeString,
			Enum: []string{"exact", "close", "accessory", "unrelated"},
		},
		"reasoning": {Type: genai.TypeString},
		"extracted_specs": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"storage_gb": {Type: genai.TypeInteger},
				"ram_gb":     {Type: genai.TypeInteger},
				"color":      {Type: genai.TypeString},
			},
		},
		"relevance_score": {Type: genai.TypeNumber},
	},
	Required: []string{"confidence", "relevance_score"},
}

// ParseQuery asks the model for a structured breakdown of the raw query.
func (e *Engine) ParseQuery(ctx context.Context, rawQuery string) (domain.SearchQuery, error) {
	raw, err := e.generate(ctx, queryParseSystem, rawQuery, querySchema)
	if err != nil {
		return domain.SearchQuery{}, err
	}
	return decodeQueryResponse(raw, rawQuery)
}

// AlignListing asks the model to classify one listing against the query.
func (e *Engine) AlignListing(ctx context.Context, q domain.SearchQuery, l domain.Listing) (domain.Match, error) {
	price := l.PriceStr
	if price == "" {
		price = fmt.Sprintf("%d", l.Price)
	}
	user := fmt.Sprintf(alignUserTemplate,
		q.ProductName,
		orNA(q.Brand),
		orNA(q.Model),
		orNAInt(q.StorageGB),
		orNAInt(q.RAMGB),
		orNA(q.Color),
		strings.ToUpper(string(l.Marketplace)),
		l.Title,
		price,
	)

	raw, err := e.generate(ctx, alignSystem, user, alignSchema)
	if err != nil {
		return domain.Match{}, err
	}
	return decodeAlignResponse(raw, l)
}

// generate performs one structured-output call and returns the raw JSON text.
func (e *Engine) generate(ctx context.Context, system, user string, schema *genai.Schema) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", domain.E(domain.CodeLLMConnection, "rate limiter wait aborted").Wrap(err)
	}

	var text string
	err := e.breaker.Call(ctx, func(ctx context.Context) error {
		temp := e.temperature
		resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(user),
			&genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
				Temperature:       &temp,
				CandidateCount:    1,
				ResponseMIMEType:  "application/json",
				ResponseSchema:    schema,
			})
		if err != nil {
			return err
		}
		text = resp.Text()
		return nil
	})
	if err != nil {
		msg := "reasoning call failed"
		if errors.Is(err, resilience.ErrCircuitOpen) {
			msg = "reasoning backend circuit open"
		}
		return "", domain.E(domain.CodeLLMConnection, msg).
			With("model", e.model).Wrap(err)
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.E(domain.CodeLLMResponse, "empty reasoning response").
			With("model", e.model)
	}
	return text, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNAInt(n int) string {
	if n == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", n)
}

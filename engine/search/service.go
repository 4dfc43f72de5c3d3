// Package search is the orchestrator: it owns the query lifecycle from raw
// text through scraping, classification, and fusion to the final report.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
	"github.com/UzMarketAI/scout-mvp/engine/fuse"
	"github.com/UzMarketAI/scout-mvp/engine/query"
	"github.com/UzMarketAI/scout-mvp/engine/resolve"
	"github.com/UzMarketAI/scout-mvp/engine/scraper"
	"github.com/UzMarketAI/scout-mvp/pkg/fn"
	"github.com/UzMarketAI/scout-mvp/pkg/metrics"
	"github.com/UzMarketAI/scout-mvp/pkg/resilience"
)

var tracer = otel.Tracer("scout/search")

// ListingCache is the optional raw-listing cache consumed by the service.
type ListingCache interface {
	Get(ctx context.Context, rawQuery string) ([]domain.Listing, bool)
	Put(ctx context.Context, rawQuery string, listings []domain.Listing)
}

// Options tunes one service instance.
type Options struct {
	// SourceTimeout bounds each source fetch independently.
	SourceTimeout time.Duration
	// MaxPerSource caps listings taken per source, by stable truncation.
	MaxPerSource int
	// Concurrency bounds simultaneous classification calls.
	Concurrency int
}

// DefaultOptions match the production tuning.
var DefaultOptions = Options{
	SourceTimeout: 30 * time.Second,
	MaxPerSource:  15,
	Concurrency:   10,
}

// Deps are the service collaborators. Cache may be nil.
type Deps struct {
	Parser   *query.Parser
	Sources  []scraper.Source
	Resolver *resolve.Resolver
	Fuser    *fuse.Engine
	Cache    ListingCache
	Metrics  *metrics.Registry
	Logger   *slog.Logger
}

// Service runs searches end to end.
type Service struct {
	deps Deps
	opts Options
	sem  *resilience.Semaphore
}

// New builds a Service. Zero-valued options fall back to DefaultOptions
// field by field.
func New(deps Deps, opts Options) *Service {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultOptions.SourceTimeout
	}
	if opts.MaxPerSource <= 0 {
		opts.MaxPerSource = DefaultOptions.MaxPerSource
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions.Concurrency
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Fuser == nil {
		deps.Fuser = fuse.New(fuse.Options{})
	}
	return &Service{
		deps: deps,
		opts: opts,
		sem:  resilience.NewSemaphore(opts.Concurrency),
	}
}

// Run executes one search. It fails only when the query cannot be parsed or
// when every source fails; partial source failures are reported in the
// result's audit trail instead.
func (s *Service) Run(ctx context.Context, text string) (domain.Report, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "search.Run",
		trace.WithAttributes(attribute.String("query", text)))
	defer span.End()

	s.deps.Metrics.Counter("scout_searches_total", "searches started").Inc()

	q, err := s.deps.Parser.Parse(ctx, text)
	if err != nil {
		s.deps.Metrics.Counter("scout_search_errors_total", "failed searches").Inc()
		return domain.Report{}, err
	}
	s.deps.Logger.Info("query parsed",
		"raw", q.RawQuery, "brand", q.Brand, "model", q.Model)

	listings, failures, err := s.scrapeAll(ctx, q)
	if err != nil {
		s.deps.Metrics.Counter("scout_search_errors_total", "failed searches").Inc()
		return domain.Report{}, err
	}

	listings = fn.CapBy(listings, s.opts.MaxPerSource, func(l domain.Listing) domain.Marketplace {
		return l.Marketplace
	})

	classified := s.classifyAll(ctx, q, listings)
	ranked, excluded := s.deps.Fuser.Rank(classified)

	report := domain.Report{
		Query:        q,
		Matches:      ranked,
		Excluded:     excluded,
		Failures:     failures,
		TotalScraped: len(listings),
		TotalMatched: len(ranked),
		Duration:     time.Since(start),
	}

	s.deps.Metrics.Histogram("scout_search_duration_seconds", "end-to-end search latency", nil).Since(start)
	s.deps.Logger.Info("search complete",
		"matches", len(ranked),
		"excluded", len(excluded),
		"failed_sources", len(failures),
		"duration", report.Duration,
	)
	return report, nil
}

type sourceResult struct {
	marketplace domain.Marketplace
	listings    []domain.Listing
	err         error
}

// scrapeAll fans out to every source under independent timeouts and joins
// on a barrier that never short-circuits. It fails only when no source
// produced output; individual failures become audit records.
func (s *Service) scrapeAll(ctx context.Context, q domain.SearchQuery) ([]domain.Listing, []domain.SourceFailure, error) {
	ctx, span := tracer.Start(ctx, "search.scrapeAll")
	defer span.End()

	if s.deps.Cache != nil {
		if cached, ok := s.deps.Cache.Get(ctx, q.RawQuery); ok {
			s.deps.Logger.Info("cache hit", "raw", q.RawQuery, "listings", len(cached))
			s.deps.Metrics.Counter("scout_cache_hits_total", "listing cache hits").Inc()
			return cached, nil, nil
		}
	}

	fetches := make([]func() sourceResult, len(s.deps.Sources))
	for i, src := range s.deps.Sources {
		fetches[i] = func() sourceResult {
			fetchCtx, cancel := context.WithTimeout(ctx, s.opts.SourceTimeout)
			defer cancel()

			start := time.Now()
			listings, err := src.Fetch(fetchCtx, q)
			s.deps.Metrics.Histogram(
				metrics.WithLabels("scout_scrape_duration_seconds", "source", string(src.Marketplace())),
				"per-source scrape latency", nil).Since(start)
			if err != nil {
				err = domain.E(domain.CodeWorker, "source worker failed").
					With("marketplace", string(src.Marketplace())).Wrap(err)
			}
			return sourceResult{marketplace: src.Marketplace(), listings: listings, err: err}
		}
	}

	var listings []domain.Listing
	var failures []domain.SourceFailure
	var causes []error
	for _, res := range fn.FanOut(fetches...) {
		if res.err != nil {
			s.deps.Logger.Warn("source excluded", "marketplace", res.marketplace, "err", res.err)
			failures = append(failures, domain.SourceFailure{
				Marketplace: res.marketplace,
				Code:        domain.CodeOf(res.err),
				Message:     res.err.Error(),
			})
			causes = append(causes, res.err)
			continue
		}
		s.deps.Metrics.Counter(
			metrics.WithLabels("scout_listings_scraped_total", "source", string(res.marketplace)),
			"raw listings collected").Add(int64(len(res.listings)))
		listings = append(listings, res.listings...)
	}

	if len(s.deps.Sources) > 0 && len(causes) == len(s.deps.Sources) {
		return nil, nil, domain.E(domain.CodeOrchestrator,
			fmt.Sprintf("all %d sources failed", len(causes))).Wrap(errors.Join(causes...))
	}

	if s.deps.Cache != nil && len(listings) > 0 {
		s.deps.Cache.Put(ctx, q.RawQuery, listings)
	}
	return listings, failures, nil
}

// classifyAll resolves every listing under the shared concurrency bound.
// Order is preserved; a slot-acquire failure (cancellation) degrades to the
// heuristic path so a verdict still exists for every listing.
func (s *Service) classifyAll(ctx context.Context, q domain.SearchQuery, listings []domain.Listing) []domain.Match {
	ctx, span := tracer.Start(ctx, "search.classifyAll",
		trace.WithAttributes(attribute.Int("listings", len(listings))))
	defer span.End()

	out := make([]domain.Match, len(listings))
	var wg sync.WaitGroup
	for i, l := range listings {
		if err := s.sem.Acquire(ctx); err != nil {
			// Cancelled mid-run. The dead ctx fails the remote path fast and
			// the resolver degrades to its heuristic, so a verdict still exists.
			out[i] = s.deps.Resolver.Classify(ctx, q, l)
			continue
		}
		wg.Add(1)
		go func(i int, l domain.Listing) {
			defer func() { s.sem.Release(); wg.Done() }()
			out[i] = s.deps.Resolver.Classify(ctx, q, l)
		}(i, l)
	}
	wg.Wait()
	return out
}

// Package main implements the scout CLI: one search per invocation,
// human-readable output by default, full JSON report on request.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
	"github.com/UzMarketAI/scout-mvp/engine/fuse"
	"github.com/UzMarketAI/scout-mvp/engine/query"
	"github.com/UzMarketAI/scout-mvp/engine/reasoning"
	"github.com/UzMarketAI/scout-mvp/engine/resolve"
	"github.com/UzMarketAI/scout-mvp/engine/scraper"
	"github.com/UzMarketAI/scout-mvp/engine/search"
	"github.com/UzMarketAI/scout-mvp/pkg/config"
)

func main() {
	var (
		asJSON  = flag.Bool("json", false, "print the full report as JSON")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	queryText := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if queryText == "" {
		fmt.Fprintln(os.Stderr, "usage: scout [-json] [-v] <product query>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	var parserBackend query.Backend
	var resolverBackend resolve.Backend
	if cfg.GeminiAPIKey != "" {
		engine, err := reasoning.New(ctx, reasoning.Options{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.LLMTemperature,
			RateRPS:     cfg.LLMRateRPS,
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reasoning backend: %v\n", err)
			os.Exit(1)
		}
		parserBackend, resolverBackend = engine, engine
	} else {
		logger.Warn("no API key configured, running on heuristics only")
	}

	svc := search.New(search.Deps{
		Parser: query.NewParser(parserBackend, logger),
		Sources: scraper.All(scraper.Options{
			Headless:   cfg.Headless,
			UserAgent:  cfg.UserAgent,
			MaxResults: cfg.MaxPerSource,
		}, logger),
		Resolver: resolve.New(resolverBackend, logger),
		Fuser:    fuse.New(fuse.Options{}),
		Logger:   logger,
	}, search.Options{
		SourceTimeout: cfg.SourceTimeout,
		MaxPerSource:  cfg.MaxPerSource,
		Concurrency:   cfg.ResolveConcurrency,
	})

	report, err := svc.Run(ctx, queryText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(report)
}

func printReport(r domain.Report) {
	fmt.Printf("Results for %q (%d scraped, %d matched, %s)\n",
		r.Query.RawQuery, r.TotalScraped, r.TotalMatched, r.Duration.Round(10*time.Millisecond))

	if best := r.BestPrice(); best > 0 {
		fmt.Printf("Best price: %s UZS\n", groupDigits(best))
	}
	fmt.Println()

	for i, m := range r.Matches {
		price := "price unknown"
		if m.Listing.Price > 0 {
			price = groupDigits(m.Listing.Price) + " UZS"
		}
		fmt.Printf("%2d. [%s/%.2f] %s\n", i+1, strings.ToUpper(string(m.Kind)), m.Confidence, m.Listing.Title)
		fmt.Printf("    %s | %s | %s\n", m.Listing.Marketplace, price, m.Listing.URL)
		if m.Reasoning != "" {
			fmt.Printf("    %s\n", m.Reasoning)
		}
	}

	if len(r.Failures) > 0 {
		fmt.Println("\nSources excluded:")
		for _, f := range r.Failures {
			fmt.Printf("  - %s: %s\n", f.Marketplace, f.Message)
		}
	}
}

// groupDigits formats 2499000 as "2 499 000".
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return strings.Join(append([]string{s}, parts...), " ")
}

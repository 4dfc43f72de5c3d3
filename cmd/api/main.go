// Package main implements the scout API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
	"github.com/UzMarketAI/scout-mvp/engine/fuse"
	"github.com/UzMarketAI/scout-mvp/engine/query"
	"github.com/UzMarketAI/scout-mvp/engine/reasoning"
	"github.com/UzMarketAI/scout-mvp/engine/resolve"
	"github.com/UzMarketAI/scout-mvp/engine/scraper"
	"github.com/UzMarketAI/scout-mvp/engine/search"
	"github.com/UzMarketAI/scout-mvp/pkg/bus"
	"github.com/UzMarketAI/scout-mvp/pkg/cache"
	"github.com/UzMarketAI/scout-mvp/pkg/config"
	"github.com/UzMarketAI/scout-mvp/pkg/metrics"
	"github.com/UzMarketAI/scout-mvp/pkg/mid"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Load()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Reasoning backend (optional) ---
	var backend *reasoning.Engine
	if cfg.GeminiAPIKey != "" {
		var err error
		backend, err = reasoning.New(ctx, reasoning.Options{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.LLMTemperature,
			RateRPS:     cfg.LLMRateRPS,
		}, logger)
		if err != nil {
			return err
		}
		logger.Info("reasoning backend ready", "model", cfg.GeminiModel)
	} else {
		logger.Warn("no API key configured, running on heuristics only")
	}

	// --- Optional collaborators ---
	var listingCache search.ListingCache
	if cfg.RedisAddr != "" {
		c, err := cache.New(ctx, cfg.RedisAddr, cfg.CacheTTL, logger)
		if err != nil {
			return err
		}
		defer c.Close()
		listingCache = c
		logger.Info("listing cache connected", "addr", cfg.RedisAddr)
	}

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATSURL, nats.Name("scout-api"))
		if err != nil {
			return err
		}
		defer nc.Close()
		logger.Info("event bus connected", "url", cfg.NATSURL)
	}

	// --- Build the search service ---
	reg := metrics.New()
	svc := search.New(search.Deps{
		Parser: query.NewParser(backendOrNil(backend), logger),
		Sources: scraper.All(scraper.Options{
			Headless:   cfg.Headless,
			UserAgent:  cfg.UserAgent,
			MaxResults: cfg.MaxPerSource,
		}, logger),
		Resolver: resolve.New(resolverBackendOrNil(backend), logger),
		Fuser:    fuse.New(fuse.Options{}),
		Cache:    listingCache,
		Metrics:  reg,
		Logger:   logger,
	}, search.Options{
		SourceTimeout: cfg.SourceTimeout,
		MaxPerSource:  cfg.MaxPerSource,
		Concurrency:   cfg.ResolveConcurrency,
	})

	// --- HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/search", handleSearch(svc, nc, logger))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("scout-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// backendOrNil avoids a non-nil interface wrapping a nil pointer.
func backendOrNil(e *reasoning.Engine) query.Backend {
	if e == nil {
		return nil
	}
	return e
}

func resolverBackendOrNil(e *reasoning.Engine) resolve.Backend {
	if e == nil {
		return nil
	}
	return e
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
}

func handleSearch(svc *search.Service, nc *nats.Conn, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
			return
		}

		report, err := svc.Run(r.Context(), req.Query)
		if err != nil {
			switch domain.CodeOf(err) {
			case domain.CodeQueryParse:
				http.Error(w, `{"error":"query could not be parsed"}`, http.StatusUnprocessableEntity)
			case domain.CodeOrchestrator:
				http.Error(w, `{"error":"all sources are unavailable"}`, http.StatusBadGateway)
			default:
				logger.Error("search failed", "err", err)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			}
			return
		}

		if nc != nil {
			if err := bus.Publish(r.Context(), nc, bus.SubjectSearchCompleted, bus.EventFromReport(report)); err != nil {
				logger.Warn("event publish failed", "err", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

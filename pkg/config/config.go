// Package config loads the immutable process configuration from the
// environment. A .env file is honored when present. The resolved Config is
// built once at startup and passed down explicitly; no component reads
// ambient state mid-call.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the scout engine consumes.
type Config struct {
	// Reasoning backend.
	GeminiAPIKey   string
	GeminiModel    string
	LLMTemperature float64
	LLMRateRPS     float64

	// Scraping.
	SourceTimeout time.Duration
	MaxPerSource  int
	Headless      bool
	UserAgent     string

	// Classification fan-out.
	ResolveConcurrency int

	// Optional collaborators; empty address disables the integration.
	RedisAddr string
	CacheTTL  time.Duration
	NATSURL   string

	// HTTP surface.
	Port       string
	CORSOrigin string
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/131.0 Safari/537.36"

// Load reads the optional .env file and resolves all settings.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using process environment only")
	}

	return Config{
		GeminiAPIKey:   envOr("GEMINI_API_KEY", ""),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTemperature: envFloat("LLM_TEMPERATURE", 0.1),
		LLMRateRPS:     envFloat("LLM_RATE_RPS", 5),

		SourceTimeout: time.Duration(envInt("SCRAPE_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxPerSource:  envInt("MAX_RESULTS_PER_SITE", 15),
		Headless:      envBool("HEADLESS", true),
		UserAgent:     envOr("USER_AGENT", defaultUserAgent),

		ResolveConcurrency: envInt("LLM_CONCURRENCY_LIMIT", 10),

		RedisAddr: envOr("REDIS_ADDR", ""),
		CacheTTL:  time.Duration(envInt("CACHE_TTL_SECONDS", 900)) * time.Second,
		NATSURL:   envOr("NATS_URL", ""),

		Port:       envOr("PORT", "8080"),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

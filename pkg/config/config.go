// Package config loads the process-wide settings from the environment.
// A .env file in the working directory is merged first when present. Every
// required setting that is missing or fails type coercion aborts startup;
// configuration errors are operator errors and are surfaced immediately.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingSetting marks a required environment variable that was not set.
var ErrMissingSetting = errors.New("required setting missing")

// Config is the immutable settings record shared by all components. It is
// created once at startup and passed into each component at construction time.
type Config struct {
	Port string

	// Vector store (Qdrant).
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	MaxResultRAG     int
	EmbeddingModel   string
	Threshold        float64

	// OpenAI.
	OpenAIKey string
	Model     string

	// Tavily web search.
	TavilyKey       string
	MaxResultTavily int

	// CORS policy.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool

	// Optional classification event stream. Disabled when empty.
	NATSURL string
}

// Load reads settings from the environment, merging an optional .env file.
func Load() (Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	var errs []error

	cfg := Config{
		Port:             envOr("PORT", "8000"),
		QdrantURL:        requireString("QDRANT_URL", &errs),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: envOr("QDRANT_COLLECTION", "papers"),
		MaxResultRAG:     requireInt("MAX_RESULT_RAG", &errs),
		EmbeddingModel:   requireString("EMBEDDING_MODEL", &errs),
		Threshold:        requireFloat("THRESHOLD", &errs),
		OpenAIKey:        requireString("OPENAI_API_KEY", &errs),
		Model:            requireString("MODEL", &errs),
		TavilyKey:        requireString("TAVILY_API_KEY", &errs),
		MaxResultTavily:  requireInt("MAX_RESULT_TAVILY", &errs),
		AllowedOrigins:   envList("ALLOWED_ORIGINS", "*"),
		AllowedMethods:   envList("ALLOWED_METHODS", "*"),
		AllowedHeaders:   envList("ALLOWED_HEADERS", "*"),
		AllowCredentials: envBool("ALLOW_CREDENTIALS", true, &errs),
		NATSURL:          os.Getenv("NATS_URL"),
	}

	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		errs = append(errs, fmt.Errorf("THRESHOLD: %v outside [0,1]", cfg.Threshold))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireString(key string, errs *[]error) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, ErrMissingSetting))
	}
	return v
}

func requireInt(key string, errs *[]error) int {
	raw := requireString(key, errs)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, raw))
	}
	return v
}

func requireFloat(key string, errs *[]error) float64 {
	raw := requireString(key, errs)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a number", key, raw))
	}
	return v
}

func envBool(key string, fallback bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
	}
	return v
}

// envList parses a comma-separated list, trimming whitespace around entries.
func envList(key, fallback string) []string {
	raw := envOr(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

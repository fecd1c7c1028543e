// Package main implements the paper classification API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/agent"
	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
	"github.com/CarlosYazid/Ai-Data-Challenge/engine/retrieval"
	"github.com/CarlosYazid/Ai-Data-Challenge/engine/semantic"
	"github.com/CarlosYazid/Ai-Data-Challenge/engine/websearch"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/config"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/events"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/metrics"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/mid"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/openai"
	"github.com/CarlosYazid/Ai-Data-Challenge/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.QdrantCollection, cfg.QdrantAPIKey)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// --- Build the agent and its tools ---
	llm := openai.New(cfg.OpenAIKey, cfg.Model, cfg.EmbeddingModel)
	retriever := retrieval.New(llm, vectorStore, cfg.Threshold, cfg.MaxResultRAG, logger)
	searcher := websearch.NewTavily(cfg.TavilyKey, cfg.MaxResultTavily)
	classifier := agent.New(llm, retriever, searcher, agent.DefaultOptions(), logger)

	// --- Optional classification event stream ---
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(cfg.NATSURL, logger)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer publisher.Close()
	}

	app := newApp(classifier, publisher, cfg.Model, logger)

	// --- Build HTTP server ---
	handler := mid.Chain(app.routes(),
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(mid.CORSPolicy{
			Origins:     cfg.AllowedOrigins,
			Methods:     cfg.AllowedMethods,
			Headers:     cfg.AllowedHeaders,
			Credentials: cfg.AllowCredentials,
		}),
		mid.OTel("paper-classifier"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// classifier is the slice of the agent the handlers need.
type classifier interface {
	Classify(ctx context.Context, q domain.Query) (domain.Result, error)
}

// app wires the handlers to the classifier and the side channels.
type app struct {
	classifier classifier
	publisher  *events.Publisher
	model      string
	logger     *slog.Logger

	registry  *metrics.Registry
	requests  *metrics.Counter
	failures  *metrics.Counter
	durations *metrics.Histogram
}

func newApp(c classifier, pub *events.Publisher, model string, logger *slog.Logger) *app {
	if logger == nil {
		logger = slog.Default()
	}
	reg := metrics.New()
	return &app{
		classifier: c,
		publisher:  pub,
		model:      model,
		logger:     logger,
		registry:   reg,
		requests:   reg.Counter("classify_requests_total", "Classification requests received."),
		failures:   reg.Counter("classify_failures_total", "Classification requests that failed."),
		durations:  reg.Histogram("classify_duration_seconds", "Classification latency.", metrics.DefaultBuckets),
	}
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleLiveness)
	mux.HandleFunc("POST /classify/", a.handleClassify)
	mux.HandleFunc("POST /classify", a.handleClassify)
	mux.Handle("GET /metrics", a.registry.Handler())
	mux.Handle("GET /ui/", http.StripPrefix("/ui/", http.FileServerFS(web.Assets)))
	return mux
}

func handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "Ok"})
}

func (a *app) handleClassify(w http.ResponseWriter, r *http.Request) {
	a.requests.Inc()
	start := time.Now()

	var q domain.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		a.failures.Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := a.classifier.Classify(r.Context(), q)
	if err != nil {
		a.failures.Inc()
		status, msg := classifyError(err)
		a.logger.Error("classification failed", "err", err, "title", q.Title)
		writeError(w, status, msg)
		return
	}
	a.durations.Since(start)

	a.publisher.Classified(r.Context(), events.ClassifiedEvent{
		Query:    q,
		Result:   result,
		Model:    a.model,
		Duration: time.Since(start),
		At:       time.Now().UTC(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// classifyError maps agent failures to HTTP status codes. Bad input is the
// caller's fault; everything the model produced wrong is an upstream failure.
func classifyError(err error) (int, string) {
	var malformed *domain.MalformedOutputError
	var schema *domain.SchemaValidationError
	switch {
	case errors.Is(err, domain.ErrEmptyTitle), errors.Is(err, domain.ErrEmptyAbstract):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &malformed), errors.As(err, &schema):
		return http.StatusBadGateway, "model returned an invalid classification"
	case errors.Is(err, domain.ErrAgentExhausted):
		return http.StatusBadGateway, "classification did not converge"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

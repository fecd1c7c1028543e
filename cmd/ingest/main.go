// Command ingest loads a paper corpus CSV into the Qdrant collection the
// API searches. Expects a header row with title, abstract, and group columns.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/ingest"
	"github.com/CarlosYazid/Ai-Data-Challenge/engine/semantic"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/config"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/openai"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	path := flag.String("corpus", "", "path to the corpus CSV file")
	sep := flag.String("sep", ";", "CSV field separator")
	batch := flag.Int("batch", ingest.DefaultBatchSize, "papers per upsert batch")
	flag.Parse()

	if err := run(*path, *sep, *batch, logger); err != nil {
		logger.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

func run(path, sep string, batch int, logger *slog.Logger) error {
	if path == "" {
		return fmt.Errorf("-corpus is required")
	}
	if len(sep) != 1 {
		return fmt.Errorf("-sep must be a single character, got %q", sep)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	papers, err := ingest.ReadPapers(f, rune(sep[0]))
	if err != nil {
		return err
	}
	logger.Info("corpus parsed", "papers", len(papers), "path", path)

	store, err := semantic.New(cfg.QdrantURL, cfg.QdrantCollection, cfg.QdrantAPIKey)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	embedder := openai.New(cfg.OpenAIKey, cfg.Model, cfg.EmbeddingModel)
	loader := ingest.NewLoader(embedder, store, batch, logger)

	indexed, err := loader.Run(ctx, papers)
	logger.Info("ingest finished", "indexed", indexed, "collection", cfg.QdrantCollection)
	return err
}

// Package retrieval implements the vector retrieval tool: a query is embedded
// via the embedding service, then matched against the indexed paper corpus
// with the configured similarity threshold and result cap.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentSearcher abstracts the vector store's similarity search.
type DocumentSearcher interface {
	MatchDocuments(ctx context.Context, embedding []float32, threshold float64, count int) ([]domain.DocumentMatch, error)
}

// Tool wires the embedder and the vector store into one retrieval call.
type Tool struct {
	embed     Embedder
	store     DocumentSearcher
	threshold float64
	count     int
	logger    *slog.Logger
}

// New creates a retrieval Tool.
func New(embed Embedder, store DocumentSearcher, threshold float64, count int, logger *slog.Logger) *Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tool{embed: embed, store: store, threshold: threshold, count: count, logger: logger}
}

// Retrieve returns the closest indexed papers for the query, in descending
// similarity order as provided by the store. One round trip per call; nothing
// is cached across calls.
func (t *Tool) Retrieve(ctx context.Context, query string) ([]domain.DocumentMatch, error) {
	vector, err := t.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	matches, err := t.store.MatchDocuments(ctx, vector, t.threshold, t.count)
	if err != nil {
		return nil, fmt.Errorf("retrieval: match documents: %w", err)
	}
	t.logger.Info("retrieval done", "query_len", len(query), "matches", len(matches))
	return matches, nil
}

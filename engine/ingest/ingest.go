// Package ingest loads a paper corpus from CSV into the vector store:
// parse, embed, and index in batches. Point IDs are deterministic, so
// re-running the loader updates existing papers instead of duplicating them.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/semantic"
)

// DefaultBatchSize is the number of papers indexed per upsert.
const DefaultBatchSize = 64

// Paper is one corpus row before embedding.
type Paper struct {
	Title    string
	Abstract string
	Group    string
}

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PaperIndexer is the slice of the vector store the loader needs.
type PaperIndexer interface {
	EnsureCollection(ctx context.Context, dims int) error
	UpsertPapers(ctx context.Context, records []semantic.PaperRecord) error
}

// Loader runs the embed-and-index pipeline.
type Loader struct {
	embed  Embedder
	store  PaperIndexer
	batch  int
	logger *slog.Logger
}

// NewLoader creates a Loader. batch <= 0 uses DefaultBatchSize.
func NewLoader(embed Embedder, store PaperIndexer, batch int, logger *slog.Logger) *Loader {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{embed: embed, store: store, batch: batch, logger: logger}
}

// ReadPapers parses a corpus CSV. The header row names the columns; title,
// abstract, and group are matched case-insensitively in any order. Rows with
// an empty title or abstract are skipped.
func ReadPapers(r io.Reader, comma rune) ([]Paper, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"title", "abstract", "group"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("ingest: header missing %q column", required)
		}
	}

	var papers []Paper
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}
		p := Paper{
			Title:    field(row, cols["title"]),
			Abstract: field(row, cols["abstract"]),
			Group:    field(row, cols["group"]),
		}
		if p.Title == "" || p.Abstract == "" {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Run embeds every paper and indexes the corpus in batches. Returns the
// number of papers indexed. The collection is created on first use with the
// dimension of the first embedding.
func (l *Loader) Run(ctx context.Context, papers []Paper) (int, error) {
	if len(papers) == 0 {
		return 0, nil
	}

	indexed := 0
	batch := make([]semantic.PaperRecord, 0, l.batch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.store.UpsertPapers(ctx, batch); err != nil {
			return err
		}
		indexed += len(batch)
		l.logger.Info("batch indexed", "papers", len(batch), "total", indexed)
		batch = batch[:0]
		return nil
	}

	for i, p := range papers {
		embedding, err := l.embed.Embed(ctx, p.Title+"\n"+p.Abstract)
		if err != nil {
			return indexed, fmt.Errorf("ingest: embed paper %d %q: %w", i+1, p.Title, err)
		}
		if i == 0 {
			if err := l.store.EnsureCollection(ctx, len(embedding)); err != nil {
				return indexed, fmt.Errorf("ingest: ensure collection: %w", err)
			}
		}
		batch = append(batch, semantic.PaperRecord{
			ID:        pointID(p),
			Embedding: embedding,
			Title:     p.Title,
			Abstract:  p.Abstract,
			Group:     p.Group,
		})
		if len(batch) == l.batch {
			if err := flush(); err != nil {
				return indexed, err
			}
		}
	}
	if err := flush(); err != nil {
		return indexed, err
	}
	return indexed, nil
}

// pointID derives a stable UUID from the paper content.
func pointID(p Paper) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(p.Title+"\x00"+p.Abstract)).String()
}

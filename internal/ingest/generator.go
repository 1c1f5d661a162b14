// Package ingest runs the document ingestion pipeline from extracted
// chunks through embeddings into the vector store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ragdesk/ragdesk/internal/embeddings"
	"github.com/ragdesk/ragdesk/internal/extractor"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

// defaultBatchSize bounds how many chunks go to the embedding API per call.
const defaultBatchSize = 20

// ProgressFunc is called after each batch completes.
type ProgressFunc func(done, total int)

// Generator embeds chunks in batches and writes them to the vector store.
// A failed batch is recorded and skipped; later batches still run.
type Generator struct {
	embedder    embeddings.Embedder
	store       vectordb.Store
	batchSize   int
	concurrency int
	logger      *slog.Logger
	onProgress  ProgressFunc
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithBatchSize overrides the embedding batch size.
func WithBatchSize(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 1 {
			g.batchSize = n
		}
	}
}

// WithConcurrency allows up to n batches in flight at once.
func WithConcurrency(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 1 {
			g.concurrency = n
		}
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) GeneratorOption {
	return func(g *Generator) { g.onProgress = fn }
}

// NewGenerator creates a Generator.
func NewGenerator(embedder embeddings.Embedder, store vectordb.Store, logger *slog.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		embedder:    embedder,
		store:       store,
		batchSize:   defaultBatchSize,
		concurrency: 1,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result summarizes one GenerateAndStore run.
type Result struct {
	Total      int
	Successful int
	Failed     int
	Errs       []error
}

// Success reports whether every chunk was embedded and stored.
func (r *Result) Success() bool { return r.Failed == 0 }

// GenerateAndStore embeds the chunks for one document and stores the
// vectors. Batches fail independently; the Result accounts for every chunk
// either as successful or failed.
func (g *Generator) GenerateAndStore(ctx context.Context, knowledgeBaseID, documentID string, chunks []extractor.Chunk) *Result {
	result := &Result{Total: len(chunks)}
	if len(chunks) == 0 {
		return result
	}

	var batches [][]extractor.Chunk
	for start := 0; start < len(chunks); start += g.batchSize {
		end := start + g.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[start:end])
	}

	sem := make(chan struct{}, g.concurrency)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var done int

	for i, batch := range batches {
		wg.Add(1)
		sem <- struct{}{}
		go func(n int, batch []extractor.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			err := g.processBatch(ctx, knowledgeBaseID, documentID, batch)

			mu.Lock()
			if err != nil {
				result.Failed += len(batch)
				result.Errs = append(result.Errs, fmt.Errorf("batch %d (%d chunks): %w", n+1, len(batch), err))
				g.logger.Warn("embedding batch failed",
					"document_id", documentID, "batch", n+1, "chunks", len(batch), "error", err)
			} else {
				result.Successful += len(batch)
			}
			done += len(batch)
			if g.onProgress != nil {
				g.onProgress(done, result.Total)
			}
			mu.Unlock()
		}(i, batch)
	}
	wg.Wait()

	return result
}

func (g *Generator) processBatch(ctx context.Context, knowledgeBaseID, documentID string, batch []extractor.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := g.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
	}

	records := make([]vectordb.Record, len(batch))
	for i, c := range batch {
		records[i] = vectordb.Record{
			KnowledgeBaseID: knowledgeBaseID,
			DocumentID:      documentID,
			ChunkID:         c.ID,
			Text:            c.Text,
			Vector:          vectors[i],
		}
	}

	if err := g.store.Add(ctx, records); err != nil {
		return fmt.Errorf("storing vectors: %w", err)
	}
	return nil
}

// EmbedQuery embeds a single query string.
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	return vectors[0], nil
}

// Package retrieval answers queries with the most relevant stored chunks.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ragdesk/ragdesk/internal/embeddings"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

// Knowledge is what retrieval hands to answer generation. An empty result
// set is not an error; HasRelevantInformation tells the caller whether any
// grounding material was found.
type Knowledge struct {
	RelevantContext        string
	HasRelevantInformation bool
	Chunks                 []vectordb.SearchResult
}

// Service embeds queries and searches the vector store.
type Service struct {
	embedder embeddings.Embedder
	store    vectordb.Store
	logger   *slog.Logger
}

// NewService creates a retrieval Service.
func NewService(embedder embeddings.Embedder, store vectordb.Store, logger *slog.Logger) *Service {
	return &Service{embedder: embedder, store: store, logger: logger}
}

// Retrieve embeds the query and returns matching chunks from one knowledge
// base, joined into a context block in ranked order.
func (s *Service) Retrieve(ctx context.Context, query, knowledgeBaseID string, opts vectordb.SearchOptions) (*Knowledge, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if knowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base id is required")
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.store.SearchVector(ctx, vectors[0], knowledgeBaseID, opts)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	s.logger.Debug("retrieval complete",
		"knowledge_base_id", knowledgeBaseID, "results", len(results))

	if len(results) == 0 {
		return &Knowledge{}, nil
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}

	return &Knowledge{
		RelevantContext:        strings.Join(texts, "\n\n"),
		HasRelevantInformation: true,
		Chunks:                 results,
	}, nil
}

// SearchVector runs a raw-vector search without embedding, for callers that
// already hold a query vector.
func (s *Service) SearchVector(ctx context.Context, vector []float32, knowledgeBaseID string, opts vectordb.SearchOptions) ([]vectordb.SearchResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if knowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base id is required")
	}
	return s.store.SearchVector(ctx, vector, knowledgeBaseID, opts)
}

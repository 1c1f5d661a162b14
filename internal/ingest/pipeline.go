package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ragdesk/ragdesk/internal/extractor"
	"github.com/ragdesk/ragdesk/internal/knowledge"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

// Pipeline drives a document from raw bytes to searchable vectors and keeps
// the registry status in step. A document is only marked processed when every
// chunk made it into the store.
type Pipeline struct {
	db     *knowledge.DB
	store  vectordb.Store
	gen    *Generator
	logger *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(db *knowledge.DB, store vectordb.Store, gen *Generator, logger *slog.Logger) *Pipeline {
	return &Pipeline{db: db, store: store, gen: gen, logger: logger}
}

// ProcessDocument ingests raw bytes for a registered document. Vectors from
// an earlier run are removed first so re-ingestion replaces instead of
// duplicating. On any failure the document lands in error state with the
// message recorded.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *knowledge.Document, data []byte) error {
	chunks, err := p.extract(doc.SourceLocator, data)
	if err != nil {
		if markErr := p.db.MarkError(ctx, doc.ID, err.Error()); markErr != nil {
			p.logger.Error("recording extraction failure", "document_id", doc.ID, "error", markErr)
		}
		return fmt.Errorf("extracting %s: %w", doc.ID, err)
	}

	if err := p.store.DeleteByDocument(ctx, doc.KnowledgeBaseID, doc.ID); err != nil {
		if markErr := p.db.MarkError(ctx, doc.ID, err.Error()); markErr != nil {
			p.logger.Error("recording cleanup failure", "document_id", doc.ID, "error", markErr)
		}
		return fmt.Errorf("clearing previous vectors for %s: %w", doc.ID, err)
	}

	result := p.gen.GenerateAndStore(ctx, doc.KnowledgeBaseID, doc.ID, chunks)
	if !result.Success() {
		msg := fmt.Sprintf("embedded %d of %d chunks", result.Successful, result.Total)
		if len(result.Errs) > 0 {
			msg = fmt.Sprintf("%s: %v", msg, result.Errs[0])
		}
		if markErr := p.db.MarkError(ctx, doc.ID, msg); markErr != nil {
			p.logger.Error("recording embedding failure", "document_id", doc.ID, "error", markErr)
		}
		return fmt.Errorf("embedding %s: %s", doc.ID, msg)
	}

	if err := p.db.MarkProcessed(ctx, doc.ID, result.Total); err != nil {
		return fmt.Errorf("marking %s processed: %w", doc.ID, err)
	}

	p.logger.Info("document processed",
		"document_id", doc.ID, "knowledge_base_id", doc.KnowledgeBaseID, "chunks", result.Total)
	return nil
}

// IngestFile registers a file as a document and processes it synchronously.
func (p *Pipeline) IngestFile(ctx context.Context, knowledgeBaseID, path string) (*knowledge.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := p.db.CreateDocument(ctx, knowledgeBaseID, path)
	if err != nil {
		return nil, err
	}

	if err := p.ProcessDocument(ctx, doc, data); err != nil {
		return p.db.GetDocument(ctx, doc.ID)
	}
	return p.db.GetDocument(ctx, doc.ID)
}

func (p *Pipeline) extract(locator string, data []byte) ([]extractor.Chunk, error) {
	if strings.EqualFold(filepath.Ext(locator), ".pdf") {
		return extractor.ExtractPDF(locator, data)
	}

	chunks := extractor.ChunkText(string(data))
	if len(chunks) == 0 {
		return nil, &extractor.ExtractionError{Locator: locator, Err: fmt.Errorf("no text content extracted")}
	}
	return chunks, nil
}

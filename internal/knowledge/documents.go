package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks where a document sits in the ingestion lifecycle.
type DocumentStatus string

const (
	StatusPending   DocumentStatus = "pending"
	StatusProcessed DocumentStatus = "processed"
	StatusError     DocumentStatus = "error"
)

// Document is one registered source in a knowledge base.
type Document struct {
	ID              string
	KnowledgeBaseID string
	SourceLocator   string
	Status          DocumentStatus
	ErrorMessage    string
	ChunkCount      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ErrNotFound is returned when a document or conversation does not exist.
var ErrNotFound = errors.New("not found")

// CreateDocument registers a new document in pending state and returns it.
func (d *DB) CreateDocument(ctx context.Context, knowledgeBaseID, sourceLocator string) (*Document, error) {
	if knowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base id is required")
	}
	if sourceLocator == "" {
		return nil, fmt.Errorf("source locator is required")
	}

	doc := &Document{
		ID:              uuid.NewString(),
		KnowledgeBaseID: knowledgeBaseID,
		SourceLocator:   sourceLocator,
		Status:          StatusPending,
	}

	_, err := d.ExecContext(ctx,
		`INSERT INTO documents (id, knowledge_base_id, source_locator, status) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.KnowledgeBaseID, doc.SourceLocator, doc.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	return d.GetDocument(ctx, doc.ID)
}

// GetDocument fetches a document by id.
func (d *DB) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := d.QueryRowContext(ctx,
		`SELECT id, knowledge_base_id, source_locator, status, error_message, chunk_count, created_at, updated_at
		 FROM documents WHERE id = ?`, id)

	var doc Document
	err := row.Scan(&doc.ID, &doc.KnowledgeBaseID, &doc.SourceLocator, &doc.Status,
		&doc.ErrorMessage, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns every document in a knowledge base, newest first.
func (d *DB) ListDocuments(ctx context.Context, knowledgeBaseID string) ([]Document, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT id, knowledge_base_id, source_locator, status, error_message, chunk_count, created_at, updated_at
		 FROM documents WHERE knowledge_base_id = ? ORDER BY created_at DESC, id`, knowledgeBaseID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.KnowledgeBaseID, &doc.SourceLocator, &doc.Status,
			&doc.ErrorMessage, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkProcessed records a successful ingestion with its chunk count.
func (d *DB) MarkProcessed(ctx context.Context, id string, chunkCount int) error {
	return d.setStatus(ctx, id, StatusProcessed, "", chunkCount)
}

// MarkError records a failed ingestion with the failure message. The chunk
// count is reset since nothing from this run is considered stored.
func (d *DB) MarkError(ctx context.Context, id, message string) error {
	return d.setStatus(ctx, id, StatusError, message, 0)
}

// MarkPending returns a document to pending ahead of re-ingestion.
func (d *DB) MarkPending(ctx context.Context, id string) error {
	return d.setStatus(ctx, id, StatusPending, "", 0)
}

func (d *DB) setStatus(ctx context.Context, id string, status DocumentStatus, message string, chunkCount int) error {
	res, err := d.ExecContext(ctx,
		`UPDATE documents SET status = ?, error_message = ?, chunk_count = ?, updated_at = datetime('now') WHERE id = ?`,
		status, message, chunkCount, id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a document from the registry.
func (d *DB) DeleteDocument(ctx context.Context, id string) error {
	res, err := d.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

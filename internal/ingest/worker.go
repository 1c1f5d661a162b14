package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ragdesk/ragdesk/internal/knowledge"
)

// ErrQueueFull is returned when the ingestion queue cannot accept more work.
var ErrQueueFull = fmt.Errorf("ingestion queue is full")

type job struct {
	documentID string
}

// Worker processes queued documents one at a time in the background so HTTP
// requests can return before ingestion finishes.
type Worker struct {
	pipeline *Pipeline
	db       *knowledge.DB
	jobs     chan job
	logger   *slog.Logger
}

// NewWorker creates a Worker with the given queue capacity.
func NewWorker(pipeline *Pipeline, db *knowledge.DB, queueSize int, logger *slog.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 64
	}
	return &Worker{
		pipeline: pipeline,
		db:       db,
		jobs:     make(chan job, queueSize),
		logger:   logger,
	}
}

// Enqueue schedules a registered document for processing.
func (w *Worker) Enqueue(documentID string) error {
	select {
	case w.jobs <- job{documentID: documentID}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.jobs:
			w.process(ctx, j.documentID)
		}
	}
}

func (w *Worker) process(ctx context.Context, documentID string) {
	doc, err := w.db.GetDocument(ctx, documentID)
	if err != nil {
		w.logger.Error("loading queued document", "document_id", documentID, "error", err)
		return
	}

	data, err := os.ReadFile(doc.SourceLocator)
	if err != nil {
		w.logger.Error("reading queued document", "document_id", documentID, "error", err)
		if markErr := w.db.MarkError(ctx, documentID, fmt.Sprintf("reading source: %v", err)); markErr != nil {
			w.logger.Error("recording read failure", "document_id", documentID, "error", markErr)
		}
		return
	}

	if err := w.pipeline.ProcessDocument(ctx, doc, data); err != nil {
		w.logger.Warn("background ingestion failed", "document_id", documentID, "error", err)
	}
}

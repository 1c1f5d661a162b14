package ingest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ragdesk/ragdesk/internal/knowledge"
)

// RegisterRoutes mounts document ingestion endpoints under /api/documents.
func RegisterRoutes(r chi.Router, db *knowledge.DB, worker *Worker) {
	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/process", handleProcess(db, worker))
		r.Get("/", handleList(db))
		r.Get("/{id}", handleGet(db))
	})
}

type processRequest struct {
	KnowledgeBaseID string `json:"knowledge_base_id"`
	SourceLocator   string `json:"source_locator"`
}

type documentResponse struct {
	ID              string `json:"id"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	SourceLocator   string `json:"source_locator"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
	ChunkCount      int    `json:"chunk_count"`
}

func toResponse(doc *knowledge.Document) documentResponse {
	return documentResponse{
		ID:              doc.ID,
		KnowledgeBaseID: doc.KnowledgeBaseID,
		SourceLocator:   doc.SourceLocator,
		Status:          string(doc.Status),
		ErrorMessage:    doc.ErrorMessage,
		ChunkCount:      doc.ChunkCount,
	}
}

func handleProcess(db *knowledge.DB, worker *Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.KnowledgeBaseID == "" {
			http.Error(w, "knowledge_base_id is required", http.StatusBadRequest)
			return
		}
		if req.SourceLocator == "" {
			http.Error(w, "source_locator is required", http.StatusBadRequest)
			return
		}

		doc, err := db.CreateDocument(r.Context(), req.KnowledgeBaseID, req.SourceLocator)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := worker.Enqueue(doc.ID); err != nil {
			if markErr := db.MarkError(r.Context(), doc.ID, err.Error()); markErr == nil {
				doc.Status = knowledge.StatusError
				doc.ErrorMessage = err.Error()
			}
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, http.StatusAccepted, toResponse(doc))
	}
}

func handleList(db *knowledge.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kbID := r.URL.Query().Get("knowledge_base_id")
		if kbID == "" {
			http.Error(w, "knowledge_base_id is required", http.StatusBadRequest)
			return
		}

		docs, err := db.ListDocuments(r.Context(), kbID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out := make([]documentResponse, len(docs))
		for i := range docs {
			out[i] = toResponse(&docs[i])
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGet(db *knowledge.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		doc, err := db.GetDocument(r.Context(), id)
		if errors.Is(err, knowledge.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toResponse(doc))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

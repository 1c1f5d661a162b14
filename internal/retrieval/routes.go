package retrieval

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ragdesk/ragdesk/internal/vectordb"
)

// RegisterRoutes mounts search endpoints under /api/search.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/search", func(r chi.Router) {
		r.Post("/vector", handleVectorSearch(svc))
	})
}

type searchRequest struct {
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	Query           string    `json:"query,omitempty"`
	Vector          []float32 `json:"vector,omitempty"`
	Limit           int       `json:"limit,omitempty"`
	DocumentIDs     []string  `json:"document_ids,omitempty"`
	NumCandidates   int       `json:"num_candidates,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

func handleVectorSearch(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.KnowledgeBaseID == "" {
			http.Error(w, "knowledge_base_id is required", http.StatusBadRequest)
			return
		}
		if req.Query == "" && len(req.Vector) == 0 {
			http.Error(w, "query or vector is required", http.StatusBadRequest)
			return
		}

		opts := vectordb.SearchOptions{
			Limit:         req.Limit,
			DocumentIDs:   req.DocumentIDs,
			NumCandidates: req.NumCandidates,
		}

		var results []vectordb.SearchResult
		var err error
		if len(req.Vector) > 0 {
			results, err = svc.SearchVector(r.Context(), req.Vector, req.KnowledgeBaseID, opts)
		} else {
			var knowledge *Knowledge
			knowledge, err = svc.Retrieve(r.Context(), req.Query, req.KnowledgeBaseID, opts)
			if knowledge != nil {
				results = knowledge.Chunks
			}
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := searchResponse{Results: make([]searchResult, len(results))}
		for i, res := range results {
			resp.Results[i] = searchResult{
				ID:         res.ID,
				DocumentID: res.DocumentID,
				ChunkID:    res.ChunkID,
				Text:       res.Text,
				Score:      res.Score,
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

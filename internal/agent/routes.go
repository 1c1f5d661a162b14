package agent

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ragdesk/ragdesk/internal/knowledge"
)

// RegisterRoutes mounts the chat endpoints under /api.
func RegisterRoutes(r chi.Router, agent *Agent, db *knowledge.DB) {
	r.Post("/api/chat", handleChat(agent))
	if db != nil {
		r.Get("/api/conversations/{id}", handleGetConversation(db))
	}
}

func handleChat(agent *Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		// Callers may send the latest message as the last history entry
		// instead of a separate query field.
		if req.Query == "" && len(req.Messages) > 0 {
			last := req.Messages[len(req.Messages)-1]
			if last.Role == "user" {
				req.Query = last.Content
				req.Messages = req.Messages[:len(req.Messages)-1]
			}
		}

		if req.KnowledgeBaseID == "" {
			http.Error(w, "knowledge_base_id is required", http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			http.Error(w, "a user message is required", http.StatusBadRequest)
			return
		}

		resp, err := agent.Process(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type conversationResponse struct {
	ID       string                `json:"id"`
	Messages []conversationMessage `json:"messages"`
}

type conversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Intent  string `json:"intent,omitempty"`
}

func handleGetConversation(db *knowledge.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		conv, err := db.GetConversation(r.Context(), id)
		if errors.Is(err, knowledge.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		msgs, err := db.Messages(r.Context(), conv.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := conversationResponse{ID: conv.ID}
		for _, m := range msgs {
			resp.Messages = append(resp.Messages, conversationMessage{
				Role:    m.Role,
				Content: m.Content,
				Intent:  m.Intent,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

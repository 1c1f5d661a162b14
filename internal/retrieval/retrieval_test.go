package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ragdesk/ragdesk/internal/log"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int { return 3 }
func (stubEmbedder) Name() string    { return "stub" }

type stubStore struct {
	results []vectordb.SearchResult
	lastKB  string
	lastOpt vectordb.SearchOptions
}

func (s *stubStore) Add(ctx context.Context, records []vectordb.Record) error { return nil }

func (s *stubStore) SearchVector(ctx context.Context, vector []float32, kbID string, opts vectordb.SearchOptions) ([]vectordb.SearchResult, error) {
	s.lastKB = kbID
	s.lastOpt = opts
	return s.results, nil
}

func (s *stubStore) DeleteByDocument(ctx context.Context, kbID, docID string) error { return nil }
func (s *stubStore) Count() int                                                     { return len(s.results) }
func (s *stubStore) Persist(ctx context.Context, dir string) error                  { return nil }
func (s *stubStore) Load(ctx context.Context, dir string) error                     { return nil }

func TestRetrieveJoinsChunksInOrder(t *testing.T) {
	store := &stubStore{results: []vectordb.SearchResult{
		{ID: "a", Text: "Refunds take five days.", Score: 0.9},
		{ID: "b", Text: "Contact support for refunds.", Score: 0.8},
	}}
	svc := NewService(stubEmbedder{}, store, log.NewNop())

	k, err := svc.Retrieve(context.Background(), "refund policy", "kb1", vectordb.SearchOptions{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !k.HasRelevantInformation {
		t.Error("HasRelevantInformation = false, want true")
	}
	want := "Refunds take five days.\n\nContact support for refunds."
	if k.RelevantContext != want {
		t.Errorf("RelevantContext = %q, want %q", k.RelevantContext, want)
	}
	if store.lastKB != "kb1" {
		t.Errorf("searched kb %q, want kb1", store.lastKB)
	}
}

func TestRetrieveEmptyResultIsSoftMiss(t *testing.T) {
	svc := NewService(stubEmbedder{}, &stubStore{}, log.NewNop())

	k, err := svc.Retrieve(context.Background(), "anything", "kb1", vectordb.SearchOptions{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if k.HasRelevantInformation {
		t.Error("HasRelevantInformation = true for empty result")
	}
	if k.RelevantContext != "" {
		t.Errorf("RelevantContext = %q, want empty", k.RelevantContext)
	}
}

func TestRetrieveValidation(t *testing.T) {
	svc := NewService(stubEmbedder{}, &stubStore{}, log.NewNop())
	ctx := context.Background()

	if _, err := svc.Retrieve(ctx, "   ", "kb1", vectordb.SearchOptions{}); err == nil {
		t.Error("expected error for blank query")
	}
	if _, err := svc.Retrieve(ctx, "question", "", vectordb.SearchOptions{}); err == nil {
		t.Error("expected error for empty knowledge base id")
	}
}

func newSearchRouter(store *stubStore) *chi.Mux {
	svc := NewService(stubEmbedder{}, store, log.NewNop())
	r := chi.NewRouter()
	RegisterRoutes(r, svc)
	return r
}

func TestVectorSearchEndpointWithQuery(t *testing.T) {
	store := &stubStore{results: []vectordb.SearchResult{
		{ID: "a", DocumentID: "doc1", ChunkID: "page_1", Text: "hello", Score: 0.75},
	}}
	r := newSearchRouter(store)

	body := `{"knowledge_base_id":"kb1","query":"greeting","limit":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/search/vector", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ChunkID != "page_1" {
		t.Errorf("results = %+v", resp.Results)
	}
	if store.lastOpt.Limit != 5 {
		t.Errorf("limit = %d, want 5", store.lastOpt.Limit)
	}
}

func TestVectorSearchEndpointWithRawVector(t *testing.T) {
	store := &stubStore{}
	r := newSearchRouter(store)

	body := `{"knowledge_base_id":"kb1","vector":[0.1,0.2,0.3]}`
	req := httptest.NewRequest(http.MethodPost, "/api/search/vector", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVectorSearchEndpointValidation(t *testing.T) {
	r := newSearchRouter(&stubStore{})

	cases := []struct {
		name string
		body string
	}{
		{"missing kb", `{"query":"hi"}`},
		{"missing query and vector", `{"knowledge_base_id":"kb1"}`},
		{"malformed", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/search/vector", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

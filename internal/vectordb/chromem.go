package vectordb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ragdesk/ragdesk/internal/embeddings"
)

const collectionName = "chunks"

// ChromemStore implements Store using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
	seq        atomic.Int64
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		if rec.KnowledgeBaseID == "" || rec.DocumentID == "" || rec.ChunkID == "" {
			return fmt.Errorf("record %d: knowledge base, document and chunk ids are required", i)
		}
		docs[i] = chromem.Document{
			ID:        rec.key(),
			Content:   rec.Text,
			Embedding: rec.Vector,
			Metadata: map[string]string{
				"knowledge_base_id": rec.KnowledgeBaseID,
				"document_id":       rec.DocumentID,
				"chunk_id":          rec.ChunkID,
				"seq":               strconv.FormatInt(s.seq.Add(1), 10),
			},
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) SearchVector(ctx context.Context, vector []float32, knowledgeBaseID string, opts SearchOptions) ([]SearchResult, error) {
	if knowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base id is required")
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// Over-fetch so that document filtering and tie-breaking still leave
	// enough candidates. chromem-go requires nResults <= collection size.
	fetch := opts.candidates()
	if fetch > count {
		fetch = count
	}

	where := map[string]string{"knowledge_base_id": knowledgeBaseID}

	results, err := s.collection.QueryEmbedding(ctx, vector, fetch, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var docFilter map[string]bool
	if len(opts.DocumentIDs) > 0 {
		docFilter = make(map[string]bool, len(opts.DocumentIDs))
		for _, id := range opts.DocumentIDs {
			docFilter[id] = true
		}
	}

	type scored struct {
		res SearchResult
		seq int64
	}
	candidates := make([]scored, 0, len(results))
	for _, r := range results {
		if r.Metadata["knowledge_base_id"] != knowledgeBaseID {
			continue
		}
		if docFilter != nil && !docFilter[r.Metadata["document_id"]] {
			continue
		}
		seq, _ := strconv.ParseInt(r.Metadata["seq"], 10, 64)
		candidates = append(candidates, scored{
			res: SearchResult{
				ID:         r.ID,
				DocumentID: r.Metadata["document_id"],
				ChunkID:    r.Metadata["chunk_id"],
				Text:       r.Content,
				Score:      r.Similarity,
			},
			seq: seq,
		})
	}

	// Equal scores resolve by insertion order so repeated queries agree.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].res.Score != candidates[j].res.Score {
			return candidates[i].res.Score > candidates[j].res.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	limit := opts.limit()
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		out[i] = c.res
	}
	return out, nil
}

func (s *ChromemStore) DeleteByDocument(ctx context.Context, knowledgeBaseID, documentID string) error {
	if knowledgeBaseID == "" || documentID == "" {
		return fmt.Errorf("knowledge base and document ids are required")
	}
	where := map[string]string{
		"knowledge_base_id": knowledgeBaseID,
		"document_id":       documentID,
	}
	return s.collection.Delete(ctx, where, nil)
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/chromem.gob.gz", true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	err := s.db.ImportFromFile(dir+"/chromem.gob.gz", "")
	if err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col

	// Keep insertion sequence ahead of anything already stored.
	s.seq.Store(int64(col.Count()))
	return nil
}

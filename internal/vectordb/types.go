package vectordb

// Record is one stored embedding: a chunk of document text, its vector and
// the identifiers scoping it. Records are unique per
// (knowledge base, document, chunk).
type Record struct {
	KnowledgeBaseID string
	DocumentID      string
	ChunkID         string
	Text            string
	Vector          []float32
}

// key builds the stable store identifier for a record.
func (r Record) key() string {
	return r.KnowledgeBaseID + ":" + r.DocumentID + ":" + r.ChunkID
}

// SearchResult is one similarity hit, ranked by descending Score.
type SearchResult struct {
	ID         string
	DocumentID string
	ChunkID    string
	Text       string
	Score      float32
}

// SearchOptions narrows and sizes a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results. Defaults to 10.
	Limit int
	// DocumentIDs optionally restricts results to the given documents.
	DocumentIDs []string
	// NumCandidates controls the oversampled candidate fetch; it must exceed
	// Limit and defaults to Limit * 10.
	NumCandidates int
}

// limit returns the effective result limit.
func (o SearchOptions) limit() int {
	if o.Limit <= 0 {
		return 10
	}
	return o.Limit
}

// candidates returns the effective candidate pool size, always > limit.
func (o SearchOptions) candidates() int {
	limit := o.limit()
	if o.NumCandidates > limit {
		return o.NumCandidates
	}
	return limit * 10
}

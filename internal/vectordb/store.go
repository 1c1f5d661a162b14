package vectordb

import "context"

// Store defines the interface for storing and searching embeddings.
type Store interface {
	// Add adds or replaces records in the store.
	Add(ctx context.Context, records []Record) error

	// SearchVector performs a nearest-neighbour search with a raw query
	// vector, scoped to one knowledge base. Results come back in strictly
	// descending score order with a deterministic tie-break.
	SearchVector(ctx context.Context, vector []float32, knowledgeBaseID string, opts SearchOptions) ([]SearchResult, error)

	// DeleteByDocument removes every record belonging to the given document.
	DeleteByDocument(ctx context.Context, knowledgeBaseID, documentID string) error

	// Count returns the total number of stored records.
	Count() int

	// Persist saves the store's data under the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error
}

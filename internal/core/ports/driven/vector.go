package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorStore persists index records for retrievable chunks.
// Only records that passed the chunk gate reach a VectorStore.
type VectorStore interface {
	// Insert stores records, replacing any with the same ID.
	Insert(ctx context.Context, records []domain.IndexRecord) error

	// Get returns the records with the given IDs. Missing IDs are skipped.
	Get(ctx context.Context, ids []string) ([]domain.IndexRecord, error)

	// Delete removes records by ID. Missing IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of records matching filter (nil = all).
	Count(ctx context.Context, filter domain.Filter) (int, error)

	// List returns every record matching filter.
	List(ctx context.Context, filter domain.Filter) ([]domain.IndexRecord, error)

	// Sample returns up to n records matching filter, chosen uniformly at random.
	Sample(ctx context.Context, filter domain.Filter, n int) ([]domain.IndexRecord, error)

	// Close releases resources.
	Close() error
}

// NativeSearcher is implemented by vector stores with their own vector index.
type NativeSearcher interface {
	// Search returns up to k records ranked by similarity to query.
	Search(ctx context.Context, query []float32, k int, filter domain.Filter) ([]VectorHit, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Record is the matched record.
	Record domain.IndexRecord

	// Similarity is the cosine similarity score.
	Similarity float64
}

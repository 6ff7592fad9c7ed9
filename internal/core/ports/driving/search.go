package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchService provides retrieval to external actors.
type SearchService interface {
	// Search embeds the query and returns the most similar retrievable chunks.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Stats reports store and embedding counters.
	Stats(ctx context.Context) (*domain.Stats, error)
}

package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
// It is the remote provider; caching, throttling and retries live in the
// embedding generator that wraps it.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//
// Provider failures should be returned as *domain.ProviderError so the
// generator can tell rate limits from permanent failures.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request
	// where the provider supports it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingCache maps a content digest to its embedding vector.
// Implementations must be safe for concurrent use.
type EmbeddingCache interface {
	// Get returns the cached vector for key.
	Get(key string) ([]float32, bool)

	// Put stores a vector under key.
	Put(key string, embedding []float32)

	// Clear removes every entry. Counters are kept.
	Clear()

	// Stats returns size and hit/miss counters.
	Stats() domain.CacheStats
}

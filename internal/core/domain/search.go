package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Tenant scopes the search when tenant isolation is enabled.
	Tenant Tenant

	// Filter restricts results to records whose metadata matches every entry.
	Filter Filter

	// WithParent attaches the parent chunk's content to each result.
	WithParent bool
}

// RetrievedChunk is a ranked record returned by the similarity index.
type RetrievedChunk struct {
	// ID is the record (chunk) identifier.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata is the sanitised metadata stored with the record.
	Metadata map[string]any

	// Similarity is the cosine similarity to the query.
	Similarity float64

	// Distance is 1 - Similarity.
	Distance float64
}

// SearchResult represents a single search hit handed to retrieval consumers.
type SearchResult struct {
	RetrievedChunk

	// ParentContent is the parent chunk's text when requested and available.
	ParentContent string
}

// Stats summarises what the pipeline holds and how the provider behaved.
type Stats struct {
	// Documents is the number of document versions in the document store.
	Documents int

	// Records is the number of records in the vector store.
	Records int

	// NativeSearch reports whether the vector store searches natively.
	NativeSearch bool

	// Embedding holds the embedding generator counters.
	Embedding EmbeddingMetrics

	// Cache holds the embedding cache counters.
	Cache CacheStats
}

// EmbeddingMetrics holds running counters for provider calls.
type EmbeddingMetrics struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	CacheHits          int64
	CacheMisses        int64
	Retries            int64

	// AverageLatencyMs is the running mean latency of successful provider calls.
	AverageLatencyMs float64
}

// CacheStats holds embedding cache counters.
type CacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}

package domain

import "time"

const unknownDescription = "Unknown"

// ChunkingMode selects how documents are split.
type ChunkingMode string

// Available chunking modes.
const (
	// ChunkingModeHierarchical produces parent and child chunks, falling back
	// to flat chunking when the hierarchy cannot be built.
	ChunkingModeHierarchical ChunkingMode = "hierarchical"

	// ChunkingModeFlat produces basic chunks from content-aware windows.
	ChunkingModeFlat ChunkingMode = "flat"
)

// IsValid returns true if the chunking mode is recognised.
func (m ChunkingMode) IsValid() bool {
	switch m {
	case ChunkingModeHierarchical, ChunkingModeFlat:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ChunkingMode) String() string {
	return string(m)
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory keeps records in process memory. No native vector search.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendSQLite persists records in SQLite. No native vector search.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendQdrant uses a Qdrant collection with native vector search.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendSQLite, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// HasNativeSearch returns true if the backend searches vectors itself.
func (b VectorBackend) HasNativeSearch() bool {
	return b == VectorBackendQdrant
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendMemory:
		return "Memory (exact sampled search)"
	case VectorBackendSQLite:
		return "SQLite (exact sampled search)"
	case VectorBackendQdrant:
		return "Qdrant (native vector search)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings holds window sizes in characters.
type ChunkingSettings struct {
	Mode          ChunkingMode
	ParentSize    int
	ParentOverlap int
	ChildSize     int
	ChildOverlap  int
	FlatSize      int
	FlatOverlap   int
}

// EmbeddingSettings holds embedding provider and generator configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size when non-zero.
	Dimensions int

	// RateLimitInterval is the minimum spacing between provider calls.
	RateLimitInterval time.Duration

	// MaxAttempts is the total number of provider calls per text.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt; it doubles after that.
	InitialBackoff time.Duration

	// BatchSize is the outer batch size on the batch path.
	BatchSize int

	// SubBatchSize is the number of texts embedded concurrently.
	SubBatchSize int

	// PacingDelay separates sub-batches.
	PacingDelay time.Duration

	// CacheMaxEntries bounds the cache with LRU eviction; 0 means unbounded.
	CacheMaxEntries int

	// RetryAllErrors retries permanent provider errors as well as transient ones.
	RetryAllErrors bool

	// QueueThreshold is the chunk count above which ingestion uses the queue path.
	QueueThreshold int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// VectorSettings holds vector store configuration.
type VectorSettings struct {
	Backend       VectorBackend
	DataDir       string
	QdrantHost    string
	QdrantPort    int
	QdrantAPIKey  string
	Collection    string
	MaxCandidates int
}

// Settings is the full pipeline configuration.
type Settings struct {
	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	Vector    VectorSettings

	// TenancyEnabled scopes every insert and search by tenant.
	TenancyEnabled bool
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultSettings returns the configuration used when nothing is set.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			Mode:          ChunkingModeHierarchical,
			ParentSize:    1024,
			ParentOverlap: 128,
			ChildSize:     256,
			ChildOverlap:  32,
			FlatSize:      1000,
			FlatOverlap:   200,
		},
		Embedding: EmbeddingSettings{
			Provider:          AIProviderOpenAI,
			Model:             DefaultEmbeddingModels()[AIProviderOpenAI],
			RateLimitInterval: 500 * time.Millisecond,
			MaxAttempts:       5,
			InitialBackoff:    time.Second,
			BatchSize:         100,
			SubBatchSize:      20,
			PacingDelay:       200 * time.Millisecond,
			QueueThreshold:    50,
		},
		Vector: VectorSettings{
			Backend:       VectorBackendSQLite,
			QdrantHost:    "localhost",
			QdrantPort:    6334,
			Collection:    "chunks",
			MaxCandidates: 500,
		},
	}
}

package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkMode          = "chunking.mode"
	keyChunkParentSize    = "chunking.parent_size"
	keyChunkParentOverlap = "chunking.parent_overlap"
	keyChunkChildSize     = "chunking.child_size"
	keyChunkChildOverlap  = "chunking.child_overlap"
	keyChunkFlatSize      = "chunking.flat_size"
	keyChunkFlatOverlap   = "chunking.flat_overlap"

	keyEmbedProvider       = "embedding.provider"
	keyEmbedModel          = "embedding.model"
	keyEmbedBaseURL        = "embedding.base_url"
	keyEmbedAPIKey         = "embedding.api_key"
	keyEmbedDimensions     = "embedding.dimensions"
	keyEmbedRateLimit      = "embedding.rate_limit_ms"
	keyEmbedMaxAttempts    = "embedding.max_attempts"
	keyEmbedBackoff        = "embedding.initial_backoff_ms"
	keyEmbedBatchSize      = "embedding.batch_size"
	keyEmbedSubBatchSize   = "embedding.sub_batch_size"
	keyEmbedPacing         = "embedding.pacing_ms"
	keyEmbedCacheEntries   = "embedding.cache_max_entries"
	keyEmbedRetryAll       = "embedding.retry_all_errors"
	keyEmbedQueueThreshold = "embedding.queue_threshold"

	keyVectorBackend       = "vector.backend"
	keyVectorDataDir       = "vector.data_dir"
	keyVectorQdrantHost    = "vector.qdrant_host"
	keyVectorQdrantPort    = "vector.qdrant_port"
	keyVectorQdrantAPIKey  = "vector.qdrant_api_key"
	keyVectorCollection    = "vector.collection"
	keyVectorMaxCandidates = "vector.max_candidates"

	keyTenancyEnabled = "tenancy.enabled"
)

// SettingsService maps configuration keys onto domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// LoadSettings reads settings from a config store without validating them.
func LoadSettings(configStore driven.ConfigStore) (*domain.Settings, error) {
	return NewSettingsService(configStore, nil).Get()
}

// Get retrieves current settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.configStore.GetString(keyEmbedModel)
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.Settings{
		Chunking: domain.ChunkingSettings{
			Mode:          s.getChunkingMode(defaults.Chunking.Mode),
			ParentSize:    s.getInt(keyChunkParentSize, defaults.Chunking.ParentSize),
			ParentOverlap: s.getInt(keyChunkParentOverlap, defaults.Chunking.ParentOverlap),
			ChildSize:     s.getInt(keyChunkChildSize, defaults.Chunking.ChildSize),
			ChildOverlap:  s.getInt(keyChunkChildOverlap, defaults.Chunking.ChildOverlap),
			FlatSize:      s.getInt(keyChunkFlatSize, defaults.Chunking.FlatSize),
			FlatOverlap:   s.getInt(keyChunkFlatOverlap, defaults.Chunking.FlatOverlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - adapters pick their own
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDimensions, 0),
			RateLimitInterval: s.getMillis(keyEmbedRateLimit, defaults.Embedding.RateLimitInterval),
			MaxAttempts:       s.getInt(keyEmbedMaxAttempts, defaults.Embedding.MaxAttempts),
			InitialBackoff:    s.getMillis(keyEmbedBackoff, defaults.Embedding.InitialBackoff),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			SubBatchSize:      s.getInt(keyEmbedSubBatchSize, defaults.Embedding.SubBatchSize),
			PacingDelay:       s.getMillis(keyEmbedPacing, defaults.Embedding.PacingDelay),
			CacheMaxEntries:   s.getInt(keyEmbedCacheEntries, defaults.Embedding.CacheMaxEntries),
			RetryAllErrors:    s.getBool(keyEmbedRetryAll, defaults.Embedding.RetryAllErrors),
			QueueThreshold:    s.getInt(keyEmbedQueueThreshold, defaults.Embedding.QueueThreshold),
		},
		Vector: domain.VectorSettings{
			Backend:       s.getBackend(defaults.Vector.Backend),
			DataDir:       s.configStore.GetString(keyVectorDataDir),
			QdrantHost:    s.getString(keyVectorQdrantHost, defaults.Vector.QdrantHost),
			QdrantPort:    s.getInt(keyVectorQdrantPort, defaults.Vector.QdrantPort),
			QdrantAPIKey:  s.configStore.GetString(keyVectorQdrantAPIKey),
			Collection:    s.getString(keyVectorCollection, defaults.Vector.Collection),
			MaxCandidates: s.getInt(keyVectorMaxCandidates, defaults.Vector.MaxCandidates),
		},
		TenancyEnabled: s.getBool(keyTenancyEnabled, defaults.TenancyEnabled),
	}

	return settings, nil
}

// Save persists settings. The API keys are only written when set.
func (s *SettingsService) Save(settings *domain.Settings) error {
	type entry struct {
		key   string
		value any
	}
	values := []entry{
		{keyChunkMode, settings.Chunking.Mode.String()},
		{keyChunkParentSize, settings.Chunking.ParentSize},
		{keyChunkParentOverlap, settings.Chunking.ParentOverlap},
		{keyChunkChildSize, settings.Chunking.ChildSize},
		{keyChunkChildOverlap, settings.Chunking.ChildOverlap},
		{keyChunkFlatSize, settings.Chunking.FlatSize},
		{keyChunkFlatOverlap, settings.Chunking.FlatOverlap},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedRateLimit, int(settings.Embedding.RateLimitInterval / time.Millisecond)},
		{keyEmbedMaxAttempts, settings.Embedding.MaxAttempts},
		{keyEmbedBackoff, int(settings.Embedding.InitialBackoff / time.Millisecond)},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedSubBatchSize, settings.Embedding.SubBatchSize},
		{keyEmbedPacing, int(settings.Embedding.PacingDelay / time.Millisecond)},
		{keyEmbedCacheEntries, settings.Embedding.CacheMaxEntries},
		{keyEmbedRetryAll, settings.Embedding.RetryAllErrors},
		{keyEmbedQueueThreshold, settings.Embedding.QueueThreshold},
		{keyVectorBackend, settings.Vector.Backend.String()},
		{keyVectorDataDir, settings.Vector.DataDir},
		{keyVectorQdrantHost, settings.Vector.QdrantHost},
		{keyVectorQdrantPort, settings.Vector.QdrantPort},
		{keyVectorCollection, settings.Vector.Collection},
		{keyVectorMaxCandidates, settings.Vector.MaxCandidates},
		{keyTenancyEnabled, settings.TenancyEnabled},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, entry{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.Vector.QdrantAPIKey != "" {
		values = append(values, entry{keyVectorQdrantAPIKey, settings.Vector.QdrantAPIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks that the current settings can build a working pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings)
}

// ValidateSettings checks window sizes, generator limits, the vector backend
// and, last, provider setup.
func ValidateSettings(settings *domain.Settings) error {
	c := settings.Chunking
	if !c.Mode.IsValid() {
		return fmt.Errorf("%w: chunking mode %q", domain.ErrInvalidInput, c.Mode)
	}
	windows := []struct {
		name          string
		size, overlap int
	}{
		{"parent", c.ParentSize, c.ParentOverlap},
		{"child", c.ChildSize, c.ChildOverlap},
		{"flat", c.FlatSize, c.FlatOverlap},
	}
	for _, w := range windows {
		if w.size <= 0 || w.overlap < 0 || w.overlap >= w.size {
			return fmt.Errorf("%w: %s window size=%d overlap=%d", domain.ErrInvalidInput, w.name, w.size, w.overlap)
		}
	}

	e := settings.Embedding
	if e.MaxAttempts < 1 || e.BatchSize < 1 || e.SubBatchSize < 1 {
		return fmt.Errorf("%w: max_attempts, batch_size and sub_batch_size must be positive", domain.ErrInvalidInput)
	}
	if e.CacheMaxEntries < 0 {
		return fmt.Errorf("%w: cache_max_entries must not be negative", domain.ErrInvalidInput)
	}

	v := settings.Vector
	if !v.Backend.IsValid() {
		return fmt.Errorf("%w: vector backend %q", domain.ErrUnsupportedType, v.Backend)
	}
	if v.MaxCandidates < 1 {
		return fmt.Errorf("%w: max_candidates must be positive", domain.ErrInvalidInput)
	}
	if v.Backend == domain.VectorBackendQdrant && (v.QdrantHost == "" || v.QdrantPort <= 0) {
		return fmt.Errorf("%w: qdrant host and port are required", domain.ErrInvalidInput)
	}

	// Provider setup last: delete and stats run without one.
	if !e.IsConfigured() {
		if e.Provider.RequiresAPIKey() {
			return fmt.Errorf("%w: %s requires an API key (embedding.api_key or OPENAI_API_KEY)",
				domain.ErrEmbeddingUnavailable, e.Provider)
		}
		return fmt.Errorf("%w: provider %q", domain.ErrEmbeddingUnavailable, e.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig pings the configured embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt treats a stored zero as a real value; only missing keys get the default.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Millisecond
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getChunkingMode(defaultVal domain.ChunkingMode) domain.ChunkingMode {
	mode := domain.ChunkingMode(s.configStore.GetString(keyChunkMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyEmbedProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/overlay"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/embedding"
	"github.com/custodia-labs/sercha-rag/internal/index"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// app holds the wired services and everything that needs closing.
type app struct {
	ingest   *services.IngestService
	search   *services.SearchService
	settings *services.SettingsService
	closers  []func() error
}

// buildApp loads settings and wires stores, the embedding generator, the
// post-processor pipeline and the index into services. A provider that
// cannot be created leaves ingest and search unavailable but still allows
// delete and stats.
func buildApp(ctx context.Context, dir string, v *viper.Viper) (*app, error) {
	fileStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := overlay.New(v, fileStore)

	a := &app{settings: services.NewSettingsService(cfg, ai.NewConfigValidator())}
	settings, err := a.settings.Get()
	if err != nil {
		return nil, err
	}
	if err := services.ValidateSettings(settings); err != nil && !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return nil, fmt.Errorf("invalid settings in %s: %w", cfg.Path(), err)
	}
	logger.Debug("Config: %s", cfg.Path())
	logger.Debug("Backend: %s, provider: %s (%s), mode: %s",
		settings.Vector.Backend, settings.Embedding.Provider, settings.Embedding.Model, settings.Chunking.Mode)

	docs, vectors, err := a.openStores(settings.Vector)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var gen *embedding.Generator
	provider, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
	} else {
		a.closers = append(a.closers, provider.Close)
		gen, err = ai.CreateGenerator(&settings.Embedding, provider)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(postprocessors.DefaultPipeline, map[string]map[string]any{
		"chunker": postprocessors.ChunkerConfig(settings.Chunking),
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	idx := index.New(vectors,
		index.WithMaxCandidates(settings.Vector.MaxCandidates),
		index.WithTenancy(settings.TenancyEnabled),
	)

	a.ingest = services.NewIngestService(docs, pipeline, gen, idx)
	a.ingest.SetChunkingMode(settings.Chunking.Mode)
	a.ingest.SetQueueThreshold(settings.Embedding.QueueThreshold)
	a.search = services.NewSearchService(docs, idx, gen)
	return a, nil
}

// openStores opens the document and vector stores for the backend.
// Documents are persisted in SQLite unless the backend is memory.
func (a *app) openStores(cfg domain.VectorSettings) (driven.DocumentStore, driven.VectorStore, error) {
	switch cfg.Backend {
	case domain.VectorBackendMemory:
		return memory.NewDocumentStore(), memory.NewVectorStore(), nil

	case domain.VectorBackendSQLite, domain.VectorBackendQdrant:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		a.closers = append(a.closers, store.Close)
		if cfg.Backend == domain.VectorBackendSQLite {
			return store.DocumentStore(), store.VectorStore(), nil
		}

		vectors, err := qdrant.New(qdrant.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, vectors.Close)
		return store.DocumentStore(), vectors, nil

	default:
		return nil, nil, fmt.Errorf("%w: vector backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}

// Close releases stores and the provider in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

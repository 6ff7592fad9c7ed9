package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/embedding"
	"github.com/custodia-labs/sercha-rag/internal/index"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService embeds queries and ranks stored chunks by similarity.
type SearchService struct {
	docStore driven.DocumentStore
	index    *index.Index
	embedder *embedding.Generator
}

// NewSearchService creates a new search service.
// The docStore parameter is optional; without it results carry no parent context.
func NewSearchService(docStore driven.DocumentStore, idx *index.Index, embedder *embedding.Generator) *SearchService {
	return &SearchService{
		docStore: docStore,
		index:    idx,
		embedder: embedder,
	}
}

// Search returns the chunks most similar to query.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrStoreUnavailable
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	hits, err := s.index.Search(ctx, vector, opts)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Raw results: %d chunks (native=%t)", len(hits), s.index.NativeSearch())

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{RetrievedChunk: hit}
	}

	if opts.WithParent {
		if err := s.hydrateParents(ctx, results); err != nil {
			return nil, fmt.Errorf("hydrate parents: %w", err)
		}
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// hydrateParents attaches parent chunk text to results that reference a
// parent. Parents are loaded once each; missing parents are skipped.
func (s *SearchService) hydrateParents(ctx context.Context, results []domain.SearchResult) error {
	if s.docStore == nil {
		logger.Debug("No document store, skipping parent context")
		return nil
	}

	parents := make(map[string]string)
	for i := range results {
		parentID, ok := results[i].Metadata[domain.MetaParentID].(string)
		if !ok || parentID == "" {
			continue
		}
		content, seen := parents[parentID]
		if !seen {
			parent, err := s.docStore.GetChunk(ctx, parentID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				logger.Debug("Parent %s not found", parentID)
			case err != nil:
				return err
			default:
				content = parent.Content
			}
			parents[parentID] = content
		}
		results[i].ParentContent = content
	}
	return nil
}

// Stats reports store and embedding counters.
func (s *SearchService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}

	if s.docStore != nil {
		n, err := s.docStore.CountDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("count documents: %w", err)
		}
		stats.Documents = n
	}
	if s.index != nil {
		n, err := s.index.Count(ctx, domain.TenantGlobal)
		if err != nil {
			return nil, fmt.Errorf("count records: %w", err)
		}
		stats.Records = n
		stats.NativeSearch = s.index.NativeSearch()
	}
	if s.embedder != nil {
		stats.Embedding = s.embedder.Metrics()
		stats.Cache = s.embedder.CacheStats()
	}
	return stats, nil
}

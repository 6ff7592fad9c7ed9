// Package index guards and queries the vector store. A gate keeps parent
// and unknown chunk kinds out of the store. Search uses the store's native
// vector search when it has one, and otherwise ranks a bounded sample of
// candidates by cosine similarity.
package index

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Defaults for the index.
const (
	DefaultMaxCandidates = 500
	DefaultLimit         = 10
)

// Index is the similarity index in front of a vector store.
type Index struct {
	store         driven.VectorStore
	maxCandidates int
	tenancy       bool
}

// Option configures the index.
type Option func(*Index)

// WithMaxCandidates caps how many records the manual search path scores.
func WithMaxCandidates(n int) Option {
	return func(x *Index) {
		if n > 0 {
			x.maxCandidates = n
		}
	}
}

// WithTenancy scopes every insert and search by tenant.
func WithTenancy(enabled bool) Option {
	return func(x *Index) {
		x.tenancy = enabled
	}
}

// New creates an index over store. A nil store makes every operation fail
// with domain.ErrStoreUnavailable.
func New(store driven.VectorStore, opts ...Option) *Index {
	x := &Index{
		store:         store,
		maxCandidates: DefaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// NativeSearch reports whether searches are delegated to the store.
func (x *Index) NativeSearch() bool {
	_, ok := x.store.(driven.NativeSearcher)
	return ok
}

// tenantFilter returns the equality filter for tenant, or nil when tenancy
// is off or the tenant is global.
func (x *Index) tenantFilter(tenant domain.Tenant) domain.Filter {
	if !x.tenancy || tenant.IsGlobal() {
		return nil
	}
	return domain.Filter{domain.MetaTenant: string(tenant)}
}

// AddDocuments validates and stores records. The four slices are parallel
// and must have equal length. Entries rejected by the gate, and accepted
// entries without an embedding, are reported and skipped.
func (x *Index) AddDocuments(
	ctx context.Context,
	tenant domain.Tenant,
	texts []string,
	embeddings [][]float32,
	metadatas []map[string]any,
	ids []string,
) (*domain.InsertReport, error) {
	n := len(texts)
	if len(embeddings) != n || len(metadatas) != n || len(ids) != n {
		return nil, fmt.Errorf("%w: texts=%d embeddings=%d metadatas=%d ids=%d",
			domain.ErrArityMismatch, n, len(embeddings), len(metadatas), len(ids))
	}
	if x.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	accepted, rejections := Validate(ids, metadatas)

	scope := x.tenantFilter(tenant)
	records := make([]domain.IndexRecord, 0, len(accepted))
	for _, i := range accepted {
		if len(embeddings[i]) == 0 {
			kind, _ := declaredKind(metadatas[i])
			rejections = append(rejections, domain.Rejection{ID: ids[i], Kind: kind, Reason: "missing embedding"})
			continue
		}
		meta := Sanitize(metadatas[i])
		for k, v := range scope {
			meta[k] = v
		}
		records = append(records, domain.IndexRecord{
			ID:        ids[i],
			Content:   texts[i],
			Embedding: embeddings[i],
			Metadata:  meta,
		})
	}

	for _, r := range rejections {
		logger.Debug("gate rejected %s (%s): %s", r.ID, r.Kind, r.Reason)
	}

	report := &domain.InsertReport{
		Stored:     len(records),
		Rejected:   len(rejections),
		Rejections: rejections,
	}
	if len(records) == 0 {
		return report, nil
	}
	if err := x.store.Insert(ctx, records); err != nil {
		return nil, fmt.Errorf("insert records: %w", err)
	}

	logger.Debug("index: stored %d records, rejected %d", report.Stored, report.Rejected)
	return report, nil
}

// Search returns the records most similar to query, best first.
func (x *Index) Search(ctx context.Context, query []float32, opts domain.SearchOptions) ([]domain.RetrievedChunk, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query embedding is required", domain.ErrArityMismatch)
	}
	if x.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	k := opts.Limit
	if k <= 0 {
		k = DefaultLimit
	}
	filter := opts.Filter.Merge(x.tenantFilter(opts.Tenant))

	if native, ok := x.store.(driven.NativeSearcher); ok {
		hits, err := native.Search(ctx, query, k, filter)
		if err != nil {
			return nil, fmt.Errorf("native search: %w", err)
		}
		results := make([]domain.RetrievedChunk, len(hits))
		for i, h := range hits {
			results[i] = retrieved(h.Record, h.Similarity)
		}
		return results, nil
	}

	return x.manualSearch(ctx, query, k, filter)
}

// manualSearch scores at most maxCandidates records matching filter.
func (x *Index) manualSearch(ctx context.Context, query []float32, k int, filter domain.Filter) ([]domain.RetrievedChunk, error) {
	count, err := x.store.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count candidates: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	var candidates []domain.IndexRecord
	if count > x.maxCandidates {
		logger.Debug("index: sampling %d of %d candidates", x.maxCandidates, count)
		candidates, err = x.store.Sample(ctx, filter, x.maxCandidates)
	} else {
		candidates, err = x.store.List(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	results := make([]domain.RetrievedChunk, len(candidates))
	for i, rec := range candidates {
		results[i] = retrieved(rec, Cosine(query, rec.Embedding))
	}
	slices.SortStableFunc(results, func(a, b domain.RetrievedChunk) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func retrieved(rec domain.IndexRecord, similarity float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		ID:         rec.ID,
		Content:    rec.Content,
		Metadata:   rec.Metadata,
		Similarity: similarity,
		Distance:   1 - similarity,
	}
}

// Get returns stored records by ID.
func (x *Index) Get(ctx context.Context, ids []string) ([]domain.IndexRecord, error) {
	if x.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return x.store.Get(ctx, ids)
}

// Delete removes records by ID.
func (x *Index) Delete(ctx context.Context, ids []string) error {
	if x.store == nil {
		return domain.ErrStoreUnavailable
	}
	if len(ids) == 0 {
		return nil
	}
	return x.store.Delete(ctx, ids)
}

// Count returns the number of records visible to tenant.
func (x *Index) Count(ctx context.Context, tenant domain.Tenant) (int, error) {
	if x.store == nil {
		return 0, domain.ErrStoreUnavailable
	}
	return x.store.Count(ctx, x.tenantFilter(tenant))
}

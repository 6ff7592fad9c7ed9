package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/embedding"
	"github.com/custodia-labs/sercha-rag/internal/index"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/annotate"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts listed in vectors get that vector; anything else gets a constant.
type mockEmbeddingService struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failFn  func(text string) error
	calls   int
}

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failFn != nil {
		if err := m.failFn(text); err != nil {
			return nil, err
		}
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0.5, 0.5}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 2 }

func (m *mockEmbeddingService) ModelName() string { return "mock" }

func (m *mockEmbeddingService) Ping(context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// failContaining fails every text containing marker with err.
func failContaining(marker string, err error) func(string) error {
	return func(text string) error {
		if strings.Contains(text, marker) {
			return err
		}
		return nil
	}
}

// stubPipeline returns fixed chunks stamped with the document ID.
type stubPipeline struct {
	chunks []domain.Chunk
}

func (p *stubPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, len(p.chunks))
	for i, c := range p.chunks {
		c.DocumentID = doc.ID
		c.Metadata = map[string]any{domain.MetaChunkType: c.Kind.String()}
		out[i] = c
	}
	return out, nil
}

// flakyVectorStore fails the next failInserts inserts with ErrStoreUnavailable.
type flakyVectorStore struct {
	*memory.VectorStore
	mu          sync.Mutex
	failInserts int
}

func (f *flakyVectorStore) Insert(ctx context.Context, records []domain.IndexRecord) error {
	f.mu.Lock()
	fail := f.failInserts > 0
	if fail {
		f.failInserts--
	}
	f.mu.Unlock()
	if fail {
		return domain.ErrStoreUnavailable
	}
	return f.VectorStore.Insert(ctx, records)
}

// --- Harness ---

type harness struct {
	provider *mockEmbeddingService
	docs     *memory.DocumentStore
	vectors  *memory.VectorStore
	ingest   *IngestService
	search   *SearchService
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	mode     domain.ChunkingMode
	tenancy  bool
	pipeline driven.PostProcessorPipeline
	retry    int
}

func withMode(mode domain.ChunkingMode) harnessOption {
	return func(c *harnessConfig) { c.mode = mode }
}

func withTenancy() harnessOption {
	return func(c *harnessConfig) { c.tenancy = true }
}

func withPipeline(p driven.PostProcessorPipeline) harnessOption {
	return func(c *harnessConfig) { c.pipeline = p }
}

func withAttempts(n int) harnessOption {
	return func(c *harnessConfig) { c.retry = n }
}

// newHarness wires real services over memory stores with small chunk
// windows and no rate limiting or pacing.
func newHarness(provider *mockEmbeddingService, opts ...harnessOption) *harness {
	cfg := harnessConfig{mode: domain.ChunkingModeHierarchical, retry: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if provider == nil {
		provider = &mockEmbeddingService{}
	}

	pipeline := cfg.pipeline
	if pipeline == nil {
		pipeline = postprocessors.NewPipeline(
			chunker.New(
				chunker.WithMode(cfg.mode),
				chunker.WithParentWindow(200, 20),
				chunker.WithChildWindow(60, 10),
				chunker.WithChunkSize(120),
				chunker.WithOverlap(20),
			),
			annotate.New(),
		)
	}

	gen := embedding.New(provider,
		embedding.WithRateLimit(0),
		embedding.WithRetry(cfg.retry, 0),
		embedding.WithBatching(100, 20, 0),
	)
	docs := memory.NewDocumentStore()
	vectors := memory.NewVectorStore()
	idx := index.New(vectors, index.WithTenancy(cfg.tenancy))

	ingest := NewIngestService(docs, pipeline, gen, idx)
	ingest.SetChunkingMode(cfg.mode)

	return &harness{
		provider: provider,
		docs:     docs,
		vectors:  vectors,
		ingest:   ingest,
		search:   NewSearchService(docs, idx, gen),
	}
}

// longText returns n sentences of distinct filler words.
func longText(n int) string {
	words := []string{"river", "stone", "maple", "cloud", "ember", "harbor", "lantern", "meadow"}
	var b strings.Builder
	for i := range n {
		b.WriteString("The ")
		b.WriteString(words[i%len(words)])
		b.WriteString(" sat near the ")
		b.WriteString(words[(i+3)%len(words)])
		b.WriteString(". ")
	}
	return b.String()
}

package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockIngestService records requests and deletions.
type mockIngestService struct {
	mu        sync.Mutex
	requests  []driving.IngestRequest
	deleted   []string
	ingestErr error
	deleteErr error
	report    *domain.IngestReport
}

var _ driving.IngestService = (*mockIngestService)(nil)

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IngestReport{
		DocumentID: "doc-" + req.Name,
		Version:    1,
		Produced:   3,
		Parents:    1,
		Children:   2,
		Embedded:   2,
		Accepted:   2,
		Rejected:   1,
	}, nil
}

func (m *mockIngestService) Delete(_ context.Context, _ domain.Tenant, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *mockIngestService) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Name
	}
	return out
}

func (m *mockIngestService) deletions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// mockSearchService returns fixed results and remembers the last options.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
	stats   *domain.Stats
}

var _ driving.SearchService = (*mockSearchService)(nil)

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockSearchService) Stats(context.Context) (*domain.Stats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.Stats{
		Documents: 2,
		Records:   7,
		Embedding: domain.EmbeddingMetrics{TotalRequests: 9, SuccessfulRequests: 8, FailedRequests: 1, Retries: 2, AverageLatencyMs: 12.5},
		Cache:     domain.CacheStats{Size: 4, Hits: 3, Misses: 9},
	}, nil
}

// mockSettingsService serves settings from memory.
type mockSettingsService struct {
	settings    domain.Settings
	validateErr error
	pingErr     error
	pings       int
}

var _ driving.SettingsService = (*mockSettingsService)(nil)

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.Settings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	m.pings++
	return m.pingErr
}

// --- Test setup ---

type testServices struct {
	ingest   *mockIngestService
	search   *mockSearchService
	settings *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup that
// restores the package state, flags included.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest: &mockIngestService{},
		search: &mockSearchService{
			results: []domain.SearchResult{
				{
					RetrievedChunk: domain.RetrievedChunk{
						ID:         "chunk-1",
						Content:    "The river sat near the harbor.",
						Metadata:   map[string]any{domain.MetaSource: "notes.md"},
						Similarity: 0.91,
					},
					ParentContent: "Parent text around the river.",
				},
			},
		},
		settings: &mockSettingsService{settings: domain.DefaultSettings()},
	}

	origIngest, origSearch, origSettings := ingestService, searchService, settingsService
	ingestService = ts.ingest
	searchService = ts.search
	settingsService = ts.settings

	return ts, func() {
		ingestService, searchService, settingsService = origIngest, origSearch, origSettings
		resetFlags()
	}
}

// resetFlags puts command flags back to their defaults between runs of
// the shared root command.
func resetFlags() {
	searchLimit, searchJSON, searchTenant, searchParent, searchFilter = 10, false, "", false, nil
	ingestTenant, ingestMeta, ingestExts, ingestNoPing = "", nil, defaultExtensions, false
	deleteTenant = ""
	watchTenant, watchMeta, watchExts, watchInitial, watchDebounce = "", nil, defaultExtensions, true, 500*time.Millisecond
	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
}

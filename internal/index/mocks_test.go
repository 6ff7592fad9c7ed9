package index

import (
	"context"
	"math/rand/v2"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// mockStore is an in-memory VectorStore that records the calls it receives.
type mockStore struct {
	records []domain.IndexRecord

	insertCalls int
	listCalls   int
	sampleCalls []int
	lastFilter  domain.Filter
	err         error
}

var _ driven.VectorStore = (*mockStore)(nil)

func matches(meta map[string]any, filter domain.Filter) bool {
	for k, v := range filter {
		if meta[k] != v {
			return false
		}
	}
	return true
}

func (m *mockStore) filtered(filter domain.Filter) []domain.IndexRecord {
	var out []domain.IndexRecord
	for _, r := range m.records {
		if matches(r.Metadata, filter) {
			out = append(out, r)
		}
	}
	return out
}

func (m *mockStore) Insert(_ context.Context, records []domain.IndexRecord) error {
	m.insertCalls++
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockStore) Get(_ context.Context, ids []string) ([]domain.IndexRecord, error) {
	var out []domain.IndexRecord
	for _, id := range ids {
		for _, r := range m.records {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *mockStore) Delete(_ context.Context, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.records[:0]
	for _, r := range m.records {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *mockStore) Count(_ context.Context, filter domain.Filter) (int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return 0, m.err
	}
	return len(m.filtered(filter)), nil
}

func (m *mockStore) List(_ context.Context, filter domain.Filter) ([]domain.IndexRecord, error) {
	m.listCalls++
	return m.filtered(filter), nil
}

func (m *mockStore) Sample(_ context.Context, filter domain.Filter, n int) ([]domain.IndexRecord, error) {
	m.sampleCalls = append(m.sampleCalls, n)
	candidates := m.filtered(filter)
	rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	return candidates[:min(n, len(candidates))], nil
}

func (m *mockStore) Close() error { return nil }

// nativeStore adds native search to mockStore.
type nativeStore struct {
	mockStore
	searchCalls int
	searchK     int
	hits        []driven.VectorHit
}

var _ driven.NativeSearcher = (*nativeStore)(nil)

func (n *nativeStore) Search(_ context.Context, _ []float32, k int, filter domain.Filter) ([]driven.VectorHit, error) {
	n.searchCalls++
	n.searchK = k
	n.lastFilter = filter
	return n.hits, nil
}

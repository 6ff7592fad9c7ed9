package memory

import (
	"context"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore keeps index records in memory. It has no native vector
// search, so the similarity index scores its records itself.
type VectorStore struct {
	mu      sync.RWMutex
	records map[string]domain.IndexRecord
	order   []string
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		records: make(map[string]domain.IndexRecord),
	}
}

// Insert adds records, replacing any with the same ID.
func (s *VectorStore) Insert(_ context.Context, records []domain.IndexRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if _, exists := s.records[r.ID]; !exists {
			s.order = append(s.order, r.ID)
		}
		s.records[r.ID] = domain.IndexRecord{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: slices.Clone(r.Embedding),
			Metadata:  maps.Clone(r.Metadata),
		}
	}
	return nil
}

// Get returns the records that exist among ids, in the order given.
func (s *VectorStore) Get(_ context.Context, ids []string) ([]domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.IndexRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.records[id]; ok {
			result = append(result, r)
		}
	}
	return result, nil
}

// Delete removes records by ID. Unknown IDs are ignored.
func (s *VectorStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.records, id)
	}
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		_, ok := s.records[id]
		return !ok
	})
	return nil
}

// Count returns the number of records matching filter.
func (s *VectorStore) Count(_ context.Context, filter domain.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(filter) == 0 {
		return len(s.records), nil
	}
	n := 0
	for _, r := range s.records {
		if filter.Matches(r.Metadata) {
			n++
		}
	}
	return n, nil
}

// List returns every record matching filter in insertion order.
func (s *VectorStore) List(_ context.Context, filter domain.Filter) ([]domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matching(filter), nil
}

// Sample returns up to n records matching filter, chosen uniformly at random.
func (s *VectorStore) Sample(_ context.Context, filter domain.Filter, n int) ([]domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidates := s.matching(filter)
	if n >= len(candidates) {
		return candidates, nil
	}
	// Partial Fisher-Yates: the first n slots end up a uniform sample.
	for i := range n {
		j := i + rand.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:n], nil
}

// Close is a no-op for the memory store.
func (s *VectorStore) Close() error {
	return nil
}

func (s *VectorStore) matching(filter domain.Filter) []domain.IndexRecord {
	result := make([]domain.IndexRecord, 0, len(s.order))
	for _, id := range s.order {
		if r := s.records[id]; filter.Matches(r.Metadata) {
			result = append(result, r)
		}
	}
	return result
}

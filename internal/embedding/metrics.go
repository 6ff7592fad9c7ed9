package embedding

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// metrics holds running generator counters.
type metrics struct {
	total      atomic.Int64
	successful atomic.Int64
	failed     atomic.Int64
	cacheHits  atomic.Int64
	cacheMiss  atomic.Int64
	retries    atomic.Int64

	mu         sync.Mutex
	avgLatency float64
}

func (m *metrics) success(latency time.Duration) {
	ms := float64(latency) / float64(time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.successful.Add(1)
	m.avgLatency += (ms - m.avgLatency) / float64(n)
}

func (m *metrics) snapshot() domain.EmbeddingMetrics {
	m.mu.Lock()
	avg := m.avgLatency
	m.mu.Unlock()

	return domain.EmbeddingMetrics{
		TotalRequests:      m.total.Load(),
		SuccessfulRequests: m.successful.Load(),
		FailedRequests:     m.failed.Load(),
		CacheHits:          m.cacheHits.Load(),
		CacheMisses:        m.cacheMiss.Load(),
		Retries:            m.retries.Load(),
		AverageLatencyMs:   avg,
	}
}

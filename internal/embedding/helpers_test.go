package embedding

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// fakeClock advances only when something sleeps.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) recordedSleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// mockProvider records calls and answers through embedFn.
// By default it returns a vector derived from the text length.
type mockProvider struct {
	mu        sync.Mutex
	clock     *fakeClock
	calls     []string
	callTimes []time.Time
	embedFn   func(ctx context.Context, text string, call int) ([]float32, error)
}

var _ driven.EmbeddingService = (*mockProvider)(nil)

func newMockProvider(clock *fakeClock) *mockProvider {
	return &mockProvider{clock: clock}
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func (m *mockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.callTimes = append(m.callTimes, m.clock.Now())
	call := len(m.calls)
	fn := m.embedFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, call)
	}
	return vectorFor(text), nil
}

func (m *mockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockProvider) Dimensions() int { return 2 }
func (m *mockProvider) ModelName() string { return "mock-embed" }
func (m *mockProvider) Ping(_ context.Context) error { return nil }
func (m *mockProvider) Close() error { return nil }

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockProvider) times() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.callTimes...)
}

func rateLimited() error {
	return &domain.ProviderError{Provider: "mock", StatusCode: 429, Err: domain.ErrRateLimited}
}

func unauthorized() error {
	return &domain.ProviderError{Provider: "mock", StatusCode: 401, Err: domain.ErrInvalidInput}
}

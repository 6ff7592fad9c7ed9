// Package embedding turns text into vectors through a remote provider while
// limiting the calls made to it. Vectors are cached by content digest,
// provider calls are spaced by a shared rate limiter, and failed calls are
// retried with exponential backoff.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Defaults for the generator.
const (
	DefaultRateLimitInterval = 500 * time.Millisecond
	DefaultMaxAttempts       = 5
	DefaultInitialBackoff    = time.Second
	DefaultBatchSize         = 100
	DefaultSubBatchSize      = 20
	DefaultPacingDelay       = 200 * time.Millisecond
)

// Generator produces one embedding per text.
// It is safe for concurrent use.
type Generator struct {
	provider driven.EmbeddingService
	cache    driven.EmbeddingCache
	clock    Clock
	limiter  *Limiter
	flight   singleflight.Group
	metrics  metrics

	interval       time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	batchSize      int
	subBatchSize   int
	pacing         time.Duration
	retryAll       bool
}

// Option configures the generator.
type Option func(*Generator)

// WithCache replaces the default unbounded cache.
func WithCache(cache driven.EmbeddingCache) Option {
	return func(g *Generator) {
		if cache != nil {
			g.cache = cache
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithRateLimit sets the minimum spacing between provider calls. Zero disables it.
func WithRateLimit(interval time.Duration) Option {
	return func(g *Generator) {
		if interval >= 0 {
			g.interval = interval
		}
	}
}

// WithRetry sets the attempt cap and the first backoff delay.
func WithRetry(maxAttempts int, initialBackoff time.Duration) Option {
	return func(g *Generator) {
		if maxAttempts > 0 {
			g.maxAttempts = maxAttempts
		}
		if initialBackoff >= 0 {
			g.initialBackoff = initialBackoff
		}
	}
}

// WithBatching sets the outer batch size, the concurrent sub-batch size and
// the pause between sub-batches.
func WithBatching(batchSize, subBatchSize int, pacing time.Duration) Option {
	return func(g *Generator) {
		if batchSize > 0 {
			g.batchSize = batchSize
		}
		if subBatchSize > 0 {
			g.subBatchSize = subBatchSize
		}
		if pacing >= 0 {
			g.pacing = pacing
		}
	}
}

// WithRetryAllErrors retries permanent provider errors too.
func WithRetryAllErrors(retryAll bool) Option {
	return func(g *Generator) {
		g.retryAll = retryAll
	}
}

// New creates a generator around provider.
func New(provider driven.EmbeddingService, opts ...Option) *Generator {
	g := &Generator{
		provider:       provider,
		cache:          NewMemoryCache(),
		clock:          SystemClock{},
		interval:       DefaultRateLimitInterval,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
		batchSize:      DefaultBatchSize,
		subBatchSize:   DefaultSubBatchSize,
		pacing:         DefaultPacingDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.limiter = NewLimiter(g.interval, g.clock)

	// Sub-batches never span outer batches.
	if g.subBatchSize > g.batchSize {
		g.subBatchSize = g.batchSize
	}
	return g
}

// Dimensions returns the provider's vector size.
func (g *Generator) Dimensions() int {
	return g.provider.Dimensions()
}

// ModelName returns the provider's model.
func (g *Generator) ModelName() string {
	return g.provider.ModelName()
}

// Ping checks the provider is reachable.
func (g *Generator) Ping(ctx context.Context) error {
	return g.provider.Ping(ctx)
}

// Metrics returns a snapshot of the generator counters.
func (g *Generator) Metrics() domain.EmbeddingMetrics {
	return g.metrics.snapshot()
}

// CacheStats returns the cache size and lookup counters.
func (g *Generator) CacheStats() domain.CacheStats {
	return g.cache.Stats()
}

// ClearCache drops every cached vector.
func (g *Generator) ClearCache() {
	g.cache.Clear()
}

// Embed returns the vector for one text. A cached vector is returned
// without waiting on the rate limiter or calling the provider.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}

	key := CacheKey(trimmed)
	if v, ok := g.cache.Get(key); ok {
		g.metrics.cacheHits.Add(1)
		return v, nil
	}
	g.metrics.cacheMiss.Add(1)

	// Concurrent misses for the same text share one provider call. A caller
	// that joined a call whose owner was cancelled tries again with its own
	// context.
	for {
		led := false
		v, err, _ := g.flight.Do(key, func() (any, error) {
			led = true
			if vec, ok := g.cache.Get(key); ok {
				return vec, nil
			}
			vec, err := g.embedWithRetry(ctx, trimmed)
			if err != nil {
				return nil, err
			}
			g.cache.Put(key, vec)
			return vec, nil
		})
		if err == nil {
			return v.([]float32), nil
		}
		if !led && isContextErr(err) && ctx.Err() == nil {
			continue
		}
		return nil, err
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// embedWithRetry calls the provider until it succeeds, a permanent error is
// returned, or the attempt cap is reached. Every attempt waits on the limiter.
func (g *Generator) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	for attempt := 1; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := g.clock.Now()
		g.metrics.total.Add(1)
		vec, err := g.provider.Embed(ctx, text)
		if err == nil {
			g.metrics.success(g.clock.Now().Sub(start))
			return vec, nil
		}
		g.metrics.failed.Add(1)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !g.retryAll && !domain.IsTransient(err) {
			return nil, fmt.Errorf("embedding failed permanently: %w", err)
		}
		if attempt >= g.maxAttempts {
			return nil, &domain.EmbeddingExhaustedError{Attempts: attempt, Err: err}
		}

		delay := g.backoff(attempt)
		g.metrics.retries.Add(1)
		logger.Debug("embedding attempt %d/%d failed, retrying in %v: %v", attempt, g.maxAttempts, delay, err)
		if err := g.clock.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// MaxBackoff caps the delay between attempts.
const MaxBackoff = 5 * time.Minute

// backoff returns the delay after the given failed attempt,
// R0 * 2^(attempt-1), capped at MaxBackoff.
func (g *Generator) backoff(attempt int) time.Duration {
	delay := g.initialBackoff
	for i := 1; i < attempt && delay < MaxBackoff; i++ {
		delay *= 2
	}
	return min(delay, MaxBackoff)
}

// EmbedBatch returns one vector per text, in input order. Outer batches run
// one after another; the texts of each sub-batch are embedded concurrently.
// Any failure aborts the whole call.
func (g *Generator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := min(start+g.batchSize, len(texts))
		logger.Debug("embedding batch %d-%d of %d", start, end, len(texts))
		if err := g.embedOuterBatch(ctx, texts, start, end, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (g *Generator) embedOuterBatch(ctx context.Context, texts []string, start, end int, out [][]float32) error {
	for sub := start; sub < end; sub += g.subBatchSize {
		subEnd := min(sub+g.subBatchSize, end)

		eg, egCtx := errgroup.WithContext(ctx)
		for i := sub; i < subEnd; i++ {
			eg.Go(func() error {
				vec, err := g.Embed(egCtx, texts[i])
				if err != nil {
					return fmt.Errorf("text %d: %w", i, err)
				}
				out[i] = vec
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		if subEnd < len(texts) {
			if err := g.clock.Sleep(ctx, g.pacing); err != nil {
				return err
			}
		}
	}
	return nil
}

// QueueResult holds the vectors produced by EmbedQueue.
// Embeddings[i] is the vector for input position Indices[i]; failed
// positions are left out.
type QueueResult struct {
	Embeddings [][]float32
	Indices    []int
	Failures   []domain.EmbeddingFailure
}

// EmbedQueue embeds texts one at a time. A failed text is recorded and
// skipped; the rest are still embedded. Only cancellation stops the queue.
func (g *Generator) EmbedQueue(ctx context.Context, texts []string) (*QueueResult, error) {
	result := &QueueResult{
		Embeddings: make([][]float32, 0, len(texts)),
		Indices:    make([]int, 0, len(texts)),
	}
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := g.Embed(ctx, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("embedding text %d failed: %v", i, err)
			result.Failures = append(result.Failures, domain.EmbeddingFailure{Index: i, Err: err})
			continue
		}
		result.Embeddings = append(result.Embeddings, vec)
		result.Indices = append(result.Indices, i)
	}
	return result, nil
}

package embedding

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces provider calls at least interval apart.
// Reservations are taken one at a time so the spacing holds across
// concurrent callers.
type Limiter struct {
	bucket *rate.Limiter
	clock  Clock
	lock   chan struct{}
}

// NewLimiter creates a limiter allowing one call per interval.
// An interval of zero disables limiting.
func NewLimiter(interval time.Duration, clock Clock) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		bucket: rate.NewLimiter(limit, 1),
		clock:  clock,
		lock:   make(chan struct{}, 1),
	}
}

// Wait blocks until the next call is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case l.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.lock }()

	now := l.clock.Now()
	r := l.bucket.ReserveN(now, 1)
	if !r.OK() {
		return errors.New("rate limiter cannot grant a reservation")
	}

	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, delay); err != nil {
		r.CancelAt(l.clock.Now())
		return err
	}
	return nil
}

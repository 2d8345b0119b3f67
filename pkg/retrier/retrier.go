// Package retrier implements a bounded fixed-interval retry loop for
// network calls that are allowed to fail quietly.
package retrier

import (
	"context"
	"time"
)

const (
	defaultAttempts = 3
	defaultInterval = 500 * time.Millisecond
)

// Retrier retries a function a fixed number of times with a constant pause
// between attempts. There is no backoff: callers that exhaust the budget are
// expected to skip the cycle rather than escalate.
type Retrier struct {
	attempts int
	interval time.Duration
}

// Option defines a function to configure the Retrier.
type Option func(*Retrier)

// WithAttempts sets the total number of attempts (including the first).
func WithAttempts(n int) Option {
	return func(r *Retrier) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithInterval sets the pause between attempts.
func WithInterval(d time.Duration) Option {
	return func(r *Retrier) {
		if d >= 0 {
			r.interval = d
		}
	}
}

// New creates a new Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		attempts: defaultAttempts,
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do executes the given function until it succeeds or the budget runs out.
// The last error is returned on exhaustion.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.interval):
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}

// DoWithData executes the given function with retries and returns a value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}

package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the default number of attempts for Do.
	DefaultMaxAttempts = 3
	// DefaultInitialDelay is the default backoff before the second attempt.
	// The delay doubles after each failed attempt (1s, 2s, 4s, ...).
	DefaultInitialDelay = time.Second
)

// Retrier repeats an operation with exponential backoff. Failures for
// which Retryable returns false abort the loop immediately, so a
// deterministic failure (bad request, not found) never burns the
// remaining attempts.
type Retrier struct {
	MaxAttempts  int
	InitialDelay time.Duration

	// Retryable decides whether a failure is worth another attempt.
	// When nil every failure is retried.
	Retryable func(error) bool

	Logger *zap.Logger

	// sleep waits between attempts; overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier builds a Retrier with the given policy. Non-positive
// arguments fall back to the defaults.
func NewRetrier(maxAttempts int, initialDelay time.Duration, retryable func(error) bool, logger *zap.Logger) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	return &Retrier{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		Retryable:    retryable,
		Logger:       logger.Named("retry"),
	}
}

// Do invokes fn until it succeeds, the attempt budget is exhausted, a
// non-retryable failure occurs, or ctx is cancelled during a backoff
// wait. Only the last failure is propagated; earlier ones are logged
// and swallowed.
func Do[T any](ctx context.Context, r *Retrier, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	sleep := r.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	delay := r.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == r.MaxAttempts {
			r.Logger.Error("max attempts reached", zap.Int("attempts", attempt), zap.Error(err))
			break
		}
		if r.Retryable != nil && !r.Retryable(err) {
			r.Logger.Debug("failure is not retryable", zap.Int("attempt", attempt), zap.Error(err))
			break
		}

		r.Logger.Warn("attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay *= 2
	}
	return zero, lastErr
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls how an outbound call is retried. Backoff doubles
// between attempts, capped at MaxBackoff, with up to 25% random jitter
// added to spread concurrent retriers apart.
type RetryConfig struct {
	// MaxAttempts counts the first try too, so 1 disables retries.
	MaxAttempts int

	// InitialBackoff is the sleep before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the doubled backoff.
	MaxBackoff time.Duration

	// ShouldRetry decides whether an error is worth another attempt.
	// Nil means IsTransient.
	ShouldRetry func(err error) bool

	// OnRetry fires before each retry sleep with the attempt number of
	// the try that just failed.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig is tuned for the model and search APIs: three
// attempts, half a second before the first retry.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
	}
}

// DoVal runs fn until it succeeds, the error is not retryable, the
// attempts run out, or ctx is done. The zero T is returned with any
// terminal error.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	retryable := cfg.ShouldRetry
	if retryable == nil {
		retryable = IsTransient
	}

	var zero T
	backoff := cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		if ctx.Err() != nil || !retryable(err) || attempt == cfg.MaxAttempts {
			return zero, err
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		if !sleep(ctx, withJitter(backoff)) {
			return zero, err
		}
		backoff *= 2
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
}

// withJitter stretches d by up to a quarter of itself.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + rand.N(d/4+1)
}

// sleep waits for d or for ctx, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// RetryLogger is the OnRetry callback the API clients share.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}

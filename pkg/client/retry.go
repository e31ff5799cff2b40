package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	neisRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neis_retries_total",
		Help: "Total number of transport retry attempts",
	})

	neisRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "neis_retry_backoff_seconds",
		Help:    "Backoff duration before a transport retry",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	})

	neisRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neis_retry_exhausted_total",
		Help: "Total number of requests that exhausted their retry attempts",
	})
)

// RetryConfig holds the configuration for retrying transport failures.
type RetryConfig struct {
	// MaxAttempts is the number of attempts including the first request.
	// Values below 2 disable retrying.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns a single-attempt configuration. The backoff
// values apply once MaxAttempts is raised.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// shouldRetry reports whether err is worth another attempt. Only transport
// failures qualify; RESULT envelopes need a different request.
func shouldRetry(err error) bool {
	var unavailable *ServiceUnavailableError
	return errors.As(err, &unavailable)
}

// retryWithBackoff runs fn until it succeeds, returns a non-retryable error,
// or the attempts are used up. Waits carry ±20% jitter and stop on ctx.
// The last error stays reachable through errors.As on the returned error.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, logger zerolog.Logger, fn func() error) error {
	if cfg.MaxAttempts <= 1 {
		return fn()
	}

	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		if !shouldRetry(err) {
			return err
		}

		if attempt >= cfg.MaxAttempts {
			break
		}

		neisRetriesTotal.Inc()

		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		neisRetryBackoffSeconds.Observe(jitter.Seconds())

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(jitter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return interruptedRetry(ctx, err)
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	neisRetryExhaustedTotal.Inc()
	logger.Warn().
		Int("max_attempts", cfg.MaxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, cfg.MaxAttempts, lastErr)
}

// interruptedRetry reports a backoff wait cut short by ctx. The result is
// still a transport failure for the endpoint of the last attempt, with the
// context error and the last attempt's error in its chain.
func interruptedRetry(ctx context.Context, last error) error {
	failure := &ServiceUnavailableError{
		Err: fmt.Errorf("%w: %w (last attempt: %w)", ErrContextCancelled, ctx.Err(), last),
	}
	var unavailable *ServiceUnavailableError
	if errors.As(last, &unavailable) {
		failure.URL = unavailable.URL
		failure.StatusCode = unavailable.StatusCode
	}
	return failure
}

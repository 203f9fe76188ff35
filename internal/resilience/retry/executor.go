// Package retry provides the retrying/throttling executor that wraps every
// remote platform call with timeout enforcement, exponential backoff with
// jitter, and failure classification.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gatherly/sentinel/internal/resilience/metrics"
)

// Executor runs remote operations with timeout, retry, and per-key
// throttling. It is safe for concurrent use; all mutable state lives in the
// attempt ledger behind its own lock.
type Executor struct {
	cfg    NetworkConfig
	ledger *Ledger
	log    *slog.Logger

	// sleep is replaced in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor with the given base configuration.
func NewExecutor(cfg NetworkConfig) *Executor {
	return &Executor{
		cfg:    cfg,
		ledger: NewLedger(),
		log:    slog.Default().With("component", "executor"),
		sleep:  sleepCtx,
	}
}

// Config returns the executor's base configuration.
func (ex *Executor) Config() NetworkConfig { return ex.cfg }

// Ledger exposes the attempt ledger for inspection.
func (ex *Executor) Ledger() *Ledger { return ex.ledger }

// Do executes op under the executor's retry policy.
//
// If key is throttled the call fails immediately with a *ThrottledError and
// op is never invoked. Otherwise op runs up to MaxRetries+1 times, each
// attempt bounded by the configured timeout via its context. A non-retryable
// failure surfaces immediately; a retryable failure waits the backoff delay
// and retries; exhaustion surfaces a *ExhaustedError wrapping the last error.
// A successful attempt clears the key's ledger entry.
func Do[T any](ctx context.Context, ex *Executor, key string, op func(context.Context) (T, error), opts ...Option) (T, error) {
	var zero T

	cfg := ex.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	if wait := ex.ledger.ThrottleWait(key, cfg); wait > 0 {
		metrics.OperationThrottled.WithLabelValues(key).Inc()
		return zero, &ThrottledError{Key: key, RetryAfter: wait}
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		ex.ledger.Record(key)
		metrics.OperationAttempts.WithLabelValues(key).Inc()

		result, err := runWithTimeout(ctx, cfg.Timeout, op)
		if err == nil {
			ex.ledger.Clear(key)
			return result, nil
		}
		lastErr = err

		if IsNonRetryable(err) {
			metrics.OperationFailures.WithLabelValues(key, "fatal").Inc()
			return zero, err
		}
		if ctx.Err() != nil {
			// Caller is gone; no point retrying on their behalf.
			return zero, ctx.Err()
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := Delay(attempt, cfg)
		ex.log.Debug("Retrying operation", "key", key, "attempt", attempt+1, "delay", delay, "error", err)
		if err := ex.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	metrics.OperationFailures.WithLabelValues(key, "exhausted").Inc()
	return zero, &ExhaustedError{Key: key, Attempts: cfg.MaxRetries + 1, Err: lastErr}
}

// runWithTimeout runs op with a deadline-carrying context and races it
// against that deadline, so a stuck operation cannot wedge the caller even
// if it ignores cancellation. The context is canceled either way, which
// stops cooperative operations instead of leaving them running.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := op(callCtx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("operation timed out after %s: %w", timeout, callCtx.Err())
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

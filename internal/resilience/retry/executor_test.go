package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() NetworkConfig {
	return NetworkConfig{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    1 * time.Second,
	}
}

// fakeSleep records the requested delays without waiting.
func fakeSleep(recorded *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*recorded = append(*recorded, d)
		return nil
	}
}

func TestDoRetriesUntilExhausted(t *testing.T) {
	ex := NewExecutor(testConfig())
	var delays []time.Duration
	ex.sleep = fakeSleep(&delays)

	calls := 0
	_, err := Do(context.Background(), ex, "fetch-activities", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("Network timeout")
	})

	if calls != 3 {
		t.Errorf("operation invoked %d times, want 3", calls)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Key != "fetch-activities" || exhausted.Attempts != 3 {
		t.Errorf("ExhaustedError = %+v, want key fetch-activities with 3 attempts", exhausted)
	}
	if exhausted.Err.Error() != "Network timeout" {
		t.Errorf("final error = %v, want the operation's last error", exhausted.Err)
	}

	// Gaps follow the backoff schedule: ~1s then ~2s, each within 10% jitter.
	if len(delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(delays))
	}
	expected := []time.Duration{1 * time.Second, 2 * time.Second}
	for i, base := range expected {
		if delays[i] < base || delays[i] > time.Duration(float64(base)*1.1) {
			t.Errorf("delay %d = %v, want within [%v, %v]", i, delays[i], base, time.Duration(float64(base)*1.1))
		}
	}
}

func TestDoNonRetryableFailsImmediately(t *testing.T) {
	ex := NewExecutor(testConfig())
	var delays []time.Duration
	ex.sleep = fakeSleep(&delays)

	calls := 0
	_, err := Do(context.Background(), ex, "create-activity", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("Invalid API key")
	})

	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
	if len(delays) != 0 {
		t.Errorf("expected no backoff sleeps, got %v", delays)
	}
	if err == nil || err.Error() != "Invalid API key" {
		t.Errorf("error = %v, want the raw non-retryable error", err)
	}
}

func TestDoThrottlesAfterBudgetSpent(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 1
	ex := NewExecutor(cfg)
	var delays []time.Duration
	ex.sleep = fakeSleep(&delays)

	// Spend the budget.
	_, err := Do(context.Background(), ex, "join-activity", func(ctx context.Context) (string, error) {
		return "", errors.New("connection reset by peer")
	})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("setup call: expected ExhaustedError, got %v", err)
	}

	// A new call before the backoff window elapses is rejected without
	// invoking the operation.
	calls := 0
	_, err = Do(context.Background(), ex, "join-activity", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	var throttled *ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("expected ThrottledError, got %v", err)
	}
	if throttled.Key != "join-activity" || throttled.RetryAfter <= 0 {
		t.Errorf("ThrottledError = %+v", throttled)
	}
	if calls != 0 {
		t.Errorf("operation invoked %d times while throttled, want 0", calls)
	}
}

func TestDoSuccessClearsLedger(t *testing.T) {
	ex := NewExecutor(testConfig())
	var delays []time.Duration
	ex.sleep = fakeSleep(&delays)

	calls := 0
	result, err := Do(context.Background(), ex, "fetch-profile", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("timeout")
		}
		return "profile", nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if result != "profile" {
		t.Errorf("result = %q, want profile", result)
	}

	if _, ok := ex.Ledger().Get("fetch-profile"); ok {
		t.Error("expected ledger entry cleared after success")
	}

	// A later call is never throttled by the earlier failure.
	_, err = Do(context.Background(), ex, "fetch-profile", func(ctx context.Context) (string, error) {
		return "again", nil
	})
	if err != nil {
		t.Errorf("follow-up call failed: %v", err)
	}
}

func TestDoTimesOutStuckOperation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 20 * time.Millisecond
	ex := NewExecutor(cfg)

	calls := 0
	start := time.Now()
	_, err := Do(context.Background(), ex, "fetch-activity", func(ctx context.Context) (string, error) {
		calls++
		<-ctx.Done()
		return "", ctx.Err()
	})
	elapsed := time.Since(start)

	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error in chain, got %v", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("timeout took %v, expected prompt enforcement", elapsed)
	}
}

func TestDoPerCallOverride(t *testing.T) {
	ex := NewExecutor(testConfig())
	var delays []time.Duration
	ex.sleep = fakeSleep(&delays)

	calls := 0
	_, err := Do(context.Background(), ex, "update-profile", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("503 service unavailable")
	}, WithMaxRetries(0))

	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1 with MaxRetries=0", calls)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", exhausted.Attempts)
	}
}

func TestDoCanceledCallerStopsRetrying(t *testing.T) {
	ex := NewExecutor(testConfig())
	var delays []time.Duration
	ex.sleep = fakeSleep(&delays)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, ex, "leave-activity", func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("connection reset by peer")
	})

	if calls != 1 {
		t.Errorf("operation invoked %d times after caller cancel, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

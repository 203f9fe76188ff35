package retry

import (
	"testing"
	"time"
)

func TestDelayBounds(t *testing.T) {
	cfg := NetworkConfig{
		BaseDelay: 1 * time.Second,
		MaxDelay:  60 * time.Second,
	}

	for attempt := 0; attempt < 5; attempt++ {
		exp := cfg.BaseDelay << attempt
		// Jitter is random; sample enough to catch an out-of-range draw.
		for i := 0; i < 100; i++ {
			d := Delay(attempt, cfg)
			if d < exp {
				t.Fatalf("Delay(%d) = %v, below exponential floor %v", attempt, d, exp)
			}
			max := time.Duration(float64(exp) * 1.1)
			if d > max {
				t.Fatalf("Delay(%d) = %v, above jitter ceiling %v", attempt, d, max)
			}
		}
	}
}

func TestDelayCap(t *testing.T) {
	cfg := NetworkConfig{
		BaseDelay: 1 * time.Second,
		MaxDelay:  4 * time.Second,
	}

	for i := 0; i < 100; i++ {
		d := Delay(10, cfg)
		if d < cfg.MaxDelay {
			t.Fatalf("Delay(10) = %v, below cap %v", d, cfg.MaxDelay)
		}
		if d > time.Duration(float64(cfg.MaxDelay)*1.1) {
			t.Fatalf("Delay(10) = %v, above capped ceiling", d)
		}
	}
}

package retry

import (
	"math"
	"math/rand"
	"time"
)

// jitterFraction bounds the random spread added on top of the exponential
// delay. Spreading retries avoids synchronized storms across clients.
const jitterFraction = 0.1

// Delay calculates the wait before the attempt after attempt (0-indexed):
// BaseDelay * 2^attempt capped at MaxDelay, plus uniform jitter in
// [0, jitterFraction * delay).
func Delay(attempt int, cfg NetworkConfig) time.Duration {
	exp := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if exp > float64(cfg.MaxDelay) {
		exp = float64(cfg.MaxDelay)
	}
	jitter := rand.Float64() * jitterFraction * exp
	return time.Duration(exp + jitter)
}

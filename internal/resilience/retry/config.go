package retry

import "time"

// NetworkConfig controls timeout, retry, and backoff behavior for remote
// platform calls. Immutable once handed to an executor; per-call overrides
// go through Options.
type NetworkConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DefaultNetworkConfig provides sensible defaults.
var DefaultNetworkConfig = NetworkConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
	Timeout:    8 * time.Second,
}

// Option overrides part of the executor configuration for a single call.
type Option func(*NetworkConfig)

// WithMaxRetries overrides the retry budget for one call.
func WithMaxRetries(n int) Option {
	return func(cfg *NetworkConfig) { cfg.MaxRetries = n }
}

// WithTimeout overrides the per-attempt timeout for one call.
func WithTimeout(d time.Duration) Option {
	return func(cfg *NetworkConfig) { cfg.Timeout = d }
}

// WithConfig replaces the whole config for one call.
func WithConfig(override NetworkConfig) Option {
	return func(cfg *NetworkConfig) { *cfg = override }
}

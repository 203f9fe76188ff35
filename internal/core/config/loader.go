package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/gatherly/sentinel/internal/integrity"
	"github.com/gatherly/sentinel/internal/resilience/retry"
	"github.com/gatherly/sentinel/internal/resilience/session"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Network.MaxRetries == 0 {
		cfg.Network.MaxRetries = retry.DefaultNetworkConfig.MaxRetries
	}
	if cfg.Network.BaseDelay == 0 {
		cfg.Network.BaseDelay = retry.DefaultNetworkConfig.BaseDelay
	}
	if cfg.Network.MaxDelay == 0 {
		cfg.Network.MaxDelay = retry.DefaultNetworkConfig.MaxDelay
	}
	if cfg.Network.Timeout == 0 {
		cfg.Network.Timeout = retry.DefaultNetworkConfig.Timeout
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = session.DefaultConfig.TTL
	}
	if cfg.Session.FetchTimeout == 0 {
		cfg.Session.FetchTimeout = session.DefaultConfig.FetchTimeout
	}
	if cfg.Session.RefreshTimeout == 0 {
		cfg.Session.RefreshTimeout = session.DefaultConfig.RefreshTimeout
	}

	if cfg.Integrity.Threshold == 0 {
		cfg.Integrity.Threshold = integrity.DefaultCorruptionThreshold
	}
	if cfg.Integrity.SweepInterval == 0 {
		cfg.Integrity.SweepInterval = 10 * time.Minute
	}
}

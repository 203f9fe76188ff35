package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Network.MaxRetries != 3 || cfg.Network.BaseDelay != time.Second {
		t.Errorf("network defaults = %+v", cfg.Network)
	}
	if cfg.Network.Timeout != 8*time.Second {
		t.Errorf("Network.Timeout = %v, want 8s", cfg.Network.Timeout)
	}
	if cfg.Session.TTL != 30*time.Second || cfg.Session.FetchTimeout != 1500*time.Millisecond {
		t.Errorf("session defaults = %+v", cfg.Session)
	}
	if cfg.Integrity.Threshold != 3 {
		t.Errorf("Integrity.Threshold = %d, want 3", cfg.Integrity.Threshold)
	}
	if cfg.Integrity.SweepInterval != 10*time.Minute {
		t.Errorf("Integrity.SweepInterval = %v, want 10m", cfg.Integrity.SweepInterval)
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache.internal:6379/2")
	t.Setenv("DATABASE_URL", "postgres://sentinel:pw@db.internal:5432/sentinel")

	path := writeConfig(t, `
server:
  port: 9090
redis:
  url: ${REDIS_URL}
  namespace: gatherly
database:
  url: ${DATABASE_URL}
network:
  max_retries: 5
  timeout: 4s
session:
  ttl: 10s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Redis.URL != "redis://cache.internal:6379/2" {
		t.Errorf("Redis.URL = %q, env var not expanded", cfg.Redis.URL)
	}
	if cfg.Database.URL != "postgres://sentinel:pw@db.internal:5432/sentinel" {
		t.Errorf("Database.URL = %q, env var not expanded", cfg.Database.URL)
	}
	if cfg.Redis.Namespace != "gatherly" {
		t.Errorf("Redis.Namespace = %q, want gatherly", cfg.Redis.Namespace)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Network.MaxRetries != 5 || cfg.Network.Timeout != 4*time.Second {
		t.Errorf("network overrides not honored: %+v", cfg.Network)
	}
	if cfg.Session.TTL != 10*time.Second {
		t.Errorf("Session.TTL = %v, want 10s", cfg.Session.TTL)
	}
	// Unset session fields still default.
	if cfg.Session.RefreshTimeout != 2*time.Second {
		t.Errorf("Session.RefreshTimeout = %v, want default 2s", cfg.Session.RefreshTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded on a missing file, want error")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("Load succeeded on malformed YAML, want error")
	}
}

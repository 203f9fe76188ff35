package config

import (
	"github.com/gatherly/sentinel/internal/infra/storage/postgres"
	"github.com/gatherly/sentinel/internal/infra/storage/redisstore"
	"github.com/gatherly/sentinel/internal/integrity"
	"github.com/gatherly/sentinel/internal/resilience/retry"
	"github.com/gatherly/sentinel/internal/resilience/session"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig        `yaml:"server"`
	Network   retry.NetworkConfig `yaml:"network"`
	Session   session.Config      `yaml:"session"`
	Integrity integrity.Config    `yaml:"integrity"`
	Redis     redisstore.Config   `yaml:"redis"`
	Database  postgres.Config     `yaml:"database"`
	Logging   LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds the ops server settings.
type ServerConfig struct {
	Port     int `yaml:"port"`
	GRPCPort int `yaml:"grpc_port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Package control wires the resilience layer together and manages its
// lifecycle: storage backends, the retrying executor, the session cache, the
// integrity guard, background workers, and the ops server.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatherly/sentinel/internal/core/config"
	"github.com/gatherly/sentinel/internal/infra/storage"
	"github.com/gatherly/sentinel/internal/infra/storage/memory"
	"github.com/gatherly/sentinel/internal/infra/storage/postgres"
	"github.com/gatherly/sentinel/internal/infra/storage/redisstore"
	"github.com/gatherly/sentinel/internal/infra/worker"
	"github.com/gatherly/sentinel/internal/integrity"
	"github.com/gatherly/sentinel/internal/ops"
	"github.com/gatherly/sentinel/internal/platform"
	"github.com/gatherly/sentinel/internal/resilience/retry"
	"github.com/gatherly/sentinel/internal/resilience/session"
)

const sweepWorkerName = "integrity-sweep"

// Config holds the application configuration.
type Config struct {
	Port      int
	GRPCPort  int
	Version   string
	Network   retry.NetworkConfig
	Session   session.Config
	Integrity integrity.Config
	Redis     redisstore.Config
	Database  postgres.Config
}

// FromAppConfig maps the loaded file configuration into the control config.
func FromAppConfig(cfg *config.AppConfig, version string) Config {
	return Config{
		Port:      cfg.Server.Port,
		GRPCPort:  cfg.Server.GRPCPort,
		Version:   version,
		Network:   cfg.Network,
		Session:   cfg.Session,
		Integrity: cfg.Integrity,
		Redis:     cfg.Redis,
		Database:  cfg.Database,
	}
}

// App is the assembled resilience layer. One instance is constructed at
// process start and shared by every call site.
type App struct {
	cfg      Config
	executor *retry.Executor
	sessions *session.Cache
	guard    *integrity.Guard
	workers  *worker.Registry
	ops      *ops.Server
	redis    *redisstore.Client
	db       *postgres.DB
	log      *slog.Logger
}

// NewApp wires an App from configuration. Redis and PostgreSQL are optional;
// without them state is held in memory, which keeps the layer functional in
// degraded or test environments.
func NewApp(cfg Config) (*App, error) {
	workers := worker.NewRegistry()

	var (
		kv           storage.KeyValueStore
		sessionStore storage.SessionStore
		caches       storage.ContentCaches
		redisClient  *redisstore.Client
	)
	if cfg.Redis.URL != "" {
		client, err := redisstore.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, falling back to in-memory state", "error", err)
		} else {
			redisClient = client
			kv = redisstore.NewKeyValueStore(client)
			sessionStore = redisstore.NewSessionStore(client)
			caches = redisstore.NewContentCaches(client)
			slog.Info("Using Redis storage")
		}
	}
	if kv == nil {
		mem := memory.NewStorage()
		kv = memory.NewKeyValueStore(mem)
		sessionStore = memory.NewSessionStore(mem)
		caches = memory.NewContentCaches(mem)
		slog.Info("Using in-memory storage")
	}

	var (
		objects storage.ObjectStores
		db      *postgres.DB
	)
	if cfg.Database.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			if redisClient != nil {
				redisClient.Close()
			}
			return nil, fmt.Errorf("connect database: %w", err)
		}
		objects = postgres.NewObjectStores(db)
		slog.Info("Using PostgreSQL object stores")
	}

	threshold := cfg.Integrity.Threshold
	if threshold == 0 {
		threshold = integrity.DefaultCorruptionThreshold
	}

	markers := integrity.NewMarkers(kv)
	indicators := integrity.DefaultIndicators(markers, kv, cfg.Version, threshold)
	remediator := integrity.NewRemediator(kv, sessionStore, objects, caches, workers, markers, cfg.Version)
	guard := integrity.NewGuard(markers, indicators, remediator, cfg.Version)

	executor := retry.NewExecutor(cfg.Network)
	sessions := session.New(platform.NewStoredSessionAccessor(kv), cfg.Session)
	opsServer := ops.NewServer(markers, workers, threshold, cfg.Port, cfg.GRPCPort)

	return &App{
		cfg:      cfg,
		executor: executor,
		sessions: sessions,
		guard:    guard,
		workers:  workers,
		ops:      opsServer,
		redis:    redisClient,
		db:       db,
		log:      slog.Default(),
	}, nil
}

// Start runs the startup detection pass, registers the periodic sweep, and
// brings up the ops server.
func (a *App) Start(ctx context.Context) error {
	cleaned, err := a.guard.AutoDetectAndClean(ctx)
	if err != nil {
		return fmt.Errorf("startup remediation failed: %w", err)
	}
	if cleaned {
		a.log.Warn("Startup detection pass remediated corrupted client state")
	} else {
		a.log.Info("Client state healthy")
	}

	if interval := a.cfg.Integrity.SweepInterval; interval > 0 {
		if err := a.workers.Register(sweepWorkerName, a.sweepLoop(interval)); err != nil {
			return err
		}
	}

	go func() {
		if err := a.ops.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Ops server stopped", "error", err)
		}
	}()

	a.log.Info("Sentinel started", "port", a.cfg.Port, "version", a.cfg.Version)
	return nil
}

// sweepLoop periodically re-runs detection so a corruption that develops
// mid-session is repaired without waiting for the next restart.
func (a *App) sweepLoop(interval time.Duration) func(ctx context.Context) {
	return func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleaned, err := a.guard.AutoDetectAndClean(ctx)
				a.ops.SetHealthy(err == nil)
				if err != nil {
					a.log.Error("Periodic remediation failed", "error", err)
					continue
				}
				if cleaned {
					a.sessions.Invalidate()
					a.log.Warn("Periodic sweep remediated corrupted client state")
				}
			}
		}
	}
}

// Stop shuts the layer down: workers first so nothing races the closing
// stores, then the ops server and the connections.
func (a *App) Stop(ctx context.Context) error {
	a.workers.UnregisterAll()

	err := a.ops.Stop(ctx)
	if a.redis != nil {
		if cerr := a.redis.Close(); err == nil {
			err = cerr
		}
	}
	if a.db != nil {
		if cerr := a.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Executor returns the shared retrying executor for remote platform calls.
func (a *App) Executor() *retry.Executor { return a.executor }

// Sessions returns the shared session cache.
func (a *App) Sessions() *session.Cache { return a.sessions }

// Guard returns the integrity guard, for debug tooling.
func (a *App) Guard() *integrity.Guard { return a.guard }

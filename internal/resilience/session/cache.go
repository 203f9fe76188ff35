// Package session provides a stale-while-revalidate cache around the
// platform's current-session accessor. Callers on hot paths must never block
// on a slow session lookup; a slightly stale identity is the accepted
// trade-off, with background refreshes keeping staleness bounded.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gatherly/sentinel/internal/core/domain"
	"github.com/gatherly/sentinel/internal/resilience/metrics"
)

// Accessor loads the current platform session. It may return (nil, nil) when
// no one is signed in.
type Accessor interface {
	CurrentSession(ctx context.Context) (*domain.Session, error)
}

// Config holds the cache policy knobs.
type Config struct {
	TTL            time.Duration `yaml:"ttl"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
}

// DefaultConfig provides the reference policy.
var DefaultConfig = Config{
	TTL:            30 * time.Second,
	FetchTimeout:   1500 * time.Millisecond,
	RefreshTimeout: 2 * time.Second,
}

type entry struct {
	session *domain.Session
	at      time.Time
}

// Cache is a single-slot session cache. The slot holds session-or-nil with a
// timestamp; every refresh overwrites it, foreground or background.
type Cache struct {
	accessor Accessor
	cfg      Config
	log      *slog.Logger

	mu         sync.Mutex
	entry      *entry
	refreshing bool
	now        func() time.Time
}

// New creates a session cache over accessor.
func New(accessor Accessor, cfg Config) *Cache {
	if cfg.TTL == 0 {
		cfg = DefaultConfig
	}
	return &Cache{
		accessor: accessor,
		cfg:      cfg,
		log:      slog.Default().With("component", "session-cache"),
		now:      time.Now,
	}
}

// Get returns the current session, or nil when none is available.
//
// A live entry returns without I/O. A stale entry returns immediately and
// kicks off one background refresh; refresh failures are swallowed and the
// stale value kept. With no entry at all, a bounded foreground fetch runs;
// on failure Get returns nil and a background attempt populates the slot for
// future callers.
func (c *Cache) Get(ctx context.Context) *domain.Session {
	c.mu.Lock()
	if c.entry != nil {
		s := c.entry.session
		if c.now().Sub(c.entry.at) < c.cfg.TTL {
			c.mu.Unlock()
			metrics.SessionCacheLookups.WithLabelValues("hit").Inc()
			return s
		}
		c.startRefreshLocked()
		c.mu.Unlock()
		metrics.SessionCacheLookups.WithLabelValues("stale").Inc()
		return s
	}
	c.mu.Unlock()

	metrics.SessionCacheLookups.WithLabelValues("miss").Inc()

	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	s, err := c.accessor.CurrentSession(fetchCtx)
	if err != nil {
		c.log.Debug("Foreground session fetch failed", "error", err)
		c.mu.Lock()
		c.startRefreshLocked()
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.entry = &entry{session: s, at: c.now()}
	c.mu.Unlock()
	return s
}

// Invalidate drops the cached entry immediately. Sign-out must call this so
// the old identity is never served from cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// startRefreshLocked launches a single background refresh if one is not
// already in flight. Caller holds c.mu.
func (c *Cache) startRefreshLocked() {
	if c.refreshing {
		return
	}
	c.refreshing = true

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RefreshTimeout)
		defer cancel()

		s, err := c.accessor.CurrentSession(ctx)

		c.mu.Lock()
		c.refreshing = false
		if err == nil {
			c.entry = &entry{session: s, at: c.now()}
		}
		c.mu.Unlock()

		if err != nil {
			c.log.Debug("Background session refresh failed", "error", err)
		}
	}()
}

package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/gatherly/sentinel/internal/infra/storage"
	"github.com/gatherly/sentinel/internal/platform"
	"github.com/gatherly/sentinel/internal/resilience/metrics"
)

// WorkerRegistry is the slice of the background worker registry the
// remediator needs: enumerate and stop.
type WorkerRegistry interface {
	Names() []string
	Unregister(name string) bool
}

// Remediator destructively clears every known persistent storage layer.
// Layers are independent: a failure in one never aborts the others. Any
// layer may be nil when the deployment does not use it.
type Remediator struct {
	kv       storage.KeyValueStore
	session  storage.SessionStore
	objects  storage.ObjectStores
	caches   storage.ContentCaches
	workers  WorkerRegistry
	markers  *Markers
	version  string
	prefixes []string
	log      *slog.Logger
	now      func() time.Time
}

// NewRemediator wires a remediator over the storage layers.
func NewRemediator(
	kv storage.KeyValueStore,
	session storage.SessionStore,
	objects storage.ObjectStores,
	caches storage.ContentCaches,
	workers WorkerRegistry,
	markers *Markers,
	version string,
) *Remediator {
	prefixes := append([]string{markerPrefix}, platform.AuthKeyPrefixes...)
	return &Remediator{
		kv:       kv,
		session:  session,
		objects:  objects,
		caches:   caches,
		workers:  workers,
		markers:  markers,
		version:  version,
		prefixes: prefixes,
		log:      slog.Default().With("component", "remediator"),
		now:      time.Now,
	}
}

// CleanAllCaches wipes every storage layer best-effort, then stamps fresh
// markers. Per-layer failures are logged and collected; an error is returned
// only when no layer could be cleaned at all.
func (r *Remediator) CleanAllCaches(ctx context.Context) error {
	metrics.RemediationRuns.Inc()

	type layer struct {
		name  string
		clean func(context.Context) error
	}
	layers := []layer{
		{"key_value", r.cleanKeyValue},
		{"session_store", r.cleanSessionStore},
		{"object_stores", r.cleanObjectStores},
		{"content_caches", r.cleanContentCaches},
		{"workers", r.cleanWorkers},
	}

	var errs error
	failed := 0
	for _, l := range layers {
		if err := l.clean(ctx); err != nil {
			failed++
			metrics.RemediationLayerFailures.WithLabelValues(l.name).Inc()
			r.log.Warn("Remediation layer failed", "layer", l.name, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", l.name, err))
		}
	}

	if failed == len(layers) {
		return fmt.Errorf("remediation could not clean any layer: %w", errs)
	}

	if err := r.markers.Stamp(ctx, r.version, r.now()); err != nil {
		r.log.Warn("Failed to stamp fresh markers after remediation", "error", err)
	}
	return nil
}

// cleanKeyValue removes every entry under the application and auth prefixes.
// Unrelated keys in a shared store are left alone.
func (r *Remediator) cleanKeyValue(ctx context.Context) error {
	var errs error
	for _, prefix := range r.prefixes {
		keys, err := r.kv.Keys(ctx, prefix)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("list %q: %w", prefix, err))
			continue
		}
		for _, key := range keys {
			if err := r.kv.Delete(ctx, key); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("delete %q: %w", key, err))
			}
		}
	}
	return errs
}

func (r *Remediator) cleanSessionStore(ctx context.Context) error {
	if r.session == nil {
		return nil
	}
	return r.session.Clear(ctx)
}

func (r *Remediator) cleanObjectStores(ctx context.Context) error {
	if r.objects == nil {
		return nil
	}
	names, err := r.objects.ListStores(ctx)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}
	var errs error
	for _, name := range names {
		if err := r.objects.DeleteStore(ctx, name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete store %q: %w", name, err))
		}
	}
	return errs
}

func (r *Remediator) cleanContentCaches(ctx context.Context) error {
	if r.caches == nil {
		return nil
	}
	names, err := r.caches.ListCaches(ctx)
	if err != nil {
		return fmt.Errorf("list caches: %w", err)
	}
	var errs error
	for _, name := range names {
		if err := r.caches.DeleteCache(ctx, name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete cache %q: %w", name, err))
		}
	}
	return errs
}

func (r *Remediator) cleanWorkers(ctx context.Context) error {
	if r.workers == nil {
		return nil
	}
	for _, name := range r.workers.Names() {
		if !r.workers.Unregister(name) {
			r.log.Debug("Worker already gone", "worker", name)
		}
	}
	return nil
}

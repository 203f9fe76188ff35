package integrity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gatherly/sentinel/internal/infra/storage"
	"github.com/gatherly/sentinel/internal/platform"
)

// Reason identifies which probe reported corruption.
type Reason string

const (
	ReasonForceClean       Reason = "force_clean"
	ReasonVersionMismatch  Reason = "version_mismatch"
	ReasonRepeatedFailures Reason = "repeated_failures"
	ReasonBadAuthToken     Reason = "bad_auth_token"
	ReasonStorageFault     Reason = "storage_fault"
)

// Indicator is a single read-only heuristic probe over persistent client
// state. Probes never mutate application data; the storage round-trip probe
// only touches its own synthetic key.
type Indicator interface {
	Reason() Reason
	Detect(ctx context.Context) bool
}

// DefaultIndicators assembles the standard probe set.
func DefaultIndicators(markers *Markers, kv storage.KeyValueStore, version string, threshold int) []Indicator {
	return []Indicator{
		&forceCleanIndicator{markers: markers},
		&versionIndicator{markers: markers, version: version},
		&failureCountIndicator{markers: markers, threshold: threshold},
		&authTokenIndicator{kv: kv, prefixes: platform.AuthKeyPrefixes},
		&storageProbe{kv: kv},
	}
}

// forceCleanIndicator fires when the external override is armed.
type forceCleanIndicator struct {
	markers *Markers
}

func (i *forceCleanIndicator) Reason() Reason { return ReasonForceClean }

func (i *forceCleanIndicator) Detect(ctx context.Context) bool {
	forced, err := i.markers.ForceClean(ctx)
	if err != nil {
		slog.Warn("Force-clean probe failed", "error", err)
		return false
	}
	return forced
}

// versionIndicator fires when a stored build signature exists and differs
// from the running build. A missing signature is not corruption; first runs
// have none.
type versionIndicator struct {
	markers *Markers
	version string
}

func (i *versionIndicator) Reason() Reason { return ReasonVersionMismatch }

func (i *versionIndicator) Detect(ctx context.Context) bool {
	stored, ok, err := i.markers.AppVersion(ctx)
	if err != nil {
		slog.Warn("Version probe failed", "error", err)
		return false
	}
	return ok && stored != i.version
}

// failureCountIndicator fires once the persisted corruption count reaches
// the configured threshold.
type failureCountIndicator struct {
	markers   *Markers
	threshold int
}

func (i *failureCountIndicator) Reason() Reason { return ReasonRepeatedFailures }

func (i *failureCountIndicator) Detect(ctx context.Context) bool {
	count, err := i.markers.CorruptionCount(ctx)
	if err != nil {
		slog.Warn("Failure-count probe failed", "error", err)
		return false
	}
	return count >= i.threshold
}

// authTokenIndicator parses every persisted key under the known auth
// prefixes. A single undecodable token is enough to report corruption.
type authTokenIndicator struct {
	kv       storage.KeyValueStore
	prefixes []string
}

func (i *authTokenIndicator) Reason() Reason { return ReasonBadAuthToken }

func (i *authTokenIndicator) Detect(ctx context.Context) bool {
	for _, prefix := range i.prefixes {
		keys, err := i.kv.Keys(ctx, prefix)
		if err != nil {
			slog.Warn("Auth token probe failed to list keys", "prefix", prefix, "error", err)
			continue
		}
		for _, key := range keys {
			raw, ok, err := i.kv.Get(ctx, key)
			if err != nil || !ok {
				continue
			}
			if _, err := platform.DecodeStoredSession(raw); err != nil {
				slog.Warn("Undecodable auth token", "key", key, "error", err)
				return true
			}
		}
	}
	return false
}

// storageProbe runs a synthetic write/read/delete round-trip through the
// key-value store. A mismatch or an error means the store is dysfunctional:
// quota exhaustion, disabled storage, or outside interference.
type storageProbe struct {
	kv storage.KeyValueStore
}

func (p *storageProbe) Reason() Reason { return ReasonStorageFault }

func (p *storageProbe) Detect(ctx context.Context) bool {
	key := markerPrefix + "storage_probe"
	value := uuid.NewString()

	if err := p.kv.Set(ctx, key, value); err != nil {
		slog.Warn("Storage probe write failed", "error", err)
		return true
	}
	got, ok, err := p.kv.Get(ctx, key)
	if err != nil || !ok || got != value {
		slog.Warn("Storage probe read-back mismatch", "ok", ok, "error", err)
		return true
	}
	if err := p.kv.Delete(ctx, key); err != nil {
		slog.Warn("Storage probe delete failed", "error", err)
		return true
	}
	return false
}

package integrity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gatherly/sentinel/internal/infra/storage"
)

// Marker keys. These live alongside application data in the key-value store
// and are purely heuristic health signals, never application data.
const (
	markerPrefix        = "gatherly:"
	lastLoadMarkerKey   = markerPrefix + "last_successful_load"
	corruptionCountKey  = markerPrefix + "corruption_count"
	forceCleanMarkerKey = markerPrefix + "force_clean"
	appVersionMarkerKey = markerPrefix + "app_version"
)

// Markers reads and writes the persisted corruption markers.
type Markers struct {
	kv storage.KeyValueStore
}

// NewMarkers creates a marker store over kv.
func NewMarkers(kv storage.KeyValueStore) *Markers {
	return &Markers{kv: kv}
}

// CorruptionCount returns the persisted count; absent reads as zero.
func (m *Markers) CorruptionCount(ctx context.Context) (int, error) {
	raw, ok, err := m.kv.Get(ctx, corruptionCountKey)
	if err != nil {
		return 0, fmt.Errorf("read corruption count: %w", err)
	}
	if !ok {
		return 0, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		// A garbled counter is itself a corruption signal; report the
		// highest value so the repeated-failures probe fires.
		return int(^uint(0) >> 1), nil
	}
	return count, nil
}

// IncrementCorruptionCount bumps the persisted count by one.
func (m *Markers) IncrementCorruptionCount(ctx context.Context) error {
	count, err := m.CorruptionCount(ctx)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, corruptionCountKey, strconv.Itoa(count+1))
}

// ResetCorruptionCount removes the persisted count. Every clean detection
// pass resets it, keeping the count bounded.
func (m *Markers) ResetCorruptionCount(ctx context.Context) error {
	return m.kv.Delete(ctx, corruptionCountKey)
}

// ForceClean reports whether the external force-clean override is set.
func (m *Markers) ForceClean(ctx context.Context) (bool, error) {
	raw, ok, err := m.kv.Get(ctx, forceCleanMarkerKey)
	if err != nil {
		return false, fmt.Errorf("read force-clean flag: %w", err)
	}
	return ok && raw == "true", nil
}

// SetForceClean arms the force-clean override for the next detection pass.
func (m *Markers) SetForceClean(ctx context.Context) error {
	return m.kv.Set(ctx, forceCleanMarkerKey, "true")
}

// ClearForceClean disarms the override. Only a remediation it triggered
// clears it.
func (m *Markers) ClearForceClean(ctx context.Context) error {
	return m.kv.Delete(ctx, forceCleanMarkerKey)
}

// AppVersion returns the stored build-version signature.
func (m *Markers) AppVersion(ctx context.Context) (string, bool, error) {
	return m.kv.Get(ctx, appVersionMarkerKey)
}

// LastSuccessfulLoad returns the stored timestamp of the last healthy pass.
func (m *Markers) LastSuccessfulLoad(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := m.kv.Get(ctx, lastLoadMarkerKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(unix, 0), true, nil
}

// Stamp writes a fresh version signature and load timestamp. Called on every
// successful remediation and on every clean detection pass.
func (m *Markers) Stamp(ctx context.Context, version string, now time.Time) error {
	if err := m.kv.Set(ctx, appVersionMarkerKey, version); err != nil {
		return fmt.Errorf("stamp app version: %w", err)
	}
	if err := m.kv.Set(ctx, lastLoadMarkerKey, strconv.FormatInt(now.Unix(), 10)); err != nil {
		return fmt.Errorf("stamp last load: %w", err)
	}
	return nil
}

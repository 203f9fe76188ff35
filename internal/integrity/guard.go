// Package integrity detects and repairs poisoned persistent client state.
// Left alone, a corrupted key-value store or a half-written auth token makes
// the application hang or loop on startup; the guard notices and wipes every
// storage layer so the next load starts clean.
package integrity

import (
	"context"
	"log/slog"
	"time"

	"github.com/gatherly/sentinel/internal/resilience/metrics"
)

// DefaultCorruptionThreshold is the reference policy for the
// repeated-failures probe.
const DefaultCorruptionThreshold = 3

// Config holds the guard's tunables.
type Config struct {
	Threshold     int           `yaml:"threshold"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Guard evaluates the indicator set, maintains the persisted markers, and
// triggers remediation when any probe fires.
type Guard struct {
	markers    *Markers
	indicators []Indicator
	remediator *Remediator
	version    string
	log        *slog.Logger
	now        func() time.Time
}

// NewGuard wires a guard from its parts. version is the running build's
// signature, stamped on every clean pass.
func NewGuard(markers *Markers, indicators []Indicator, remediator *Remediator, version string) *Guard {
	return &Guard{
		markers:    markers,
		indicators: indicators,
		remediator: remediator,
		version:    version,
		log:        slog.Default().With("component", "integrity"),
		now:        time.Now,
	}
}

// DetectCorruption runs every probe and reports whether any fired, together
// with the reasons. As a side effect a positive result increments the
// persisted corruption count; a clean pass resets the count and re-stamps
// the version and load markers.
func (g *Guard) DetectCorruption(ctx context.Context) (bool, []Reason) {
	var reasons []Reason
	for _, indicator := range g.indicators {
		if indicator.Detect(ctx) {
			reasons = append(reasons, indicator.Reason())
			metrics.CorruptionDetected.WithLabelValues(string(indicator.Reason())).Inc()
		}
	}

	if len(reasons) > 0 {
		if err := g.markers.IncrementCorruptionCount(ctx); err != nil {
			g.log.Warn("Failed to bump corruption count", "error", err)
		}
		return true, reasons
	}

	if err := g.markers.ResetCorruptionCount(ctx); err != nil {
		g.log.Warn("Failed to reset corruption count", "error", err)
	}
	if err := g.markers.Stamp(ctx, g.version, g.now()); err != nil {
		g.log.Warn("Failed to stamp markers on clean pass", "error", err)
	}
	return false, nil
}

// AutoDetectAndClean is the single entry point applications call at startup:
// detect, and if corrupted, remediate and disarm the force-clean override.
// Returns true when a remediation ran.
func (g *Guard) AutoDetectAndClean(ctx context.Context) (bool, error) {
	corrupted, reasons := g.DetectCorruption(ctx)
	if !corrupted {
		return false, nil
	}

	g.log.Warn("Client state corruption detected", "reasons", reasons)
	if err := g.remediator.CleanAllCaches(ctx); err != nil {
		return true, err
	}
	if err := g.markers.ClearForceClean(ctx); err != nil {
		g.log.Warn("Failed to clear force-clean flag", "error", err)
	}
	g.log.Info("Client state remediated", "reasons", reasons)
	return true, nil
}

// ForceCleanOnNextLoad arms the external override so the next detection pass
// remediates even when every other probe is quiet. Exposed to debug tooling.
func (g *Guard) ForceCleanOnNextLoad(ctx context.Context) error {
	return g.markers.SetForceClean(ctx)
}

// Markers exposes the marker store for status reporting.
func (g *Guard) Markers() *Markers { return g.markers }

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationAttempts tracks executor attempts per operation key
	OperationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_operation_attempts_total",
			Help: "Total number of remote operation attempts",
		},
		[]string{"key"},
	)

	// OperationThrottled tracks calls rejected by the per-key throttle
	OperationThrottled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_operation_throttled_total",
			Help: "Total number of calls rejected before the operation was attempted",
		},
		[]string{"key"},
	)

	// OperationFailures tracks final failures surfaced to callers
	OperationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_operation_failures_total",
			Help: "Total number of operations that failed after classification",
		},
		[]string{"key", "class"},
	)

	// SessionCacheLookups tracks session cache outcomes (hit, stale, miss)
	SessionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_session_cache_lookups_total",
			Help: "Total number of session cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// CorruptionDetected tracks indicator hits by reason
	CorruptionDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_corruption_detected_total",
			Help: "Total number of corruption indicator hits",
		},
		[]string{"reason"},
	)

	// RemediationLayerFailures tracks storage layers that failed to clean
	RemediationLayerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_remediation_layer_failures_total",
			Help: "Total number of storage layers that failed during remediation",
		},
		[]string{"layer"},
	)

	// RemediationRuns tracks completed remediation passes
	RemediationRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_remediation_runs_total",
			Help: "Total number of remediation passes",
		},
	)
)

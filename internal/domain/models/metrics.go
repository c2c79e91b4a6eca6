package models

import "time"

// MetricSnapshot is one calendar day's aggregated usage metrics for the
// monitored service. Snapshots are produced by an external rollup pipeline
// and consumed read-only; they are fetched fresh per run and never cached.
type MetricSnapshot struct {
	MetricDate Day `json:"metric_date"`

	TotalEvents      int64 `json:"total_events"`
	SuccessfulEvents int64 `json:"successful_events"`
	FailedEvents     int64 `json:"failed_events"`
	FallbackEvents   int64 `json:"fallback_events"`
	DuplicateEvents  int64 `json:"duplicate_events"`

	FallbackRate  float64 `json:"fallback_rate"`
	ErrorRate     float64 `json:"error_rate"`
	DuplicateRate float64 `json:"duplicate_rate"`

	LatencyP50 float64 `json:"latency_p50"`
	LatencyP95 float64 `json:"latency_p95"`
	LatencyP99 float64 `json:"latency_p99"`

	HealthScore float64 `json:"health_score"`
}

// BaselineSnapshot is an externally maintained rolling-window reference.
// It mirrors the snapshot's rate and latency fields; counts and health are
// not baselined.
type BaselineSnapshot struct {
	BaselineName string `json:"baseline_name"`
	WindowDays   int    `json:"window_days"`

	FallbackRate  float64 `json:"fallback_rate"`
	ErrorRate     float64 `json:"error_rate"`
	DuplicateRate float64 `json:"duplicate_rate"`

	LatencyP50 float64 `json:"latency_p50"`
	LatencyP95 float64 `json:"latency_p95"`
	LatencyP99 float64 `json:"latency_p99"`

	// ValidUntil is an expiry hint from the baseline pipeline. The detector
	// does not enforce it; dashboards surface it.
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

// Valid reports whether the baseline is usable for comparison. Negative
// rates or latencies indicate a malformed baseline row and the whole
// snapshot is discarded rather than compared against.
func (b *BaselineSnapshot) Valid() bool {
	if b == nil {
		return false
	}
	if b.WindowDays <= 0 {
		return false
	}
	for _, v := range []float64{
		b.FallbackRate, b.ErrorRate, b.DuplicateRate,
		b.LatencyP50, b.LatencyP95, b.LatencyP99,
	} {
		if v < 0 {
			return false
		}
	}
	return true
}

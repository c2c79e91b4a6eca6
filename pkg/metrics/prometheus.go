package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	checks       *prometheus.CounterVec
	alerts       *prometheus.CounterVec
	saveFailures prometheus.Counter
	storeLatency *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		checks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_monitor_checks_total",
				Help: "Total drift check runs by result",
			},
			[]string{"result"},
		),
		alerts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_alerts_detected_total",
				Help: "Total alerts detected by type and severity",
			},
			[]string{"type", "severity"},
		),
		saveFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "driftwatch_alert_save_failures_total",
				Help: "Total alert persistence failures",
			},
		),
		storeLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driftwatch_store_request_seconds",
				Help:    "Latency of metric store requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// RecordCheck records one drift check run.
func (r *Recorder) RecordCheck(result string) {
	r.checks.WithLabelValues(result).Inc()
}

// RecordAlert records one detected alert.
func (r *Recorder) RecordAlert(alertType, severity string) {
	r.alerts.WithLabelValues(alertType, severity).Inc()
}

// RecordSaveFailure records a failed alert write.
func (r *Recorder) RecordSaveFailure() {
	r.saveFailures.Inc()
}

// RecordStoreLatency records a store request latency in seconds.
func (r *Recorder) RecordStoreLatency(op string, seconds float64) {
	r.storeLatency.WithLabelValues(op).Observe(seconds)
}

package repository

import (
	"context"

	"DriftWatch/internal/domain/models"
)

// MetricSource reads pre-aggregated daily metrics and rolling baselines.
// Both are produced by external pipelines; this core never writes them.
type MetricSource interface {
	// FetchMetric returns the snapshot for one day, nil when the row does
	// not exist.
	FetchMetric(ctx context.Context, day models.Day) (*models.MetricSnapshot, error)
	// FetchMetricsRange returns snapshots with metric_date >= since, newest
	// first.
	FetchMetricsRange(ctx context.Context, since models.Day) ([]*models.MetricSnapshot, error)
	// FetchBaseline returns the named baseline, nil when missing.
	FetchBaseline(ctx context.Context, name string) (*models.BaselineSnapshot, error)
}

// AlertSink persists and queries alert records. Status transitions after
// creation are the sink's concern.
type AlertSink interface {
	// WriteAlert persists one alert and returns the sink-assigned id.
	WriteAlert(ctx context.Context, alert *models.Alert) (string, error)
	// FetchAlerts returns alerts matching the filter in the sink's native
	// ordering.
	FetchAlerts(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error)
}

// Store is a backend implementing both halves of the storage contract.
type Store interface {
	MetricSource
	AlertSink
}

// AlertEventPublisher fans out persisted alert records to downstream
// consumers (message topic, live dashboard feed). Best-effort: a publish
// failure never affects the check run.
type AlertEventPublisher interface {
	PublishAlert(ctx context.Context, alert *models.Alert) error
}

// Metrics records operational counters for the monitor itself.
type Metrics interface {
	RecordCheck(result string)
	RecordAlert(alertType, severity string)
	RecordSaveFailure()
	RecordStoreLatency(op string, seconds float64)
}

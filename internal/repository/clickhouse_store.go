package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"DriftWatch/internal/domain/models"
	domrepo "DriftWatch/internal/domain/repository"
	pkgch "DriftWatch/pkg/clickhouse"
	applogger "DriftWatch/pkg/logger"
)

// CHStore implements MetricSource and AlertSink on ClickHouse, for
// deployments where the rollup pipeline lands daily metrics in CH instead of
// exposing them over REST. Table layout mirrors the REST store: one metrics
// table, one baselines table, one alerts table.
type CHStore struct {
	db       *sql.DB
	database string
	rec      domrepo.Metrics
	l        *applogger.Logger
}

func NewCHStore(ch *pkgch.Client, database string) *CHStore {
	return &CHStore{db: ch.DB(), database: database, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// SetMetrics injects an operational metrics recorder.
func (s *CHStore) SetMetrics(rec domrepo.Metrics) { s.rec = rec }

const metricColumns = `metric_date, total_events, successful_events, failed_events,
fallback_events, duplicate_events, fallback_rate, error_rate, duplicate_rate,
latency_p50, latency_p95, latency_p99, health_score`

func (s *CHStore) FetchMetric(ctx context.Context, day models.Day) (*models.MetricSnapshot, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT %s FROM %s.daily_metrics WHERE metric_date = ? LIMIT 1`, metricColumns, s.database)
	row := s.db.QueryRowContext(ctx, q, day.Time())
	snap, err := scanMetric(row)
	s.observe("fetch_metric", start)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		s.l.Error("clickhouse fetch_metric error",
			applogger.String("day", day.String()),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("fetch metric %s: %w", day, err)
	}
	return snap, nil
}

func (s *CHStore) FetchMetricsRange(ctx context.Context, since models.Day) ([]*models.MetricSnapshot, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT %s FROM %s.daily_metrics WHERE metric_date >= ? ORDER BY metric_date DESC`, metricColumns, s.database)
	rows, err := s.db.QueryContext(ctx, q, since.Time())
	if err != nil {
		s.l.Error("clickhouse fetch_metrics_range error",
			applogger.String("since", since.String()),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("fetch metrics since %s: %w", since, err)
	}
	defer rows.Close()

	out := make([]*models.MetricSnapshot, 0, 32)
	for rows.Next() {
		snap, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.observe("fetch_metrics_range", start)
	return out, nil
}

func (s *CHStore) FetchBaseline(ctx context.Context, name string) (*models.BaselineSnapshot, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT baseline_name, window_days, fallback_rate, error_rate, duplicate_rate,
latency_p50, latency_p95, latency_p99, valid_until
FROM %s.metric_baselines WHERE baseline_name = ? LIMIT 1`, s.database)

	var b models.BaselineSnapshot
	var validUntil sql.NullTime
	err := s.db.QueryRowContext(ctx, q, name).Scan(
		&b.BaselineName, &b.WindowDays, &b.FallbackRate, &b.ErrorRate, &b.DuplicateRate,
		&b.LatencyP50, &b.LatencyP95, &b.LatencyP99, &validUntil,
	)
	s.observe("fetch_baseline", start)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		s.l.Error("clickhouse fetch_baseline error",
			applogger.String("baseline", name),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("fetch baseline %s: %w", name, err)
	}
	if validUntil.Valid {
		t := validUntil.Time
		b.ValidUntil = &t
	}
	return &b, nil
}

func (s *CHStore) WriteAlert(ctx context.Context, alert *models.Alert) (string, error) {
	start := time.Now()
	id := uuid.NewString()

	contextJSON := "{}"
	if len(alert.Context) > 0 {
		b, err := json.Marshal(alert.Context)
		if err != nil {
			return "", fmt.Errorf("marshal context: %w", err)
		}
		contextJSON = string(b)
	}

	q := fmt.Sprintf(`INSERT INTO %s.drift_alerts
(id, alert_type, severity, metric_name, current_value, baseline_value,
deviation_ratio, baseline_was_zero, threshold_low, threshold_medium, threshold_high,
metric_date, comparison_window_days, affected_model, affected_backend, affected_agent,
context_data, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.database)

	_, err := s.db.ExecContext(ctx, q,
		id, string(alert.Type), string(alert.Severity), alert.MetricName,
		alert.CurrentValue, alert.BaselineValue,
		alert.Deviation.Ratio, alert.Deviation.BaselineWasZero,
		alert.ThresholdLow, alert.ThresholdMedium, alert.ThresholdHigh,
		alert.MetricDate.Time(), alert.ComparisonWindowDays,
		alert.AffectedModel, alert.AffectedBackend, alert.AffectedAgent,
		contextJSON, alert.Status, time.Now().UTC(),
	)
	s.observe("write_alert", start)
	if err != nil {
		s.l.Error("clickhouse write_alert error",
			applogger.String("type", string(alert.Type)),
			applogger.Error(err),
		)
		return "", fmt.Errorf("write alert: %w", err)
	}
	return id, nil
}

func (s *CHStore) FetchAlerts(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT id, alert_type, severity, metric_name, current_value, baseline_value,
deviation_ratio, baseline_was_zero, threshold_low, threshold_medium, threshold_high,
metric_date, comparison_window_days, affected_model, affected_backend, affected_agent,
context_data, status, created_at
FROM %s.drift_alerts WHERE 1 = 1`, s.database)

	args := make([]interface{}, 0, 3)
	if filter.Status != "" {
		q += " AND status = ?"
		args = append(args, filter.Status)
	}
	if !filter.Since.IsZero() {
		q += " AND metric_date >= ?"
		args = append(args, filter.Since.Time())
	}
	q += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse fetch_alerts error", applogger.Error(err))
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Alert, 0, 16)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.observe("fetch_alerts", start)
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMetric(r rowScanner) (*models.MetricSnapshot, error) {
	var m models.MetricSnapshot
	var day time.Time
	err := r.Scan(
		&day, &m.TotalEvents, &m.SuccessfulEvents, &m.FailedEvents,
		&m.FallbackEvents, &m.DuplicateEvents, &m.FallbackRate, &m.ErrorRate, &m.DuplicateRate,
		&m.LatencyP50, &m.LatencyP95, &m.LatencyP99, &m.HealthScore,
	)
	if err != nil {
		return nil, err
	}
	m.MetricDate = models.NewDay(day)
	return &m, nil
}

func scanAlert(r rowScanner) (*models.Alert, error) {
	var a models.Alert
	var alertType, severity string
	var ratio float64
	var baselineWasZero bool
	var day, createdAt time.Time
	var contextJSON string

	err := r.Scan(
		&a.ID, &alertType, &severity, &a.MetricName, &a.CurrentValue, &a.BaselineValue,
		&ratio, &baselineWasZero, &a.ThresholdLow, &a.ThresholdMedium, &a.ThresholdHigh,
		&day, &a.ComparisonWindowDays, &a.AffectedModel, &a.AffectedBackend, &a.AffectedAgent,
		&contextJSON, &a.Status, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = models.AlertType(alertType)
	a.Severity = models.Severity(severity)
	if baselineWasZero {
		a.Deviation = models.Infinite()
	} else {
		a.Deviation = models.Finite(ratio)
	}
	a.MetricDate = models.NewDay(day)
	a.CreatedAt = &createdAt
	if contextJSON != "" && contextJSON != "{}" {
		if err := json.Unmarshal([]byte(contextJSON), &a.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context: %w", err)
		}
	}
	return &a, nil
}

func (s *CHStore) observe(op string, start time.Time) {
	if s.rec != nil {
		s.rec.RecordStoreLatency(op, time.Since(start).Seconds())
	}
}

var (
	_ domrepo.MetricSource = (*CHStore)(nil)
	_ domrepo.AlertSink    = (*CHStore)(nil)
)

package usecase

import (
	"context"
	"time"

	"DriftWatch/internal/domain/models"
	domrepo "DriftWatch/internal/domain/repository"
	"DriftWatch/internal/services/drift"
	applogger "DriftWatch/pkg/logger"
)

// Monitor runs scheduled drift checks: fetch one day's metrics and the
// rolling baseline, run the detectors, persist the resulting alerts.
//
// Missing data and persistence failures are expected operating conditions
// for an unattended run; they degrade to empty or partial reports and are
// never surfaced as errors.
type Monitor struct {
	source       domrepo.MetricSource
	sink         domrepo.AlertSink
	detector     *drift.Detector
	publishers   []domrepo.AlertEventPublisher
	metrics      domrepo.Metrics
	baselineName string
	l            *applogger.Logger
}

func NewMonitor(source domrepo.MetricSource, sink domrepo.AlertSink, detector *drift.Detector, baselineName string) *Monitor {
	if baselineName == "" {
		baselineName = "7day_rolling"
	}
	return &Monitor{
		source:       source,
		sink:         sink,
		detector:     detector,
		metrics:      nopMetrics{},
		baselineName: baselineName,
		l:            applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (m *Monitor) SetLogger(l *applogger.Logger) {
	if l != nil {
		m.l = l
	}
}

// SetMetrics injects an operational metrics recorder.
func (m *Monitor) SetMetrics(rec domrepo.Metrics) {
	if rec != nil {
		m.metrics = rec
	}
}

// AddPublisher registers a best-effort alert event publisher.
func (m *Monitor) AddPublisher(p domrepo.AlertEventPublisher) {
	if p != nil {
		m.publishers = append(m.publishers, p)
	}
}

// CurrentMetrics fetches one day's snapshot, nil when the row is missing or
// the store is unreachable. Callers treat nil as "skip", not an error.
func (m *Monitor) CurrentMetrics(ctx context.Context, day models.Day) *models.MetricSnapshot {
	snap, err := m.source.FetchMetric(ctx, day)
	if err != nil {
		m.l.Warn("metric fetch failed",
			applogger.String("day", day.String()),
			applogger.Error(err),
		)
		return nil
	}
	if snap == nil {
		m.l.Warn("no metrics for day", applogger.String("day", day.String()))
	}
	return snap
}

// Baseline fetches the configured rolling baseline, nil when missing,
// unreachable, or malformed (negative values).
func (m *Monitor) Baseline(ctx context.Context) *models.BaselineSnapshot {
	base, err := m.source.FetchBaseline(ctx, m.baselineName)
	if err != nil {
		m.l.Warn("baseline fetch failed",
			applogger.String("baseline", m.baselineName),
			applogger.Error(err),
		)
		return nil
	}
	if base == nil {
		m.l.Warn("baseline not found", applogger.String("baseline", m.baselineName))
		return nil
	}
	if !base.Valid() {
		m.l.Warn("malformed baseline rejected", applogger.String("baseline", m.baselineName))
		return nil
	}
	return base
}

// DetectAll fetches current and baseline once and runs the five detectors.
// Either snapshot missing yields an empty result, logged, no error.
func (m *Monitor) DetectAll(ctx context.Context, day models.Day) []*models.Alert {
	cur := m.CurrentMetrics(ctx, day)
	base := m.Baseline(ctx)
	if cur == nil || base == nil {
		return nil
	}
	return m.detector.DetectAll(cur, base)
}

// SaveAlert persists one alert and returns the sink-assigned id, empty on
// failure. A failed save is logged and counted, never raised.
func (m *Monitor) SaveAlert(ctx context.Context, alert *models.Alert) string {
	id, err := m.sink.WriteAlert(ctx, alert)
	if err != nil {
		m.metrics.RecordSaveFailure()
		m.l.Error("alert save failed",
			applogger.String("type", string(alert.Type)),
			applogger.String("metric", alert.MetricName),
			applogger.Error(err),
		)
		return ""
	}
	return id
}

// CheckAndAlert is the externally invoked entry point for one drift check.
// The zero Day means "today". It never returns an error: missing data and
// persistence failures degrade to empty or partial reports, since this runs
// unattended on a schedule.
func (m *Monitor) CheckAndAlert(ctx context.Context, day models.Day, autoSave bool) *models.CheckReport {
	if day.IsZero() {
		day = models.NewDay(time.Now())
	}

	report := &models.CheckReport{
		MetricDate: day,
		BySeverity: make(map[models.Severity]int),
		ByType:     make(map[models.AlertType]int),
		Alerts:     []models.AlertOutcome{},
	}

	cur := m.CurrentMetrics(ctx, day)
	base := m.Baseline(ctx)
	if cur == nil || base == nil {
		m.metrics.RecordCheck("no_data")
		return report
	}

	alerts := m.detector.DetectAll(cur, base)
	report.AlertsDetected = len(alerts)

	for _, a := range alerts {
		m.metrics.RecordAlert(string(a.Type), string(a.Severity))
		report.BySeverity[a.Severity]++
		report.ByType[a.Type]++

		outcome := models.AlertOutcome{
			Type:      a.Type,
			Severity:  a.Severity,
			Metric:    a.MetricName,
			Current:   a.CurrentValue,
			Baseline:  a.BaselineValue,
			Deviation: a.Deviation,
			Context:   a.Context,
		}
		if autoSave {
			if id := m.SaveAlert(ctx, a); id != "" {
				a.ID = id
				outcome.AlertID = id
				outcome.Saved = true
				m.publish(ctx, a)
			}
		}
		report.Alerts = append(report.Alerts, outcome)
	}

	m.metrics.RecordCheck("ok")
	m.l.Info("drift check complete",
		applogger.String("day", day.String()),
		applogger.Int("alerts", report.AlertsDetected),
	)
	return report
}

func (m *Monitor) publish(ctx context.Context, alert *models.Alert) {
	for _, p := range m.publishers {
		if err := p.PublishAlert(ctx, alert); err != nil {
			m.l.Warn("alert publish failed",
				applogger.String("id", alert.ID),
				applogger.Error(err),
			)
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordCheck(string) {}
func (nopMetrics) RecordAlert(string, string) {}
func (nopMetrics) RecordSaveFailure() {}
func (nopMetrics) RecordStoreLatency(string, float64) {}

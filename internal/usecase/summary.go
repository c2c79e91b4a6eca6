package usecase

import (
	"context"
	"time"

	"DriftWatch/internal/domain/models"
	domrepo "DriftWatch/internal/domain/repository"
	applogger "DriftWatch/pkg/logger"
)

const (
	defaultWindowDays = 7
	recentAlertLimit  = 5

	// Trend classification: mean of the 3 most-recent days against the mean
	// of the 3 preceding days, requiring at least 6 rows.
	trendMinDays    = 6
	trendSpanDays   = 3
	trendUpFactor   = 1.1
	trendDownFactor = 0.9
)

// Summary aggregates a trailing window of metrics, alerts, and the baseline
// into a dashboard snapshot with trend classification. Like the monitor, it
// soft-fails: unreachable stores produce zeroed blocks, never errors.
type Summary struct {
	source       domrepo.MetricSource
	sink         domrepo.AlertSink
	baselineName string
	l            *applogger.Logger
}

func NewSummary(source domrepo.MetricSource, sink domrepo.AlertSink, baselineName string) *Summary {
	if baselineName == "" {
		baselineName = "7day_rolling"
	}
	return &Summary{source: source, sink: sink, baselineName: baselineName, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *Summary) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// GetSummary builds the dashboard payload for a trailing window of days.
// Averages are unweighted means over however many rows the store actually
// returned, not over windowDays.
func (s *Summary) GetSummary(ctx context.Context, windowDays int) *models.DashboardSummary {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	since := models.NewDay(time.Now()).AddDays(-windowDays)

	rows, err := s.source.FetchMetricsRange(ctx, since)
	if err != nil {
		s.l.Warn("metrics range fetch failed",
			applogger.String("since", since.String()),
			applogger.Error(err),
		)
		rows = nil
	}

	baseline, err := s.source.FetchBaseline(ctx, s.baselineName)
	if err != nil {
		s.l.Warn("baseline fetch failed",
			applogger.String("baseline", s.baselineName),
			applogger.Error(err),
		)
		baseline = nil
	}

	alerts, err := s.sink.FetchAlerts(ctx, models.AlertFilter{
		Since:  since,
		Status: models.StatusOpen,
	})
	if err != nil {
		s.l.Warn("alerts fetch failed", applogger.Error(err))
		alerts = nil
	}

	return &models.DashboardSummary{
		WindowDays: windowDays,
		Metrics:    windowMetrics(rows),
		Baseline:   baseline,
		Trends: map[string]models.Trend{
			"fallback_rate": classifyTrend(rows, func(m *models.MetricSnapshot) float64 { return m.FallbackRate }),
			"latency_p95":   classifyTrend(rows, func(m *models.MetricSnapshot) float64 { return m.LatencyP95 }),
		},
		Alerts:      alertWindow(alerts),
		GeneratedAt: time.Now().UTC(),
	}
}

// GetAlerts returns persisted alerts at or above a severity threshold,
// status-filtered and truncated to limit, preserving the sink's native
// ordering among matches. Unreachable sink yields an empty slice.
func (s *Summary) GetAlerts(ctx context.Context, threshold models.Severity, status string, limit int) []*models.Alert {
	if threshold == "" {
		threshold = models.SeverityMedium
	}
	if status == "" {
		status = models.StatusOpen
	}
	if limit <= 0 {
		limit = 50
	}

	fetched, err := s.sink.FetchAlerts(ctx, models.AlertFilter{Status: status, Limit: limit})
	if err != nil {
		s.l.Warn("alerts fetch failed",
			applogger.String("status", status),
			applogger.Error(err),
		)
		return []*models.Alert{}
	}

	minRank := threshold.Rank()
	out := make([]*models.Alert, 0, len(fetched))
	for _, a := range fetched {
		if a.Severity.Rank() >= minRank {
			out = append(out, a)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func windowMetrics(rows []*models.MetricSnapshot) models.WindowMetrics {
	var wm models.WindowMetrics
	var sumFallback, sumError, sumHealth float64
	for _, row := range rows {
		wm.TotalEvents += row.TotalEvents
		sumFallback += row.FallbackRate
		sumError += row.ErrorRate
		sumHealth += row.HealthScore
	}
	// max(len,1) guard: zero rows default the averages to 0
	div := float64(len(rows))
	if div < 1 {
		div = 1
	}
	wm.AvgFallbackRate = sumFallback / div
	wm.AvgErrorRate = sumError / div
	wm.AvgHealthScore = sumHealth / div
	if len(rows) > 0 {
		wm.Latest = rows[0]
	}
	return wm
}

// classifyTrend expects rows newest first.
func classifyTrend(rows []*models.MetricSnapshot, pick func(*models.MetricSnapshot) float64) models.Trend {
	if len(rows) < trendMinDays {
		return models.TrendUnknown
	}
	recent := spanMean(rows[:trendSpanDays], pick)
	previous := spanMean(rows[trendSpanDays:2*trendSpanDays], pick)
	switch {
	case recent > previous*trendUpFactor:
		return models.TrendUp
	case recent < previous*trendDownFactor:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

func spanMean(rows []*models.MetricSnapshot, pick func(*models.MetricSnapshot) float64) float64 {
	var sum float64
	for _, row := range rows {
		sum += pick(row)
	}
	return sum / float64(len(rows))
}

func alertWindow(alerts []*models.Alert) models.AlertWindow {
	aw := models.AlertWindow{
		BySeverity: make(map[models.Severity]int),
		Recent:     []*models.Alert{},
	}
	aw.TotalOpen = len(alerts)
	for _, a := range alerts {
		aw.BySeverity[a.Severity]++
	}
	n := len(alerts)
	if n > recentAlertLimit {
		n = recentAlertLimit
	}
	aw.Recent = append(aw.Recent, alerts[:n]...)
	return aw
}

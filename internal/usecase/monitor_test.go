package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"DriftWatch/internal/domain/models"
	"DriftWatch/internal/services/drift"
)

type fakeSource struct {
	metric   *models.MetricSnapshot
	rows     []*models.MetricSnapshot
	baseline *models.BaselineSnapshot
	err      error
}

func (f *fakeSource) FetchMetric(ctx context.Context, day models.Day) (*models.MetricSnapshot, error) {
	return f.metric, f.err
}

func (f *fakeSource) FetchMetricsRange(ctx context.Context, since models.Day) ([]*models.MetricSnapshot, error) {
	return f.rows, f.err
}

func (f *fakeSource) FetchBaseline(ctx context.Context, name string) (*models.BaselineSnapshot, error) {
	return f.baseline, f.err
}

type fakeSink struct {
	alerts   []*models.Alert
	written  []*models.Alert
	writeErr error
	fetchErr error
	failOn   string // metric name that fails WriteAlert
}

func (f *fakeSink) WriteAlert(ctx context.Context, alert *models.Alert) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	if f.failOn != "" && alert.MetricName == f.failOn {
		return "", errors.New("write rejected")
	}
	f.written = append(f.written, alert)
	return "alert-" + strconv.Itoa(len(f.written)), nil
}

func (f *fakeSink) FetchAlerts(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := f.alerts
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type countingMetrics struct {
	checks       map[string]int
	alerts       map[string]int
	saveFailures int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{checks: make(map[string]int), alerts: make(map[string]int)}
}

func (c *countingMetrics) RecordCheck(result string) { c.checks[result]++ }
func (c *countingMetrics) RecordAlert(alertType, severity string) { c.alerts[alertType+"/"+severity]++ }
func (c *countingMetrics) RecordSaveFailure() { c.saveFailures++ }
func (c *countingMetrics) RecordStoreLatency(string, float64) {}

type capturePublisher struct {
	published []*models.Alert
	err       error
}

func (p *capturePublisher) PublishAlert(ctx context.Context, alert *models.Alert) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, alert)
	return nil
}

func day(s string) models.Day {
	d, err := models.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func driftedSnapshot() *models.MetricSnapshot {
	return &models.MetricSnapshot{
		MetricDate:   day("2026-03-14"),
		TotalEvents:  500,
		FallbackRate: 0.08, // 4x baseline
		ErrorRate:    0.01,
		LatencyP50:   100,
		LatencyP95:   1000, // 2.5x baseline
		LatencyP99:   1500,
		HealthScore:  90,
	}
}

func rollingBaseline() *models.BaselineSnapshot {
	return &models.BaselineSnapshot{
		BaselineName: "7day_rolling",
		WindowDays:   7,
		FallbackRate: 0.02,
		ErrorRate:    0.01,
		LatencyP95:   400,
	}
}

func newTestMonitor(src *fakeSource, sink *fakeSink) *Monitor {
	return NewMonitor(src, sink, drift.NewDetector(models.DefaultThresholds()), "7day_rolling")
}

func TestCheckAndAlertNoData(t *testing.T) {
	rec := newCountingMetrics()
	m := newTestMonitor(&fakeSource{baseline: rollingBaseline()}, &fakeSink{})
	m.SetMetrics(rec)

	report := m.CheckAndAlert(context.Background(), day("2026-03-14"), true)
	if report == nil {
		t.Fatalf("expected report")
	}
	if report.AlertsDetected != 0 || len(report.Alerts) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if rec.checks["no_data"] != 1 {
		t.Fatalf("expected no_data check recorded, got %v", rec.checks)
	}
}

func TestCheckAndAlertStoreError(t *testing.T) {
	rec := newCountingMetrics()
	m := newTestMonitor(&fakeSource{err: errors.New("store down")}, &fakeSink{})
	m.SetMetrics(rec)

	report := m.CheckAndAlert(context.Background(), day("2026-03-14"), true)
	if report.AlertsDetected != 0 {
		t.Fatalf("expected empty report on store error")
	}
	if rec.checks["no_data"] != 1 {
		t.Fatalf("expected no_data, got %v", rec.checks)
	}
}

func TestCheckAndAlertDetectsAndSaves(t *testing.T) {
	rec := newCountingMetrics()
	sink := &fakeSink{}
	m := newTestMonitor(&fakeSource{metric: driftedSnapshot(), baseline: rollingBaseline()}, sink)
	m.SetMetrics(rec)

	report := m.CheckAndAlert(context.Background(), day("2026-03-14"), true)
	if report.AlertsDetected != 2 {
		t.Fatalf("expected 2 alerts, got %d", report.AlertsDetected)
	}
	if report.BySeverity[models.SeverityCritical] != 1 || report.BySeverity[models.SeverityHigh] != 1 {
		t.Fatalf("unexpected severity histogram %v", report.BySeverity)
	}
	if report.ByType[models.AlertFallbackSpike] != 1 || report.ByType[models.AlertLatencySpike] != 1 {
		t.Fatalf("unexpected type histogram %v", report.ByType)
	}
	if len(sink.written) != 2 {
		t.Fatalf("expected 2 saved alerts, got %d", len(sink.written))
	}
	for _, o := range report.Alerts {
		if !o.Saved || o.AlertID == "" {
			t.Fatalf("expected saved outcome, got %+v", o)
		}
	}
	if rec.checks["ok"] != 1 {
		t.Fatalf("expected ok check, got %v", rec.checks)
	}
	if rec.alerts["FALLBACK_SPIKE/critical"] != 1 {
		t.Fatalf("expected fallback alert recorded, got %v", rec.alerts)
	}
}

func TestCheckAndAlertAutoSaveOff(t *testing.T) {
	sink := &fakeSink{}
	m := newTestMonitor(&fakeSource{metric: driftedSnapshot(), baseline: rollingBaseline()}, sink)

	report := m.CheckAndAlert(context.Background(), day("2026-03-14"), false)
	if report.AlertsDetected != 2 {
		t.Fatalf("expected 2 alerts, got %d", report.AlertsDetected)
	}
	if len(sink.written) != 0 {
		t.Fatalf("expected no saves, got %d", len(sink.written))
	}
	for _, o := range report.Alerts {
		if o.Saved || o.AlertID != "" {
			t.Fatalf("expected unsaved outcome, got %+v", o)
		}
	}
}

func TestCheckAndAlertPartialSaveFailure(t *testing.T) {
	rec := newCountingMetrics()
	sink := &fakeSink{failOn: "fallback_rate"}
	m := newTestMonitor(&fakeSource{metric: driftedSnapshot(), baseline: rollingBaseline()}, sink)
	m.SetMetrics(rec)

	report := m.CheckAndAlert(context.Background(), day("2026-03-14"), true)
	if report.AlertsDetected != 2 {
		t.Fatalf("expected 2 alerts, got %d", report.AlertsDetected)
	}

	var saved, unsaved int
	for _, o := range report.Alerts {
		if o.Saved {
			saved++
		} else {
			unsaved++
		}
	}
	if saved != 1 || unsaved != 1 {
		t.Fatalf("expected 1 saved and 1 unsaved, got %d/%d", saved, unsaved)
	}
	if rec.saveFailures != 1 {
		t.Fatalf("expected 1 save failure, got %d", rec.saveFailures)
	}
}

func TestCheckAndAlertPublishesSavedAlerts(t *testing.T) {
	sink := &fakeSink{}
	pub := &capturePublisher{}
	m := newTestMonitor(&fakeSource{metric: driftedSnapshot(), baseline: rollingBaseline()}, sink)
	m.AddPublisher(pub)

	m.CheckAndAlert(context.Background(), day("2026-03-14"), true)
	if len(pub.published) != 2 {
		t.Fatalf("expected 2 published alerts, got %d", len(pub.published))
	}
	for _, a := range pub.published {
		if a.ID == "" {
			t.Fatalf("published alert missing sink id")
		}
	}
}

func TestCheckAndAlertPublishFailureIsSoft(t *testing.T) {
	sink := &fakeSink{}
	m := newTestMonitor(&fakeSource{metric: driftedSnapshot(), baseline: rollingBaseline()}, sink)
	m.AddPublisher(&capturePublisher{err: errors.New("broker down")})

	report := m.CheckAndAlert(context.Background(), day("2026-03-14"), true)
	for _, o := range report.Alerts {
		if !o.Saved {
			t.Fatalf("publish failure must not affect saved flag")
		}
	}
}

func TestCheckAndAlertZeroDayDefaultsToToday(t *testing.T) {
	m := newTestMonitor(&fakeSource{}, &fakeSink{})
	report := m.CheckAndAlert(context.Background(), models.Day{}, false)
	want := models.NewDay(time.Now())
	if !report.MetricDate.Equal(want) {
		t.Fatalf("expected today %s, got %s", want, report.MetricDate)
	}
}

func TestBaselineRejectsMalformed(t *testing.T) {
	base := rollingBaseline()
	base.ErrorRate = -1
	m := newTestMonitor(&fakeSource{metric: driftedSnapshot(), baseline: base}, &fakeSink{})

	if got := m.Baseline(context.Background()); got != nil {
		t.Fatalf("expected nil for malformed baseline")
	}
	report := m.CheckAndAlert(context.Background(), day("2026-03-14"), true)
	if report.AlertsDetected != 0 {
		t.Fatalf("expected empty report, got %d alerts", report.AlertsDetected)
	}
}

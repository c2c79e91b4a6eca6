package usecase

import (
	"context"
	"errors"
	"testing"

	"DriftWatch/internal/domain/models"
)

// rowsWithFallback builds newest-first snapshots with the given fallback
// rates, newest first.
func rowsWithFallback(rates ...float64) []*models.MetricSnapshot {
	rows := make([]*models.MetricSnapshot, 0, len(rates))
	d := day("2026-03-14")
	for i, r := range rates {
		rows = append(rows, &models.MetricSnapshot{
			MetricDate:   d.AddDays(-i),
			TotalEvents:  100,
			FallbackRate: r,
			ErrorRate:    0.01,
			LatencyP95:   400,
			HealthScore:  90,
		})
	}
	return rows
}

func newTestSummary(src *fakeSource, sink *fakeSink) *Summary {
	return NewSummary(src, sink, "7day_rolling")
}

func TestGetSummaryTrendUp(t *testing.T) {
	src := &fakeSource{rows: rowsWithFallback(0.06, 0.05, 0.055, 0.02, 0.02, 0.02)}
	s := newTestSummary(src, &fakeSink{})

	res := s.GetSummary(context.Background(), 7)
	if res.Trends["fallback_rate"] != models.TrendUp {
		t.Fatalf("expected up, got %s", res.Trends["fallback_rate"])
	}
}

func TestGetSummaryTrendDown(t *testing.T) {
	src := &fakeSource{rows: rowsWithFallback(0.01, 0.01, 0.01, 0.05, 0.05, 0.05)}
	s := newTestSummary(src, &fakeSink{})

	res := s.GetSummary(context.Background(), 7)
	if res.Trends["fallback_rate"] != models.TrendDown {
		t.Fatalf("expected down, got %s", res.Trends["fallback_rate"])
	}
}

func TestGetSummaryTrendStable(t *testing.T) {
	// recent mean 0.021 vs prior 0.02: within the 0.9x-1.1x band
	src := &fakeSource{rows: rowsWithFallback(0.021, 0.021, 0.021, 0.02, 0.02, 0.02)}
	s := newTestSummary(src, &fakeSink{})

	res := s.GetSummary(context.Background(), 7)
	if res.Trends["fallback_rate"] != models.TrendStable {
		t.Fatalf("expected stable, got %s", res.Trends["fallback_rate"])
	}
}

func TestGetSummaryTrendUnknownOnShortWindow(t *testing.T) {
	src := &fakeSource{rows: rowsWithFallback(0.06, 0.05, 0.05, 0.02, 0.02)}
	s := newTestSummary(src, &fakeSink{})

	res := s.GetSummary(context.Background(), 7)
	if res.Trends["fallback_rate"] != models.TrendUnknown {
		t.Fatalf("expected unknown for 5 rows, got %s", res.Trends["fallback_rate"])
	}
}

func TestGetSummaryAverages(t *testing.T) {
	rows := rowsWithFallback(0.25, 0.75)
	rows[0].HealthScore = 80
	rows[1].HealthScore = 100
	src := &fakeSource{rows: rows}
	s := newTestSummary(src, &fakeSink{})

	res := s.GetSummary(context.Background(), 7)
	if res.Metrics.TotalEvents != 200 {
		t.Fatalf("expected 200 events, got %d", res.Metrics.TotalEvents)
	}
	if res.Metrics.AvgFallbackRate != 0.5 {
		t.Fatalf("expected avg 0.5, got %v", res.Metrics.AvgFallbackRate)
	}
	if res.Metrics.AvgHealthScore != 90 {
		t.Fatalf("expected avg 90, got %v", res.Metrics.AvgHealthScore)
	}
	if res.Metrics.Latest != rows[0] {
		t.Fatalf("expected newest row as latest")
	}
}

func TestGetSummaryEmptyStore(t *testing.T) {
	s := newTestSummary(&fakeSource{}, &fakeSink{})

	res := s.GetSummary(context.Background(), 7)
	if res.Metrics.TotalEvents != 0 || res.Metrics.AvgFallbackRate != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", res.Metrics)
	}
	if res.Metrics.Latest != nil {
		t.Fatalf("expected nil latest")
	}
	if res.Trends["fallback_rate"] != models.TrendUnknown {
		t.Fatalf("expected unknown trend")
	}
	if res.Alerts.TotalOpen != 0 || len(res.Alerts.Recent) != 0 {
		t.Fatalf("expected empty alert window, got %+v", res.Alerts)
	}
}

func TestGetSummarySoftFailsOnStoreError(t *testing.T) {
	s := newTestSummary(&fakeSource{err: errors.New("store down")}, &fakeSink{fetchErr: errors.New("store down")})

	res := s.GetSummary(context.Background(), 7)
	if res == nil {
		t.Fatalf("expected summary despite store errors")
	}
	if res.WindowDays != 7 {
		t.Fatalf("expected window 7, got %d", res.WindowDays)
	}
	if res.Baseline != nil {
		t.Fatalf("expected nil baseline")
	}
}

func TestGetSummaryRecentAlertsCapped(t *testing.T) {
	alerts := make([]*models.Alert, 8)
	for i := range alerts {
		alerts[i] = &models.Alert{Severity: models.SeverityHigh, Status: models.StatusOpen}
	}
	s := newTestSummary(&fakeSource{}, &fakeSink{alerts: alerts})

	res := s.GetSummary(context.Background(), 7)
	if res.Alerts.TotalOpen != 8 {
		t.Fatalf("expected 8 open, got %d", res.Alerts.TotalOpen)
	}
	if len(res.Alerts.Recent) != 5 {
		t.Fatalf("expected 5 recent, got %d", len(res.Alerts.Recent))
	}
	if res.Alerts.BySeverity[models.SeverityHigh] != 8 {
		t.Fatalf("expected severity count 8, got %v", res.Alerts.BySeverity)
	}
}

func TestGetSummaryZeroWindowDefaults(t *testing.T) {
	s := newTestSummary(&fakeSource{}, &fakeSink{})
	res := s.GetSummary(context.Background(), 0)
	if res.WindowDays != 7 {
		t.Fatalf("expected default 7, got %d", res.WindowDays)
	}
}

func TestGetAlertsThresholdFilter(t *testing.T) {
	sink := &fakeSink{alerts: []*models.Alert{
		{Severity: models.SeverityCritical},
		{Severity: models.SeverityLow},
		{Severity: models.SeverityMedium},
		{Severity: models.SeverityHigh},
	}}
	s := newTestSummary(&fakeSource{}, sink)

	got := s.GetAlerts(context.Background(), models.SeverityHigh, "open", 50)
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got))
	}
	if got[0].Severity != models.SeverityCritical || got[1].Severity != models.SeverityHigh {
		t.Fatalf("unexpected ordering %v %v", got[0].Severity, got[1].Severity)
	}
}

func TestGetAlertsDefaults(t *testing.T) {
	sink := &fakeSink{alerts: []*models.Alert{
		{Severity: models.SeverityLow},
		{Severity: models.SeverityMedium},
	}}
	s := newTestSummary(&fakeSource{}, sink)

	got := s.GetAlerts(context.Background(), "", "", 0)
	if len(got) != 1 {
		t.Fatalf("expected medium threshold default to keep 1, got %d", len(got))
	}
}

func TestGetAlertsSinkErrorYieldsEmpty(t *testing.T) {
	s := newTestSummary(&fakeSource{}, &fakeSink{fetchErr: errors.New("down")})
	got := s.GetAlerts(context.Background(), models.SeverityLow, "open", 10)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

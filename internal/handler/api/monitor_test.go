package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"DriftWatch/internal/domain/models"
	icache "DriftWatch/internal/service/cache"
	"DriftWatch/internal/services/drift"
	"DriftWatch/internal/usecase"
	applogger "DriftWatch/pkg/logger"
)

type stubStore struct {
	metric   *models.MetricSnapshot
	rows     []*models.MetricSnapshot
	baseline *models.BaselineSnapshot
	alerts   []*models.Alert
	writes   int
	ranges   int
}

func (s *stubStore) FetchMetric(ctx context.Context, day models.Day) (*models.MetricSnapshot, error) {
	return s.metric, nil
}

func (s *stubStore) FetchMetricsRange(ctx context.Context, since models.Day) ([]*models.MetricSnapshot, error) {
	s.ranges++
	return s.rows, nil
}

func (s *stubStore) FetchBaseline(ctx context.Context, name string) (*models.BaselineSnapshot, error) {
	return s.baseline, nil
}

func (s *stubStore) WriteAlert(ctx context.Context, alert *models.Alert) (string, error) {
	s.writes++
	return "stub-id", nil
}

func (s *stubStore) FetchAlerts(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error) {
	return s.alerts, nil
}

func newTestHandler(store *stubStore) (*MonitorHandler, *echo.Echo) {
	l := applogger.Nop()
	monitor := usecase.NewMonitor(store, store, drift.NewDetector(models.DefaultThresholds()), "7day_rolling")
	summary := usecase.NewSummary(store, store, "7day_rolling")
	h := NewMonitorHandler(l, monitor, summary)

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func driftedStore() *stubStore {
	d, _ := models.ParseDay("2026-03-14")
	return &stubStore{
		metric: &models.MetricSnapshot{
			MetricDate:   d,
			FallbackRate: 0.08,
			LatencyP95:   400,
			HealthScore:  95,
		},
		baseline: &models.BaselineSnapshot{
			BaselineName: "7day_rolling",
			WindowDays:   7,
			FallbackRate: 0.02,
			LatencyP95:   400,
		},
	}
}


// envelopeStatus extracts the logical status carried in the response body.
func envelopeStatus(t *testing.T, body []byte) int {
	t.Helper()
	var env struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env.Status
}

func TestCheckEndpoint(t *testing.T) {
	store := driftedStore()
	_, e := newTestHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(`{"date":"2026-03-14"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Data models.CheckReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Data.AlertsDetected != 1 {
		t.Fatalf("expected 1 alert, got %d", out.Data.AlertsDetected)
	}
	if store.writes != 1 {
		t.Fatalf("expected auto-save, got %d writes", store.writes)
	}
}

func TestCheckEndpointAutoSaveOff(t *testing.T) {
	store := driftedStore()
	_, e := newTestHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(`{"date":"2026-03-14","auto_save":false}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes, got %d", store.writes)
	}
}

func TestCheckEndpointBadDate(t *testing.T) {
	_, e := newTestHandler(driftedStore())

	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(`{"date":"14/03/2026"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := envelopeStatus(t, rec.Body.Bytes()); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestCheckEndpointRateLimited(t *testing.T) {
	_, e := newTestHandler(driftedStore())

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		last = envelopeStatus(t, rec.Body.Bytes())
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third burst request, got %d", last)
	}
}

func TestSummaryEndpointCaches(t *testing.T) {
	store := driftedStore()
	h, e := newTestHandler(store)
	h.SetCache(icache.NewTTLCache(), time.Minute)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/summary?window=7", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
	if store.ranges != 1 {
		t.Fatalf("expected single store read, got %d", store.ranges)
	}
}

func TestSummaryEndpointValidatesWindow(t *testing.T) {
	_, e := newTestHandler(driftedStore())

	req := httptest.NewRequest(http.MethodGet, "/api/summary?window=365", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := envelopeStatus(t, rec.Body.Bytes()); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	store := driftedStore()
	store.alerts = []*models.Alert{
		{Severity: models.SeverityCritical, Status: models.StatusOpen},
		{Severity: models.SeverityLow, Status: models.StatusOpen},
	}
	_, e := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?threshold=high", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Data struct {
			Rows  []*models.Alert `json:"rows"`
			Total int64           `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Data.Total != 1 || len(out.Data.Rows) != 1 {
		t.Fatalf("expected 1 filtered alert, got %+v", out.Data)
	}
}

func TestAlertsEndpointBadThreshold(t *testing.T) {
	_, e := newTestHandler(driftedStore())

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?threshold=urgent", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := envelopeStatus(t, rec.Body.Bytes()); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

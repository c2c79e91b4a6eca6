package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"DriftWatch/internal/domain/models"
	domrepo "DriftWatch/internal/domain/repository"
	xhttp "DriftWatch/pkg/http"
	applogger "DriftWatch/pkg/logger"
)

// RESTStoreConfig configures the PostgREST-backed store.
type RESTStoreConfig struct {
	BaseURL        string
	APIKey         string
	PointTimeout   time.Duration // single-row reads
	WindowTimeout  time.Duration // range reads
	MetricsTable   string
	BaselinesTable string
	AlertsTable    string
}

// RESTStore reads daily metrics and baselines, and persists alerts, through
// a PostgREST-style API. It implements both MetricSource and AlertSink.
type RESTStore struct {
	cfg    RESTStoreConfig
	client *xhttp.Client
	rec    domrepo.Metrics
	l      *applogger.Logger
}

func NewRESTStore(cfg RESTStoreConfig) *RESTStore {
	if cfg.PointTimeout <= 0 {
		cfg.PointTimeout = 10 * time.Second
	}
	if cfg.WindowTimeout <= 0 {
		cfg.WindowTimeout = 30 * time.Second
	}
	if cfg.MetricsTable == "" {
		cfg.MetricsTable = "daily_metrics"
	}
	if cfg.BaselinesTable == "" {
		cfg.BaselinesTable = "metric_baselines"
	}
	if cfg.AlertsTable == "" {
		cfg.AlertsTable = "drift_alerts"
	}
	return &RESTStore{
		cfg:    cfg,
		client: xhttp.NewClient(xhttp.WithTimeout(cfg.WindowTimeout)),
		l:      applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (s *RESTStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// SetMetrics injects an operational metrics recorder.
func (s *RESTStore) SetMetrics(rec domrepo.Metrics) { s.rec = rec }

func (s *RESTStore) FetchMetric(ctx context.Context, day models.Day) (*models.MetricSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PointTimeout)
	defer cancel()

	var rows []*models.MetricSnapshot
	err := s.get(ctx, "fetch_metric", s.cfg.MetricsTable, map[string][]string{
		"metric_date": {"eq." + day.String()},
		"limit":       {"1"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch metric %s: %w", day, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *RESTStore) FetchMetricsRange(ctx context.Context, since models.Day) ([]*models.MetricSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WindowTimeout)
	defer cancel()

	var rows []*models.MetricSnapshot
	err := s.get(ctx, "fetch_metrics_range", s.cfg.MetricsTable, map[string][]string{
		"metric_date": {"gte." + since.String()},
		"order":       {"metric_date.desc"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics since %s: %w", since, err)
	}
	return rows, nil
}

func (s *RESTStore) FetchBaseline(ctx context.Context, name string) (*models.BaselineSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PointTimeout)
	defer cancel()

	var rows []*models.BaselineSnapshot
	err := s.get(ctx, "fetch_baseline", s.cfg.BaselinesTable, map[string][]string{
		"baseline_name": {"eq." + name},
		"limit":         {"1"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch baseline %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *RESTStore) WriteAlert(ctx context.Context, alert *models.Alert) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PointTimeout)
	defer cancel()

	headers := s.headers()
	headers["Content-Type"] = "application/json"
	headers["Prefer"] = "return=representation"

	start := time.Now()
	var inserted []struct {
		ID string `json:"id"`
	}
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     s.cfg.BaseURL + "/rest/v1/" + s.cfg.AlertsTable,
		Headers: headers,
		Body:    alert,
	}, &inserted)
	s.observe("write_alert", start)
	if err != nil {
		return "", fmt.Errorf("write alert: %w", err)
	}
	if len(inserted) == 0 {
		return "", fmt.Errorf("write alert: store returned no row")
	}
	return inserted[0].ID, nil
}

func (s *RESTStore) FetchAlerts(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WindowTimeout)
	defer cancel()

	params := map[string][]string{
		"order": {"created_at.desc"},
	}
	if filter.Status != "" {
		params["status"] = []string{"eq." + filter.Status}
	}
	if !filter.Since.IsZero() {
		params["metric_date"] = []string{"gte." + filter.Since.String()}
	}
	if filter.Limit > 0 {
		params["limit"] = []string{strconv.Itoa(filter.Limit)}
	}

	var rows []*models.Alert
	if err := s.get(ctx, "fetch_alerts", s.cfg.AlertsTable, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}
	return rows, nil
}

func (s *RESTStore) get(ctx context.Context, op, table string, params map[string][]string, dest interface{}) error {
	start := time.Now()
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         s.cfg.BaseURL + "/rest/v1/" + table,
		Headers:     s.headers(),
		QueryParams: params,
	}, dest)
	s.observe(op, start)
	if err != nil {
		s.l.Debug("store read failed",
			applogger.String("op", op),
			applogger.String("table", table),
			applogger.Error(err),
		)
	}
	return err
}

func (s *RESTStore) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if s.cfg.APIKey != "" {
		h["apikey"] = s.cfg.APIKey
		h["Authorization"] = "Bearer " + s.cfg.APIKey
	}
	return h
}

func (s *RESTStore) observe(op string, start time.Time) {
	if s.rec != nil {
		s.rec.RecordStoreLatency(op, time.Since(start).Seconds())
	}
}

var (
	_ domrepo.MetricSource = (*RESTStore)(nil)
	_ domrepo.AlertSink    = (*RESTStore)(nil)
)

package di

import (
	"context"
	"fmt"
	"time"

	"DriftWatch/internal/domain/models"
	"DriftWatch/internal/domain/repository"
	"DriftWatch/internal/handler/api"
	internalrepo "DriftWatch/internal/repository"
	icache "DriftWatch/internal/service/cache"
	"DriftWatch/internal/services/drift"
	"DriftWatch/internal/usecase"
	pkgch "DriftWatch/pkg/clickhouse"
	"DriftWatch/pkg/config"
	xhttp "DriftWatch/pkg/http"
	pkgkafka "DriftWatch/pkg/kafka"
	applogger "DriftWatch/pkg/logger"
	"DriftWatch/pkg/metrics"
	"DriftWatch/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// schema. Returns nil when the store backend is not ClickHouse.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Store.Backend != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	db := cfg.ClickHouse.Database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.daily_metrics (
			metric_date Date,
			total_events Int64, successful_events Int64, failed_events Int64,
			fallback_events Int64, duplicate_events Int64,
			fallback_rate Float64, error_rate Float64, duplicate_rate Float64,
			latency_p50 Float64, latency_p95 Float64, latency_p99 Float64,
			health_score Float64
		) ENGINE=ReplacingMergeTree ORDER BY metric_date`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.metric_baselines (
			baseline_name String, window_days Int32,
			fallback_rate Float64, error_rate Float64, duplicate_rate Float64,
			latency_p50 Float64, latency_p95 Float64, latency_p99 Float64,
			valid_until Nullable(DateTime)
		) ENGINE=ReplacingMergeTree ORDER BY baseline_name`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.drift_alerts (
			id String, alert_type String, severity String, metric_name String,
			current_value Float64, baseline_value Float64,
			deviation_ratio Float64, baseline_was_zero Bool,
			threshold_low Float64, threshold_medium Float64, threshold_high Float64,
			metric_date Date, comparison_window_days Int32,
			affected_model String, affected_backend String, affected_agent String,
			context_data String, status String, created_at DateTime
		) ENGINE=MergeTree ORDER BY (created_at, id)`, db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer for the alert topic.
// Returns nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.AlertTopic == "" {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideStore selects the storage backend from config.
func ProvideStore(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger, rec repository.Metrics) (repository.Store, error) {
	switch cfg.Store.Backend {
	case "clickhouse":
		if chClient == nil {
			return nil, fmt.Errorf("store backend clickhouse requires a client")
		}
		s := internalrepo.NewCHStore(chClient, cfg.ClickHouse.Database)
		s.SetLogger(l)
		s.SetMetrics(rec)
		return s, nil
	case "rest":
		s := internalrepo.NewRESTStore(internalrepo.RESTStoreConfig{
			BaseURL:        cfg.Store.REST.BaseURL,
			APIKey:         cfg.Store.REST.APIKey,
			PointTimeout:   cfg.PointTimeout(),
			WindowTimeout:  cfg.WindowTimeout(),
			MetricsTable:   cfg.Store.REST.MetricsTable,
			BaselinesTable: cfg.Store.REST.BaselinesTable,
			AlertsTable:    cfg.Store.REST.AlertsTable,
		})
		s.SetLogger(l)
		s.SetMetrics(rec)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// ProvideMetricSource narrows the store for consumers that only read.
func ProvideMetricSource(s repository.Store) repository.MetricSource { return s }

// ProvideAlertSink narrows the store for consumers that only write alerts.
func ProvideAlertSink(s repository.Store) repository.AlertSink { return s }

// ProvideDetector builds the detector from configured thresholds, falling
// back to the defaults when none are set.
func ProvideDetector(cfg *config.Config, l *applogger.Logger) *drift.Detector {
	thresholds := models.DefaultThresholds()
	t := cfg.Monitoring.Thresholds
	if t.Low > 0 && t.Medium > 0 && t.High > 0 {
		thresholds = models.ThresholdConfig{Low: t.Low, Medium: t.Medium, High: t.High}
	}
	d := drift.NewDetector(thresholds)
	d.SetLogger(l)
	return d
}

// ProvideAlertHub creates the websocket alert feed.
func ProvideAlertHub(l *applogger.Logger) *api.AlertHub {
	return api.NewAlertHub(l)
}

// ProvideMonitor wires the check use case with its publishers.
func ProvideMonitor(
	source repository.MetricSource,
	sink repository.AlertSink,
	detector *drift.Detector,
	cfg *config.Config,
	l *applogger.Logger,
	rec repository.Metrics,
	producer *pkgkafka.Producer,
	hub *api.AlertHub,
) *usecase.Monitor {
	m := usecase.NewMonitor(source, sink, detector, cfg.BaselineName())
	m.SetLogger(l)
	m.SetMetrics(rec)
	if producer != nil {
		m.AddPublisher(internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic))
	}
	m.AddPublisher(hub)
	return m
}

// ProvideSummary wires the dashboard use case.
func ProvideSummary(source repository.MetricSource, sink repository.AlertSink, cfg *config.Config, l *applogger.Logger) *usecase.Summary {
	s := usecase.NewSummary(source, sink, cfg.BaselineName())
	s.SetLogger(l)
	return s
}

// ProvideSummaryCache selects the dashboard response cache.
func ProvideSummaryCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideHandler assembles the HTTP surface.
func ProvideHandler(
	l *applogger.Logger,
	monitor *usecase.Monitor,
	summary *usecase.Summary,
	cache icache.BytesCache,
	hub *api.AlertHub,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewMonitorHandler(l, monitor, summary)
	h.SetCache(cache, cfg.Cache.SummaryTTL)
	h.SetHub(hub)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	cache icache.BytesCache,
	hub *api.AlertHub,
) *server.App {
	app := server.New(cfg, l, handler, chClient, producer)
	if c, ok := cache.(server.Closer); ok {
		app.AddCloser(c)
	}
	app.AddCloser(closerFunc(func() error { hub.Close(); return nil }))
	return app
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	pkgch "DriftWatch/pkg/clickhouse"
	"DriftWatch/pkg/config"
	xhttp "DriftWatch/pkg/http"
	pkgkafka "DriftWatch/pkg/kafka"
	applogger "DriftWatch/pkg/logger"
)

// Closer is an optional teardown hook owned by the app.
type Closer interface {
	Close() error
}

// App encapsulates the application lifecycle: the HTTP server plus the
// infrastructure clients that need an orderly shutdown.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server

	chClient *pkgch.Client
	producer *pkgkafka.Producer
	closers  []Closer
}

// New creates the App. chClient and producer may be nil when the
// corresponding backend is not configured.
func New(cfg *config.Config, logger *applogger.Logger, handler xhttp.Handler, chClient *pkgch.Client, producer *pkgkafka.Producer) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		httpHandler: handler,
		chClient:    chClient,
		producer:    producer,
	}
}

// AddCloser registers extra resources to close on shutdown.
func (a *App) AddCloser(c Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestLogger(a.logger),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("store_backend", a.cfg.Store.Backend),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("resource close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

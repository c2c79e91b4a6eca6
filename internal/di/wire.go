//go:build wireinject
// +build wireinject

package di

import (
	"DriftWatch/pkg/config"
	"DriftWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Storage
		ProvideStore,
		ProvideMetricSource,
		ProvideAlertSink,

		// Core
		ProvideDetector,
		ProvideAlertHub,
		ProvideMonitor,
		ProvideSummary,
		ProvideSummaryCache,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "driftwatch",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of monitoring API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driftwatch",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by monitoring API endpoint",
		},
		[]string{"endpoint"},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "driftwatch",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected alert feed clients",
		},
	)

	WSBroadcasts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftwatch",
			Subsystem: "ws",
			Name:      "broadcasts_total",
			Help:      "Alert events broadcast to the feed",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, WSClients, WSBroadcasts)
	})
}

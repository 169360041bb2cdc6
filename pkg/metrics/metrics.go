package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	// Analysis pipeline metrics
	AnalysesTotal       *prometheus.CounterVec
	FeatureRejectsTotal prometheus.Counter
	BlendTotal          *prometheus.CounterVec

	// Forecasting metrics
	ForecastsTotal *prometheus.CounterVec

	// Messaging metrics
	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSClientsActive prometheus.Gauge
)

// Init initializes all metrics and registers them with Prometheus
func Init(logger *logrus.Logger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		AnalysesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voicewell_analyses_total",
				Help: "Total number of recordings analyzed",
			},
			[]string{"result"},
		)

		FeatureRejectsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "voicewell_feature_rejects_total",
				Help: "Total number of feature vectors rejected by validation",
			},
		)

		BlendTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voicewell_blend_total",
				Help: "Total number of hybrid blends by semantic signal variant",
			},
			[]string{"signal"},
		)

		ForecastsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voicewell_forecasts_total",
				Help: "Total number of burnout forecasts by resulting risk level",
			},
			[]string{"risk_level"},
		)

		EventsPublished = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "voicewell_amqp_published_total",
				Help: "Total number of analysis events published to AMQP",
			},
		)

		EventPublishErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "voicewell_amqp_publish_errors_total",
				Help: "Total number of failed AMQP publishes",
			},
		)

		RequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voicewell_http_request_duration_seconds",
				Help:    "Latency of HTTP API requests",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"path", "method"},
		)

		WSClientsActive = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "voicewell_ws_clients",
				Help: "Number of connected WebSocket clients",
			},
		)

		registry.MustRegister(
			AnalysesTotal,
			FeatureRejectsTotal,
			BlendTotal,
			ForecastsTotal,
			EventsPublished,
			EventPublishErrors,
			RequestDuration,
			WSClientsActive,
		)

		logger.Info("Prometheus metrics initialized")
	})
}

// GetRegistry returns the metrics registry, or nil if Init has not run
func GetRegistry() *prometheus.Registry {
	return registry
}

// ObserveRequest records one HTTP request observation
func ObserveRequest(path, method string, start time.Time) {
	if RequestDuration != nil {
		RequestDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
	}
}

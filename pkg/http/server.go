package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"voicewell-server/pkg/biomarker"
	"voicewell-server/pkg/database"
	"voicewell-server/pkg/forecast"
	"voicewell-server/pkg/messaging"
	"voicewell-server/pkg/metrics"
	"voicewell-server/pkg/scoring"
	"voicewell-server/pkg/semantic"
	"voicewell-server/pkg/version"
)

// Config holds HTTP server configuration
type Config struct {
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	EnableMetrics bool
}

// DefaultConfig returns a usable server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:          8080,
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  10 * time.Second,
		EnableMetrics: true,
	}
}

// AnalysisStore is the persistence surface the handlers need
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, rec database.AnalysisRecord) error
	TrendWindow(ctx context.Context, userID string, days int) ([]forecast.TrendDataPoint, error)
	Ping(ctx context.Context) error
}

// EventPublisher is the messaging surface the handlers need
type EventPublisher interface {
	PublishAnalysis(event messaging.AnalysisEvent) error
	IsConnected() bool
}

// Dependencies wires the engine and infrastructure into the server
type Dependencies struct {
	Thresholds biomarker.ThresholdConfig
	Classifier *biomarker.Classifier
	Inferencer *semantic.TextInferencer
	Blender    *scoring.Blender
	Forecaster *forecast.Forecaster

	Store     AnalysisStore
	Publisher EventPublisher // nil when messaging is disabled

	DefaultTrendDays int
	MaxTrendDays     int
}

// Server is the HTTP API for the biomarker engine
type Server struct {
	config     *Config
	logger     *logrus.Logger
	httpServer *http.Server
	mux        *http.ServeMux
	deps       Dependencies
	hub        *AnalysisHub
	startTime  time.Time
}

// NewServer creates the HTTP server and registers all routes
func NewServer(logger *logrus.Logger, config *Config, deps Dependencies, hub *AnalysisHub) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	server := &Server{
		config:    config,
		logger:    logger,
		deps:      deps,
		hub:       hub,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	server.mux = mux

	addServerHeader := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Server", version.ServerHeader())
			next(w, r)
		}
	}

	mux.HandleFunc("/health", addServerHeader(server.HealthHandler))
	mux.HandleFunc("/health/live", addServerHeader(server.LivenessHandler))
	mux.HandleFunc("/health/ready", addServerHeader(server.ReadinessHandler))

	mux.HandleFunc("/api/v1/analyses", addServerHeader(server.timed("/api/v1/analyses", server.AnalysesHandler)))
	mux.HandleFunc("/api/v1/burnout", addServerHeader(server.timed("/api/v1/burnout", server.BurnoutHandler)))
	mux.HandleFunc("/api/v1/trend", addServerHeader(server.timed("/api/v1/trend", server.TrendHandler)))

	if hub != nil {
		mux.HandleFunc("/ws/analyses", server.ServeWS)
	}

	if config.EnableMetrics {
		if registry := metrics.GetRegistry(); registry != nil {
			promHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
			mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Server", version.ServerHeader())
				promHandler.ServeHTTP(w, r)
			})
			logger.Info("Prometheus metrics endpoint enabled at /metrics")
		}
	} else {
		logger.Info("Metrics endpoint disabled")
	}

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server
}

// timed wraps a handler with request duration observation
func (s *Server) timed(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		metrics.ObserveRequest(path, r.Method, start)
	}
}

// Start begins serving and blocks until the server stops
func (s *Server) Start() error {
	s.logger.WithField("port", s.config.Port).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

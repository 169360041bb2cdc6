package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"voicewell-server/pkg/biomarker"
	"voicewell-server/pkg/config"
	"voicewell-server/pkg/database"
	"voicewell-server/pkg/forecast"
	http_server "voicewell-server/pkg/http"
	"voicewell-server/pkg/messaging"
	"voicewell-server/pkg/metrics"
	"voicewell-server/pkg/scoring"
	"voicewell-server/pkg/semantic"
	"voicewell-server/pkg/version"
)

var logger = logrus.New()

func main() {
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	cfg.ApplyLogging(logger)

	logger.WithField("version", version.Version).Info("Starting voicewell server")

	metrics.Init(logger)

	store, err := database.New(logger, cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open analysis store")
	}
	defer store.Close()

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	thresholds := biomarker.DefaultThresholds()

	deps := http_server.Dependencies{
		Thresholds:       thresholds,
		Classifier:       biomarker.NewClassifier(logger, thresholds),
		Inferencer:       semantic.NewTextInferencer(logger),
		Blender:          scoring.NewBlender(logger, thresholds.Blend),
		Forecaster:       forecast.NewForecaster(logger, thresholds.Risk),
		Store:            store,
		DefaultTrendDays: cfg.Engine.TrendWindowDays,
		MaxTrendDays:     cfg.Engine.MaxTrendWindowDays,
	}

	// Messaging is optional; the server degrades to local-only scoring
	// when AMQP is not configured or unreachable.
	if cfg.Messaging.URL != "" {
		publisher := messaging.NewScorePublisher(logger, messaging.PublisherConfig{
			URL:       cfg.Messaging.URL,
			QueueName: cfg.Messaging.QueueName,
		})
		if err := publisher.Connect(); err != nil {
			logger.WithError(err).Warn("AMQP unavailable, continuing without event publishing")
		}
		defer publisher.Disconnect()
		deps.Publisher = publisher
	} else {
		logger.Info("AMQP_URL not set, event publishing disabled")
	}

	hub := http_server.NewAnalysisHub(logger)
	go hub.Run(rootCtx)

	serverConfig := &http_server.Config{
		Port:          cfg.HTTP.Port,
		ReadTimeout:   cfg.HTTP.ReadTimeout,
		WriteTimeout:  cfg.HTTP.WriteTimeout,
		EnableMetrics: cfg.HTTP.EnableMetrics,
	}
	server := http_server.NewServer(logger, serverConfig, deps, hub)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("HTTP server failed")
		}
	}

	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}

	logger.Info("Server stopped")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aegisshield/fraud-graph-engine/internal/config"
	"github.com/aegisshield/fraud-graph-engine/internal/engine"
	"github.com/aegisshield/fraud-graph-engine/internal/events"
	"github.com/aegisshield/fraud-graph-engine/internal/httpapi"
	"github.com/aegisshield/fraud-graph-engine/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fraud graph engine exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	metrics.NewCollector(registry)

	fe, err := engine.NewFraudEngine(cfg.Detection, logger)
	if err != nil {
		return fmt.Errorf("construct fraud engine: %w", err)
	}

	var publisher httpapi.CompletionPublisher
	if cfg.Kafka.Enabled {
		brokers := strings.Split(cfg.Kafka.Brokers, ",")
		producer, err := events.NewProducer(brokers, cfg.Kafka.AnalysisCompletedTopic, logger)
		if err != nil {
			return fmt.Errorf("construct kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = producer
	}

	apiServer := httpapi.NewServer(fe, logger, publisher)

	mux := http.NewServeMux()
	mux.Handle("/", apiServer.Router())
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/timezone-region-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/timezone-region-service/internal/adapter/kafka"
	"github.com/couchcryptid/timezone-region-service/internal/config"
	"github.com/couchcryptid/timezone-region-service/internal/domain"
	"github.com/couchcryptid/timezone-region-service/internal/lookup"
	"github.com/couchcryptid/timezone-region-service/internal/observability"
	"github.com/couchcryptid/timezone-region-service/internal/regionstore"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := regionstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open region store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	metrics.RegionsLoaded.WithLabelValues(string(domain.TierShape)).Set(float64(store.ShapeCount))
	metrics.RegionsLoaded.WithLabelValues(string(domain.TierBand)).Set(float64(store.BandCount))

	settings := cfg.Settings()
	if _, err := regionstore.WarnCoverage(ctx, store.Store, settings, logger); err != nil {
		logger.Warn("band coverage check failed", "error", err)
	}

	// Resolution events are feature-flagged via KAFKA_ENABLED.
	var (
		publisher    lookup.EventPublisher
		kafkaPublish *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		kafkaPublish = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublish
		logger.Info("resolution events enabled", "topic", cfg.KafkaResolutionTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("resolution events disabled")
	}

	svc := lookup.New(store.Store, store.Store, settings, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := svc.Drain(shutdownCtx); err != nil {
		logger.Error("resolution events still in flight", "error", err)
	}
	if kafkaPublish != nil {
		if err := kafkaPublish.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("region store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

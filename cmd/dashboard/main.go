package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/config"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/dataset"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/observability"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/pipeline"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/render"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRateLimit, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled",
			"cache_size", cfg.MapboxCacheSize,
			"timeout", cfg.MapboxTimeout,
			"rate_limit", cfg.MapboxRateLimit,
		)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := dataset.NewStoreFromConfig(cfg, geocoder, logger, metrics)
	ds, err := store.Load(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	brands, err := search.NewBrandIndex(ds, logger)
	if err != nil {
		logger.Error("failed to build brand index", "error", err)
		os.Exit(1)
	}

	var publisher pipeline.ReportPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("selection reports enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
	}

	storeMap := render.NewStoreMapWriter(cfg.StoreMapPath, cfg.MapZoom)
	dash := pipeline.New(ds, clockwork.NewRealClock(), cfg.TopN, storeMap, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.CORSAllowedOrigins, httpadapter.Deps{
		Dashboard: dash,
		Brands:    brands,
		StoreMap:  storeMap,
		Ready:     store,
	}, logger)

	// Start HTTP server.
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
	if err := brands.Close(); err != nil {
		logger.Error("brand index close error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

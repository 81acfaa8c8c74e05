package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/bridge"
	"github.com/feral-file/ff-market-sync/internal/config"
	"github.com/feral-file/ff-market-sync/internal/dedup"
	"github.com/feral-file/ff-market-sync/internal/dispatcher"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/providers/marketplace"
	"github.com/feral-file/ff-market-sync/internal/rebuild"
	"github.com/feral-file/ff-market-sync/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSyncWorkerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sync-worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sync Worker")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	jcsAdapter := adapter.NewJCS()
	natsJS := adapter.NewNatsJetStream()
	httpClient := adapter.NewHTTPClient(adapter.HTTPClientOptions{
		Timeout:        cfg.Services.Timeout,
		MaxElapsedTime: cfg.Services.MaxRetryDelay,
		Headers:        map[string]string{"X-API-Key": cfg.Services.APIKey},
	})

	// Initialize domain service clients
	services := rebuild.Services{
		Tokens:   marketplace.NewTokenService(httpClient, cfg.Services.TokenURL),
		Sales:    marketplace.NewSaleService(httpClient, cfg.Services.SaleURL),
		Auctions: marketplace.NewAuctionService(httpClient, cfg.Services.AuctionURL),
		Offers:   marketplace.NewOfferService(httpClient, cfg.Services.OfferURL),
		Users:    marketplace.NewUserService(httpClient, cfg.Services.UserURL),
		Assets:   marketplace.NewAssetService(httpClient, cfg.Services.AssetURL),
		Rates:    marketplace.NewRateSource(httpClient, cfg.Services.RateURL),
	}

	// Wire the rebuild pipeline
	rebuilder := rebuild.New(
		rebuild.Config{
			GraveyardAddress: cfg.Sync.GraveyardAddress,
			FetchConcurrency: cfg.Worker.WorkerPoolSize * 4,
		},
		dataStore,
		services,
		clock,
	)
	middleware := dedup.New(
		dedup.Config{
			Window:     cfg.Sync.DedupeWindow,
			MaxRetries: cfg.Sync.RetryMaxAttempts,
			BaseDelay:  cfg.Sync.RetryBaseDelay,
		},
		clock,
		jcsAdapter,
	)
	d := dispatcher.New(rebuilder, services.Sales, services.Auctions, services.Users, middleware)

	// Create bridge
	notificationBridge, err := bridge.NewBridge(
		bridge.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			ConsumerName:    cfg.NATS.ConsumerName,
			SubjectPrefix:   cfg.NATS.SubjectPrefix,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
			AckWaitTimeout:  cfg.NATS.AckWait,
			MaxDeliver:      cfg.NATS.MaxDeliver,
			WorkerPoolSize:  cfg.Worker.WorkerPoolSize,
			WorkerQueueSize: cfg.Worker.WorkerQueueSize,
		},
		natsJS,
		d,
		jsonAdapter,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create notification bridge", zap.Error(err))
	}
	defer notificationBridge.Close()
	logger.InfoCtx(ctx, "Notification bridge created",
		zap.String("stream", cfg.NATS.StreamName),
		zap.String("consumer", cfg.NATS.ConsumerName),
		zap.Duration("dedupe_window", cfg.Sync.DedupeWindow),
	)

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for bridge errors
	errCh := make(chan error, 1)
	doneCh := make(chan struct{})

	// Start the bridge
	go func() {
		defer close(doneCh)
		if err := notificationBridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "bridge"))
	}
	cancel()

	// Let in-flight rebuilds finish
	select {
	case <-doneCh:
	case <-time.After(10 * time.Second):
		logger.Warn("Timed out waiting for in-flight notifications")
	}

	logger.Info("Sync Worker stopped")
}

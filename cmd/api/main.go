package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"virtual-wallet-service/config"
	httpHandler "virtual-wallet-service/internal/adapter/http/handler"
	pgStorage "virtual-wallet-service/internal/adapter/storage/postgres"
	redisStorage "virtual-wallet-service/internal/adapter/storage/redis"
	"virtual-wallet-service/internal/core/ports"
	"virtual-wallet-service/internal/service"
	"virtual-wallet-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting virtual wallet service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize repositories
	assetRepo := pgStorage.NewAssetRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	healthCheckers := []ports.HealthChecker{pgStorage.NewHealthCheck(pool)}

	// Optional Redis replay cache. Without it, all idempotency guarantees
	// come from the database alone.
	var replayCache ports.ReplayCache
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		replayCache = redisStorage.NewReplayCache(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected")
	}

	// Initialize business services
	txSvc := service.NewTransactionService(
		assetRepo,
		walletRepo,
		ledgerRepo,
		idempotencyRepo,
		replayCache,
		transactor,
		log,
	)
	reportingSvc := service.NewReportingService(assetRepo, walletRepo, ledgerRepo)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TransactionSvc: txSvc,
		ReportingSvc:   reportingSvc,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

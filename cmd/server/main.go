package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/epicast-dev/epicast-go/internal/api"
	"github.com/epicast-dev/epicast-go/internal/api/handlers"
	"github.com/epicast-dev/epicast-go/internal/cache"
	"github.com/epicast-dev/epicast-go/internal/config"
	"github.com/epicast-dev/epicast-go/internal/database"
	"github.com/epicast-dev/epicast-go/internal/services"
	"github.com/epicast-dev/epicast-go/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

// run orchestrates the startup sequence: configuration, logging, telemetry,
// storage, the region collector and the HTTP server, then a signal-driven
// graceful shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)

	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	cacheTTL, _ := time.ParseDuration(cfg.Collector.CacheTTL)
	regionCache := cache.NewRedisRegionCache(redisClient.Client, cacheTTL)
	regionRepo := database.NewRegionRepository(db.Pool)

	projectionService, err := services.NewProjectionService(cfg.Epidemiology, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize projection engine: %w", err)
	}

	var collector *services.RegionCollector
	if cfg.Collector.Enabled {
		collector = services.NewRegionCollector(regionRepo, regionCache, cfg.Collector, logger)
		if err := collector.Start(); err != nil {
			return fmt.Errorf("failed to start region collector: %w", err)
		}
		defer collector.Stop()
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	fetchInterval, _ := time.ParseDuration(cfg.Collector.FetchInterval)
	api.SetupRoutes(router, cfg.Telemetry.ServiceName, logger, api.Handlers{
		Projection: handlers.NewProjectionHandler(projectionService, regionRepo, regionCache, logger),
		Regions:    handlers.NewRegionsHandler(regionRepo, regionCache, logger),
		// Data is stale once two fetch cycles have passed without a refresh.
		Health: handlers.NewHealthHandler(db, redisClient, regionCache, 2*fetchInterval),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Environment != "development" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

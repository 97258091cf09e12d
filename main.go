package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robot-config-studio/config"
	"robot-config-studio/internal/api"
	"robot-config-studio/internal/audit"
	"robot-config-studio/internal/cache"
	"robot-config-studio/internal/events"
	"robot-config-studio/internal/logging"
	"robot-config-studio/internal/snapshot"
	"robot-config-studio/internal/studio"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize logging
	logger := logging.New(&logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		Component:  "main",
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})
	logging.SetDefault(logger)
	logger.Info("robot config studio starting")

	// Event bus
	eventBus := events.NewEventBus()

	// Snapshot store (optional)
	var store *snapshot.Store
	if cfg.DatabaseConfig.Enabled {
		db, err := snapshot.NewDB(snapshot.Config{
			Host:     cfg.DatabaseConfig.Host,
			Port:     cfg.DatabaseConfig.Port,
			User:     cfg.DatabaseConfig.User,
			Password: cfg.DatabaseConfig.Password,
			Database: cfg.DatabaseConfig.Database,
			SSLMode:  cfg.DatabaseConfig.SSLMode,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.RunMigrations(ctx); err != nil {
			cancel()
			logger.WithError(err).Fatal("failed to run migrations")
		}
		cancel()
		store = snapshot.NewStore(db)
	} else {
		logger.Warn("database disabled; snapshots and change history are unavailable")
	}

	// Redis cache (optional, degrades gracefully)
	var cacheService *cache.CacheService
	if cfg.RedisConfig.Enabled {
		cacheService, err = cache.NewCacheService(cfg.RedisConfig)
		if err != nil {
			logger.WithError(err).Warn("cache unavailable; continuing without it")
			cacheService = nil
		} else {
			defer cacheService.Close()
		}
	}
	configCache := cache.NewConfigCache(cacheService)

	// Audit trail
	auditFile, err := os.OpenFile(cfg.StudioConfig.AuditLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		logger.WithError(err).Fatal("failed to open audit log")
	}
	defer auditFile.Close()
	trail := audit.NewTrail(auditFile)

	// Orchestration service with the default profile preloaded
	service := studio.NewService(configCache, store, trail, eventBus, logger)
	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := service.LoadDefaultProfile(startCtx, cfg.StudioConfig.DefaultProfile); err != nil {
		startCancel()
		logger.WithError(err).Fatal("failed to load default profile")
	}
	startCancel()

	// HTTP API server
	server := api.NewServer(api.ServerConfig{
		Port:           cfg.ServerConfig.Port,
		Host:           cfg.ServerConfig.Host,
		AllowedOrigins: cfg.ServerConfig.AllowedOrigins,
		ProductionMode: os.Getenv("GIN_MODE") == "release",
	}, service, eventBus, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("API server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
	logger.Info("robot config studio stopped")
}

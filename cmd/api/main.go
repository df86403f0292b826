package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/nocapcooking/backend/config"
	"github.com/pageza/nocapcooking/backend/internal/database"
	"github.com/pageza/nocapcooking/backend/internal/logging"
	"github.com/pageza/nocapcooking/backend/internal/server"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment == config.Development,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// The filter rate limit fails open, so a missing redis only disables it.
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(context.Background(), cfg, logger)
		if err != nil {
			logger.Warn("redis unavailable, filter rate limit disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Create and start server
	srv := server.New(cfg, db, redisClient, logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server stopped")
}

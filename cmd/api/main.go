package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Redis only backs rate limiting, so the API runs without it
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		if !errors.Is(err, database.ErrRedisNotConfigured) {
			logging.Warn().Err(err).Msg("Failed to connect to Redis, rate limiting disabled")
		}
		redisClient = nil
	}

	ctx := context.Background()
	srv, err := server.New(ctx, cfg, db, redisClient)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create server")
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Error().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("Received signal")
	}

	logging.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server shutdown error")
	}
	logging.Info().Msg("Server stopped")
}

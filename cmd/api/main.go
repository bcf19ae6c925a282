package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhakal07/ai-health-agent/internal/config"
	"github.com/dhakal07/ai-health-agent/internal/observability"
	"github.com/dhakal07/ai-health-agent/internal/server"
	"github.com/dhakal07/ai-health-agent/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("mongo_db", cfg.MongoDB).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Health Agent API starting")

	// Connect persistence
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := store.Connect(connectCtx, cfg.MongoURI)
	connectCancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn().Err(err).Msg("MongoDB disconnect failed")
		}
	}()

	sessions := store.NewSessionRepo(client, cfg.MongoDB)
	answers := store.NewAnswerRepo(client, cfg.MongoDB)

	// Session cache is optional; nil when no Redis address is configured.
	cache := store.NewSessionCache(cfg.RedisAddr, cfg.RedisPassword)
	if cache != nil {
		defer cache.Close()
		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("Session cache enabled")
	}

	// Readiness checks expose dependency state without gating requests.
	checks := map[string]observability.HealthCheckFunc{
		"mongodb": func(ctx context.Context) (bool, error) {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.HealthDeadline())
			defer cancel()
			if err := client.Ping(pingCtx, nil); err != nil {
				return false, err
			}
			return true, nil
		},
	}
	if cache != nil {
		checks["redis"] = func(ctx context.Context) (bool, error) {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.HealthDeadline())
			defer cancel()
			if err := cache.Ping(pingCtx); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	handler := server.NewHandler(sessions, answers, cache)
	router := server.NewRouter(cfg, handler, checks)

	if cfg.MetricsEnabled {
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}

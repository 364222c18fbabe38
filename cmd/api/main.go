package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/amqp"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/auth"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/config"
	apphttp "github.com/alessandrolsdev/controle-financeiro-api/internal/http"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/service"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	// The AMQP client only matters for deferred recompute, the sync
	// strategy never publishes.
	var publisher service.RecalcPublisher
	if cfg.RecomputeStrategy == config.RecomputeDeferred {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
	}

	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	recompute := service.NewRecomputeStrategy(cfg, repo, publisher, logger)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Users:                service.NewUserService(repo, hasher, tokens, logger),
		Categories:           service.NewCategoryService(repo, logger),
		Transactions:         service.NewTransactionService(repo, recompute, cfg.DefaultPageSize, logger),
		Reports:              service.NewReportService(repo, logger),
		Tokens:               tokens,
		AllowedOriginPattern: cfg.AllowedOriginPattern,
		Logger:               logger,
	})
	if err != nil {
		logger.Error("Failed to build server", log.FieldError, err)
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting API server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"recompute_strategy", cfg.RecomputeStrategy)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}

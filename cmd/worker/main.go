package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/amqp"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/config"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL must be set for the worker")
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handle := func(msg *amqp.RecalcMessage) error {
		return recalcDashboard(ctx, repo, logger, msg)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeRecalc(gctx, handle)
	})
	g.Go(func() error {
		// Heartbeat so a silent queue is distinguishable from a dead
		// worker in the logs.
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				logger.Info("Worker alive", "queue", cfg.AMQPQueue)
			}
		}
	})

	logger.Info("Worker started",
		log.FieldOperation, log.OpStartup,
		"queue", cfg.AMQPQueue,
		"exchange", cfg.AMQPExchange)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}

// recalcDashboard recomputes the aggregates for one user. Messages without
// a period fall back to the trailing 30 days.
func recalcDashboard(ctx context.Context, repo *storage.Repository, logger *log.Logger, msg *amqp.RecalcMessage) error {
	p := msg.Period()
	if p.Start.IsZero() || p.End.IsZero() {
		now := time.Now().UTC()
		p = core.NewPeriod(now.AddDate(0, 0, -30), now)
	}

	data, err := repo.DashboardData(ctx, msg.UserID, p)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Dashboard recomputed",
		log.FieldOperation, log.OpRecompute,
		log.FieldUserID, msg.UserID,
		log.FieldStartDate, p.Start.Format("2006-01-02"),
		log.FieldEndDate, p.End.Format("2006-01-02"),
		"net", data.Net.String())
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/amqp"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/config"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

// RecalcPublisher publishes recompute requests to the message broker.
type RecalcPublisher interface {
	PublishRecalc(ctx context.Context, msg *amqp.RecalcMessage) error
}

// RecomputeStrategy decides how dashboard aggregates are refreshed after a
// transaction changes. The sync strategy computes in-request and returns the
// fresh data. The deferred strategy hands the work to the worker and returns
// nil, callers then respond without a dashboard payload.
type RecomputeStrategy interface {
	Recompute(ctx context.Context, userID int64, p core.Period) (*core.DashboardData, error)
}

type SyncRecompute struct {
	repo *storage.Repository
}

func NewSyncRecompute(repo *storage.Repository) *SyncRecompute {
	return &SyncRecompute{repo: repo}
}

func (s *SyncRecompute) Recompute(ctx context.Context, userID int64, p core.Period) (*core.DashboardData, error) {
	data, err := s.repo.DashboardData(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("recompute dashboard: %w", err)
	}
	return data, nil
}

type DeferredRecompute struct {
	publisher RecalcPublisher
	logger    *log.Logger
}

func NewDeferredRecompute(publisher RecalcPublisher, logger *log.Logger) *DeferredRecompute {
	return &DeferredRecompute{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentRecompute),
	}
}

// Recompute publishes a recalc message for the worker. Publish failures are
// logged and swallowed, the transaction write already succeeded and the
// dashboard will self-correct on the next read.
func (d *DeferredRecompute) Recompute(ctx context.Context, userID int64, p core.Period) (*core.DashboardData, error) {
	if d.publisher == nil {
		d.logger.WarnContext(ctx, "AMQP client not available, skipping recalc message",
			log.FieldUserID, userID)
		return nil, nil
	}
	if err := d.publisher.PublishRecalc(ctx, amqp.NewRecalcMessage(userID, p)); err != nil {
		d.logger.ErrorContext(ctx, "Failed to publish recalc message",
			log.FieldUserID, userID,
			log.FieldError, err)
	}
	return nil, nil
}

// NewRecomputeStrategy picks the strategy configured in RECOMPUTE_STRATEGY.
func NewRecomputeStrategy(cfg *config.Config, repo *storage.Repository, publisher RecalcPublisher, logger *log.Logger) RecomputeStrategy {
	if cfg.RecomputeStrategy == config.RecomputeDeferred {
		return NewDeferredRecompute(publisher, logger)
	}
	return NewSyncRecompute(repo)
}

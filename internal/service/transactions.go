package service

import (
	"context"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

// TransactionService owns the write path for transactions. Every mutation
// triggers a dashboard recompute for the period the caller is looking at, so
// the frontend can refresh without a second round trip.
type TransactionService struct {
	repo      *storage.Repository
	recompute RecomputeStrategy
	logger    *log.Logger
	pageSize  int
}

func NewTransactionService(repo *storage.Repository, recompute RecomputeStrategy, pageSize int, logger *log.Logger) *TransactionService {
	return &TransactionService{
		repo:      repo,
		recompute: recompute,
		logger:    logger.WithComponent(log.ComponentService),
		pageSize:  pageSize,
	}
}

// Create stores a transaction for its owner and recomputes the dashboard
// over p. The returned dashboard is nil when recompute runs deferred.
func (s *TransactionService) Create(ctx context.Context, tr *core.Transaction, p core.Period) (*core.DashboardData, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTransaction(ctx, tr); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldTransactionID, tr.ID,
		log.FieldUserID, tr.UserID,
		log.FieldAmountCents, tr.Amount.Cents)
	return s.recompute.Recompute(ctx, tr.UserID, p)
}

// Update replaces a transaction owned by userID. Editing someone else's
// transaction reports core.ErrNotFound, never a permission error.
func (s *TransactionService) Update(ctx context.Context, id, userID int64, tr core.Transaction, p core.Period) (*core.DashboardData, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTransaction(ctx, id, userID, tr); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldTransactionID, id,
		log.FieldUserID, userID)
	return s.recompute.Recompute(ctx, userID, p)
}

// Delete removes a transaction owned by userID.
func (s *TransactionService) Delete(ctx context.Context, id, userID int64, p core.Period) (*core.DashboardData, error) {
	if err := s.repo.DeleteTransaction(ctx, id, userID); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldUserID, userID)
	return s.recompute.Recompute(ctx, userID, p)
}

// List returns the owner's transactions newest first. A limit of zero or
// less falls back to the configured page size.
func (s *TransactionService) List(ctx context.Context, userID int64, skip, limit int) ([]core.Transaction, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	return s.repo.ListTransactions(ctx, userID, skip, limit)
}

// ListByPeriod returns the owner's transactions inside p, both bounds
// counted as whole calendar days.
func (s *TransactionService) ListByPeriod(ctx context.Context, userID int64, p core.Period) ([]core.Transaction, error) {
	return s.repo.ListTransactionsByPeriod(ctx, userID, p)
}

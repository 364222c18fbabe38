package service

import (
	"context"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

// ReportService serves the read-side aggregations.
type ReportService struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewReportService(repo *storage.Repository, logger *log.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentReports),
	}
}

func (s *ReportService) Dashboard(ctx context.Context, userID int64, p core.Period) (*core.DashboardData, error) {
	return s.repo.DashboardData(ctx, userID, p)
}

// Trend buckets the user's totals over time. The "daily" filter buckets by
// hour, anything else by calendar day.
func (s *ReportService) Trend(ctx context.Context, userID int64, p core.Period, filter string) (*core.TrendSeries, error) {
	return s.repo.TrendSeries(ctx, userID, p, filter)
}

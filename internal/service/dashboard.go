package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// summaryWindow bounds the summary aggregation. Three weeks covers the
// this-week/last-week split with a full week of slack.
const summaryWindow = 21 * 24 * time.Hour

// Dashboard bundles the aggregates shown on the account overview.
type Dashboard struct {
	Summary domain.ResponseSummary
	Trend   []domain.TrendPoint
	Recent  []domain.Response
}

// DashboardService computes account-level response aggregates.
type DashboardService interface {
	// Overview returns the summary, daily trend and most recent responses
	// for an account. days controls the trend window.
	Overview(ctx context.Context, accountID uuid.UUID, days int) (*Dashboard, error)
}

type dashboardService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(queries *repository.Queries, logger *slog.Logger) DashboardService {
	return &dashboardService{
		queries: queries,
		logger:  logger,
	}
}

// Overview returns the summary, daily trend and recent responses.
func (s *dashboardService) Overview(ctx context.Context, accountID uuid.UUID, days int) (*Dashboard, error) {
	const op = "DashboardService.Overview"

	if days < 1 || days > 90 {
		days = 7
	}

	now := time.Now().UTC()

	repoResponses, err := s.queries.ListResponsesByAccountSince(ctx, accountID, lookbackStart(days, now))
	if err != nil {
		s.logger.Error("failed to list responses", "error", err, "op", op, "account_id", accountID)
		return nil, domain.Internal(err, op, "Failed to load dashboard")
	}

	repoRecent, err := s.queries.ListRecentResponsesByAccountID(ctx, accountID, 10)
	if err != nil {
		s.logger.Error("failed to list recent responses", "error", err, "op", op, "account_id", accountID)
		return nil, domain.Internal(err, op, "Failed to load dashboard")
	}

	return buildDashboard(repoResponsesToDomain(repoResponses), repoResponsesToDomain(repoRecent), days, now), nil
}

// lookbackStart returns the fetch cutoff: far enough back for the trend
// window, and never less than the summary window.
func lookbackStart(days int, now time.Time) time.Time {
	lookback := time.Duration(days) * 24 * time.Hour
	if lookback < summaryWindow {
		lookback = summaryWindow
	}
	return now.Add(-lookback)
}

// buildDashboard aggregates fetched responses. The trend buckets the full
// window; the summary only counts the trailing summaryWindow so a wide
// trend request does not inflate its totals.
func buildDashboard(responses, recent []domain.Response, days int, now time.Time) *Dashboard {
	cutoff := now.Add(-summaryWindow)
	summaryInput := make([]domain.Response, 0, len(responses))
	for _, r := range responses {
		if !r.SubmittedAt.Before(cutoff) {
			summaryInput = append(summaryInput, r)
		}
	}

	return &Dashboard{
		Summary: domain.CalculateResponseSummary(summaryInput, now),
		Trend:   domain.CalculateResponseTrend(responses, days, now),
		Recent:  recent,
	}
}

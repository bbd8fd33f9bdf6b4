package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// UsageService reports quota consumption against an account's plan.
type UsageService interface {
	// GetUsage returns the account's current consumption and ceilings.
	GetUsage(ctx context.Context, account *domain.Account) (*domain.QuotaUsage, error)
}

type usageService struct {
	queries       *repository.Queries
	logger        *slog.Logger
	countArchived bool
}

// NewUsageService creates a new UsageService. countArchived must match the
// project service so reported usage agrees with what creation enforces.
func NewUsageService(queries *repository.Queries, logger *slog.Logger, countArchived bool) UsageService {
	return &usageService{
		queries:       queries,
		logger:        logger,
		countArchived: countArchived,
	}
}

// GetUsage returns the account's current consumption and ceilings.
func (s *usageService) GetUsage(ctx context.Context, account *domain.Account) (*domain.QuotaUsage, error) {
	const op = "UsageService.GetUsage"

	var projects int64
	var err error
	if s.countArchived {
		projects, err = s.queries.CountProjectsByAccountID(ctx, account.ID)
	} else {
		projects, err = s.queries.CountActiveProjectsByAccountID(ctx, account.ID)
	}
	if err != nil {
		s.logger.Error("failed to count projects", "error", err, "op", op, "account_id", account.ID)
		return nil, domain.Internal(err, op, "Failed to load usage")
	}

	periodStart, periodEnd := domain.MonthBoundaries(time.Now())
	responses, err := s.queries.CountResponsesByAccountSince(ctx, account.ID, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("failed to count responses", "error", err, "op", op, "account_id", account.ID)
		return nil, domain.Internal(err, op, "Failed to load usage")
	}

	limits := domain.ParsePlanLimits(account.Plan)
	return &domain.QuotaUsage{
		Projects:           projects,
		ProjectsLimit:      limits.Projects,
		ResponsesThisMonth: responses,
		ResponsesLimit:     limits.ResponsesPerMonth,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
	}, nil
}

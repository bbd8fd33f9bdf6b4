package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// AccountService resolves accounts and their plan limits.
type AccountService interface {
	// GetForUser returns the user's primary account with its plan loaded.
	GetForUser(ctx context.Context, userID uuid.UUID) (*domain.Account, error)

	// GetWithPlan returns the account with its plan loaded, verifying the
	// user is a member.
	GetWithPlan(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error)

	// Limits returns the parsed plan ceilings for an already-loaded account.
	Limits(account *domain.Account) domain.PlanLimits
}

type accountService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(queries *repository.Queries, logger *slog.Logger) AccountService {
	return &accountService{
		queries: queries,
		logger:  logger,
	}
}

// GetForUser returns the user's primary account with its plan loaded.
func (s *accountService) GetForUser(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	const op = "AccountService.GetForUser"

	repoAccount, err := s.queries.GetPrimaryAccountForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "account", userID.String())
		}
		s.logger.Error("failed to resolve account", "error", err, "op", op, "user_id", userID)
		return nil, domain.Internal(err, op, "Failed to resolve account")
	}

	return s.loadWithPlan(ctx, op, repoAccount.ID)
}

// GetWithPlan returns the account with its plan loaded, verifying membership.
func (s *accountService) GetWithPlan(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	const op = "AccountService.GetWithPlan"

	_, err := s.queries.GetAccountMembership(ctx, accountID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Forbidden(op, "You do not have access to this account")
		}
		s.logger.Error("failed to check membership", "error", err, "op", op, "account_id", accountID)
		return nil, domain.Internal(err, op, "Failed to resolve account")
	}

	return s.loadWithPlan(ctx, op, accountID)
}

// Limits returns the parsed plan ceilings for an already-loaded account.
func (s *accountService) Limits(account *domain.Account) domain.PlanLimits {
	if account == nil {
		return domain.PlanLimits{}
	}
	return domain.ParsePlanLimits(account.Plan)
}

func (s *accountService) loadWithPlan(ctx context.Context, op string, accountID uuid.UUID) (*domain.Account, error) {
	row, err := s.queries.GetAccountWithPlan(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "account", accountID.String())
		}
		s.logger.Error("failed to load account", "error", err, "op", op, "account_id", accountID)
		return nil, domain.Internal(err, op, "Failed to load account")
	}

	account := accountWithPlanToDomain(row)
	return &account, nil
}

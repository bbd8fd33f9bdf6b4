package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// ProjectService defines the interface for project operations.
type ProjectService interface {
	// Create creates a new project, enforcing the account's project ceiling.
	Create(ctx context.Context, account *domain.Account, params domain.CreateProjectParams) (*domain.Project, error)

	// GetByID retrieves a project scoped to the account.
	GetByID(ctx context.Context, id, accountID uuid.UUID) (*domain.Project, error)

	// List retrieves all projects for an account, oldest first.
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Project, error)

	// Update applies a partial update. Archiving sets archived_at,
	// unarchiving clears it.
	Update(ctx context.Context, params domain.UpdateProjectParams) (*domain.Project, error)
}

type projectService struct {
	queries *repository.Queries
	logger  *slog.Logger

	// countArchived controls whether archived projects consume quota.
	countArchived bool
}

// NewProjectService creates a new ProjectService.
func NewProjectService(queries *repository.Queries, logger *slog.Logger, countArchived bool) ProjectService {
	return &projectService{
		queries:       queries,
		logger:        logger,
		countArchived: countArchived,
	}
}

// Create creates a new project for the account. The quota check counts
// first and inserts second; two racing creates can both pass the check.
// Quota here is a product guardrail, not an integrity constraint.
func (s *projectService) Create(ctx context.Context, account *domain.Account, params domain.CreateProjectParams) (*domain.Project, error) {
	const op = "ProjectService.Create"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "Project name is required")
	}
	if len(name) > 200 {
		return nil, domain.NewValidationError(op, "name", "Project name must be 200 characters or fewer")
	}

	count, err := s.countForQuota(ctx, account.ID)
	if err != nil {
		s.logger.Error("failed to count projects", "error", err, "op", op, "account_id", account.ID)
		return nil, domain.Internal(err, op, "Failed to create project")
	}

	limits := domain.ParsePlanLimits(account.Plan)
	if err := domain.AssertProjectsLimit(limits, count); err != nil {
		s.logger.Info("project creation blocked by plan limit",
			"account_id", account.ID, "current", count, "limit", limits.Projects)
		return nil, err
	}

	repoProject, err := s.queries.CreateProject(ctx, repository.CreateProjectParams{
		AccountID:   account.ID,
		Name:        name,
		Description: toNullString(strings.TrimSpace(params.Description)),
	})
	if err != nil {
		s.logger.Error("failed to create project", "error", err, "op", op, "account_id", account.ID)
		return nil, domain.Internal(err, op, "Failed to create project")
	}

	project := repoProjectToDomain(repoProject)
	s.logger.Info("project created", "project_id", project.ID, "account_id", project.AccountID, "name", project.Name)

	return &project, nil
}

// GetByID retrieves a project scoped to the account.
func (s *projectService) GetByID(ctx context.Context, id, accountID uuid.UUID) (*domain.Project, error) {
	const op = "ProjectService.GetByID"

	repoProject, err := s.queries.GetProjectByIDAndAccountID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "project", id.String())
		}
		s.logger.Error("failed to get project", "error", err, "op", op, "project_id", id)
		return nil, domain.Internal(err, op, "Failed to retrieve project")
	}

	project := repoProjectToDomain(repoProject)
	return &project, nil
}

// List retrieves all projects for an account, oldest first.
func (s *projectService) List(ctx context.Context, accountID uuid.UUID) ([]domain.Project, error) {
	const op = "ProjectService.List"

	repoProjects, err := s.queries.ListProjectsByAccountID(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err, "op", op, "account_id", accountID)
		return nil, domain.Internal(err, op, "Failed to list projects")
	}

	projects := make([]domain.Project, len(repoProjects))
	for i, rp := range repoProjects {
		projects[i] = repoProjectToDomain(rp)
	}
	return projects, nil
}

// Update applies a partial update to a project.
func (s *projectService) Update(ctx context.Context, params domain.UpdateProjectParams) (*domain.Project, error) {
	const op = "ProjectService.Update"

	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, domain.NewValidationError(op, "name", "Project name is required")
	}

	repoParams := repository.UpdateProjectParams{
		ID:        params.ID,
		AccountID: params.AccountID,
	}
	if params.Name != nil {
		repoParams.Name = toNullString(strings.TrimSpace(*params.Name))
	}
	if params.Description != nil {
		repoParams.Description = sql.NullString{String: strings.TrimSpace(*params.Description), Valid: true}
	}
	if params.IsArchived != nil {
		repoParams.IsArchived = sql.NullBool{Bool: *params.IsArchived, Valid: true}
		if *params.IsArchived {
			repoParams.ArchivedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		}
	}

	repoProject, err := s.queries.UpdateProject(ctx, repoParams)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "project", params.ID.String())
		}
		s.logger.Error("failed to update project", "error", err, "op", op, "project_id", params.ID)
		return nil, domain.Internal(err, op, "Failed to update project")
	}

	project := repoProjectToDomain(repoProject)
	s.logger.Info("project updated", "project_id", project.ID, "account_id", project.AccountID)

	return &project, nil
}

func (s *projectService) countForQuota(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if s.countArchived {
		return s.queries.CountProjectsByAccountID(ctx, accountID)
	}
	return s.queries.CountActiveProjectsByAccountID(ctx, accountID)
}

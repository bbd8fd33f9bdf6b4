package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// FormService defines the interface for form operations.
type FormService interface {
	// Create creates a form with its questions, enforcing the
	// forms-per-project ceiling. New forms start as drafts.
	Create(ctx context.Context, account *domain.Account, params domain.CreateFormParams) (*domain.FormWithQuestions, error)

	// GetByID retrieves a form and its questions, scoped to the account.
	GetByID(ctx context.Context, id, accountID uuid.UUID) (*domain.FormWithQuestions, error)

	// GetPublic retrieves a form and its questions without account scoping.
	// Used by the public submission surface.
	GetPublic(ctx context.Context, id uuid.UUID) (*domain.FormWithQuestions, error)

	// List retrieves all forms for an account.
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Form, error)

	// ListByProject retrieves the forms of one project.
	ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.Form, error)

	// UpdateStatus moves a form through its lifecycle. Illegal transitions
	// are rejected; archived is terminal.
	UpdateStatus(ctx context.Context, id, accountID uuid.UUID, status domain.FormStatus) (*domain.Form, error)
}

type formService struct {
	db      *sql.DB
	queries *repository.Queries
	logger  *slog.Logger
}

// NewFormService creates a new FormService. The *sql.DB is needed so that
// a form and its questions are created in one transaction.
func NewFormService(db *sql.DB, queries *repository.Queries, logger *slog.Logger) FormService {
	return &formService{
		db:      db,
		queries: queries,
		logger:  logger,
	}
}

// Create creates a form with its questions.
func (s *formService) Create(ctx context.Context, account *domain.Account, params domain.CreateFormParams) (*domain.FormWithQuestions, error) {
	const op = "FormService.Create"

	if err := validateCreateForm(op, params); err != nil {
		return nil, err
	}

	// The project must exist and belong to the caller before any quota
	// arithmetic runs.
	if _, err := s.queries.GetProjectByIDAndAccountID(ctx, params.ProjectID, account.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "project", params.ProjectID.String())
		}
		s.logger.Error("failed to get project", "error", err, "op", op, "project_id", params.ProjectID)
		return nil, domain.Internal(err, op, "Failed to create form")
	}

	count, err := s.queries.CountFormsByProjectID(ctx, params.ProjectID)
	if err != nil {
		s.logger.Error("failed to count forms", "error", err, "op", op, "project_id", params.ProjectID)
		return nil, domain.Internal(err, op, "Failed to create form")
	}

	limits := domain.ParsePlanLimits(account.Plan)
	if err := domain.AssertFormsLimit(limits, count); err != nil {
		s.logger.Info("form creation blocked by plan limit",
			"account_id", account.ID, "project_id", params.ProjectID,
			"current", count, "limit", limits.FormsPerProject)
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to create form")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	repoForm, err := qtx.CreateForm(ctx, repository.CreateFormParams{
		AccountID:       account.ID,
		ProjectID:       params.ProjectID,
		Name:            strings.TrimSpace(params.Name),
		Description:     toNullString(strings.TrimSpace(params.Description)),
		Channel:         string(params.Channel),
		ThankYouMessage: toNullString(params.ThankYouMessage),
		RedirectURL:     toNullString(params.RedirectURL),
		Settings:        params.Settings,
	})
	if err != nil {
		s.logger.Error("failed to create form", "error", err, "op", op, "account_id", account.ID)
		return nil, domain.Internal(err, op, "Failed to create form")
	}

	questions := make([]domain.FormQuestion, 0, len(params.Questions))
	for i, qp := range params.Questions {
		options, err := encodeOptions(qp.Options)
		if err != nil {
			return nil, domain.Internal(err, op, "Failed to create form")
		}
		repoQuestion, err := qtx.CreateFormQuestion(ctx, repository.CreateFormQuestionParams{
			FormID:      repoForm.ID,
			Position:    int32(i + 1),
			Type:        string(qp.Type),
			Label:       strings.TrimSpace(qp.Label),
			Description: toNullString(qp.Description),
			Placeholder: toNullString(qp.Placeholder),
			Options:     options,
			IsRequired:  qp.IsRequired,
			Metadata:    qp.Metadata,
		})
		if err != nil {
			s.logger.Error("failed to create question", "error", err, "op", op, "form_id", repoForm.ID)
			return nil, domain.Internal(err, op, "Failed to create form")
		}
		questions = append(questions, repoQuestionToDomain(repoQuestion))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Internal(err, op, "Failed to create form")
	}

	form := repoFormToDomain(repoForm)
	s.logger.Info("form created",
		"form_id", form.ID, "account_id", form.AccountID,
		"project_id", form.ProjectID, "questions", len(questions))

	return &domain.FormWithQuestions{Form: form, Questions: questions}, nil
}

// GetByID retrieves a form and its questions, scoped to the account.
func (s *formService) GetByID(ctx context.Context, id, accountID uuid.UUID) (*domain.FormWithQuestions, error) {
	const op = "FormService.GetByID"

	repoForm, err := s.queries.GetFormByIDAndAccountID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", id.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", id)
		return nil, domain.Internal(err, op, "Failed to retrieve form")
	}

	return s.withQuestions(ctx, op, repoForm)
}

// GetPublic retrieves a form and its questions without account scoping.
func (s *formService) GetPublic(ctx context.Context, id uuid.UUID) (*domain.FormWithQuestions, error) {
	const op = "FormService.GetPublic"

	repoForm, err := s.queries.GetFormByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", id.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", id)
		return nil, domain.Internal(err, op, "Failed to retrieve form")
	}

	return s.withQuestions(ctx, op, repoForm)
}

// List retrieves all forms for an account.
func (s *formService) List(ctx context.Context, accountID uuid.UUID) ([]domain.Form, error) {
	const op = "FormService.List"

	repoForms, err := s.queries.ListFormsByAccountID(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list forms", "error", err, "op", op, "account_id", accountID)
		return nil, domain.Internal(err, op, "Failed to list forms")
	}
	return s.toDomainForms(repoForms), nil
}

// ListByProject retrieves the forms of one project.
func (s *formService) ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.Form, error) {
	const op = "FormService.ListByProject"

	repoForms, err := s.queries.ListFormsByProjectID(ctx, accountID, projectID)
	if err != nil {
		s.logger.Error("failed to list forms", "error", err, "op", op, "project_id", projectID)
		return nil, domain.Internal(err, op, "Failed to list forms")
	}
	return s.toDomainForms(repoForms), nil
}

// UpdateStatus moves a form through its lifecycle.
func (s *formService) UpdateStatus(ctx context.Context, id, accountID uuid.UUID, status domain.FormStatus) (*domain.Form, error) {
	const op = "FormService.UpdateStatus"

	if !domain.ValidFormStatus(status) {
		return nil, domain.Invalid(op, fmt.Sprintf("Unknown form status %q", status))
	}

	repoForm, err := s.queries.GetFormByIDAndAccountID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", id.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", id)
		return nil, domain.Internal(err, op, "Failed to update form")
	}

	from := domain.FormStatus(repoForm.Status)
	if !domain.CanTransition(from, status) {
		return nil, domain.Invalid(op, fmt.Sprintf("Cannot move form from %s to %s", from, status))
	}

	params := repository.UpdateFormStatusParams{
		ID:        id,
		AccountID: accountID,
		Status:    string(status),
	}
	switch {
	case status == domain.FormStatusPublished && from == domain.FormStatusDraft:
		// First (or renewed) publish stamps the publish time. Resuming
		// from paused keeps the original.
		params.TouchPublishedAt = true
		params.PublishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	case status == domain.FormStatusDraft:
		params.TouchPublishedAt = true
		params.PublishedAt = sql.NullTime{}
	}

	updated, err := s.queries.UpdateFormStatus(ctx, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", id.String())
		}
		s.logger.Error("failed to update form status", "error", err, "op", op, "form_id", id)
		return nil, domain.Internal(err, op, "Failed to update form")
	}

	form := repoFormToDomain(updated)
	s.logger.Info("form status changed", "form_id", form.ID, "from", from, "to", form.Status)

	return &form, nil
}

func (s *formService) withQuestions(ctx context.Context, op string, repoForm repository.Form) (*domain.FormWithQuestions, error) {
	repoQuestions, err := s.queries.ListQuestionsByFormID(ctx, repoForm.ID)
	if err != nil {
		s.logger.Error("failed to list questions", "error", err, "op", op, "form_id", repoForm.ID)
		return nil, domain.Internal(err, op, "Failed to retrieve form")
	}

	questions := make([]domain.FormQuestion, len(repoQuestions))
	for i, rq := range repoQuestions {
		questions[i] = repoQuestionToDomain(rq)
	}

	return &domain.FormWithQuestions{
		Form:      repoFormToDomain(repoForm),
		Questions: questions,
	}, nil
}

func (s *formService) toDomainForms(repoForms []repository.Form) []domain.Form {
	forms := make([]domain.Form, len(repoForms))
	for i, rf := range repoForms {
		forms[i] = repoFormToDomain(rf)
	}
	return forms
}

// validateCreateForm checks the form shell and every question.
func validateCreateForm(op string, params domain.CreateFormParams) error {
	var err error

	if strings.TrimSpace(params.Name) == "" {
		err = domain.AddFieldError(err, "name", "Form name is required")
	}
	if !domain.ValidFormChannel(params.Channel) {
		err = domain.AddFieldError(err, "channel", fmt.Sprintf("Unknown channel %q", params.Channel))
	}

	for i, q := range params.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		if !domain.ValidQuestionType(q.Type) {
			err = domain.AddFieldError(err, field+".type", fmt.Sprintf("Unknown question type %q", q.Type))
			continue
		}
		if strings.TrimSpace(q.Label) == "" {
			err = domain.AddFieldError(err, field+".label", "Question label is required")
		}
		if q.Type.RequiresOptions() && len(q.Options) == 0 {
			err = domain.AddFieldError(err, field+".options", "Select questions need at least one option")
		}
	}

	if err != nil {
		ve := err.(*domain.ValidationError)
		ve.Op = op
		return ve
	}
	return nil
}

// encodeOptions marshals a question's options to jsonb, NULL when absent.
func encodeOptions(options []string) (pqtype.NullRawMessage, error) {
	if len(options) == 0 {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

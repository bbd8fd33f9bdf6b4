package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// ResponseService defines the interface for feedback submissions and reads.
type ResponseService interface {
	// Submit records a public feedback submission against a published form.
	// The monthly response quota of the form's account is enforced here.
	Submit(ctx context.Context, params domain.SubmitResponseParams) (*domain.Response, error)

	// ListByForm retrieves all responses for a form, newest first, scoped
	// to the account.
	ListByForm(ctx context.Context, formID, accountID uuid.UUID) ([]domain.Response, error)
}

type responseService struct {
	db      *sql.DB
	queries *repository.Queries
	logger  *slog.Logger
}

// NewResponseService creates a new ResponseService.
func NewResponseService(db *sql.DB, queries *repository.Queries, logger *slog.Logger) ResponseService {
	return &responseService{
		db:      db,
		queries: queries,
		logger:  logger,
	}
}

// Submit records a public feedback submission.
//
// Failure order is fixed: input validation, then form resolution, then the
// accepting-status gate, then the quota check. A quota refusal therefore
// never masks a bad request, and a draft form reports "not accepting"
// rather than leaking quota state.
func (s *responseService) Submit(ctx context.Context, params domain.SubmitResponseParams) (*domain.Response, error) {
	const op = "ResponseService.Submit"

	if !domain.ValidFormChannel(params.Channel) {
		return nil, domain.NewValidationError(op, "channel", fmt.Sprintf("Unknown channel %q", params.Channel))
	}

	repoForm, err := s.queries.GetFormByID(ctx, params.FormID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", params.FormID.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", params.FormID)
		return nil, domain.Internal(err, op, "Failed to submit response")
	}

	if domain.FormStatus(repoForm.Status) != domain.FormStatusPublished {
		return nil, domain.NotAccepting(op)
	}

	repoQuestions, err := s.queries.ListQuestionsByFormID(ctx, repoForm.ID)
	if err != nil {
		s.logger.Error("failed to list questions", "error", err, "op", op, "form_id", repoForm.ID)
		return nil, domain.Internal(err, op, "Failed to submit response")
	}

	questions := make([]domain.FormQuestion, len(repoQuestions))
	for i, rq := range repoQuestions {
		questions[i] = repoQuestionToDomain(rq)
	}
	if err := validateAnswers(op, questions, params.Answers); err != nil {
		return nil, err
	}

	account, err := s.queries.GetAccountWithPlan(ctx, repoForm.AccountID)
	if err != nil {
		s.logger.Error("failed to load account", "error", err, "op", op, "account_id", repoForm.AccountID)
		return nil, domain.Internal(err, op, "Failed to submit response")
	}
	domainAccount := accountWithPlanToDomain(account)

	now := time.Now().UTC()
	periodStart, periodEnd := domain.MonthBoundaries(now)

	count, err := s.queries.CountResponsesByAccountSince(ctx, repoForm.AccountID, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("failed to count responses", "error", err, "op", op, "account_id", repoForm.AccountID)
		return nil, domain.Internal(err, op, "Failed to submit response")
	}

	limits := domain.ParsePlanLimits(domainAccount.Plan)
	if err := domain.AssertResponsesLimit(limits, count); err != nil {
		s.logger.Info("response blocked by monthly quota",
			"account_id", repoForm.AccountID, "form_id", repoForm.ID,
			"current", count, "limit", limits.ResponsesPerMonth)
		return nil, err
	}

	var qrCodeID uuid.NullUUID
	if params.ShortCode != "" {
		repoCode, err := s.queries.GetQRCodeByFormAndShortCode(ctx, repoForm.ID, params.ShortCode)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Error("failed to resolve QR code", "error", err, "op", op, "short_code", params.ShortCode)
				return nil, domain.Internal(err, op, "Failed to submit response")
			}
			// Unknown code: keep the submission, drop the attribution.
		} else {
			qrCodeID = uuid.NullUUID{UUID: repoCode.ID, Valid: true}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to submit response")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	repoResponse, err := qtx.CreateResponse(ctx, repository.CreateResponseParams{
		AccountID:    repoForm.AccountID,
		FormID:       repoForm.ID,
		QRCodeID:     qrCodeID,
		Channel:      string(params.Channel),
		LocationName: toNullString(params.LocationName),
		Attributes:   params.Attributes,
		IPHash:       toNullString(hashClientIP(params.ClientIP)),
		UserAgent:    toNullString(params.UserAgent),
		Rating:       extractRating(questions, params.Answers),
		Tags:         params.Tags,
	})
	if err != nil {
		s.logger.Error("failed to create response", "error", err, "op", op, "form_id", repoForm.ID)
		return nil, domain.Internal(err, op, "Failed to submit response")
	}

	for _, answer := range params.Answers {
		questionID := answer.QuestionID
		if _, err := qtx.CreateResponseItem(ctx, repoResponse.ID,
			uuid.NullUUID{UUID: questionID, Valid: true}, answer.Value); err != nil {
			s.logger.Error("failed to create response item", "error", err, "op", op, "response_id", repoResponse.ID)
			return nil, domain.Internal(err, op, "Failed to submit response")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Internal(err, op, "Failed to submit response")
	}

	// The counter is advisory reporting state; the count query above is
	// the authority. It is written as pre-check count plus one, so two
	// racing submissions may settle on the same value.
	if _, err := s.queries.UpsertUsageCounter(ctx, repository.UpsertUsageCounterParams{
		AccountID:   repoForm.AccountID,
		Metric:      domain.MetricResponsesMonthly,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Value:       count + 1,
	}); err != nil {
		s.logger.Warn("failed to update usage counter", "error", err, "account_id", repoForm.AccountID)
	}

	response := repoResponseToDomain(repoResponse)
	s.logger.Info("response submitted",
		"response_id", response.ID, "form_id", response.FormID,
		"account_id", response.AccountID, "channel", response.Channel)

	return &response, nil
}

// ListByForm retrieves all responses for a form, newest first.
func (s *responseService) ListByForm(ctx context.Context, formID, accountID uuid.UUID) ([]domain.Response, error) {
	const op = "ResponseService.ListByForm"

	if _, err := s.queries.GetFormByIDAndAccountID(ctx, formID, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", formID.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", formID)
		return nil, domain.Internal(err, op, "Failed to list responses")
	}

	repoResponses, err := s.queries.ListResponsesByFormID(ctx, formID)
	if err != nil {
		s.logger.Error("failed to list responses", "error", err, "op", op, "form_id", formID)
		return nil, domain.Internal(err, op, "Failed to list responses")
	}

	return repoResponsesToDomain(repoResponses), nil
}

// validateAnswers checks that the submission carries at least one answer,
// that every answer targets a question of the form, and that every
// required question is answered.
func validateAnswers(op string, questions []domain.FormQuestion, answers []domain.AnswerParams) error {
	if len(answers) == 0 {
		return domain.NewValidationError(op, "answers", "At least one answer is required")
	}

	known := make(map[uuid.UUID]domain.FormQuestion, len(questions))
	for _, q := range questions {
		known[q.ID] = q
	}

	answered := make(map[uuid.UUID]bool, len(answers))
	var err error
	for i, a := range answers {
		if _, ok := known[a.QuestionID]; !ok {
			err = domain.AddFieldError(err, fmt.Sprintf("answers[%d].question_id", i),
				"Question does not belong to this form")
			continue
		}
		if len(a.Value) == 0 {
			err = domain.AddFieldError(err, fmt.Sprintf("answers[%d].value", i), "Answer value is required")
		}
		answered[a.QuestionID] = true
	}

	for _, q := range questions {
		if q.IsRequired && !answered[q.ID] {
			err = domain.AddFieldError(err, "answers", fmt.Sprintf("Question %q requires an answer", q.Label))
		}
	}

	if err != nil {
		ve := err.(*domain.ValidationError)
		ve.Op = op
		return ve
	}
	return nil
}

// extractRating lifts the first numeric rating or NPS answer onto the
// response row so dashboard aggregates avoid a join.
func extractRating(questions []domain.FormQuestion, answers []domain.AnswerParams) sql.NullInt32 {
	byID := make(map[uuid.UUID]domain.FormQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		if q.Type != domain.QuestionTypeRating && q.Type != domain.QuestionTypeNPS {
			continue
		}
		var v float64
		if err := json.Unmarshal(a.Value, &v); err != nil {
			continue
		}
		return sql.NullInt32{Int32: int32(v), Valid: true}
	}
	return sql.NullInt32{}
}

// hashClientIP returns the hex SHA-256 of the client address. The raw
// address is never stored.
func hashClientIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// Package jobs holds the background job handlers executed by the worker.
package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/email"
	"github.com/calebreed/formpulse/internal/metrics"
	"github.com/calebreed/formpulse/internal/repository"
	"github.com/calebreed/formpulse/internal/service"
	"github.com/calebreed/formpulse/internal/worker"
)

// WeeklyDigestHandler sends one account's weekly response summary to the
// account owner.
type WeeklyDigestHandler struct {
	queries *repository.Queries
	emails  email.EmailService
	logger  *slog.Logger
}

// NewWeeklyDigestHandler creates a new WeeklyDigestHandler.
func NewWeeklyDigestHandler(queries *repository.Queries, emails email.EmailService, logger *slog.Logger) *WeeklyDigestHandler {
	return &WeeklyDigestHandler{queries: queries, emails: emails, logger: logger}
}

// Type returns the job type identifier.
func (h *WeeklyDigestHandler) Type() string {
	return worker.JobTypeWeeklyDigest
}

// Handle builds and sends the digest. A deleted account is a permanent
// failure; SMTP trouble retries.
func (h *WeeklyDigestHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.WeeklyDigestPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("unmarshal payload: %w", err))
	}

	recipient, err := h.queries.GetDigestRecipient(ctx, p.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("account %s not found", p.AccountID))
		}
		return fmt.Errorf("load recipient: %w", err)
	}

	digest, err := h.buildDigest(ctx, p.AccountID, recipient.AccountName, time.Now())
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	if err := h.emails.SendWeeklyDigest(ctx, recipient.OwnerEmail, recipient.OwnerName, digest); err != nil {
		metrics.DigestsSent.WithLabelValues("error").Inc()
		return fmt.Errorf("send digest: %w", err)
	}

	metrics.DigestsSent.WithLabelValues("sent").Inc()
	h.logger.Info("weekly digest sent",
		slog.String("account_id", p.AccountID.String()),
		slog.Int64("responses", digest.TotalResponses))
	return nil
}

// buildDigest summarizes the trailing seven days against the seven days
// before them.
func (h *WeeklyDigestHandler) buildDigest(ctx context.Context, accountID uuid.UUID, accountName string, now time.Time) (email.DigestData, error) {
	periodEnd := now.UTC()
	periodStart := periodEnd.AddDate(0, 0, -7)
	previousStart := periodStart.AddDate(0, 0, -7)

	responses, err := h.queries.ListResponsesByAccountSince(ctx, accountID, previousStart)
	if err != nil {
		return email.DigestData{}, err
	}

	digest := email.DigestData{
		AccountName: accountName,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}

	var ratingSum, ratingCount int64
	perForm := make(map[uuid.UUID]int64)
	for _, r := range responses {
		if r.SubmittedAt.Before(periodStart) {
			digest.PreviousResponses++
			continue
		}
		digest.TotalResponses++
		perForm[r.FormID]++
		if r.Rating.Valid {
			ratingSum += int64(r.Rating.Int32)
			ratingCount++
		}
	}

	if ratingCount > 0 {
		avg := float64(ratingSum) / float64(ratingCount)
		digest.AverageRating = &avg
	}

	var topFormID uuid.UUID
	for formID, count := range perForm {
		if count > digest.TopFormResponses {
			digest.TopFormResponses = count
			topFormID = formID
		}
	}
	if digest.TopFormResponses > 0 {
		form, err := h.queries.GetFormByID(ctx, topFormID)
		if err == nil {
			digest.TopFormName = form.Name
		}
	}

	return digest, nil
}

// SessionCleanupHandler deletes expired sessions.
type SessionCleanupHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewSessionCleanupHandler creates a new SessionCleanupHandler.
func NewSessionCleanupHandler(users service.UserService, logger *slog.Logger) *SessionCleanupHandler {
	return &SessionCleanupHandler{users: users, logger: logger}
}

// Type returns the job type identifier.
func (h *SessionCleanupHandler) Type() string {
	return worker.JobTypeSessionCleanup
}

// Handle sweeps the sessions table.
func (h *SessionCleanupHandler) Handle(ctx context.Context, _ []byte) error {
	return h.users.DeleteExpiredSessions(ctx)
}

package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/repository"
)

// Job type constants. These must match the JobHandler.Type() values.
const (
	JobTypeWeeklyDigest   = "weekly_digest"
	JobTypeSessionCleanup = "session_cleanup"
)

// Priority constants for job scheduling.
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// WeeklyDigestPayload is the payload for weekly digest delivery jobs.
// One job covers one account.
type WeeklyDigestPayload struct {
	AccountID uuid.UUID `json:"account_id"`
}

// SessionCleanupPayload is the payload for expired session sweeps. It is
// empty; the job operates on the whole sessions table.
type SessionCleanupPayload struct{}

// EnqueueOption is a functional option for customizing enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob is a generic helper for enqueuing jobs with custom options.
func EnqueueJob(
	ctx context.Context,
	queries *repository.Queries,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&params)
	}

	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// EnqueueWeeklyDigest enqueues a digest delivery job for one account.
func EnqueueWeeklyDigest(
	ctx context.Context,
	queries *repository.Queries,
	accountID uuid.UUID,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := WeeklyDigestPayload{AccountID: accountID}
	return EnqueueJob(ctx, queries, JobTypeWeeklyDigest, payload, opts...)
}

// EnqueueSessionCleanup enqueues an expired session sweep.
func EnqueueSessionCleanup(
	ctx context.Context,
	queries *repository.Queries,
	opts ...EnqueueOption,
) (repository.Job, error) {
	return EnqueueJob(ctx, queries, JobTypeSessionCleanup, SessionCleanupPayload{}, opts...)
}

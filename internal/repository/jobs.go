package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job is a row in the jobs table.
type Job struct {
	ID          uuid.UUID
	JobType     string
	Payload     json.RawMessage
	Status      string
	Priority    int32
	Attempts    int32
	MaxAttempts int32
	LastError   sql.NullString
	ScheduledAt time.Time
	StartedAt   sql.NullTime
	CompletedAt sql.NullTime
	CreatedAt   time.Time
}

const jobColumns = `id, job_type, payload, status, priority, attempts, max_attempts, last_error, scheduled_at, started_at, completed_at, created_at`

func scanJob(row *sql.Row) (Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.JobType, &j.Payload, &j.Status, &j.Priority, &j.Attempts,
		&j.MaxAttempts, &j.LastError, &j.ScheduledAt, &j.StartedAt,
		&j.CompletedAt, &j.CreatedAt,
	)
	return j, err
}

type EnqueueJobParams struct {
	JobType     string
	Payload     json.RawMessage
	Priority    int32
	MaxAttempts int32
	ScheduledAt time.Time
}

const enqueueJob = `
INSERT INTO jobs (job_type, payload, priority, max_attempts, scheduled_at)
VALUES ($1, COALESCE($2, '{}'::jsonb), $3, $4, $5)
RETURNING ` + jobColumns

func (q *Queries) EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error) {
	return scanJob(q.db.QueryRowContext(ctx, enqueueJob,
		arg.JobType, arg.Payload, arg.Priority, arg.MaxAttempts, arg.ScheduledAt))
}

const dequeueJob = `
SELECT ` + jobColumns + `
FROM jobs
WHERE status = 'pending' AND scheduled_at <= now()
ORDER BY priority DESC, scheduled_at
LIMIT 1
FOR UPDATE SKIP LOCKED`

// DequeueJob picks the next runnable job inside the caller's
// transaction. Returns sql.ErrNoRows when the queue is empty.
func (q *Queries) DequeueJob(ctx context.Context) (Job, error) {
	return scanJob(q.db.QueryRowContext(ctx, dequeueJob))
}

const updateJobStarted = `
UPDATE jobs
SET status = 'running', started_at = now(), attempts = attempts + 1
WHERE id = $1`

func (q *Queries) UpdateJobStarted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, updateJobStarted, id)
	return err
}

const updateJobCompleted = `
UPDATE jobs
SET status = 'completed', completed_at = now()
WHERE id = $1`

func (q *Queries) UpdateJobCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, updateJobCompleted, id)
	return err
}

type UpdateJobFailedParams struct {
	ID           uuid.UUID
	ErrorMessage sql.NullString
}

const updateJobFailed = `
UPDATE jobs
SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
    scheduled_at = CASE WHEN attempts >= max_attempts THEN scheduled_at
                        ELSE now() + (power(2, attempts) * interval '1 minute') END,
    last_error = $2,
    started_at = NULL
WHERE id = $1`

// UpdateJobFailed reschedules the job with exponential backoff until
// max_attempts is exhausted, then marks it failed for good.
func (q *Queries) UpdateJobFailed(ctx context.Context, arg UpdateJobFailedParams) error {
	_, err := q.db.ExecContext(ctx, updateJobFailed, arg.ID, arg.ErrorMessage)
	return err
}

const markJobFailedPermanently = `
UPDATE jobs
SET status = 'failed', last_error = $2
WHERE id = $1`

func (q *Queries) MarkJobFailedPermanently(ctx context.Context, id uuid.UUID, errorMessage sql.NullString) error {
	_, err := q.db.ExecContext(ctx, markJobFailedPermanently, id, errorMessage)
	return err
}

const recoverStaleJobs = `
UPDATE jobs
SET status = 'pending', started_at = NULL
WHERE status = 'running' AND started_at < now() - ($1 * interval '1 second')`

// RecoverStaleJobs resets jobs stuck in 'running' longer than the
// threshold, typically leftovers from a crashed worker.
func (q *Queries) RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error) {
	res, err := q.db.ExecContext(ctx, recoverStaleJobs, thresholdSeconds)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

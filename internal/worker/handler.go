package worker

import (
	"context"
	"errors"
)

// JobHandler is implemented by each background job type.
type JobHandler interface {
	// Type returns the job type identifier this handler processes. It
	// must match the job_type column in the jobs table.
	Type() string

	// Handle executes the job. The payload is raw JSON from the database.
	// Return a PermanentError to stop retries.
	Handle(ctx context.Context, payload []byte) error
}

// PermanentError wraps an error to indicate it should not be retried.
// Jobs failing with one are marked failed immediately instead of being
// rescheduled.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError wraps err so the worker will not retry the job.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err, or any error it wraps, is a
// PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}

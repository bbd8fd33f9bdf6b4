package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project groups a set of feedback forms under an account.
type Project struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Name        string
	Description string
	IsArchived  bool
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProjectParams holds input for creating a project.
type CreateProjectParams struct {
	AccountID   uuid.UUID
	Name        string
	Description string
}

// UpdateProjectParams holds input for updating a project. Nil fields are
// left unchanged.
type UpdateProjectParams struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Name        *string
	Description *string
	IsArchived  *bool
}

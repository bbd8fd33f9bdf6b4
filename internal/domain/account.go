package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole is a member's role within an account.
type AccountRole string

const (
	AccountRoleOwner   AccountRole = "owner"
	AccountRoleAdmin   AccountRole = "admin"
	AccountRoleAnalyst AccountRole = "analyst"
)

// Account is a billing/tenant unit. It owns projects and carries an optional
// subscription plan; an account without a plan has no limits configured.
type Account struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	PlanID    *uuid.UUID
	Plan      *Plan // populated by lookups that join the plan; nil means unlimited
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountMember links a user to an account with a role.
type AccountMember struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	UserID     uuid.UUID
	Role       AccountRole
	InvitedAt  time.Time
	AcceptedAt *time.Time
}

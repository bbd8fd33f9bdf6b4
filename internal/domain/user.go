package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated person. Users belong to accounts through
// account memberships; public response submission is anonymous.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is an authenticated browser session. Only the SHA-256 hash of the
// session token is stored.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RegisterParams holds input for user registration.
type RegisterParams struct {
	Email       string
	Name        string
	Password    string
	AccountName string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User  *User
	Token string // raw session token, sent to the client once
}

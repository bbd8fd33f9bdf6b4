package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is a row in the sessions table. TokenHash is the sha256 of
// the opaque cookie token, never the token itself.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type CreateSessionParams struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}

const createSession = `
INSERT INTO sessions (user_id, token_hash, expires_at)
VALUES ($1, $2, $3)
RETURNING id, user_id, token_hash, expires_at, created_at`

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	var s Session
	err := q.db.QueryRowContext(ctx, createSession, arg.UserID, arg.TokenHash, arg.ExpiresAt).
		Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

const getUserBySessionTokenHash = `
SELECT u.id, u.email, u.name, u.password_hash, u.created_at, u.updated_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token_hash = $1 AND s.expires_at > now()`

func (q *Queries) GetUserBySessionTokenHash(ctx context.Context, tokenHash string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserBySessionTokenHash, tokenHash).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const deleteSessionByTokenHash = `
DELETE FROM sessions WHERE token_hash = $1`

func (q *Queries) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, deleteSessionByTokenHash, tokenHash)
	return err
}

const deleteExpiredSessions = `
DELETE FROM sessions WHERE expires_at <= now()`

func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

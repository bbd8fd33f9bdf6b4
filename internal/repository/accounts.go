package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Account is a row in the accounts table.
type Account struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	PlanID    uuid.NullUUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountMember is a row in the account_members table.
type AccountMember struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	UserID     uuid.UUID
	Role       string
	InvitedAt  time.Time
	AcceptedAt sql.NullTime
}

// GetAccountWithPlanRow joins an account with its plan, if any.
type GetAccountWithPlanRow struct {
	Account       Account
	PlanID        uuid.NullUUID
	PlanSlug      sql.NullString
	PlanName      sql.NullString
	PlanLimits    pqtype.NullRawMessage
	PlanIsDefault sql.NullBool
	PlanIsActive  sql.NullBool
}

type CreateAccountParams struct {
	Name    string
	OwnerID uuid.UUID
	PlanID  uuid.NullUUID
}

const createAccount = `
INSERT INTO accounts (name, owner_id, plan_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, plan_id, created_at, updated_at`

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx, createAccount, arg.Name, arg.OwnerID, arg.PlanID).Scan(
		&a.ID, &a.Name, &a.OwnerID, &a.PlanID, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

const getAccountWithPlan = `
SELECT a.id, a.name, a.owner_id, a.plan_id, a.created_at, a.updated_at,
       p.id, p.slug, p.name, p.limits, p.is_default, p.is_active
FROM accounts a
LEFT JOIN plans p ON p.id = a.plan_id
WHERE a.id = $1`

func (q *Queries) GetAccountWithPlan(ctx context.Context, id uuid.UUID) (GetAccountWithPlanRow, error) {
	var r GetAccountWithPlanRow
	err := q.db.QueryRowContext(ctx, getAccountWithPlan, id).Scan(
		&r.Account.ID, &r.Account.Name, &r.Account.OwnerID, &r.Account.PlanID,
		&r.Account.CreatedAt, &r.Account.UpdatedAt,
		&r.PlanID, &r.PlanSlug, &r.PlanName, &r.PlanLimits, &r.PlanIsDefault, &r.PlanIsActive,
	)
	return r, err
}

type CreateAccountMemberParams struct {
	AccountID  uuid.UUID
	UserID     uuid.UUID
	Role       string
	AcceptedAt sql.NullTime
}

const createAccountMember = `
INSERT INTO account_members (account_id, user_id, role, accepted_at)
VALUES ($1, $2, $3, $4)
RETURNING id, account_id, user_id, role, invited_at, accepted_at`

func (q *Queries) CreateAccountMember(ctx context.Context, arg CreateAccountMemberParams) (AccountMember, error) {
	var m AccountMember
	err := q.db.QueryRowContext(ctx, createAccountMember, arg.AccountID, arg.UserID, arg.Role, arg.AcceptedAt).Scan(
		&m.ID, &m.AccountID, &m.UserID, &m.Role, &m.InvitedAt, &m.AcceptedAt,
	)
	return m, err
}

const getPrimaryAccountForUser = `
SELECT a.id, a.name, a.owner_id, a.plan_id, a.created_at, a.updated_at
FROM account_members m
JOIN accounts a ON a.id = m.account_id
WHERE m.user_id = $1
ORDER BY m.invited_at
LIMIT 1`

func (q *Queries) GetPrimaryAccountForUser(ctx context.Context, userID uuid.UUID) (Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx, getPrimaryAccountForUser, userID).Scan(
		&a.ID, &a.Name, &a.OwnerID, &a.PlanID, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

const getAccountMembership = `
SELECT id, account_id, user_id, role, invited_at, accepted_at
FROM account_members
WHERE account_id = $1 AND user_id = $2`

func (q *Queries) GetAccountMembership(ctx context.Context, accountID, userID uuid.UUID) (AccountMember, error) {
	var m AccountMember
	err := q.db.QueryRowContext(ctx, getAccountMembership, accountID, userID).Scan(
		&m.ID, &m.AccountID, &m.UserID, &m.Role, &m.InvitedAt, &m.AcceptedAt,
	)
	return m, err
}

// DigestRecipientRow pairs an account with its owner's email for digest delivery.
type DigestRecipientRow struct {
	AccountID   uuid.UUID
	AccountName string
	OwnerEmail  string
	OwnerName   string
}

const listDigestRecipients = `
SELECT a.id, a.name, u.email, u.name
FROM accounts a
JOIN users u ON u.id = a.owner_id
ORDER BY a.created_at`

const getDigestRecipient = `
SELECT a.id, a.name, u.email, u.name
FROM accounts a
JOIN users u ON u.id = a.owner_id
WHERE a.id = $1`

func (q *Queries) GetDigestRecipient(ctx context.Context, accountID uuid.UUID) (DigestRecipientRow, error) {
	row := q.db.QueryRowContext(ctx, getDigestRecipient, accountID)
	var r DigestRecipientRow
	err := row.Scan(&r.AccountID, &r.AccountName, &r.OwnerEmail, &r.OwnerName)
	return r, err
}

func (q *Queries) ListDigestRecipients(ctx context.Context) ([]DigestRecipientRow, error) {
	rows, err := q.db.QueryContext(ctx, listDigestRecipients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DigestRecipientRow
	for rows.Next() {
		var r DigestRecipientRow
		if err := rows.Scan(&r.AccountID, &r.AccountName, &r.OwnerEmail, &r.OwnerName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

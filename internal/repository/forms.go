package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Form is a row in the forms table.
type Form struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	ProjectID       uuid.UUID
	Name            string
	Description     sql.NullString
	Channel         string
	Status          string
	ThankYouMessage sql.NullString
	RedirectURL     sql.NullString
	Settings        json.RawMessage
	Version         int32
	PublishedAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const formColumns = `id, account_id, project_id, name, description, channel, status, thank_you_message, redirect_url, settings, version, published_at, created_at, updated_at`

func scanFormRow(row *sql.Row) (Form, error) {
	var f Form
	err := row.Scan(
		&f.ID, &f.AccountID, &f.ProjectID, &f.Name, &f.Description,
		&f.Channel, &f.Status, &f.ThankYouMessage, &f.RedirectURL,
		&f.Settings, &f.Version, &f.PublishedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

func scanForms(rows *sql.Rows) ([]Form, error) {
	defer rows.Close()
	var out []Form
	for rows.Next() {
		var f Form
		if err := rows.Scan(
			&f.ID, &f.AccountID, &f.ProjectID, &f.Name, &f.Description,
			&f.Channel, &f.Status, &f.ThankYouMessage, &f.RedirectURL,
			&f.Settings, &f.Version, &f.PublishedAt, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type CreateFormParams struct {
	AccountID       uuid.UUID
	ProjectID       uuid.UUID
	Name            string
	Description     sql.NullString
	Channel         string
	ThankYouMessage sql.NullString
	RedirectURL     sql.NullString
	Settings        json.RawMessage
}

const createForm = `
INSERT INTO forms (account_id, project_id, name, description, channel, thank_you_message, redirect_url, settings)
VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '{}'::jsonb))
RETURNING ` + formColumns

func (q *Queries) CreateForm(ctx context.Context, arg CreateFormParams) (Form, error) {
	return scanFormRow(q.db.QueryRowContext(ctx, createForm,
		arg.AccountID, arg.ProjectID, arg.Name, arg.Description, arg.Channel,
		arg.ThankYouMessage, arg.RedirectURL, arg.Settings))
}

const getFormByID = `
SELECT ` + formColumns + ` FROM forms WHERE id = $1`

// GetFormByID fetches a form without account scoping. Used by the public
// submission and QR endpoints, which authenticate nothing.
func (q *Queries) GetFormByID(ctx context.Context, id uuid.UUID) (Form, error) {
	return scanFormRow(q.db.QueryRowContext(ctx, getFormByID, id))
}

const getFormByIDAndAccountID = `
SELECT ` + formColumns + ` FROM forms WHERE id = $1 AND account_id = $2`

func (q *Queries) GetFormByIDAndAccountID(ctx context.Context, id, accountID uuid.UUID) (Form, error) {
	return scanFormRow(q.db.QueryRowContext(ctx, getFormByIDAndAccountID, id, accountID))
}

const listFormsByAccountID = `
SELECT ` + formColumns + ` FROM forms WHERE account_id = $1 ORDER BY created_at`

func (q *Queries) ListFormsByAccountID(ctx context.Context, accountID uuid.UUID) ([]Form, error) {
	rows, err := q.db.QueryContext(ctx, listFormsByAccountID, accountID)
	if err != nil {
		return nil, err
	}
	return scanForms(rows)
}

const listFormsByProjectID = `
SELECT ` + formColumns + ` FROM forms WHERE account_id = $1 AND project_id = $2 ORDER BY created_at`

func (q *Queries) ListFormsByProjectID(ctx context.Context, accountID, projectID uuid.UUID) ([]Form, error) {
	rows, err := q.db.QueryContext(ctx, listFormsByProjectID, accountID, projectID)
	if err != nil {
		return nil, err
	}
	return scanForms(rows)
}

type UpdateFormStatusParams struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Status      string
	PublishedAt sql.NullTime
	// TouchPublishedAt controls whether published_at is written at all;
	// pausing keeps the original publish time.
	TouchPublishedAt bool
}

const updateFormStatus = `
UPDATE forms
SET status = $3,
    published_at = CASE WHEN $4::boolean THEN $5 ELSE published_at END,
    updated_at = now()
WHERE id = $1 AND account_id = $2
RETURNING ` + formColumns

func (q *Queries) UpdateFormStatus(ctx context.Context, arg UpdateFormStatusParams) (Form, error) {
	return scanFormRow(q.db.QueryRowContext(ctx, updateFormStatus,
		arg.ID, arg.AccountID, arg.Status, arg.TouchPublishedAt, arg.PublishedAt))
}

const countFormsByProjectID = `
SELECT count(*) FROM forms WHERE project_id = $1`

func (q *Queries) CountFormsByProjectID(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countFormsByProjectID, projectID).Scan(&count)
	return count, err
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Response is a row in the responses table.
type Response struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	FormID       uuid.UUID
	QRCodeID     uuid.NullUUID
	SubmittedAt  time.Time
	Channel      string
	LocationName sql.NullString
	Attributes   json.RawMessage
	IPHash       sql.NullString
	UserAgent    sql.NullString
	Rating       sql.NullInt32
	Tags         []string
	CreatedAt    time.Time
}

const responseColumns = `id, account_id, form_id, qr_code_id, submitted_at, channel, location_name, attributes, ip_hash, user_agent, rating, tags, created_at`

func scanResponse(scan func(dest ...any) error) (Response, error) {
	var r Response
	err := scan(
		&r.ID, &r.AccountID, &r.FormID, &r.QRCodeID, &r.SubmittedAt, &r.Channel,
		&r.LocationName, &r.Attributes, &r.IPHash, &r.UserAgent, &r.Rating,
		pq.Array(&r.Tags), &r.CreatedAt,
	)
	return r, err
}

func collectResponses(rows *sql.Rows) ([]Response, error) {
	defer rows.Close()
	var out []Response
	for rows.Next() {
		r, err := scanResponse(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type CreateResponseParams struct {
	AccountID    uuid.UUID
	FormID       uuid.UUID
	QRCodeID     uuid.NullUUID
	Channel      string
	LocationName sql.NullString
	Attributes   json.RawMessage
	IPHash       sql.NullString
	UserAgent    sql.NullString
	Rating       sql.NullInt32
	Tags         []string
}

const createResponse = `
INSERT INTO responses (account_id, form_id, qr_code_id, channel, location_name, attributes, ip_hash, user_agent, rating, tags)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, '{}'::jsonb), $7, $8, $9, $10)
RETURNING ` + responseColumns

func (q *Queries) CreateResponse(ctx context.Context, arg CreateResponseParams) (Response, error) {
	row := q.db.QueryRowContext(ctx, createResponse,
		arg.AccountID, arg.FormID, arg.QRCodeID, arg.Channel, arg.LocationName,
		arg.Attributes, arg.IPHash, arg.UserAgent, arg.Rating, pq.Array(arg.Tags))
	return scanResponse(row.Scan)
}

// ResponseItem is a row in the response_items table.
type ResponseItem struct {
	ID         uuid.UUID
	ResponseID uuid.UUID
	QuestionID uuid.NullUUID
	Value      json.RawMessage
	CreatedAt  time.Time
}

const createResponseItem = `
INSERT INTO response_items (response_id, question_id, value)
VALUES ($1, $2, $3)
RETURNING id, response_id, question_id, value, created_at`

func (q *Queries) CreateResponseItem(ctx context.Context, responseID uuid.UUID, questionID uuid.NullUUID, value json.RawMessage) (ResponseItem, error) {
	var item ResponseItem
	err := q.db.QueryRowContext(ctx, createResponseItem, responseID, questionID, value).
		Scan(&item.ID, &item.ResponseID, &item.QuestionID, &item.Value, &item.CreatedAt)
	return item, err
}

const countResponsesByAccountSince = `
SELECT count(*) FROM responses WHERE account_id = $1 AND submitted_at >= $2 AND submitted_at < $3`

// CountResponsesByAccountSince counts submissions in the half-open window
// [from, to). Callers pass the calendar month boundaries for quota checks.
func (q *Queries) CountResponsesByAccountSince(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countResponsesByAccountSince, accountID, from, to).Scan(&n)
	return n, err
}

const listResponsesByFormID = `
SELECT ` + responseColumns + ` FROM responses WHERE form_id = $1 ORDER BY submitted_at DESC`

func (q *Queries) ListResponsesByFormID(ctx context.Context, formID uuid.UUID) ([]Response, error) {
	rows, err := q.db.QueryContext(ctx, listResponsesByFormID, formID)
	if err != nil {
		return nil, err
	}
	return collectResponses(rows)
}

const listResponsesByAccountSince = `
SELECT ` + responseColumns + ` FROM responses WHERE account_id = $1 AND submitted_at >= $2 ORDER BY submitted_at DESC`

func (q *Queries) ListResponsesByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]Response, error) {
	rows, err := q.db.QueryContext(ctx, listResponsesByAccountSince, accountID, since)
	if err != nil {
		return nil, err
	}
	return collectResponses(rows)
}

const listRecentResponsesByAccountID = `
SELECT ` + responseColumns + ` FROM responses WHERE account_id = $1 ORDER BY submitted_at DESC LIMIT $2`

func (q *Queries) ListRecentResponsesByAccountID(ctx context.Context, accountID uuid.UUID, limit int32) ([]Response, error) {
	rows, err := q.db.QueryContext(ctx, listRecentResponsesByAccountID, accountID, limit)
	if err != nil {
		return nil, err
	}
	return collectResponses(rows)
}

// ResponseItemRow joins each answer with its parent submission for export.
type ResponseItemRow struct {
	ResponseID  uuid.UUID
	QuestionID  uuid.NullUUID
	Value       json.RawMessage
	SubmittedAt time.Time
}

const listResponseItemsByFormID = `
SELECT ri.response_id, ri.question_id, ri.value, r.submitted_at
FROM response_items ri
JOIN responses r ON r.id = ri.response_id
WHERE r.form_id = $1
ORDER BY r.submitted_at DESC, ri.created_at`

func (q *Queries) ListResponseItemsByFormID(ctx context.Context, formID uuid.UUID) ([]ResponseItemRow, error) {
	rows, err := q.db.QueryContext(ctx, listResponseItemsByFormID, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResponseItemRow
	for rows.Next() {
		var item ResponseItemRow
		if err := rows.Scan(&item.ResponseID, &item.QuestionID, &item.Value, &item.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

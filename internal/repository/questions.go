package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// FormQuestion is a row in the form_questions table. Options is a jsonb
// array of strings for select-type questions, NULL otherwise.
type FormQuestion struct {
	ID          uuid.UUID
	FormID      uuid.UUID
	Position    int32
	Type        string
	Label       string
	Description sql.NullString
	Placeholder sql.NullString
	Options     pqtype.NullRawMessage
	IsRequired  bool
	Metadata    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const questionColumns = `id, form_id, position, type, label, description, placeholder, options, is_required, metadata, created_at, updated_at`

type CreateFormQuestionParams struct {
	FormID      uuid.UUID
	Position    int32
	Type        string
	Label       string
	Description sql.NullString
	Placeholder sql.NullString
	Options     pqtype.NullRawMessage
	IsRequired  bool
	Metadata    json.RawMessage
}

const createFormQuestion = `
INSERT INTO form_questions (form_id, position, type, label, description, placeholder, options, is_required, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '{}'::jsonb))
RETURNING ` + questionColumns

func (q *Queries) CreateFormQuestion(ctx context.Context, arg CreateFormQuestionParams) (FormQuestion, error) {
	var fq FormQuestion
	err := q.db.QueryRowContext(ctx, createFormQuestion,
		arg.FormID, arg.Position, arg.Type, arg.Label, arg.Description,
		arg.Placeholder, arg.Options, arg.IsRequired, arg.Metadata,
	).Scan(
		&fq.ID, &fq.FormID, &fq.Position, &fq.Type, &fq.Label, &fq.Description,
		&fq.Placeholder, &fq.Options, &fq.IsRequired, &fq.Metadata,
		&fq.CreatedAt, &fq.UpdatedAt,
	)
	return fq, err
}

const listQuestionsByFormID = `
SELECT ` + questionColumns + ` FROM form_questions WHERE form_id = $1 ORDER BY position`

func (q *Queries) ListQuestionsByFormID(ctx context.Context, formID uuid.UUID) ([]FormQuestion, error) {
	rows, err := q.db.QueryContext(ctx, listQuestionsByFormID, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FormQuestion
	for rows.Next() {
		var fq FormQuestion
		if err := rows.Scan(
			&fq.ID, &fq.FormID, &fq.Position, &fq.Type, &fq.Label, &fq.Description,
			&fq.Placeholder, &fq.Options, &fq.IsRequired, &fq.Metadata,
			&fq.CreatedAt, &fq.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, fq)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Plan is a row in the plans table.
type Plan struct {
	ID                uuid.UUID
	Slug              string
	Name              string
	Description       sql.NullString
	MonthlyPriceCents int64
	YearlyPriceCents  sql.NullInt64
	Limits            json.RawMessage
	IsDefault         bool
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const planColumns = `id, slug, name, description, monthly_price_cents, yearly_price_cents, limits, is_default, is_active, created_at, updated_at`

func scanPlan(row *sql.Row) (Plan, error) {
	var p Plan
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.MonthlyPriceCents,
		&p.YearlyPriceCents, &p.Limits, &p.IsDefault, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const getPlanByID = `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

func (q *Queries) GetPlanByID(ctx context.Context, id uuid.UUID) (Plan, error) {
	return scanPlan(q.db.QueryRowContext(ctx, getPlanByID, id))
}

const getDefaultPlan = `SELECT ` + planColumns + ` FROM plans WHERE is_default = true AND is_active = true ORDER BY created_at LIMIT 1`

func (q *Queries) GetDefaultPlan(ctx context.Context) (Plan, error) {
	return scanPlan(q.db.QueryRowContext(ctx, getDefaultPlan))
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageCounter is a row in the usage_counters table. One row per
// account, metric and billing period.
type UsageCounter struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Metric      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Value       int64
}

type UpsertUsageCounterParams struct {
	AccountID   uuid.UUID
	Metric      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Value       int64
}

const upsertUsageCounter = `
INSERT INTO usage_counters (account_id, metric, period_start, period_end, value)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (account_id, metric, period_start)
DO UPDATE SET value = EXCLUDED.value, period_end = EXCLUDED.period_end
RETURNING id, account_id, metric, period_start, period_end, value`

// UpsertUsageCounter overwrites the counter with the caller's value
// rather than incrementing in place.
func (q *Queries) UpsertUsageCounter(ctx context.Context, arg UpsertUsageCounterParams) (UsageCounter, error) {
	var c UsageCounter
	err := q.db.QueryRowContext(ctx, upsertUsageCounter,
		arg.AccountID, arg.Metric, arg.PeriodStart, arg.PeriodEnd, arg.Value,
	).Scan(&c.ID, &c.AccountID, &c.Metric, &c.PeriodStart, &c.PeriodEnd, &c.Value)
	return c, err
}

const getUsageCounter = `
SELECT id, account_id, metric, period_start, period_end, value
FROM usage_counters
WHERE account_id = $1 AND metric = $2 AND period_start = $3`

func (q *Queries) GetUsageCounter(ctx context.Context, accountID uuid.UUID, metric string, periodStart time.Time) (UsageCounter, error) {
	var c UsageCounter
	err := q.db.QueryRowContext(ctx, getUsageCounter, accountID, metric, periodStart).
		Scan(&c.ID, &c.AccountID, &c.Metric, &c.PeriodStart, &c.PeriodEnd, &c.Value)
	return c, err
}

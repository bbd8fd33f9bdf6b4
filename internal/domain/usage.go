package domain

import (
	"time"

	"github.com/google/uuid"
)

// MetricResponsesMonthly is the usage counter metric for monthly responses.
const MetricResponsesMonthly = "responses_monthly"

// UsageCounter is a persisted running count of a metered quantity for one
// billing period. One row exists per (account, metric, period start);
// concurrent writers converge on that row via upsert.
type UsageCounter struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Metric      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Value       int64
}

// QuotaUsage reports current consumption against a plan's ceilings for the
// usage endpoint. Nil limits mean unlimited.
type QuotaUsage struct {
	Projects           int64
	ProjectsLimit      *int64
	ResponsesThisMonth int64
	ResponsesLimit     *int64
	PeriodStart        time.Time
	PeriodEnd          time.Time
}

// MonthBoundaries returns the first instant of the month containing t and
// the first instant of the following month, both in UTC. The end bound is
// exclusive.
func MonthBoundaries(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/formpulse/internal/domain"
)

func makeDashboardResponse(submittedAt time.Time, rating *int32) domain.Response {
	return domain.Response{
		ID:          uuid.New(),
		FormID:      uuid.New(),
		SubmittedAt: submittedAt,
		Channel:     domain.ChannelQR,
		Rating:      rating,
	}
}

func TestLookbackStart(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	t.Run("short windows still fetch the full summary range", func(t *testing.T) {
		assert.Equal(t, now.Add(-21*24*time.Hour), lookbackStart(7, now))
	})

	t.Run("wide windows fetch the full trend range", func(t *testing.T) {
		assert.Equal(t, now.Add(-60*24*time.Hour), lookbackStart(60, now))
	})
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	five := int32(5)

	responses := []domain.Response{
		makeDashboardResponse(now.Add(-24*time.Hour), &five),
		makeDashboardResponse(now.Add(-25*24*time.Hour), nil),
		makeDashboardResponse(now.Add(-40*24*time.Hour), nil),
	}

	d := buildDashboard(responses, nil, 60, now)

	// The summary only sees the trailing three weeks.
	assert.Equal(t, int64(1), d.Summary.TotalResponses)

	// The trend buckets the full sixty days, including responses older
	// than the summary window.
	require.Len(t, d.Trend, 60)
	counted := int64(0)
	for _, p := range d.Trend {
		counted += p.Responses
	}
	assert.Equal(t, int64(3), counted)

	oldDate := now.Add(-40 * 24 * time.Hour).Format("2006-01-02")
	found := false
	for _, p := range d.Trend {
		if p.Date == oldDate {
			found = true
			assert.Equal(t, int64(1), p.Responses)
		}
	}
	assert.True(t, found, "bucket for the 40-day-old response is present")
}

package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// now is a Wednesday; the running week started Sunday 2025-03-09.
var summaryNow = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func responseAt(t time.Time, channel FormChannel, rating *int32) Response {
	return Response{
		ID:          uuid.New(),
		SubmittedAt: t,
		Channel:     channel,
		Rating:      rating,
	}
}

func int32Ptr(n int32) *int32 {
	return &n
}

func TestCalculateResponseSummary(t *testing.T) {
	responses := []Response{
		// this week (>= Sunday 2025-03-09)
		responseAt(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), ChannelQR, int32Ptr(5)),
		responseAt(time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC), ChannelWidget, int32Ptr(3)),
		// last week
		responseAt(time.Date(2025, 3, 8, 23, 59, 0, 0, time.UTC), ChannelQR, nil),
		responseAt(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), ChannelLink, int32Ptr(4)),
		// older than last week, still in total
		responseAt(time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC), ChannelQR, nil),
	}

	summary := CalculateResponseSummary(responses, summaryNow)

	assert.Equal(t, int64(5), summary.TotalResponses)
	assert.Equal(t, int64(2), summary.ResponsesThisWeek)
	assert.Equal(t, int64(2), summary.ResponsesLastWeek)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 4.0, *summary.AverageRating, 0.001)
	assert.Equal(t, 60, summary.QRShare)
	assert.Equal(t, 20, summary.WidgetShare)
}

func TestCalculateResponseSummary_Empty(t *testing.T) {
	summary := CalculateResponseSummary(nil, summaryNow)

	assert.Equal(t, int64(0), summary.TotalResponses)
	assert.Nil(t, summary.AverageRating)
	assert.Equal(t, 0, summary.QRShare)
	assert.Equal(t, 0, summary.WidgetShare)
}

func TestCalculateResponseTrend(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	responses := []Response{
		responseAt(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), ChannelQR, int32Ptr(4)),
		responseAt(time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC), ChannelQR, int32Ptr(2)),
		responseAt(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), ChannelLink, nil),
		// outside the window, ignored
		responseAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ChannelQR, int32Ptr(5)),
	}

	points := CalculateResponseTrend(responses, 7, now)
	require.Len(t, points, 7)

	// window runs 2025-03-06 .. 2025-03-12 inclusive
	assert.Equal(t, "2025-03-06", points[0].Date)
	assert.Equal(t, "2025-03-12", points[6].Date)

	byDate := map[string]TrendPoint{}
	for _, p := range points {
		byDate[p.Date] = p
	}

	assert.Equal(t, int64(2), byDate["2025-03-12"].Responses)
	require.NotNil(t, byDate["2025-03-12"].AverageRating)
	assert.InDelta(t, 3.0, *byDate["2025-03-12"].AverageRating, 0.001)

	assert.Equal(t, int64(1), byDate["2025-03-10"].Responses)
	assert.Nil(t, byDate["2025-03-10"].AverageRating)

	// empty day stays in the series with a zero count
	assert.Equal(t, int64(0), byDate["2025-03-08"].Responses)
	assert.Nil(t, byDate["2025-03-08"].AverageRating)
}

func TestCalculateResponseTrend_MinimumWindow(t *testing.T) {
	points := CalculateResponseTrend(nil, 0, summaryNow)
	require.Len(t, points, 1)
	assert.Equal(t, summaryNow.Format("2006-01-02"), points[0].Date)
}

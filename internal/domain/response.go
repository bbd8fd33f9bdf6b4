package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Response is one public feedback submission. Immutable once created.
type Response struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	FormID       uuid.UUID
	QRCodeID     *uuid.UUID
	SubmittedAt  time.Time
	Channel      FormChannel
	LocationName string
	Attributes   json.RawMessage
	IPHash       string
	UserAgent    string
	Rating       *int32
	Tags         []string
	CreatedAt    time.Time
}

// ResponseItem is one answered question within a response.
type ResponseItem struct {
	ID         uuid.UUID
	ResponseID uuid.UUID
	QuestionID *uuid.UUID
	Value      json.RawMessage
	CreatedAt  time.Time
}

// AnswerParams is one submitted answer.
type AnswerParams struct {
	QuestionID uuid.UUID
	Value      json.RawMessage
}

// SubmitResponseParams holds input for a public response submission.
// ShortCode, when present, attributes the submission to the QR code it
// was scanned from.
type SubmitResponseParams struct {
	FormID       uuid.UUID
	Channel      FormChannel
	ShortCode    string
	LocationName string
	Attributes   json.RawMessage
	Tags         []string
	Answers      []AnswerParams
	ClientIP     string
	UserAgent    string
}

// ResponseSummary aggregates recent responses for the dashboard.
type ResponseSummary struct {
	TotalResponses    int64
	ResponsesThisWeek int64
	ResponsesLastWeek int64
	AverageRating     *float64
	QRShare           int // percentage of responses arriving via QR
	WidgetShare       int // percentage of responses arriving via widget
}

// TrendPoint is one day's bucket in the response trend.
type TrendPoint struct {
	Date          string // YYYY-MM-DD
	Responses     int64
	AverageRating *float64
}

// weekStart returns midnight UTC of the most recent Sunday at or before t.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// CalculateResponseSummary computes dashboard totals over the given responses.
// Weeks start on Sunday; "this week" is the running week containing now,
// "last week" the seven days before it.
func CalculateResponseSummary(responses []Response, now time.Time) ResponseSummary {
	thisWeek := weekStart(now)
	lastWeek := thisWeek.AddDate(0, 0, -7)

	var summary ResponseSummary
	var ratingSum int64
	var ratingCount int64
	var qrCount, widgetCount int64

	for _, r := range responses {
		summary.TotalResponses++
		if !r.SubmittedAt.Before(thisWeek) {
			summary.ResponsesThisWeek++
		} else if !r.SubmittedAt.Before(lastWeek) {
			summary.ResponsesLastWeek++
		}
		if r.Rating != nil {
			ratingSum += int64(*r.Rating)
			ratingCount++
		}
		switch r.Channel {
		case ChannelQR:
			qrCount++
		case ChannelWidget:
			widgetCount++
		}
	}

	if ratingCount > 0 {
		avg := float64(ratingSum) / float64(ratingCount)
		summary.AverageRating = &avg
	}
	if summary.TotalResponses > 0 {
		summary.QRShare = int(math.Round(float64(qrCount) / float64(summary.TotalResponses) * 100))
		summary.WidgetShare = int(math.Round(float64(widgetCount) / float64(summary.TotalResponses) * 100))
	}
	return summary
}

// CalculateResponseTrend buckets responses into one point per day for the
// trailing window ending today. Days without responses are present with a
// zero count so chart axes stay stable.
func CalculateResponseTrend(responses []Response, days int, now time.Time) []TrendPoint {
	if days < 1 {
		days = 1
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	type bucket struct {
		count     int64
		ratingSum int64
		rated     int64
	}
	buckets := make(map[string]*bucket, days)
	points := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		buckets[date] = &bucket{}
		points = append(points, TrendPoint{Date: date})
	}

	for _, r := range responses {
		date := r.SubmittedAt.UTC().Format("2006-01-02")
		b, ok := buckets[date]
		if !ok {
			continue
		}
		b.count++
		if r.Rating != nil {
			b.ratingSum += int64(*r.Rating)
			b.rated++
		}
	}

	for i := range points {
		b := buckets[points[i].Date]
		points[i].Responses = b.count
		if b.rated > 0 {
			avg := float64(b.ratingSum) / float64(b.rated)
			points[i].AverageRating = &avg
		}
	}
	return points
}

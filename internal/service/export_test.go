package service

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/formpulse/internal/repository"
)

func TestExportTable(t *testing.T) {
	rating := repository.FormQuestion{ID: uuid.New(), Position: 1, Type: "rating", Label: "How was it?"}
	comment := repository.FormQuestion{ID: uuid.New(), Position: 2, Type: "long_text", Label: "Tell us more"}
	extras := repository.FormQuestion{ID: uuid.New(), Position: 3, Type: "multi_select", Label: "What stood out?"}
	questions := []repository.FormQuestion{rating, comment, extras}

	submittedAt := time.Date(2026, time.February, 10, 9, 30, 0, 0, time.UTC)
	full := repository.Response{
		ID:           uuid.New(),
		Channel:      "qr",
		LocationName: sql.NullString{String: "Window table", Valid: true},
		SubmittedAt:  submittedAt,
	}
	partial := repository.Response{
		ID:          uuid.New(),
		Channel:     "widget",
		SubmittedAt: submittedAt.Add(time.Hour),
	}
	responses := []repository.Response{full, partial}

	items := []repository.ResponseItemRow{
		{ResponseID: full.ID, QuestionID: uuid.NullUUID{UUID: rating.ID, Valid: true}, Value: json.RawMessage(`5`)},
		{ResponseID: full.ID, QuestionID: uuid.NullUUID{UUID: comment.ID, Valid: true}, Value: json.RawMessage(`"Great coffee"`)},
		{ResponseID: full.ID, QuestionID: uuid.NullUUID{UUID: extras.ID, Valid: true}, Value: json.RawMessage(`["service","music"]`)},
		// The partial response skips the rating and extras questions.
		{ResponseID: partial.ID, QuestionID: uuid.NullUUID{UUID: comment.ID, Valid: true}, Value: json.RawMessage(`"Too loud"`)},
	}

	header, rows := exportTable(questions, responses, items)

	assert.Equal(t, []string{"response_id", "channel", "location_name", "submitted_at", "How was it?", "Tell us more", "What stood out?"}, header)
	require.Len(t, rows, 2)

	assert.Equal(t, full.ID.String(), rows[0][0])
	assert.Equal(t, "qr", rows[0][1])
	assert.Equal(t, "Window table", rows[0][2])
	assert.Equal(t, "2026-02-10T09:30:00Z", rows[0][3])
	assert.Equal(t, "5", rows[0][4])
	assert.Equal(t, "Great coffee", rows[0][5])
	assert.Equal(t, "service; music", rows[0][6])

	// Unanswered questions leave empty cells in place; columns never shift.
	require.Len(t, rows[1], len(header))
	assert.Equal(t, "", rows[1][4])
	assert.Equal(t, "Too loud", rows[1][5])
	assert.Equal(t, "", rows[1][6])
}

func TestExportTableNoResponses(t *testing.T) {
	questions := []repository.FormQuestion{
		{ID: uuid.New(), Position: 1, Type: "rating", Label: "How was it?"},
	}

	header, rows := exportTable(questions, nil, nil)

	assert.Equal(t, []string{"response_id", "channel", "location_name", "submitted_at", "How was it?"}, header)
	assert.Empty(t, rows)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple name",
			input: "Lobby Feedback",
			want:  "lobby-feedback",
		},
		{
			name:  "diacritics stripped",
			input: "Café Térrasse",
			want:  "cafe-terrasse",
		},
		{
			name:  "punctuation collapses",
			input: "Q3 -- Drive-Thru!! Survey",
			want:  "q3-drive-thru-survey",
		},
		{
			name:  "leading and trailing separators dropped",
			input: "  (beta)  ",
			want:  "beta",
		},
		{
			name:  "nothing usable falls back",
			input: "!!!",
			want:  "form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.input))
		})
	}
}

func TestFormatAnswerValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "string answer",
			input: `"Great coffee"`,
			want:  "Great coffee",
		},
		{
			name:  "integer rating",
			input: `9`,
			want:  "9",
		},
		{
			name:  "fractional number keeps precision",
			input: `4.5`,
			want:  "4.5",
		},
		{
			name:  "multi select joins with semicolons",
			input: `["Service","Cleanliness","Price"]`,
			want:  "Service; Cleanliness; Price",
		},
		{
			name:  "boolean",
			input: `true`,
			want:  "true",
		},
		{
			name:  "null is empty",
			input: `null`,
			want:  "",
		},
		{
			name:  "empty is empty",
			input: ``,
			want:  "",
		},
		{
			name:  "invalid json passes through raw",
			input: `{not json`,
			want:  `{not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAnswerValue(json.RawMessage(tt.input)))
		})
	}
}

package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// ExportService writes response exports.
type ExportService interface {
	// ExportCSV streams a form's responses as CSV, one row per response
	// with one column per question. Returns the suggested filename.
	ExportCSV(ctx context.Context, formID, accountID uuid.UUID, w io.Writer) (string, error)
}

type exportService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(queries *repository.Queries, logger *slog.Logger) ExportService {
	return &exportService{
		queries: queries,
		logger:  logger,
	}
}

// ExportCSV streams a form's responses as CSV.
func (s *exportService) ExportCSV(ctx context.Context, formID, accountID uuid.UUID, w io.Writer) (string, error) {
	const op = "ExportService.ExportCSV"

	repoForm, err := s.queries.GetFormByIDAndAccountID(ctx, formID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFound(op, "form", formID.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", formID)
		return "", domain.Internal(err, op, "Failed to export responses")
	}

	repoQuestions, err := s.queries.ListQuestionsByFormID(ctx, formID)
	if err != nil {
		s.logger.Error("failed to list questions", "error", err, "op", op, "form_id", formID)
		return "", domain.Internal(err, op, "Failed to export responses")
	}

	repoResponses, err := s.queries.ListResponsesByFormID(ctx, formID)
	if err != nil {
		s.logger.Error("failed to list responses", "error", err, "op", op, "form_id", formID)
		return "", domain.Internal(err, op, "Failed to export responses")
	}

	items, err := s.queries.ListResponseItemsByFormID(ctx, formID)
	if err != nil {
		s.logger.Error("failed to list response items", "error", err, "op", op, "form_id", formID)
		return "", domain.Internal(err, op, "Failed to export responses")
	}

	header, rows := exportTable(repoQuestions, repoResponses, items)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return "", domain.Internal(err, op, "Failed to export responses")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return "", domain.Internal(err, op, "Failed to export responses")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", domain.Internal(err, op, "Failed to export responses")
	}

	filename := fmt.Sprintf("%s-responses-%s.csv",
		slugify(repoForm.Name), time.Now().UTC().Format("2006-01-02"))
	s.logger.Info("responses exported",
		"form_id", formID, "account_id", accountID, "rows", len(repoResponses))

	return filename, nil
}

// exportTable builds the CSV header and rows. One column per question in
// position order; an unanswered question leaves its cell empty without
// shifting the rest of the row.
func exportTable(questions []repository.FormQuestion, responses []repository.Response, items []repository.ResponseItemRow) ([]string, [][]string) {
	// question id -> column index, in position order
	columnByQuestion := make(map[uuid.UUID]int, len(questions))
	header := []string{"response_id", "channel", "location_name", "submitted_at"}
	for _, q := range questions {
		columnByQuestion[q.ID] = len(header)
		header = append(header, q.Label)
	}

	answers := make(map[uuid.UUID]map[uuid.UUID]string, len(responses))
	for _, item := range items {
		if !item.QuestionID.Valid {
			continue
		}
		byQuestion, ok := answers[item.ResponseID]
		if !ok {
			byQuestion = make(map[uuid.UUID]string)
			answers[item.ResponseID] = byQuestion
		}
		byQuestion[item.QuestionID.UUID] = formatAnswerValue(item.Value)
	}

	rows := make([][]string, 0, len(responses))
	for _, r := range responses {
		row := make([]string, len(header))
		row[0] = r.ID.String()
		row[1] = r.Channel
		row[2] = r.LocationName.String
		row[3] = r.SubmittedAt.UTC().Format(time.RFC3339)
		for questionID, col := range columnByQuestion {
			if byQuestion, ok := answers[r.ID]; ok {
				row[col] = byQuestion[questionID]
			}
		}
		rows = append(rows, row)
	}

	return header, rows
}

// formatAnswerValue renders a stored jsonb answer as a flat CSV cell.
// Arrays (multi-select answers) join with "; ".
func formatAnswerValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}

	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, fmt.Sprint(item))
			}
		}
		return strings.Join(parts, "; ")
	default:
		return string(raw)
	}
}

// slugify lowercases a name, strips diacritics and collapses everything
// else to hyphens so the export filename is safe everywhere.
func slugify(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "form"
	}
	return slug
}

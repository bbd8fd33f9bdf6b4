package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/metrics"
	"github.com/calebreed/formpulse/internal/service"
)

// FormHandler serves form management and CSV export.
type FormHandler struct {
	forms   service.FormService
	exports service.ExportService
	logger  *slog.Logger
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(forms service.FormService, exports service.ExportService, logger *slog.Logger) *FormHandler {
	return &FormHandler{forms: forms, exports: exports, logger: logger}
}

type createQuestionRequest struct {
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Placeholder string          `json:"placeholder"`
	Options     []string        `json:"options"`
	IsRequired  bool            `json:"is_required"`
	Metadata    json.RawMessage `json:"metadata"`
}

type createFormRequest struct {
	ProjectID       uuid.UUID               `json:"project_id"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description"`
	Channel         string                  `json:"channel"`
	ThankYouMessage string                  `json:"thank_you_message"`
	RedirectURL     string                  `json:"redirect_url"`
	Settings        json.RawMessage         `json:"settings"`
	Questions       []createQuestionRequest `json:"questions"`
}

// Create handles POST /api/forms.
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	var req createFormRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	questions := make([]domain.QuestionParams, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = domain.QuestionParams{
			Type:        domain.QuestionType(q.Type),
			Label:       q.Label,
			Description: q.Description,
			Placeholder: q.Placeholder,
			Options:     q.Options,
			IsRequired:  q.IsRequired,
			Metadata:    q.Metadata,
		}
	}

	form, err := h.forms.Create(r.Context(), account, domain.CreateFormParams{
		AccountID:       account.ID,
		ProjectID:       req.ProjectID,
		Name:            req.Name,
		Description:     req.Description,
		Channel:         domain.FormChannel(req.Channel),
		ThankYouMessage: req.ThankYouMessage,
		RedirectURL:     req.RedirectURL,
		Settings:        req.Settings,
		Questions:       questions,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"form": toFormWithQuestionsDTO(form)})
}

// List handles GET /api/forms. An optional project_id query parameter
// narrows the listing to one project.
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	var (
		forms []domain.Form
		err   error
	)
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("handler.forms", fmt.Sprintf("Invalid project_id %q", raw)))
			return
		}
		forms, err = h.forms.ListByProject(r.Context(), account.ID, projectID)
	} else {
		forms, err = h.forms.List(r.Context(), account.ID)
	}
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"forms": toFormDTOs(forms)})
}

// Get handles GET /api/forms/{formID}.
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	id, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	form, err := h.forms.GetByID(r.Context(), id, account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"form": toFormWithQuestionsDTO(form)})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/forms/{formID}/status.
func (h *FormHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	id, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	form, err := h.forms.UpdateStatus(r.Context(), id, account.ID, domain.FormStatus(req.Status))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"form": toFormDTO(*form)})
}

// ExportCSV handles GET /api/forms/{formID}/responses/export. The CSV
// streams directly to the response; errors after the first write can
// only truncate the download.
func (h *FormHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	id, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Resolve the form before committing to a CSV response so ownership
	// failures still produce a JSON error.
	if _, err := h.forms.GetByID(r.Context(), id, account.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Buffer the export so headers, including the filename, can still be
	// set after the service has run.
	var buf bytes.Buffer
	filename, err := h.exports.ExportCSV(r.Context(), id, account.ID, &buf)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("csv export write failed", slog.String("error", err.Error()))
		return
	}

	metrics.ExportsGenerated.Inc()
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/metrics"
	"github.com/calebreed/formpulse/internal/service"
)

// ResponseHandler serves public response submission and the owner-facing
// response listing.
type ResponseHandler struct {
	responses service.ResponseService
	forms     service.FormService
	logger    *slog.Logger
}

// NewResponseHandler creates a new ResponseHandler.
func NewResponseHandler(responses service.ResponseService, forms service.FormService, logger *slog.Logger) *ResponseHandler {
	return &ResponseHandler{responses: responses, forms: forms, logger: logger}
}

type submitAnswerRequest struct {
	QuestionID uuid.UUID       `json:"question_id"`
	Value      json.RawMessage `json:"value"`
}

type submitResponseRequest struct {
	Channel      string                `json:"channel"`
	ShortCode    string                `json:"short_code"`
	LocationName string                `json:"location_name"`
	Attributes   json.RawMessage       `json:"attributes"`
	Tags         []string              `json:"tags"`
	Answers      []submitAnswerRequest `json:"answers"`
}

// Submit handles POST /api/public/forms/{formID}/responses. No
// authentication; the form must be published and the account inside its
// monthly response quota.
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	formID, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req submitResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	answers := make([]domain.AnswerParams, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = domain.AnswerParams{QuestionID: a.QuestionID, Value: a.Value}
	}

	response, err := h.responses.Submit(r.Context(), domain.SubmitResponseParams{
		FormID:       formID,
		Channel:      domain.FormChannel(req.Channel),
		ShortCode:    req.ShortCode,
		LocationName: req.LocationName,
		Attributes:   req.Attributes,
		Tags:         req.Tags,
		Answers:      answers,
		ClientIP:     clientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		if domain.ErrorCode(err) == domain.EPLANLIMIT {
			metrics.QuotaRefusals.WithLabelValues("submit_response").Inc()
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.ResponsesSubmitted.WithLabelValues(string(response.Channel)).Inc()
	respondJSON(w, http.StatusCreated, map[string]interface{}{"response": toResponseDTO(*response)})
}

// List handles GET /api/forms/{formID}/responses.
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	formID, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	responses, err := h.responses.ListByForm(r.Context(), formID, account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"responses": toResponseDTOs(responses)})
}

// PublicForm handles GET /api/public/forms/{formID}. Renderers fetch the
// published form definition from here.
func (h *ResponseHandler) PublicForm(w http.ResponseWriter, r *http.Request) {
	formID, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	form, err := h.forms.GetPublic(r.Context(), formID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"form": toFormWithQuestionsDTO(form)})
}

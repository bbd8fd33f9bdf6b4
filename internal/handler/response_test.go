package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/formpulse/internal/domain"
)

type stubResponseService struct {
	submitFn func(ctx context.Context, params domain.SubmitResponseParams) (*domain.Response, error)
	listFn   func(ctx context.Context, formID, accountID uuid.UUID) ([]domain.Response, error)
}

func (s *stubResponseService) Submit(ctx context.Context, params domain.SubmitResponseParams) (*domain.Response, error) {
	return s.submitFn(ctx, params)
}

func (s *stubResponseService) ListByForm(ctx context.Context, formID, accountID uuid.UUID) ([]domain.Response, error) {
	return s.listFn(ctx, formID, accountID)
}

func TestResponseHandlerSubmit(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	formID := uuid.New()

	svc := &stubResponseService{
		submitFn: func(_ context.Context, params domain.SubmitResponseParams) (*domain.Response, error) {
			assert.Equal(t, formID, params.FormID)
			assert.Equal(t, domain.ChannelQR, params.Channel)
			assert.Equal(t, "ab3xk29q", params.ShortCode)
			return &domain.Response{
				ID:          uuid.New(),
				FormID:      params.FormID,
				SubmittedAt: time.Now(),
				Channel:     params.Channel,
			}, nil
		},
	}
	h := NewResponseHandler(svc, nil, logger)

	body := jsonBody(`{"channel":"qr","short_code":"ab3xk29q","answers":[]}`)
	r := httptest.NewRequest(http.MethodPost, "/api/public/forms/"+formID.String()+"/responses", body)
	r.SetPathValue("formID", formID.String())
	w := httptest.NewRecorder()

	h.Submit(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got struct {
		Response responseDTO `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, formID, got.Response.FormID)
	assert.Equal(t, "qr", got.Response.Channel)
}

func TestResponseHandlerSubmitQuotaExceeded(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	formID := uuid.New()

	svc := &stubResponseService{
		submitFn: func(context.Context, domain.SubmitResponseParams) (*domain.Response, error) {
			return nil, domain.PlanLimit("ResponseService.Submit", "Monthly response limit reached.")
		},
	}
	h := NewResponseHandler(svc, nil, logger)

	body := jsonBody(`{"channel":"widget","answers":[]}`)
	r := httptest.NewRequest(http.MethodPost, "/api/public/forms/"+formID.String()+"/responses", body)
	r.SetPathValue("formID", formID.String())
	w := httptest.NewRecorder()

	h.Submit(w, r)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestResponseHandlerSubmitBadFormID(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	h := NewResponseHandler(&stubResponseService{}, nil, logger)

	r := httptest.NewRequest(http.MethodPost, "/api/public/forms/nope/responses", jsonBody(`{}`))
	r.SetPathValue("formID", "nope")
	w := httptest.NewRecorder()

	h.Submit(w, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

package handler

import (
	"encoding/json"
	"log/slog"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/formpulse/internal/domain"
)

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusUnprocessableEntity},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTACCEPTING, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.EPLANLIMIT, http.StatusTooManyRequests},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"bogus", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponseEnvelope(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/projects", nil)

	ErrorResponse(w, r, logger, domain.PlanLimit("ProjectService.Create", "Plan limit reached. Upgrade to create more projects."))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.EPLANLIMIT, body.Error.Code)
	assert.Equal(t, "Plan limit reached. Upgrade to create more projects.", body.Error.Message)
}

func TestValidationErrorResponseFields(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/forms", nil)

	ve := domain.NewValidationError("FormService.Create", "name", "Form name is required.")
	ErrorResponse(w, r, logger, ve)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.EINVALID, body.Error.Code)
	assert.Equal(t, "Form name is required.", body.Error.Fields["name"])
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/projects", jsonBody(`{"name":"Cafe","bogus":true}`))

	var dst createProjectRequest
	err := decodeJSON(r, &dst)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestPathUUID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/projects/not-a-uuid", nil)
	r.SetPathValue("projectID", "not-a-uuid")

	_, err := pathUUID(r, "projectID")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", clientIP(r))

	r.Header.Set("X-Real-IP", "203.0.113.5")
	assert.Equal(t, "203.0.113.5", clientIP(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.2")
	assert.Equal(t, "198.51.100.7", clientIP(r))
}

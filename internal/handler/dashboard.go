package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/service"
)

// DashboardHandler serves the account overview and quota usage.
type DashboardHandler struct {
	dashboard service.DashboardService
	usage     service.UsageService
	logger    *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard service.DashboardService, usage service.UsageService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, usage: usage, logger: logger}
}

// Overview handles GET /api/dashboard. The days query parameter sizes
// the trend window; out-of-range values fall back to a week.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	dashboard, err := h.dashboard.Overview(r.Context(), account.ID, days)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toDashboardDTO(dashboard))
}

// Summary handles GET /api/dashboard/summary.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	dashboard, err := h.dashboard.Overview(r.Context(), account.ID, 7)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"summary": toDashboardDTO(dashboard).Summary})
}

// Trend handles GET /api/dashboard/trend?days=N.
func (h *DashboardHandler) Trend(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	dashboard, err := h.dashboard.Overview(r.Context(), account.ID, days)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"trend": toDashboardDTO(dashboard).Trend})
}

// Usage handles GET /api/usage.
func (h *DashboardHandler) Usage(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	usage, err := h.usage.GetUsage(r.Context(), account)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"usage": toUsageDTO(usage)})
}

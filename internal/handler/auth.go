package handler

import (
	"log/slog"
	"net/http"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/service"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	users    service.UserService
	logger   *slog.Logger
	isSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users service.UserService, logger *slog.Logger, isSecure bool) *AuthHandler {
	return &AuthHandler{
		users:    users,
		logger:   logger,
		isSecure: isSecure,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	AccountName string `json:"account_name"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), domain.RegisterParams{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		AccountName: req.AccountName,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"user": toUserDTO(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. The session token travels in an
// HttpOnly cookie, never the response body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.isSecure)
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": toUserDTO(result.User)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		if err := h.users.Logout(r.Context(), cookie.Value); err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
	}

	auth.ClearSessionCookie(w, h.isSecure)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": toUserDTO(user)})
}

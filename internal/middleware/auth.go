// Package middleware contains HTTP middleware. Middleware wraps
// http.Handler and composes through Stack.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/handler"
	"github.com/calebreed/formpulse/internal/service"
)

// AuthMiddleware authenticates requests from the session cookie and
// resolves the caller's account.
type AuthMiddleware struct {
	users    service.UserService
	accounts service.AccountService
	logger   *slog.Logger
	isSecure bool
}

// NewAuthMiddleware creates a new AuthMiddleware. isSecure should be true
// in production so the Secure cookie flag is set.
func NewAuthMiddleware(users service.UserService, accounts service.AccountService, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		users:    users,
		accounts: accounts,
		logger:   logger,
		isSecure: isSecure,
	}
}

// WithUser loads the user from the session cookie when present and always
// continues to the next handler. Invalid sessions clear the cookie.
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.GetBySessionToken(r.Context(), cookie.Value)
		if err != nil {
			auth.ClearSessionCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.SetUser(r.Context(), user)))
	})
}

// RequireUser rejects anonymous requests with 401. Must run after WithUser.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccount resolves the user's primary account, with its plan, and
// stores it in context. Must run after RequireUser.
func (m *AuthMiddleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUser(r.Context())
		if user == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		account, err := m.accounts.GetForUser(r.Context(), user.ID)
		if err != nil {
			handler.ErrorResponse(w, r, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.SetAccount(r.Context(), account)))
	})
}

// Stack composes middlewares so the first listed runs outermost.
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Package auth provides authentication context and cookie helpers.
//
// It is imported by both the middleware and handler packages, which keeps
// those two free of an import cycle.
package auth

import (
	"context"
	"net/http"

	"github.com/calebreed/formpulse/internal/domain"
)

const (
	// SessionCookieName is the cookie that carries the session token.
	SessionCookieName = "formpulse_session"

	// SessionCookieMaxAge matches the service session duration, in seconds.
	SessionCookieMaxAge = 30 * 24 * 60 * 60
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	userContextKey    contextKey = "user"
	accountContextKey contextKey = "account"
)

// GetUser retrieves the authenticated user from the context, nil when the
// request is anonymous.
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserFromRequest is a convenience wrapper around GetUser.
func GetUserFromRequest(r *http.Request) *domain.User {
	return GetUser(r.Context())
}

// SetUser stores a user in the context. Called by the auth middleware
// after validating a session token.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetAccount retrieves the caller's account, with plan, from the context.
// Only set on routes behind the account-resolving middleware.
func GetAccount(ctx context.Context) *domain.Account {
	account, ok := ctx.Value(accountContextKey).(*domain.Account)
	if !ok {
		return nil
	}
	return account
}

// GetAccountFromRequest is a convenience wrapper around GetAccount.
func GetAccountFromRequest(r *http.Request) *domain.Account {
	return GetAccount(r.Context())
}

// SetAccount stores the resolved account in the context.
func SetAccount(ctx context.Context, account *domain.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// SetSessionCookie writes the session cookie after login.
func SetSessionCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   SessionCookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

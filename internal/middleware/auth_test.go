package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/domain"
)

func TestStackOrdering(t *testing.T) {
	var order []string

	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Stack(tag("outer"), tag("middle"), tag("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "middle", "inner", "handler"}, order)
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	m := NewAuthMiddleware(nil, nil, slog.New(slog.DiscardHandler), false)

	called := false
	h := m.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRequireUserPassesAuthenticated(t *testing.T) {
	m := NewAuthMiddleware(nil, nil, slog.New(slog.DiscardHandler), false)

	called := false
	h := m.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	r = r.WithContext(auth.SetUser(r.Context(), &domain.User{ID: uuid.New(), Email: "owner@cafe.test"}))
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, called)
}

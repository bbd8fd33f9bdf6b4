package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid address", "owner@example.com", false},
		{"valid with subdomain", "team@feedback.example.co", false},
		{"empty", "", true},
		{"missing at", "ownerexample.com", true},
		{"missing local part", "@example.com", true},
		{"missing domain", "owner@", true},
		{"domain without dot", "owner@localhost", true},
		{"absurdly long", strings.Repeat("a", 250) + "@x.io", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"acceptable", "correct-horse", false},
		{"exact minimum", "12345678", false},
		{"too short", "1234567", true},
		{"exact maximum", strings.Repeat("x", 72), false},
		{"over bcrypt limit", strings.Repeat("x", 73), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionTokens(t *testing.T) {
	t.Run("tokens are long and unique", func(t *testing.T) {
		a, err := generateSessionToken()
		require.NoError(t, err)
		b, err := generateSessionToken()
		require.NoError(t, err)

		assert.Len(t, a, SessionTokenBytes*2)
		assert.NotEqual(t, a, b)
	})

	t.Run("stored hash never matches the raw token", func(t *testing.T) {
		token, err := generateSessionToken()
		require.NoError(t, err)

		hash := hashSessionToken(token)
		assert.Len(t, hash, 64)
		assert.NotEqual(t, token, hash)
		assert.Equal(t, hash, hashSessionToken(token), "hash must be deterministic")
	})
}

package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-house/internal/auth"
	"auction-house/services/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Revoke(context.Context, string, time.Time) error { return errors.New("redis down") }
func (brokenStore) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func protected(authn *auth.Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(authn), func(c *gin.Context) {
		c.String(http.StatusOK, helpers.CallerID(c))
	})
	return r
}

// Tests AuthMiddleware
func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	store := auth.NewMemoryRevocationStore()
	authn := auth.NewAuthenticator(tokens, store)

	valid, _, err := tokens.Issue("u1", "ada")
	require.NoError(t, err)
	revoked, revokedClaims, err := tokens.Issue("u1", "ada")
	require.NoError(t, err)
	require.NoError(t, authn.Revoke(context.Background(), revokedClaims))
	foreign, _, err := auth.NewTokenManager("other", time.Hour).Issue("u1", "ada")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		authn      *auth.Authenticator
		wantStatus int
		wantBody   string
	}{
		{name: "valid_token", header: "Bearer " + valid, authn: authn, wantStatus: http.StatusOK, wantBody: "u1"},
		{name: "missing_header", authn: authn, wantStatus: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic " + valid, authn: authn, wantStatus: http.StatusUnauthorized},
		{name: "empty_token", header: "Bearer  ", authn: authn, wantStatus: http.StatusUnauthorized},
		{name: "foreign_signature", header: "Bearer " + foreign, authn: authn, wantStatus: http.StatusUnauthorized},
		{name: "revoked_token", header: "Bearer " + revoked, authn: authn, wantStatus: http.StatusUnauthorized},
		{
			name:       "revocation_store_down",
			header:     "Bearer " + valid,
			authn:      auth.NewAuthenticator(tokens, brokenStore{}),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			protected(tc.authn).ServeHTTP(w, req)

			require.Equal(t, tc.wantStatus, w.Code)
			if tc.wantBody != "" {
				require.Equal(t, tc.wantBody, w.Body.String())
			}
		})
	}
}

// Tests that each client gets its own bucket
func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/bids", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/bids", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusCreated, send("10.0.0.1"))
	require.Equal(t, http.StatusCreated, send("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	require.Equal(t, http.StatusCreated, send("10.0.0.2"))

	now = now.Add(time.Second)
	require.Equal(t, http.StatusCreated, send("10.0.0.1"), "bucket refills over time")

	now = now.Add(time.Hour)
	require.Equal(t, 2, rl.Cleanup())
	require.Equal(t, 0, rl.Cleanup())
}

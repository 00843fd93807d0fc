package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapwitch/snapwitch/internal/api/middleware"
	"github.com/snapwitch/snapwitch/internal/auth"
)

func newAuthedHandler(tokens *auth.TokenService) http.Handler {
	return middleware.Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(middleware.GetClient(r.Context())))
	}))
}

func TestAuth_NilServiceDisablesAuth(t *testing.T) {
	handler := newAuthedHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingHeader(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{SigningKey: "k"})
	handler := newAuthedHandler(tokens)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestAuth_MalformedHeader(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{SigningKey: "k"})
	handler := newAuthedHandler(tokens)

	for _, header := range []string{"Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{SigningKey: "k"})
	handler := newAuthedHandler(tokens)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidTokenSetsClient(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{SigningKey: "k"})
	handler := newAuthedHandler(tokens)

	token, _, err := tokens.Issue("widget-app")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "widget-app", rec.Body.String())
}

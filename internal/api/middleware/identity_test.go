package middleware

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobmon-io/jobmon/internal/identity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func signedToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestCallerIdentityMiddleware(t *testing.T) {
	var captured CallerContext

	var found bool

	handler := CallerIdentity(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, found = GetCallerContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no forwarded token resolves to anonymous sentinel", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.True(t, found)
		assert.Equal(t, identity.AnonymousIdentity, captured.Identity)
		assert.False(t, captured.Authenticated)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("decodable token resolves to its email claim", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set(identity.ForwardedTokenHeader, signedToken(t, map[string]any{
			"email": "alice@example.com",
		}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.True(t, found)
		assert.Equal(t, "alice@example.com", captured.Identity)
		assert.True(t, captured.Authenticated)
	})

	t.Run("undecodable token resolves to opaque sentinel, request still served", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set(identity.ForwardedTokenHeader, "garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.True(t, found)
		assert.Equal(t, identity.OpaqueIdentity, captured.Identity)
		assert.True(t, captured.Authenticated)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetCallerContextWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetCallerContext(req.Context())

	assert.False(t, ok)
}

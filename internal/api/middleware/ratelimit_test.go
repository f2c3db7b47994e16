package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg *Config) *InMemoryRateLimiter {
	t.Helper()

	rl := NewInMemoryRateLimiter(cfg)
	t.Cleanup(rl.Close)

	return rl
}

func TestInMemoryRateLimiterTiers(t *testing.T) {
	t.Run("anonymous requests share one bucket", func(t *testing.T) {
		rl := newTestLimiter(t, &Config{GlobalRPS: 1000, CallerRPS: 1000, AnonymousRPS: 1, AnonymousBurst: 2})

		assert.True(t, rl.Allow(""))
		assert.True(t, rl.Allow(""))
		assert.False(t, rl.Allow(""))
	})

	t.Run("callers get independent buckets", func(t *testing.T) {
		rl := newTestLimiter(t, &Config{GlobalRPS: 1000, CallerRPS: 1, CallerBurst: 1, AnonymousRPS: 1000})

		assert.True(t, rl.Allow("alice@example.com"))
		assert.False(t, rl.Allow("alice@example.com"))
		assert.True(t, rl.Allow("bob@example.com"))
	})

	t.Run("global limit applies before caller limits", func(t *testing.T) {
		rl := newTestLimiter(t, &Config{GlobalRPS: 1, GlobalBurst: 1, CallerRPS: 1000, AnonymousRPS: 1000})

		assert.True(t, rl.Allow("alice@example.com"))
		assert.False(t, rl.Allow("bob@example.com"))
	})
}

func TestComputeBurstCapacity(t *testing.T) {
	assert.Equal(t, 200, computeBurstCapacity(100, 0))
	assert.Equal(t, 500, computeBurstCapacity(100, 500))
}

func TestInMemoryRateLimiterCleanup(t *testing.T) {
	rl := newTestLimiter(t, &Config{
		GlobalRPS:       1000,
		CallerRPS:       1000,
		AnonymousRPS:    1000,
		CleanupInterval: time.Hour,
		IdleTimeout:     time.Nanosecond,
	})

	rl.Allow("alice@example.com")

	time.Sleep(time.Millisecond)
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Empty(t, rl.perCaller)
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed requests pass through", func(t *testing.T) {
		rl := newTestLimiter(t, &Config{GlobalRPS: 1000, CallerRPS: 1000, AnonymousRPS: 1000})
		handler := RateLimit(rl, discardLogger())(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("limited requests get a 429 problem response", func(t *testing.T) {
		rl := newTestLimiter(t, &Config{GlobalRPS: 1, GlobalBurst: 1, CallerRPS: 1000, AnonymousRPS: 1000})
		handler := RateLimit(rl, discardLogger())(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

		var problem map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, "https://jobmon.io/problems/429", problem["type"])
		assert.Equal(t, "/api/jobs", problem["instance"])
	})

	t.Run("authenticated callers are limited by identity", func(t *testing.T) {
		rl := newTestLimiter(t, &Config{GlobalRPS: 1000, CallerRPS: 1, CallerBurst: 1, AnonymousRPS: 1000})
		handler := RateLimit(rl, discardLogger())(next)

		send := func(identity string) int {
			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			req = req.WithContext(SetCallerContext(req.Context(), CallerContext{
				Identity:      identity,
				Authenticated: true,
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			return rec.Code
		}

		assert.Equal(t, http.StatusOK, send("alice@example.com"))
		assert.Equal(t, http.StatusTooManyRequests, send("alice@example.com"))
		assert.Equal(t, http.StatusOK, send("bob@example.com"))
	})
}

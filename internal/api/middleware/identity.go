// Package middleware provides HTTP middleware components for the jobmon API.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobmon-io/jobmon/internal/identity"
)

// callerContextKey is the context key for caller identity information.
// Using a struct type prevents collisions with other context keys.
type callerContextKey struct{}

// CallerContext contains the resolved caller identity enriched in the
// request context by the identity middleware.
//
// The platform proxy authenticates users before forwarding requests, so the
// middleware never rejects. Authenticated reports whether a forwarded token
// was present at all; it does not certify the token.
type CallerContext struct {
	// Identity is the display identity of the caller. Always set: requests
	// without a forwarded token resolve to the anonymous sentinel.
	Identity string

	// Authenticated is true when the request carried a forwarded access token.
	Authenticated bool

	// AuthTime is when the identity was resolved (for latency tracking).
	AuthTime time.Time
}

// GetCallerContext extracts caller context from the request context.
// Returns (context, true) when the identity middleware ran, (empty, false)
// otherwise.
func GetCallerContext(ctx context.Context) (CallerContext, bool) {
	callerCtx, ok := ctx.Value(callerContextKey{}).(CallerContext)

	return callerCtx, ok
}

// SetCallerContext adds caller context to the request context.
func SetCallerContext(ctx context.Context, callerCtx CallerContext) context.Context {
	return context.WithValue(ctx, callerContextKey{}, callerCtx)
}

// CallerIdentity creates a middleware that resolves the caller identity from
// the forwarded access token and enriches the request context with it.
//
// Resolution never fails the request: a missing or undecodable token resolves
// to a sentinel identity. Downstream consumers are per-caller rate limiting
// and request logging.
func CallerIdentity(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(identity.ForwardedTokenHeader)

			callerCtx := CallerContext{
				Identity:      identity.CallerIdentity(token),
				Authenticated: token != "",
				AuthTime:      time.Now(),
			}

			logger.Debug("caller identity resolved",
				slog.String("identity", callerCtx.Identity),
				slog.Bool("authenticated", callerCtx.Authenticated),
				slog.String("correlation_id", GetCorrelationID(r.Context())),
				slog.String("endpoint", r.URL.Path),
			)

			ctx := SetCallerContext(r.Context(), callerCtx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

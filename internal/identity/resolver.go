// Package identity resolves the acting principal for upstream workspace calls.
//
// Two principals exist: a process-wide service principal constructed once at
// startup, and a per-request delegated principal built from the OAuth token
// the platform forwards in the X-Forwarded-Access-Token header.
//
// Trust boundary: the forwarded token is decoded without signature
// verification. The platform boundary is trusted to have validated it before
// forwarding, so claims read here are informational (logging, display) only
// and must never feed an authorization decision.
package identity

import (
	"log/slog"

	"github.com/golang-jwt/jwt"

	"github.com/jobmon-io/jobmon/internal/platform"
)

// ForwardedTokenHeader is the header the platform uses to forward the end
// user's OAuth access token into the app.
const ForwardedTokenHeader = "X-Forwarded-Access-Token"

const (
	// AnonymousIdentity is the caller identity when no token was forwarded
	// at all (local development, direct curl).
	AnonymousIdentity = "local-dev-user"

	// OpaqueIdentity is the caller identity when a token was forwarded but
	// its claims could not be decoded. Kept distinct from AnonymousIdentity
	// so logs can separate "running without auth" from "auth present but
	// unparseable".
	OpaqueIdentity = "authenticated-user@databricks.com"
)

// identityClaims is the closed set of claims consulted for the caller
// identity, in precedence order. First present non-empty value wins.
var identityClaims = []string{"email", "sub", "preferred_username"}

// Resolver builds workspace clients for the two principal kinds.
//
// The service principal is attempted exactly once, at construction. Failure
// leaves it absent for the rest of the process: the degraded state is carried
// as a nil client rather than an error so callers can inspect it directly.
type Resolver struct {
	host    string
	service *platform.Client
}

// NewResolver constructs the resolver and attempts the one-time service
// principal setup. There is no reinitialization path.
func NewResolver(cfg *platform.Config, logger *slog.Logger) *Resolver {
	r := &Resolver{host: cfg.Host}

	service, err := platform.NewClient(cfg.Host, platform.WithToken(cfg.Token))
	if err != nil {
		logger.Warn("Service principal unavailable, system table endpoints degrade to empty results",
			slog.String("error", err.Error()),
		)

		return r
	}

	r.service = service

	return r
}

// Service returns the process-wide service principal client, or nil when
// startup construction failed.
func (r *Resolver) Service() *platform.Client {
	return r.service
}

// Delegated returns a client acting on behalf of the user identified by the
// forwarded token, or nil when no token was forwarded. A fresh client is
// built on every call: each request may carry a different user's token, so
// delegated clients are never cached.
func (r *Resolver) Delegated(token string) *platform.Client {
	if token == "" {
		return nil
	}

	client, err := platform.NewClient(r.host, platform.WithToken(token))
	if err != nil {
		return nil
	}

	return client
}

// CallerIdentity extracts a display identity from the forwarded token.
//
// The token payload is decoded without verification (see package doc) and the
// identity claims are consulted in fixed precedence order. Decoding failures
// of any kind resolve to a sentinel, never an error: OpaqueIdentity when a
// token was present, AnonymousIdentity when it was not.
func CallerIdentity(token string) string {
	if token == "" {
		return AnonymousIdentity
	}

	parser := jwt.Parser{SkipClaimsValidation: true}

	claims := &jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return OpaqueIdentity
	}

	for _, key := range identityClaims {
		if value, ok := (*claims)[key].(string); ok && value != "" {
			return value
		}
	}

	return OpaqueIdentity
}

// Package api provides the HTTP API server for the jobmon service.
package api

import (
	"net/http"
	"strings"

	"github.com/jobmon-io/jobmon/internal/identity"
)

// handleMe returns the caller's identity. Never errors: identity resolution
// falls back to sentinel values for missing or undecodable tokens.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email := identity.CallerIdentity(r.Header.Get(identity.ForwardedTokenHeader))

	displayName := email
	if at := strings.Index(email, "@"); at >= 0 {
		displayName = email[:at]
	}

	s.writeJSON(w, r, UserInfo{
		Email:       email,
		DisplayName: displayName,
	})
}

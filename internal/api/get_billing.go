// Package api provides the HTTP API server for the jobmon service.
package api

import (
	"net/http"
)

const (
	defaultBillingDays = 30
	maxBillingDays     = 365
)

// handleBillingUsage returns aggregated billing usage within the requested
// day window, ordered by date descending then net amount descending.
func (s *Server) handleBillingUsage(w http.ResponseWriter, r *http.Request) {
	days, err := parseBoundedInt(r.URL.Query(), "days", defaultBillingDays, 1, maxBillingDays)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	usage, err := s.system.BillingUsage(r.Context(), days)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list billing usage: "+err.Error()))

		return
	}

	s.writeJSON(w, r, usage)
}

// handleBillingByJob returns per-job billing aggregates within the requested
// day window, ordered by net amount descending.
func (s *Server) handleBillingByJob(w http.ResponseWriter, r *http.Request) {
	days, err := parseBoundedInt(r.URL.Query(), "days", defaultBillingDays, 1, maxBillingDays)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	byJob, err := s.system.BillingByJob(r.Context(), days)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list billing by job: "+err.Error()))

		return
	}

	s.writeJSON(w, r, byJob)
}

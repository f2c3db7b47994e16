// Package api provides the HTTP API server for the jobmon service.
package api

import (
	"net/http"
)

const (
	defaultRunDays = 7
	maxRunDays     = 90
)

// handleJobs returns the latest version of every job definition from the
// system tables. Serves an empty list when the warehouse is unconfigured.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.system.Jobs(r.Context())
	if err != nil {
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list jobs: "+err.Error()))

		return
	}

	s.writeJSON(w, r, jobs)
}

// handleJobRuns returns job runs within the requested day window, newest
// first.
func (s *Server) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	days, err := parseBoundedInt(r.URL.Query(), "days", defaultRunDays, 1, maxRunDays)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	runs, err := s.system.JobRuns(r.Context(), days)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list job runs: "+err.Error()))

		return
	}

	s.writeJSON(w, r, runs)
}

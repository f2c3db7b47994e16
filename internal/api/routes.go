// Package api provides the HTTP API server for the jobmon service.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobmon-io/jobmon/internal/api/middleware"
)

// setupRoutes sets up all HTTP routes for the API server.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Identity
	mux.HandleFunc("GET /api/me", s.handleMe)

	// System table endpoints (lagged, empty when unconfigured)
	mux.HandleFunc("GET /api/jobs", s.handleJobs)
	mux.HandleFunc("GET /api/jobs/runs", s.handleJobRuns)
	mux.HandleFunc("GET /api/billing/usage", s.handleBillingUsage)
	mux.HandleFunc("GET /api/billing/by-job", s.handleBillingByJob)

	// Jobs API endpoints (real-time, 503 without a principal)
	mux.HandleFunc("GET /api/jobs-api/list", s.handleLiveJobs)
	mux.HandleFunc("GET /api/jobs-api/runs/{jobId}", s.handleLiveRuns)
	mux.HandleFunc("GET /api/jobs-api/active", s.handleActiveRuns)

	// Catch-all handler for 404 responses
	mux.HandleFunc("/", s.handleNotFound)
}

// handleHealth returns health status. Never errors: health is served even
// when every upstream is unconfigured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var uptime string

	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Round(time.Second).String()
	}

	s.writeJSON(w, r, HealthStatus{
		Status:  "ok",
		Version: s.config.Version,
		Uptime:  uptime,
	})
}

// handleNotFound returns RFC 7807 compliant 404 responses for unknown endpoints.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, s.logger, NotFound("The requested resource was not found"))
}

// writeJSON writes a 200 response with a JSON body. Encoding failures after
// the header is sent can only be logged.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to encode response",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write response",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

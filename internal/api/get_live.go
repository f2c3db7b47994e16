// Package api provides the HTTP API server for the jobmon service.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jobmon-io/jobmon/internal/identity"
	"github.com/jobmon-io/jobmon/internal/monitor"
	"github.com/jobmon-io/jobmon/internal/platform"
)

const (
	defaultLiveJobsLimit = 100
	maxLiveJobsLimit     = 1000
	defaultLiveRunsLimit = 20
	maxLiveRunsLimit     = 100

	noPrincipalDetail = "Workspace client not available. Check platform credentials."
)

// liveClient resolves the Jobs API client for this request, preferring a
// client delegated from the forwarded token. Writes the 503 problem response
// itself when no principal is available.
//
// Live endpoints cannot serve empty results without a client: unlike the
// system table endpoints they have no other data source, so "no principal"
// is unavailability, not "no data".
func (s *Server) liveClient(w http.ResponseWriter, r *http.Request) (JobsClient, bool) {
	client, ok := s.live.ClientFor(r.Header.Get(identity.ForwardedTokenHeader))
	if !ok {
		WriteErrorResponse(w, r, s.logger, ServiceUnavailable(noPrincipalDetail))

		return nil, false
	}

	return client, true
}

// handleLiveJobs lists job definitions from the real-time Jobs API.
func (s *Server) handleLiveJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseBoundedInt(r.URL.Query(), "limit", defaultLiveJobsLimit, 1, maxLiveJobsLimit)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	client, ok := s.liveClient(w, r)
	if !ok {
		return
	}

	jobs, err := client.ListJobs(r.Context(), limit)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list jobs: "+err.Error()))

		return
	}

	out := make([]monitor.LiveJob, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, monitor.NormalizeLiveJob(job))
	}

	s.writeJSON(w, r, out)
}

// handleLiveRuns lists recent runs for one job from the real-time Jobs API.
func (s *Server) handleLiveRuns(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(r.PathValue("jobId"), 10, 64)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("jobId must be an integer"))

		return
	}

	limit, err := parseBoundedInt(r.URL.Query(), "limit", defaultLiveRunsLimit, 1, maxLiveRunsLimit)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	client, ok := s.liveClient(w, r)
	if !ok {
		return
	}

	runs, err := client.ListRuns(r.Context(), jobID, limit)
	if err != nil {
		detail := fmt.Sprintf("Failed to list runs for job %d: %s", jobID, err.Error())
		WriteErrorResponse(w, r, s.logger, InternalServerError(detail))

		return
	}

	s.writeJSON(w, r, normalizeLiveRuns(runs))
}

// handleActiveRuns lists all currently active runs from the real-time Jobs
// API. This is the endpoint dashboards poll for "currently running" status:
// the system tables lag by minutes.
func (s *Server) handleActiveRuns(w http.ResponseWriter, r *http.Request) {
	client, ok := s.liveClient(w, r)
	if !ok {
		return
	}

	runs, err := client.ListActiveRuns(r.Context())
	if err != nil {
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to get active runs: "+err.Error()))

		return
	}

	out := normalizeLiveRuns(runs)

	s.writeJSON(w, r, ActiveRunsResponse{
		TotalActive: len(out),
		Runs:        out,
	})
}

func normalizeLiveRuns(runs []platform.Run) []monitor.LiveRun {
	out := make([]monitor.LiveRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, monitor.NormalizeLiveRun(run))
	}

	return out
}

// Package api provides the HTTP API server for the jobmon service.
package api

import "github.com/jobmon-io/jobmon/internal/monitor"

type (
	// HealthStatus is the health check response structure.
	HealthStatus struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Uptime  string `json:"uptime,omitempty"`
	}

	// UserInfo is the current-user response structure. DisplayName is the
	// local part of the email when the identity looks like one, otherwise
	// the identity verbatim.
	UserInfo struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"` //nolint: tagliatelle
	}

	// ActiveRunsResponse is the active-runs response structure.
	ActiveRunsResponse struct {
		TotalActive int               `json:"total_active"` //nolint: tagliatelle
		Runs        []monitor.LiveRun `json:"runs"`
	}
)

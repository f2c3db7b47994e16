// Package api provides the HTTP API server for the jobmon service.
package api

import (
	"context"

	"github.com/jobmon-io/jobmon/internal/identity"
	"github.com/jobmon-io/jobmon/internal/monitor"
	"github.com/jobmon-io/jobmon/internal/platform"
)

type (
	// SystemStore reads job and billing projections from workspace system
	// tables. Implemented by *monitor.Store; declared here so handler tests
	// can substitute a fake.
	//
	// An unconfigured store degrades to empty results without error; only
	// genuine upstream failures return one.
	SystemStore interface {
		Configured() bool
		Jobs(ctx context.Context) ([]monitor.JobRecord, error)
		JobRuns(ctx context.Context, days int) ([]monitor.JobRunRecord, error)
		BillingUsage(ctx context.Context, days int) ([]monitor.BillingUsageRecord, error)
		BillingByJob(ctx context.Context, days int) ([]monitor.BillingByJobRecord, error)
	}

	// JobsClient is the real-time Jobs API surface the live handlers need.
	// Implemented by *platform.Client.
	JobsClient interface {
		ListJobs(ctx context.Context, limit int) ([]platform.Job, error)
		ListRuns(ctx context.Context, jobID int64, limit int) ([]platform.Run, error)
		ListActiveRuns(ctx context.Context) ([]platform.Run, error)
	}

	// LiveSource yields a Jobs API client for a request. Unlike SystemStore,
	// live endpoints cannot degrade to empty results: with no client there is
	// no data source, and the handler surfaces 503.
	LiveSource interface {
		// ClientFor returns the client to use for a request carrying the
		// given forwarded token ("" when absent). Returns (nil, false) when
		// no principal is available.
		ClientFor(token string) (JobsClient, bool)
	}

	// resolverSource adapts identity.Resolver to LiveSource. A delegated
	// client built from the forwarded token takes precedence; the service
	// principal is the fallback.
	resolverSource struct {
		resolver *identity.Resolver
	}
)

// NewResolverSource wraps an identity resolver as a LiveSource.
func NewResolverSource(resolver *identity.Resolver) LiveSource {
	return &resolverSource{resolver: resolver}
}

func (s *resolverSource) ClientFor(token string) (JobsClient, bool) {
	if s.resolver == nil {
		return nil, false
	}

	// Nil concrete clients must not escape into the interface value, or the
	// handler's nil check would pass on a dead client.
	if token != "" {
		if delegated := s.resolver.Delegated(token); delegated != nil {
			return delegated, true
		}
	}

	if service := s.resolver.Service(); service != nil {
		return service, true
	}

	return nil, false
}

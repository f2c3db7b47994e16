package monitor

import (
	"context"

	"github.com/jobmon-io/jobmon/internal/aliasing"
	"github.com/jobmon-io/jobmon/internal/platform"
)

// Querier executes SQL statements against a warehouse. Implemented by
// *platform.Client; declared here so tests can substitute a fake.
type Querier interface {
	ExecuteStatement(ctx context.Context, warehouseID, statement string) (*platform.StatementResponse, error)
}

// Store reads system-table projections through a warehouse endpoint.
//
// A Store without a querier or warehouse ID is a degraded but valid state:
// every read returns an empty result instead of an error. Missing
// configuration reduces availability for these endpoints, it is not a fault.
// Warehouse call failures, by contrast, propagate to the caller untouched.
type Store struct {
	querier     Querier
	warehouseID string
	skus        *aliasing.Resolver
}

// NewStore creates a store. querier may be nil (no service principal) and
// warehouseID may be empty (no warehouse configured); both degrade reads to
// empty results. skus may be nil for passthrough SKU names.
func NewStore(querier Querier, warehouseID string, skus *aliasing.Resolver) *Store {
	return &Store{
		querier:     querier,
		warehouseID: warehouseID,
		skus:        skus,
	}
}

// Configured reports whether the store has a working upstream. Exposed for
// startup logging only; reads handle the degraded state themselves.
func (s *Store) Configured() bool {
	return s.querier != nil && s.warehouseID != ""
}

// Jobs returns the latest non-deleted version of every job definition.
func (s *Store) Jobs(ctx context.Context) ([]JobRecord, error) {
	if !s.Configured() {
		return []JobRecord{}, nil
	}

	resp, err := s.querier.ExecuteStatement(ctx, s.warehouseID, JobVersionsQuery())
	if err != nil {
		return nil, err
	}

	return LatestJobVersions(NormalizeJobVersions(resp)), nil
}

// JobRuns returns runs from the run timeline within the day window, newest
// first.
func (s *Store) JobRuns(ctx context.Context, days int) ([]JobRunRecord, error) {
	if !s.Configured() {
		return []JobRunRecord{}, nil
	}

	resp, err := s.querier.ExecuteStatement(ctx, s.warehouseID, JobRunsQuery(days))
	if err != nil {
		return nil, err
	}

	return NormalizeJobRuns(resp), nil
}

// BillingUsage returns aggregated billing groups within the day window.
func (s *Store) BillingUsage(ctx context.Context, days int) ([]BillingUsageRecord, error) {
	if !s.Configured() {
		return []BillingUsageRecord{}, nil
	}

	resp, err := s.querier.ExecuteStatement(ctx, s.warehouseID, BillingUsageQuery(days))
	if err != nil {
		return nil, err
	}

	return SumUsage(s.aliasSkus(NormalizeUsageRows(resp))), nil
}

// BillingByJob returns per-job billing aggregates within the day window.
func (s *Store) BillingByJob(ctx context.Context, days int) ([]BillingByJobRecord, error) {
	if !s.Configured() {
		return []BillingByJobRecord{}, nil
	}

	resp, err := s.querier.ExecuteStatement(ctx, s.warehouseID, BillingByJobQuery(days))
	if err != nil {
		return nil, err
	}

	return SumUsageByJob(s.aliasSkus(NormalizeUsageRows(resp))), nil
}

// aliasSkus rewrites SKU names to their display aliases before grouping, so
// a renamed SKU still nets against its retractions.
func (s *Store) aliasSkus(rows []UsageRow) []UsageRow {
	if s.skus == nil || s.skus.Count() == 0 {
		return rows
	}

	for i := range rows {
		rows[i].SkuName = s.skus.Resolve(rows[i].SkuName)
	}

	return rows
}

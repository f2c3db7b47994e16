package monitor

import "fmt"

// SQL templates for the workspace system tables. The queries fetch raw rows;
// retraction filtering and latest-version selection happen in aggregate.go so
// both rules live in one audited code path instead of being scattered across
// SQL strings. The day window is interpolated as an integer that the endpoint
// layer has already bounds-checked.

const jobRunTimelineSQL = `
SELECT run_id, job_id, period_start_time, period_end_time,
       run_duration_seconds, result_state
FROM system.lakeflow.job_run_timeline
WHERE period_start_time >= current_date() - INTERVAL %d DAYS
ORDER BY period_start_time DESC
LIMIT 1000
`

// All non-deleted versions of every job. delete_time IS NULL is a row
// validity filter, not part of the latest-version rule.
const jobVersionsSQL = `
SELECT workspace_id, job_id, name, creator_user_name, run_as_user_name, change_time
FROM system.lakeflow.jobs
WHERE delete_time IS NULL
`

const billingUsageSQL = `
SELECT usage_date, usage_metadata.job_id, usage_metadata.cluster_id,
       sku_name, usage_quantity
FROM system.billing.usage
WHERE usage_date >= current_date() - INTERVAL %d DAYS
`

// Same raw rows restricted to job-attributed usage. The job_id IS NOT NULL
// predicate excludes general-purpose compute rows, which carry no job
// reference upstream.
const billingByJobSQL = `
SELECT usage_date, usage_metadata.job_id, usage_metadata.cluster_id,
       sku_name, usage_quantity
FROM system.billing.usage
WHERE usage_date >= current_date() - INTERVAL %d DAYS
  AND usage_metadata.job_id IS NOT NULL
`

// JobRunsQuery returns the run timeline query for the given day window.
func JobRunsQuery(days int) string {
	return fmt.Sprintf(jobRunTimelineSQL, days)
}

// JobVersionsQuery returns the query for all non-deleted job versions.
func JobVersionsQuery() string {
	return jobVersionsSQL
}

// BillingUsageQuery returns the raw usage query for the given day window.
func BillingUsageQuery(days int) string {
	return fmt.Sprintf(billingUsageSQL, days)
}

// BillingByJobQuery returns the job-attributed usage query for the given day window.
func BillingByJobQuery(days int) string {
	return fmt.Sprintf(billingByJobSQL, days)
}

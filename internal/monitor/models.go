// Package monitor holds the domain models and normalization rules for job
// execution and billing data read from workspace system tables and the Jobs
// API. Nothing here is persisted: every record is a transient projection of
// an upstream query, rebuilt per request.
package monitor

import (
	"math/big"
	"time"
)

// Result states reported for a finished job run.
const (
	ResultSuccess  = "SUCCESS"
	ResultFailed   = "FAILED"
	ResultRunning  = "RUNNING"
	ResultPending  = "PENDING"
	ResultCanceled = "CANCELED"
	ResultSkipped  = "SKIPPED"
)

// LifecycleUnknown is the sentinel lifecycle state for Jobs API runs that
// arrive without one. Result state gets no sentinel: it stays absent until
// the run reaches a terminal lifecycle.
const LifecycleUnknown = "UNKNOWN"

type (
	// JobRecord is the latest version of a job definition from the
	// slowly-changing jobs dimension. Natural key: (workspace, job).
	JobRecord struct {
		JobID           string  `json:"job_id"`
		Name            string  `json:"name"`
		CreatorUserName *string `json:"creator_user_name"`
		RunAsUserName   *string `json:"run_as_user_name"`
		Schedule        *string `json:"schedule"`
	}

	// JobRunRecord is one run from the time-partitioned run timeline.
	JobRunRecord struct {
		RunID              string     `json:"run_id"`
		JobID              string     `json:"job_id"`
		PeriodStartTime    time.Time  `json:"period_start_time"`
		PeriodEndTime      *time.Time `json:"period_end_time"`
		RunDurationSeconds *int64     `json:"run_duration_seconds"`
		ResultState        *string    `json:"result_state"`
	}

	// BillingUsageRecord is one aggregated billing group. JobID is null for
	// general-purpose compute: only job and serverless compute carry a job
	// reference in upstream usage metadata.
	BillingUsageRecord struct {
		UsageDate string  `json:"usage_date"`
		JobID     *string `json:"job_id"`
		ClusterID *string `json:"cluster_id"`
		SkuName   string  `json:"sku_name"`
		TotalDBUs float64 `json:"total_dbus"`
	}

	// BillingByJobRecord aggregates usage per (job, SKU) with the count of
	// distinct usage dates contributing to the group.
	BillingByJobRecord struct {
		JobID     string  `json:"job_id"`
		SkuName   string  `json:"sku_name"`
		TotalDBUs float64 `json:"total_dbus"`
		UsageDays int     `json:"usage_days"`
	}

	// LiveJob is a job definition from the real-time Jobs API.
	LiveJob struct {
		JobID           int64      `json:"job_id"`
		Name            string     `json:"name"`
		CreatorUserName *string    `json:"creator_user_name"`
		CreatedTime     *time.Time `json:"created_time"`
		SettingsFormat  *string    `json:"settings_format"`
	}

	// LiveRun is a job run from the real-time Jobs API. State is the
	// lifecycle state; ResultState is only set once the run is terminal.
	LiveRun struct {
		RunID       int64      `json:"run_id"`
		JobID       int64      `json:"job_id"`
		RunName     *string    `json:"run_name"`
		State       string     `json:"state"`
		ResultState *string    `json:"result_state"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
		RunPageURL  *string    `json:"run_page_url"`
	}

	// UsageRow is one signed usage record before aggregation. Retractions
	// arrive as rows with negative Quantity under the same group key.
	// Quantity stays an exact rational so a reversal cancels its original
	// to precisely zero, however many fractional rows are involved.
	UsageRow struct {
		UsageDate string
		JobID     *string
		ClusterID *string
		SkuName   string
		Quantity  *big.Rat
	}

	// JobVersionRow is one version of a job definition from the
	// slowly-changing jobs dimension, before latest-version selection.
	JobVersionRow struct {
		WorkspaceID     string
		JobID           string
		Name            string
		CreatorUserName *string
		RunAsUserName   *string
		ChangeTime      time.Time
	}
)

package platform

import (
	"context"
	"strconv"
)

const (
	jobsListPath = "/api/2.2/jobs/list"
	runsListPath = "/api/2.2/jobs/runs/list"

	// Page size caps imposed by the Jobs API.
	jobsPageMax = 100
	runsPageMax = 25
)

type (
	// JobSettings is the subset of job settings the monitor reads.
	JobSettings struct {
		Name   string `json:"name"`
		Format string `json:"format"`
	}

	// Job is a job definition as returned by the Jobs API.
	Job struct {
		JobID           int64        `json:"job_id"`
		CreatorUserName string       `json:"creator_user_name"`
		CreatedTime     int64        `json:"created_time"`
		Settings        *JobSettings `json:"settings"`
	}

	// RunState splits a run's lifecycle state from its result state. The
	// result state is only populated once the lifecycle is terminal.
	RunState struct {
		LifeCycleState string `json:"life_cycle_state"`
		ResultState    string `json:"result_state"`
	}

	// Run is a job run as returned by the Jobs API. Timestamps are epoch
	// milliseconds; zero means the field was not set.
	Run struct {
		RunID      int64     `json:"run_id"`
		JobID      int64     `json:"job_id"`
		RunName    string    `json:"run_name"`
		StartTime  int64     `json:"start_time"`
		EndTime    int64     `json:"end_time"`
		State      *RunState `json:"state"`
		RunPageURL string    `json:"run_page_url"`
	}

	jobsListResponse struct {
		Jobs          []Job  `json:"jobs"`
		NextPageToken string `json:"next_page_token"`
	}

	runsListResponse struct {
		Runs          []Run  `json:"runs"`
		NextPageToken string `json:"next_page_token"`
	}
)

// ListJobs lists job definitions, following page tokens until limit jobs are
// collected or the listing is exhausted.
func (c *Client) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	jobs := make([]Job, 0, limit)
	pageToken := ""

	for {
		query := map[string]string{
			"limit": strconv.Itoa(pageSize(limit-len(jobs), jobsPageMax)),
		}
		if pageToken != "" {
			query["page_token"] = pageToken
		}

		var page jobsListResponse
		if err := c.get(ctx, jobsListPath, query, &page); err != nil {
			return nil, err
		}

		jobs = append(jobs, page.Jobs...)

		if len(jobs) >= limit || page.NextPageToken == "" || len(page.Jobs) == 0 {
			break
		}

		pageToken = page.NextPageToken
	}

	if len(jobs) > limit {
		jobs = jobs[:limit]
	}

	return jobs, nil
}

// ListRuns lists the most recent runs of one job, newest first, following
// page tokens until limit runs are collected or the listing is exhausted.
func (c *Client) ListRuns(ctx context.Context, jobID int64, limit int) ([]Run, error) {
	runs := make([]Run, 0, limit)
	pageToken := ""

	for {
		query := map[string]string{
			"job_id": strconv.FormatInt(jobID, 10),
			"limit":  strconv.Itoa(pageSize(limit-len(runs), runsPageMax)),
		}
		if pageToken != "" {
			query["page_token"] = pageToken
		}

		var page runsListResponse
		if err := c.get(ctx, runsListPath, query, &page); err != nil {
			return nil, err
		}

		runs = append(runs, page.Runs...)

		if len(runs) >= limit || page.NextPageToken == "" || len(page.Runs) == 0 {
			break
		}

		pageToken = page.NextPageToken
	}

	if len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// ListActiveRuns lists every currently active run across all jobs. The
// listing is fully drained: active run counts are small and the dashboard
// needs the complete set.
func (c *Client) ListActiveRuns(ctx context.Context) ([]Run, error) {
	var runs []Run

	pageToken := ""

	for {
		query := map[string]string{
			"active_only": "true",
			"limit":       strconv.Itoa(runsPageMax),
		}
		if pageToken != "" {
			query["page_token"] = pageToken
		}

		var page runsListResponse
		if err := c.get(ctx, runsListPath, query, &page); err != nil {
			return nil, err
		}

		runs = append(runs, page.Runs...)

		if page.NextPageToken == "" || len(page.Runs) == 0 {
			break
		}

		pageToken = page.NextPageToken
	}

	return runs, nil
}

// pageSize clamps the remaining record count to the API's page size cap.
func pageSize(remaining, maxPage int) int {
	if remaining > maxPage {
		return maxPage
	}

	if remaining < 1 {
		return 1
	}

	return remaining
}

package monitor

import (
	"math/big"
	"strconv"
	"time"

	"github.com/jobmon-io/jobmon/internal/platform"
)

// Column counts expected by the normalizers, fixed by the statements in
// queries.go.
const (
	jobRunColumns     = 6
	jobVersionColumns = 6
	usageColumns      = 5
)

// timestampLayouts are the wire formats the warehouse emits for TIMESTAMP
// and DATE columns, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NormalizeJobRuns converts raw run timeline rows into JobRunRecords.
//
// An absent response or empty data array normalizes to an empty slice, never
// an error. Rows whose required cells cannot be coerced are skipped: upstream
// query shaping makes malformed rows rare, and skipping keeps one bad row
// from failing the whole read.
func NormalizeJobRuns(resp *platform.StatementResponse) []JobRunRecord {
	rows := dataRows(resp)
	runs := make([]JobRunRecord, 0, len(rows))

	for _, row := range rows {
		if len(row) < jobRunColumns {
			continue
		}

		start, ok := cellTime(row, 2)
		if !ok {
			continue
		}

		runs = append(runs, JobRunRecord{
			RunID:              cellString(row, 0),
			JobID:              cellString(row, 1),
			PeriodStartTime:    start,
			PeriodEndTime:      cellOptTime(row, 3),
			RunDurationSeconds: cellOptInt64(row, 4),
			ResultState:        cellOptString(row, 5),
		})
	}

	return runs
}

// NormalizeJobVersions converts raw slowly-changing dimension rows into
// JobVersionRows for latest-version selection.
func NormalizeJobVersions(resp *platform.StatementResponse) []JobVersionRow {
	rows := dataRows(resp)
	versions := make([]JobVersionRow, 0, len(rows))

	for _, row := range rows {
		if len(row) < jobVersionColumns {
			continue
		}

		changeTime, ok := cellTime(row, 5)
		if !ok {
			continue
		}

		versions = append(versions, JobVersionRow{
			WorkspaceID:     cellString(row, 0),
			JobID:           cellString(row, 1),
			Name:            cellString(row, 2),
			CreatorUserName: cellOptString(row, 3),
			RunAsUserName:   cellOptString(row, 4),
			ChangeTime:      changeTime,
		})
	}

	return versions
}

// NormalizeUsageRows converts raw billing rows into UsageRows for
// aggregation. A null quantity normalizes to zero rather than absent: a
// missing quantity contributes nothing to a sum.
func NormalizeUsageRows(resp *platform.StatementResponse) []UsageRow {
	rows := dataRows(resp)
	usage := make([]UsageRow, 0, len(rows))

	for _, row := range rows {
		if len(row) < usageColumns {
			continue
		}

		quantity, ok := cellRat(row, 4)
		if !ok {
			continue
		}

		usage = append(usage, UsageRow{
			UsageDate: cellString(row, 0),
			JobID:     cellOptString(row, 1),
			ClusterID: cellOptString(row, 2),
			SkuName:   cellString(row, 3),
			Quantity:  quantity,
		})
	}

	return usage
}

// NormalizeLiveJob converts a Jobs API job into a LiveJob.
func NormalizeLiveJob(job platform.Job) LiveJob {
	name := "Unknown"

	var format *string

	if job.Settings != nil {
		name = job.Settings.Name

		if job.Settings.Format != "" {
			f := job.Settings.Format
			format = &f
		}
	}

	return LiveJob{
		JobID:           job.JobID,
		Name:            name,
		CreatorUserName: optString(job.CreatorUserName),
		CreatedTime:     epochMillisToTime(job.CreatedTime),
		SettingsFormat:  format,
	}
}

// NormalizeLiveRun converts a Jobs API run into a LiveRun. An unset
// lifecycle state normalizes to the UNKNOWN sentinel; an unset result state
// stays absent.
func NormalizeLiveRun(run platform.Run) LiveRun {
	state := LifecycleUnknown

	var result *string

	if run.State != nil {
		if run.State.LifeCycleState != "" {
			state = run.State.LifeCycleState
		}

		if run.State.ResultState != "" {
			r := run.State.ResultState
			result = &r
		}
	}

	return LiveRun{
		RunID:       run.RunID,
		JobID:       run.JobID,
		RunName:     optString(run.RunName),
		State:       state,
		ResultState: result,
		StartTime:   epochMillisToTime(run.StartTime),
		EndTime:     epochMillisToTime(run.EndTime),
		RunPageURL:  optString(run.RunPageURL),
	}
}

// epochMillisToTime converts epoch milliseconds to a UTC calendar timestamp,
// keeping the millisecond fraction. Zero means the field was never set and
// normalizes to absent, never to the epoch.
func epochMillisToTime(millis int64) *time.Time {
	if millis == 0 {
		return nil
	}

	t := time.UnixMilli(millis).UTC()

	return &t
}

func dataRows(resp *platform.StatementResponse) [][]*string {
	if resp == nil || resp.Result == nil {
		return nil
	}

	return resp.Result.DataArray
}

// cellString returns the cell value, or "" for a null cell.
func cellString(row []*string, i int) string {
	if row[i] == nil {
		return ""
	}

	return *row[i]
}

// cellOptString returns a copy of the cell value, or nil for a null or empty
// cell. Empty coalesces with null: both mean "no value" upstream.
func cellOptString(row []*string, i int) *string {
	if row[i] == nil || *row[i] == "" {
		return nil
	}

	value := *row[i]

	return &value
}

// cellOptInt64 returns the cell as an integer, or nil when the cell is null,
// empty, or unparseable.
func cellOptInt64(row []*string, i int) *int64 {
	if row[i] == nil || *row[i] == "" {
		return nil
	}

	value, err := strconv.ParseInt(*row[i], 10, 64)
	if err != nil {
		return nil
	}

	return &value
}

// cellRat returns the cell as an exact rational. The warehouse serializes
// DECIMAL columns as decimal text, which a rational represents without
// rounding, so retraction rows cancel their originals to exactly zero. Null
// and empty cells coerce to zero; a non-null unparseable cell reports !ok so
// the caller can skip the row.
func cellRat(row []*string, i int) (*big.Rat, bool) {
	if row[i] == nil || *row[i] == "" {
		return new(big.Rat), true
	}

	value, ok := new(big.Rat).SetString(*row[i])
	if !ok {
		return nil, false
	}

	return value, true
}

// cellTime parses the cell as a timestamp, trying each known layout.
func cellTime(row []*string, i int) (time.Time, bool) {
	if row[i] == nil || *row[i] == "" {
		return time.Time{}, false
	}

	return parseTimestamp(*row[i])
}

// cellOptTime is cellTime for optional columns: null normalizes to absent.
func cellOptTime(row []*string, i int) *time.Time {
	t, ok := cellTime(row, i)
	if !ok {
		return nil
	}

	return &t
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func optString(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}

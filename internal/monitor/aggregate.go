package monitor

import (
	"math/big"
	"sort"
)

// maxRecords caps every list the API returns.
const maxRecords = 1000

type (
	// usageKey is the billing group key. The has* flags keep a null job or
	// cluster distinct from an empty-string one.
	usageKey struct {
		date       string
		jobID      string
		hasJob     bool
		clusterID  string
		hasCluster bool
		sku        string
	}

	usageGroup struct {
		record BillingUsageRecord
		total  *big.Rat
	}

	byJobKey struct {
		jobID string
		sku   string
	}

	byJobGroup struct {
		total *big.Rat
		dates map[string]struct{}
	}

	jobKey struct {
		workspaceID string
		jobID       string
	}
)

// SumUsage aggregates signed usage rows by (date, job, cluster, SKU).
//
// Retraction rule: a billing correction arrives as a row with negative
// quantity under the same group key as the original. Groups are summed first
// and then filtered on a non-zero net, so a full reversal disappears and a
// partial correction shows its net remainder. Filtering rows before
// summation would break both cases. Sums are exact rationals: a fractional
// reversal spread over several rows still nets to precisely zero. A
// correction whose original falls outside the query window sums non-zero
// and surfaces with its negative net.
//
// Output is ordered by usage date descending, then net amount descending,
// capped at 1000 groups.
func SumUsage(rows []UsageRow) []BillingUsageRecord {
	groups := make(map[usageKey]*usageGroup, len(rows))
	order := make([]usageKey, 0, len(rows))

	for _, row := range rows {
		key := usageKeyOf(row)

		group, ok := groups[key]
		if !ok {
			group = &usageGroup{
				record: BillingUsageRecord{
					UsageDate: row.UsageDate,
					JobID:     row.JobID,
					ClusterID: row.ClusterID,
					SkuName:   row.SkuName,
				},
				total: new(big.Rat),
			}
			groups[key] = group

			order = append(order, key)
		}

		group.total.Add(group.total, row.Quantity)
	}

	records := make([]BillingUsageRecord, 0, len(order))

	for _, key := range order {
		group := groups[key]
		if group.total.Sign() == 0 {
			continue
		}

		record := group.record
		record.TotalDBUs, _ = group.total.Float64()

		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UsageDate != records[j].UsageDate {
			return records[i].UsageDate > records[j].UsageDate
		}

		return records[i].TotalDBUs > records[j].TotalDBUs
	})

	return capRecords(records)
}

// SumUsageByJob aggregates job-attributed usage rows by (job, SKU), counting
// the distinct usage dates contributing to each group. Rows without a job
// reference are excluded before grouping: general-purpose compute has no job
// to attribute to. The same post-aggregation non-zero-sum rule applies.
//
// Output is ordered by net amount descending, capped at 1000 groups.
func SumUsageByJob(rows []UsageRow) []BillingByJobRecord {
	groups := make(map[byJobKey]*byJobGroup, len(rows))
	order := make([]byJobKey, 0, len(rows))

	for _, row := range rows {
		if row.JobID == nil {
			continue
		}

		key := byJobKey{jobID: *row.JobID, sku: row.SkuName}

		group, ok := groups[key]
		if !ok {
			group = &byJobGroup{total: new(big.Rat), dates: make(map[string]struct{})}
			groups[key] = group

			order = append(order, key)
		}

		group.total.Add(group.total, row.Quantity)
		group.dates[row.UsageDate] = struct{}{}
	}

	records := make([]BillingByJobRecord, 0, len(order))

	for _, key := range order {
		group := groups[key]
		if group.total.Sign() == 0 {
			continue
		}

		total, _ := group.total.Float64()

		records = append(records, BillingByJobRecord{
			JobID:     key.jobID,
			SkuName:   key.sku,
			TotalDBUs: total,
			UsageDays: len(group.dates),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TotalDBUs > records[j].TotalDBUs
	})

	return capRecords(records)
}

// LatestJobVersions selects, per (workspace, job) natural key, the version
// with the maximum change time. The comparison is strictly-after, so ties on
// change time keep the first row seen: tie-break by stable input order,
// applied consistently.
//
// Output is ordered by job name ascending.
func LatestJobVersions(rows []JobVersionRow) []JobRecord {
	latest := make(map[jobKey]JobVersionRow, len(rows))
	order := make([]jobKey, 0, len(rows))

	for _, row := range rows {
		key := jobKey{workspaceID: row.WorkspaceID, jobID: row.JobID}

		current, ok := latest[key]
		if !ok {
			latest[key] = row

			order = append(order, key)

			continue
		}

		if row.ChangeTime.After(current.ChangeTime) {
			latest[key] = row
		}
	}

	records := make([]JobRecord, 0, len(order))

	for _, key := range order {
		version := latest[key]
		records = append(records, JobRecord{
			JobID:           version.JobID,
			Name:            version.Name,
			CreatorUserName: version.CreatorUserName,
			RunAsUserName:   version.RunAsUserName,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	return capRecords(records)
}

func usageKeyOf(row UsageRow) usageKey {
	key := usageKey{date: row.UsageDate, sku: row.SkuName}

	if row.JobID != nil {
		key.jobID = *row.JobID
		key.hasJob = true
	}

	if row.ClusterID != nil {
		key.clusterID = *row.ClusterID
		key.hasCluster = true
	}

	return key
}

func capRecords[T any](records []T) []T {
	if len(records) > maxRecords {
		return records[:maxRecords]
	}

	return records
}

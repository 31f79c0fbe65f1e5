package scan

import (
	"sort"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/clock"
)

// Aggregate groups punch events by employee and date. Each set holds the
// distinct times of the day as "HH:MM:SS" in lexicographic order, which is
// chronological. Sets are ordered by employee code, then date.
func Aggregate(events []scan.PunchEvent, batchID string) []scan.DailyScanSet {
	groups := make(map[scan.DailyScanKey][]string)
	var keys []scan.DailyScanKey

	for _, ev := range events {
		key := scan.DailyScanKey{EmployeeCode: ev.EmployeeCode, ScanDate: ev.Date}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], ev.Time)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].EmployeeCode != keys[j].EmployeeCode {
			return keys[i].EmployeeCode < keys[j].EmployeeCode
		}
		return keys[i].ScanDate < keys[j].ScanDate
	})

	sets := make([]scan.DailyScanSet, 0, len(keys))
	for _, key := range keys {
		times := distinctSorted(groups[key])
		sets = append(sets, scan.DailyScanSet{
			EmployeeCode:  key.EmployeeCode,
			ScanDate:      key.ScanDate,
			Times:         times,
			ScanCount:     len(times),
			ImportBatchID: batchID,
		})
	}
	return sets
}

// MergeDailyScanSet unions the times of a stored set with a newly imported
// one for the same key. The result carries the incoming batch id, so
// importing the same log twice leaves the times unchanged.
func MergeDailyScanSet(existing, incoming scan.DailyScanSet) scan.DailyScanSet {
	merged := incoming
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.Times = distinctSorted(existing.Times, incoming.Times)
	merged.ScanCount = len(merged.Times)
	return merged
}

func distinctSorted(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, t := range list {
			t = canonicalTime(t)
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// canonicalTime writes "8:05", "08:05" and "08:05:00" the same way so
// a scanner log and a CSV export of the same punch collapse into one.
// Unreadable values are kept as is.
func canonicalTime(raw string) string {
	if t, ok := clock.Canonical(raw); ok {
		return t
	}
	return raw
}

package attendance

import (
	"sort"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/clock"
)

// ClusterPunches assigns a day's distinct scan times to punch slots by count.
// day is nil when no shift applies; it is only used to decide whether a lone
// middle punch is a break and how many breaks to pair.
//
//	0 times: nothing
//	1 time:  check-in
//	2 times: check-in, check-out
//	3 times: check-in, break-out if inside a break window, check-out
//	4+:      check-in, interior pairs per break rule, check-out
//
// Interior times beyond the configured breaks, and times that cannot be
// read, end up in Unclassified.
func ClusterPunches(times []string, day *shift.DailyShiftTemplate) attendance.PunchSlots {
	var slots attendance.PunchSlots

	type punch struct {
		raw     string
		minutes int
	}
	valid := make([]punch, 0, len(times))
	for _, t := range times {
		m, ok := clock.ParseMinutes(t)
		if !ok {
			slots.Unclassified = append(slots.Unclassified, t)
			continue
		}
		valid = append(valid, punch{raw: t, minutes: m})
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].minutes < valid[j].minutes })

	n := len(valid)
	if n == 0 {
		return slots
	}

	at := func(i int) *string {
		v := valid[i].raw
		return &v
	}

	slots.CheckIn = at(0)
	if n == 1 {
		return slots
	}
	slots.CheckOut = at(n - 1)
	if n == 2 {
		return slots
	}

	var rules []shift.BreakRule
	if day != nil {
		rules = day.OrderedBreakRules()
	}

	if n == 3 {
		middle := valid[1]
		for _, r := range rules {
			if r.Contains(middle.minutes) {
				slots.BreakOut = at(1)
				slots.Breaks = []attendance.PunchPair{{Out: slots.BreakOut}}
				return slots
			}
		}
		slots.Unclassified = append([]string{middle.raw}, slots.Unclassified...)
		return slots
	}

	pairs := len(rules)
	if pairs == 0 {
		pairs = 1
	}

	interior := valid[1 : n-1]
	var extra []string
	for i := 0; i < len(interior); i += 2 {
		if i/2 >= pairs {
			for _, p := range interior[i:] {
				extra = append(extra, p.raw)
			}
			break
		}
		pair := attendance.PunchPair{Out: at(1 + i)}
		if i+1 < len(interior) {
			pair.In = at(2 + i)
		}
		slots.Breaks = append(slots.Breaks, pair)
	}
	slots.BreakOut = slots.Breaks[0].Out
	slots.BreakIn = slots.Breaks[0].In
	slots.Unclassified = append(extra, slots.Unclassified...)

	return slots
}

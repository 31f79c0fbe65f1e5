package attendance

import (
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/clock"
)

// Schedule is the shift day a calculation runs against.
type Schedule struct {
	Day                      shift.DailyShiftTemplate
	GracePeriodMinutes       int
	OvertimeThresholdMinutes int
}

func NewSchedule(s shift.Shift, day shift.DailyShiftTemplate) Schedule {
	return Schedule{
		Day:                      day,
		GracePeriodMinutes:       s.GracePeriodMinutes,
		OvertimeThresholdMinutes: s.OvertimeThresholdMinutes,
	}
}

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate derives lateness, break compliance, overtime and working time.
// Without a schedule there is nothing to measure against and the zero
// metrics are returned.
func (c *Calculator) Calculate(sched *Schedule, slots attendance.PunchSlots) attendance.WorkMetrics {
	var m attendance.WorkMetrics
	if sched == nil {
		return m
	}

	start, okStart := clock.ParseMinutes(sched.Day.StartTime)
	end, okEnd := clock.ParseMinutes(sched.Day.EndTime)
	checkIn, hasIn := slotMinutes(slots.CheckIn)
	checkOut, hasOut := slotMinutes(slots.CheckOut)

	m.MissingCheckIn = !hasIn
	m.MissingCheckOut = !hasOut

	if hasIn && okStart {
		if late := checkIn - start; late > sched.GracePeriodMinutes {
			m.ShiftLateMinutes = late
		}
	}

	rules := sched.Day.OrderedBreakRules()
	allowed := 0
	for i, rule := range rules {
		allowed += rule.AllowedMinutes()

		if i >= len(slots.Breaks) || !slots.Breaks[i].Complete() {
			m.MissingBreak = true
			continue
		}
		out, okOut := slotMinutes(slots.Breaks[i].Out)
		in, okIn := slotMinutes(slots.Breaks[i].In)
		if !okOut || !okIn {
			m.MissingBreak = true
			continue
		}
		c.applyBreak(&m, rule, out, in)
	}

	m.TotalLateMinutes = m.ShiftLateMinutes + m.BreakLateMinutes

	if hasOut && okEnd {
		if over := checkOut - (end + sched.OvertimeThresholdMinutes); over > 0 {
			m.OvertimeMinutes = over
		}
		if early := end - checkOut; early > 0 {
			m.EarlyLeaveMinutes = early
		}
	}

	if hasIn && hasOut {
		if worked := checkOut - checkIn - allowed; worked > 0 {
			m.WorkingMinutes = worked
		}
	}

	return m
}

// applyBreak scores one taken break against its rule. Leaving before the
// window opens or returning after it closes is break lateness for both rule
// types; a duration rule also compares the length actually taken.
func (c *Calculator) applyBreak(m *attendance.WorkMetrics, rule shift.BreakRule, out, in int) {
	winStart, winEnd, ok := rule.Window()
	if ok {
		if out < winStart {
			m.BreakLateMinutes += winStart - out
		}
		if in > winEnd {
			m.BreakLateMinutes += in - winEnd
		}
	}

	if rule.Type != shift.BreakDuration {
		return
	}
	taken := in - out
	switch {
	case taken > rule.Minutes:
		m.BreakExceededMinutes += taken - rule.Minutes
	case taken < rule.Minutes:
		m.BreakDeficitMinutes += rule.Minutes - taken
	}
}

// DeriveStatus turns a calculated day into a status. An empty status means
// no shift applied and the reporting layer decides.
func DeriveStatus(hasShift bool, slots attendance.PunchSlots, m attendance.WorkMetrics) (status attendance.Status, needsManualInput, needsReview bool) {
	if !hasShift {
		return "", false, true
	}
	if slots.CheckIn == nil {
		return attendance.StatusAbsent, true, true
	}
	needsReview = m.MissingCheckOut || m.MissingBreak || len(slots.Unclassified) > 0
	return attendance.StatusPresent, false, needsReview
}

func slotMinutes(v *string) (int, bool) {
	if v == nil {
		return 0, false
	}
	return clock.ParseMinutes(*v)
}

package attendance

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/stretchr/testify/assert"
)

func fixedSchedule() *Schedule {
	return &Schedule{Day: *fixedLunchDay()}
}

func durationSchedule() *Schedule {
	return &Schedule{Day: shift.DailyShiftTemplate{
		Day:       shift.Monday,
		StartTime: "08:00",
		EndTime:   "17:00",
		BreakRules: []shift.BreakRule{
			{Type: shift.BreakDuration, StartTime: "12:30", EndTime: "16:30", Minutes: 60},
		},
	}}
}

func TestCalculator_FourPunchFixedBreak(t *testing.T) {
	calc := NewCalculator()
	slots := ClusterPunches([]string{"08:05", "12:00", "13:00", "17:10"}, fixedLunchDay())

	m := calc.Calculate(fixedSchedule(), slots)

	assert.Equal(t, "08:05", val(slots.CheckIn))
	assert.Equal(t, "12:00", val(slots.BreakOut))
	assert.Equal(t, "13:00", val(slots.BreakIn))
	assert.Equal(t, "17:10", val(slots.CheckOut))
	assert.Equal(t, 5, m.ShiftLateMinutes)
	assert.Equal(t, 0, m.BreakLateMinutes)
	assert.Equal(t, 5, m.TotalLateMinutes)
	assert.Equal(t, 10, m.OvertimeMinutes)
	assert.Equal(t, 485, m.WorkingMinutes)
	assert.False(t, m.MissingBreak)
	assert.False(t, m.MissingCheckIn)
	assert.False(t, m.MissingCheckOut)
}

func TestCalculator_TwoPunchesDeductConfiguredBreak(t *testing.T) {
	calc := NewCalculator()
	slots := ClusterPunches([]string{"08:00", "17:00"}, fixedLunchDay())

	m := calc.Calculate(fixedSchedule(), slots)

	assert.Nil(t, slots.BreakOut)
	assert.Nil(t, slots.BreakIn)
	assert.True(t, m.MissingBreak)
	assert.Equal(t, 0, m.BreakLateMinutes)
	assert.Equal(t, 480, m.WorkingMinutes)
	assert.Equal(t, 0, m.ShiftLateMinutes)
	assert.Equal(t, 0, m.OvertimeMinutes)
}

func TestCalculator_DurationBreakOutsideWindow(t *testing.T) {
	calc := NewCalculator()
	day := durationSchedule().Day
	slots := ClusterPunches([]string{"08:00", "12:00", "13:10", "17:00"}, &day)

	m := calc.Calculate(durationSchedule(), slots)

	assert.Equal(t, 30, m.BreakLateMinutes)
	assert.Equal(t, 10, m.BreakExceededMinutes)
	assert.Equal(t, 0, m.BreakDeficitMinutes)
	assert.Equal(t, 30, m.TotalLateMinutes)
	assert.Equal(t, 480, m.WorkingMinutes)
}

func TestCalculator_DurationBreakShortAndLate(t *testing.T) {
	calc := NewCalculator()
	day := durationSchedule().Day
	slots := ClusterPunches([]string{"08:00", "16:00", "16:40", "17:00"}, &day)

	m := calc.Calculate(durationSchedule(), slots)

	assert.Equal(t, 10, m.BreakLateMinutes)
	assert.Equal(t, 20, m.BreakDeficitMinutes)
	assert.Equal(t, 0, m.BreakExceededMinutes)
}

func TestCalculator_FixedBreakDeviationBothSides(t *testing.T) {
	calc := NewCalculator()
	slots := ClusterPunches([]string{"08:00", "11:50", "13:15", "17:00"}, fixedLunchDay())

	m := calc.Calculate(fixedSchedule(), slots)

	assert.Equal(t, 25, m.BreakLateMinutes)
	assert.Equal(t, 0, m.BreakExceededMinutes)
}

func TestCalculator_GraceAndOvertimeThreshold(t *testing.T) {
	calc := NewCalculator()
	sched := fixedSchedule()
	sched.GracePeriodMinutes = 10
	sched.OvertimeThresholdMinutes = 30

	onTime := calc.Calculate(sched, ClusterPunches([]string{"08:10", "17:20"}, &sched.Day))
	assert.Equal(t, 0, onTime.ShiftLateMinutes)
	assert.Equal(t, 0, onTime.OvertimeMinutes)

	late := calc.Calculate(sched, ClusterPunches([]string{"08:11", "17:45"}, &sched.Day))
	assert.Equal(t, 11, late.ShiftLateMinutes)
	assert.Equal(t, 15, late.OvertimeMinutes)
}

func TestCalculator_EarlyLeaveAndMissingPunches(t *testing.T) {
	calc := NewCalculator()

	early := calc.Calculate(fixedSchedule(), ClusterPunches([]string{"08:00", "16:30"}, fixedLunchDay()))
	assert.Equal(t, 30, early.EarlyLeaveMinutes)

	single := calc.Calculate(fixedSchedule(), ClusterPunches([]string{"08:00"}, fixedLunchDay()))
	assert.False(t, single.MissingCheckIn)
	assert.True(t, single.MissingCheckOut)
	assert.Equal(t, 0, single.WorkingMinutes)

	none := calc.Calculate(fixedSchedule(), ClusterPunches(nil, fixedLunchDay()))
	assert.True(t, none.MissingCheckIn)
	assert.True(t, none.MissingCheckOut)
	assert.True(t, none.MissingBreak)
}

func TestCalculator_NoSchedule(t *testing.T) {
	m := NewCalculator().Calculate(nil, ClusterPunches([]string{"08:00", "17:00"}, nil))
	assert.Equal(t, attendance.WorkMetrics{}, m)
}

func TestDeriveStatus(t *testing.T) {
	calc := NewCalculator()

	slots := ClusterPunches([]string{"08:00", "12:00", "13:00", "17:00"}, fixedLunchDay())
	status, manual, review := DeriveStatus(true, slots, calc.Calculate(fixedSchedule(), slots))
	assert.Equal(t, attendance.StatusPresent, status)
	assert.False(t, manual)
	assert.False(t, review)

	slots = ClusterPunches([]string{"08:00"}, fixedLunchDay())
	status, manual, review = DeriveStatus(true, slots, calc.Calculate(fixedSchedule(), slots))
	assert.Equal(t, attendance.StatusPresent, status)
	assert.False(t, manual)
	assert.True(t, review)

	slots = ClusterPunches(nil, fixedLunchDay())
	status, manual, review = DeriveStatus(true, slots, calc.Calculate(fixedSchedule(), slots))
	assert.Equal(t, attendance.StatusAbsent, status)
	assert.True(t, manual)
	assert.True(t, review)

	status, manual, review = DeriveStatus(false, slots, attendance.WorkMetrics{})
	assert.Equal(t, attendance.Status(""), status)
	assert.False(t, manual)
	assert.True(t, review)
}

package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

type Status string

const (
	StatusPresent      Status = "PRESENT"
	StatusAbsent       Status = "ABSENT"
	StatusLeave        Status = "LEAVE"
	StatusPendingLeave Status = "PENDING_LEAVE"
	StatusHoliday      Status = "HOLIDAY"
	StatusDayOff       Status = "DAY_OFF"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusLeave),
	string(StatusPendingLeave),
	string(StatusHoliday),
	string(StatusDayOff),
}

// PunchPair is one break: the punch leaving and the punch returning.
type PunchPair struct {
	Out *string `json:"out"`
	In  *string `json:"in"`
}

func (p PunchPair) Complete() bool {
	return p.Out != nil && p.In != nil
}

// PunchSlots is the result of clustering a day's scan times. BreakOut and
// BreakIn mirror Breaks[0].
type PunchSlots struct {
	CheckIn      *string
	BreakOut     *string
	BreakIn      *string
	CheckOut     *string
	Breaks       []PunchPair
	Unclassified []string
}

type WorkMetrics struct {
	ShiftLateMinutes     int
	BreakLateMinutes     int
	TotalLateMinutes     int
	BreakExceededMinutes int
	BreakDeficitMinutes  int
	OvertimeMinutes      int
	EarlyLeaveMinutes    int
	WorkingMinutes       int
	MissingCheckIn       bool
	MissingCheckOut      bool
	MissingBreak         bool
}

// ReconciledDay is the derived attendance of one employee on one date. It is
// recomputed on demand and never stored.
type ReconciledDay struct {
	EmployeeID   string
	EmployeeCode string
	FullName     string
	Date         string
	Weekday      shift.DayOfWeek
	ShiftID      *string
	ShiftName    *string
	ShiftStart   *string
	ShiftEnd     *string
	ScanTimes    []string
	ScanCount    int
	Slots        PunchSlots
	Metrics      WorkMetrics
	// DerivedStatus is empty when no shift applies to the day.
	DerivedStatus    Status
	NeedsManualInput bool
	NeedsReview      bool
}

// HasShift reports whether a shift template applied to the day.
func (d ReconciledDay) HasShift() bool {
	return d.ShiftID != nil
}

// AdjustmentRecord is a supervisor override for one (employee, date). It is
// the only durable attendance state and survives recomputation.
type AdjustmentRecord struct {
	ID          string
	EmployeeID  string
	WorkDate    string
	Status      Status
	Notes       *string
	IsLate      bool
	LateMinutes int
	ShiftID     *string
	AdjustedBy  string
	AdjustedAt  time.Time
	CreatedAt   time.Time
}

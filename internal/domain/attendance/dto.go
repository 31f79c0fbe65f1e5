package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ApplyAdjustmentRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes"`
	IsLate      bool    `json:"is_late"`
	LateMinutes int     `json:"late_minutes"`
	ShiftID     *string `json:"shift_id"`
	AdjustedBy  string  `json:"adjusted_by"`
}

func (r *ApplyAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if !validator.IsInSlice(r.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if r.LateMinutes < 0 {
		errs.Add("late_minutes", "late_minutes must be a non-negative number")
	}
	if !r.IsLate && r.LateMinutes > 0 {
		errs.Add("late_minutes", "late_minutes must be 0 when is_late is false")
	}
	if validator.IsEmpty(r.AdjustedBy) {
		errs.Add("adjusted_by", "adjusted_by is required")
	}

	return errs.OrNil()
}

type AdjustmentResponse struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	Date        string  `json:"date"`
	Status      Status  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
	IsLate      bool    `json:"is_late"`
	LateMinutes int     `json:"late_minutes"`
	ShiftID     *string `json:"shift_id,omitempty"`
	AdjustedBy  string  `json:"adjusted_by"`
	AdjustedAt  string  `json:"adjusted_at"`
}

func NewAdjustmentResponse(rec AdjustmentRecord) AdjustmentResponse {
	return AdjustmentResponse{
		ID:          rec.ID,
		EmployeeID:  rec.EmployeeID,
		Date:        rec.WorkDate,
		Status:      rec.Status,
		Notes:       rec.Notes,
		IsLate:      rec.IsLate,
		LateMinutes: rec.LateMinutes,
		ShiftID:     rec.ShiftID,
		AdjustedBy:  rec.AdjustedBy,
		AdjustedAt:  rec.AdjustedAt.Format(time.RFC3339Nano),
	}
}

// BulkDayOffRequest assigns DAY_OFF on each employee's selected weekdays, or
// HOLIDAY on every date of the range.
type BulkDayOffRequest struct {
	EmployeeIDs []string            `json:"employee_ids"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Status      string              `json:"status"`
	Weekdays    map[string][]string `json:"weekdays"`
	Notes       *string             `json:"notes"`
	AdjustedBy  string              `json:"adjusted_by"`
}

var BulkStatusValues = []string{string(StatusDayOff), string(StatusHoliday)}

func (r *BulkDayOffRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.EmployeeIDs) == 0 {
		errs.Add("employee_ids", "at least one employee is required")
	}
	seen := make(map[string]struct{}, len(r.EmployeeIDs))
	for i, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs.Add(fmt.Sprintf("employee_ids[%d]", i), "employee id is required")
			continue
		}
		if _, dup := seen[id]; dup {
			errs.Add(fmt.Sprintf("employee_ids[%d]", i), "employee "+id+" is listed more than once")
		}
		seen[id] = struct{}{}
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if !validator.IsInSlice(r.Status, BulkStatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(BulkStatusValues, ", "))
	}

	if Status(r.Status) == StatusDayOff {
		for _, id := range r.EmployeeIDs {
			days := r.Weekdays[id]
			field := "weekdays." + id
			if len(days) == 0 {
				errs.Add(field, "at least one weekday must be selected for DAY_OFF")
				continue
			}
			for _, d := range days {
				if !shift.DayOfWeek(strings.ToUpper(d)).IsValid() {
					errs.Add(field, "invalid weekday "+d)
				}
			}
		}
	}
	if validator.IsEmpty(r.AdjustedBy) {
		errs.Add("adjusted_by", "adjusted_by is required")
	}

	return errs.OrNil()
}

// WeekdaySet returns the selected weekdays of one employee.
func (r *BulkDayOffRequest) WeekdaySet(employeeID string) map[shift.DayOfWeek]bool {
	set := make(map[shift.DayOfWeek]bool)
	for _, d := range r.Weekdays[employeeID] {
		set[shift.DayOfWeek(strings.ToUpper(d))] = true
	}
	return set
}

const (
	FailureNotFound = "not_found"
	FailureStorage  = "storage_error"
	FailureLocked   = "locked"
)

type BulkDayOffFailure struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date,omitempty"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
}

type BulkDayOffResponse struct {
	Status      Status              `json:"status"`
	Requested   int                 `json:"requested"`
	Applied     int                 `json:"applied"`
	PerEmployee map[string]int      `json:"per_employee"`
	Failures    []BulkDayOffFailure `json:"failures,omitempty"`
}

type WorkCalculationFilter struct {
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	EmployeeIDs  []string `json:"employee_ids,omitempty"`
	BranchID     *string  `json:"branch_id,omitempty"`
	DepartmentID *string  `json:"department_id,omitempty"`
}

func (f *WorkCalculationFilter) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(f.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(f.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.OrNil()
}

const (
	SourceDerived  = "DERIVED"
	SourceAdjusted = "ADJUSTED"
)

// AttendanceView is a reconciled day as reported: derived metrics side by
// side with the supervisor override, if any. Source tells which is
// authoritative.
type AttendanceView struct {
	EmployeeID           string              `json:"employee_id"`
	EmployeeCode         string              `json:"employee_code"`
	FullName             string              `json:"full_name"`
	Date                 string              `json:"date"`
	Weekday              shift.DayOfWeek     `json:"weekday"`
	ShiftID              *string             `json:"shift_id"`
	ShiftName            *string             `json:"shift_name"`
	ShiftStart           *string             `json:"shift_start"`
	ShiftEnd             *string             `json:"shift_end"`
	ScanTimes            []string            `json:"scan_times"`
	ScanCount            int                 `json:"scan_count"`
	CheckIn              *string             `json:"check_in"`
	BreakOut             *string             `json:"break_out"`
	BreakIn              *string             `json:"break_in"`
	CheckOut             *string             `json:"check_out"`
	Breaks               []PunchPair         `json:"breaks,omitempty"`
	UnclassifiedTimes    []string            `json:"unclassified_times,omitempty"`
	ShiftLateMinutes     int                 `json:"shift_late_minutes"`
	BreakLateMinutes     int                 `json:"break_late_minutes"`
	TotalLateMinutes     int                 `json:"total_late_minutes"`
	BreakExceededMinutes int                 `json:"break_exceeded_minutes"`
	BreakDeficitMinutes  int                 `json:"break_deficit_minutes"`
	OvertimeMinutes      int                 `json:"overtime_minutes"`
	EarlyLeaveMinutes    int                 `json:"early_leave_minutes"`
	WorkingMinutes       int                 `json:"working_minutes"`
	WorkingHours         string              `json:"working_hours"`
	MissingCheckIn       bool                `json:"missing_check_in"`
	MissingCheckOut      bool                `json:"missing_check_out"`
	MissingBreak         bool                `json:"missing_break"`
	NeedsManualInput     bool                `json:"needs_manual_input"`
	NeedsReview          bool                `json:"needs_review"`
	DerivedStatus        Status              `json:"derived_status"`
	Status               Status              `json:"status"`
	IsLate               bool                `json:"is_late"`
	LateMinutes          int                 `json:"late_minutes"`
	Notes                *string             `json:"notes,omitempty"`
	Source               string              `json:"source"`
	Original             *string             `json:"original,omitempty"`
	Adjustment           *AdjustmentResponse `json:"adjustment,omitempty"`
}

type WorkCalculationIndicators struct {
	TotalRecords              int             `json:"total_records"`
	TotalLateMinutes          int             `json:"total_late_minutes"`
	LateCount                 int             `json:"late_count"`
	BreakExceededCount        int             `json:"break_exceeded_count"`
	TotalBreakExceededMinutes int             `json:"total_break_exceeded_minutes"`
	OvertimeCount             int             `json:"overtime_count"`
	TotalOvertimeMinutes      int             `json:"total_overtime_minutes"`
	TotalWorkingMinutes       int             `json:"total_working_minutes"`
	TotalWorkingHours         decimal.Decimal `json:"total_working_hours"`
	MissingCheckInCount       int             `json:"missing_check_in_count"`
	MissingCheckOutCount      int             `json:"missing_check_out_count"`
	MissingBreakCount         int             `json:"missing_break_count"`
	NeedsReviewCount          int             `json:"needs_review_count"`
	AdjustedCount             int             `json:"adjusted_count"`
	StatusCounts              map[Status]int  `json:"status_counts"`
}

type WorkCalculationResponse struct {
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	GeneratedAt string                    `json:"generated_at"`
	Indicators  WorkCalculationIndicators `json:"indicators"`
	Records     []AttendanceView          `json:"records"`
}

package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
	shiftsvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/shift"
)

type WorkCalculationServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	shiftRepo      shift.ShiftRepository
	scanRepo       scan.DailyScanSetRepository
	adjustmentRepo attendance.AdjustmentRepository
	reconciler     *Reconciler
	maxRangeDays   int
	now            func() time.Time
}

func NewWorkCalculationService(
	employeeRepo employee.EmployeeRepository,
	shiftRepo shift.ShiftRepository,
	scanRepo scan.DailyScanSetRepository,
	adjustmentRepo attendance.AdjustmentRepository,
	reconciler *Reconciler,
	maxRangeDays int,
) attendance.WorkCalculationService {
	return &WorkCalculationServiceImpl{
		employeeRepo:   employeeRepo,
		shiftRepo:      shiftRepo,
		scanRepo:       scanRepo,
		adjustmentRepo: adjustmentRepo,
		reconciler:     reconciler,
		maxRangeDays:   maxRangeDays,
		now:            time.Now,
	}
}

// Calculate reconciles every selected employee over the date range and lays
// supervisor overrides on top of the derived results.
func (s *WorkCalculationServiceImpl) Calculate(ctx context.Context, filter attendance.WorkCalculationFilter) (attendance.WorkCalculationResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.WorkCalculationResponse{}, err
	}
	start, _ := validator.IsValidDate(filter.StartDate)
	end, _ := validator.IsValidDate(filter.EndDate)
	dates := DateRange(start, end)
	if s.maxRangeDays > 0 && len(dates) > s.maxRangeDays {
		return attendance.WorkCalculationResponse{}, fmt.Errorf("%w: %d days requested, at most %d allowed",
			attendance.ErrDateRangeTooLarge, len(dates), s.maxRangeDays)
	}

	employees, err := s.employeeRepo.List(ctx, employee.ListFilter{
		IDs:          filter.EmployeeIDs,
		BranchID:     filter.BranchID,
		DepartmentID: filter.DepartmentID,
		ActiveOnly:   len(filter.EmployeeIDs) == 0,
	})
	if err != nil {
		return attendance.WorkCalculationResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	response := attendance.WorkCalculationResponse{
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
		GeneratedAt: s.now().Format(time.RFC3339),
		Records:     []attendance.AttendanceView{},
	}
	if len(employees) == 0 {
		response.Indicators = Summarize(nil)
		return response, nil
	}

	shifts, err := s.shiftRepo.List(ctx, shift.ListFilter{ActiveOnly: true})
	if err != nil {
		return attendance.WorkCalculationResponse{}, fmt.Errorf("failed to list shifts: %w", err)
	}

	codes := make([]string, 0, len(employees))
	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		codes = append(codes, e.EmployeeCode)
		ids = append(ids, e.ID)
	}

	sets, err := s.scanRepo.List(ctx, scan.DailyScanFilter{StartDate: filter.StartDate, EndDate: filter.EndDate, EmployeeCodes: codes})
	if err != nil {
		return attendance.WorkCalculationResponse{}, fmt.Errorf("failed to list daily scans: %w", err)
	}
	scans := make(map[scan.DailyScanKey]scan.DailyScanSet, len(sets))
	for _, set := range sets {
		scans[scan.DailyScanKey{EmployeeCode: set.EmployeeCode, ScanDate: set.ScanDate}] = set
	}

	adjustments, err := s.adjustmentRepo.ListByDateRange(ctx, ids, filter.StartDate, filter.EndDate)
	if err != nil {
		return attendance.WorkCalculationResponse{}, fmt.Errorf("failed to list adjustments: %w", err)
	}
	overrides := make(map[string]attendance.AdjustmentRecord, len(adjustments))
	for _, a := range adjustments {
		overrides[a.EmployeeID+":"+a.WorkDate] = a
	}

	days, err := s.reconciler.Reconcile(ctx, ReconcileInput{
		Employees: employees,
		Dates:     dates,
		Scans:     scans,
		Resolver:  shiftsvc.NewResolver(shifts),
	})
	if err != nil {
		return attendance.WorkCalculationResponse{}, fmt.Errorf("failed to reconcile attendance: %w", err)
	}

	for _, day := range days {
		var adj *attendance.AdjustmentRecord
		if a, ok := overrides[day.EmployeeID+":"+day.Date]; ok {
			adj = &a
		}
		response.Records = append(response.Records, NewAttendanceView(day, adj))
	}
	response.Indicators = Summarize(response.Records)

	slog.Info("Work calculation generated",
		"start_date", filter.StartDate,
		"end_date", filter.EndDate,
		"employees", len(employees),
		"records", len(response.Records),
		"adjusted", response.Indicators.AdjustedCount,
	)
	return response, nil
}

// NewAttendanceView reports a reconciled day. A day without a shift is shown
// as DAY_OFF pending review. When adj is set it is authoritative and the
// derived result is kept in Original for comparison.
func NewAttendanceView(day attendance.ReconciledDay, adj *attendance.AdjustmentRecord) attendance.AttendanceView {
	m := day.Metrics
	view := attendance.AttendanceView{
		EmployeeID:           day.EmployeeID,
		EmployeeCode:         day.EmployeeCode,
		FullName:             day.FullName,
		Date:                 day.Date,
		Weekday:              day.Weekday,
		ShiftID:              day.ShiftID,
		ShiftName:            day.ShiftName,
		ShiftStart:           day.ShiftStart,
		ShiftEnd:             day.ShiftEnd,
		ScanTimes:            day.ScanTimes,
		ScanCount:            day.ScanCount,
		CheckIn:              day.Slots.CheckIn,
		BreakOut:             day.Slots.BreakOut,
		BreakIn:              day.Slots.BreakIn,
		CheckOut:             day.Slots.CheckOut,
		Breaks:               day.Slots.Breaks,
		UnclassifiedTimes:    day.Slots.Unclassified,
		ShiftLateMinutes:     m.ShiftLateMinutes,
		BreakLateMinutes:     m.BreakLateMinutes,
		TotalLateMinutes:     m.TotalLateMinutes,
		BreakExceededMinutes: m.BreakExceededMinutes,
		BreakDeficitMinutes:  m.BreakDeficitMinutes,
		OvertimeMinutes:      m.OvertimeMinutes,
		EarlyLeaveMinutes:    m.EarlyLeaveMinutes,
		WorkingMinutes:       m.WorkingMinutes,
		WorkingHours:         clock.FormatDuration(m.WorkingMinutes),
		MissingCheckIn:       m.MissingCheckIn,
		MissingCheckOut:      m.MissingCheckOut,
		MissingBreak:         m.MissingBreak,
		NeedsManualInput:     day.NeedsManualInput,
		NeedsReview:          day.NeedsReview,
		DerivedStatus:        day.DerivedStatus,
		Status:               day.DerivedStatus,
		IsLate:               m.TotalLateMinutes > 0,
		LateMinutes:          m.TotalLateMinutes,
		Source:               attendance.SourceDerived,
	}
	if view.Status == "" {
		view.Status = attendance.StatusDayOff
	}
	if adj == nil {
		return view
	}

	original := describe(view.Status, view.LateMinutes)
	resp := attendance.NewAdjustmentResponse(*adj)
	view.Status = adj.Status
	view.IsLate = adj.IsLate
	view.LateMinutes = adj.LateMinutes
	view.Notes = adj.Notes
	view.Source = attendance.SourceAdjusted
	view.Original = &original
	view.Adjustment = &resp
	view.NeedsManualInput = false
	view.NeedsReview = false
	return view
}

func describe(status attendance.Status, lateMinutes int) string {
	if lateMinutes > 0 {
		return fmt.Sprintf("original: %s, late %s", status, clock.FormatDuration(lateMinutes))
	}
	return fmt.Sprintf("original: %s, on time", status)
}

// Summarize totals the reported records. Lateness and status follow the
// authoritative values, the other metrics are derived.
func Summarize(records []attendance.AttendanceView) attendance.WorkCalculationIndicators {
	ind := attendance.WorkCalculationIndicators{
		TotalRecords: len(records),
		StatusCounts: make(map[attendance.Status]int),
	}
	for _, r := range records {
		ind.StatusCounts[r.Status]++
		if r.IsLate {
			ind.LateCount++
			ind.TotalLateMinutes += r.LateMinutes
		}
		if r.BreakExceededMinutes > 0 {
			ind.BreakExceededCount++
			ind.TotalBreakExceededMinutes += r.BreakExceededMinutes
		}
		if r.OvertimeMinutes > 0 {
			ind.OvertimeCount++
			ind.TotalOvertimeMinutes += r.OvertimeMinutes
		}
		ind.TotalWorkingMinutes += r.WorkingMinutes
		if r.MissingCheckIn {
			ind.MissingCheckInCount++
		}
		if r.MissingCheckOut {
			ind.MissingCheckOutCount++
		}
		if r.MissingBreak {
			ind.MissingBreakCount++
		}
		if r.NeedsReview {
			ind.NeedsReviewCount++
		}
		if r.Source == attendance.SourceAdjusted {
			ind.AdjustedCount++
		}
	}
	ind.TotalWorkingHours = clock.ToHours(ind.TotalWorkingMinutes)
	return ind
}

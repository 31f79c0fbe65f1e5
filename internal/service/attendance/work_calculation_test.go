package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type workCalcFixture struct {
	svc         *WorkCalculationServiceImpl
	adjustments *memory.AdjustmentRepository
}

func setupWorkCalculation(t *testing.T) workCalcFixture {
	t.Helper()
	ctx := context.Background()

	employees := memory.NewEmployeeRepository(
		employee.Employee{ID: "e1", EmployeeCode: "1001", FullName: "Somchai", ZoneID: strPtr("z1"), BranchID: strPtr("b1"), IsActive: true},
		employee.Employee{ID: "e2", EmployeeCode: "1002", FullName: "Suda", ZoneID: strPtr("z1"), BranchID: strPtr("b2"), IsActive: true},
	)

	shifts := memory.NewShiftRepository()
	_, err := shifts.Create(ctx, weekdayShift("office", shift.ScopeAssignment{Level: shift.ScopeBranch, BranchID: strPtr("b1")}))
	require.NoError(t, err)

	scans := memory.NewDailyScanSetRepository()
	require.NoError(t, scans.UpsertMany(ctx, []scan.DailyScanSet{
		{EmployeeCode: "1001", ScanDate: "2024-01-15", Times: []string{"08:05", "12:00", "13:00", "17:10"}, ScanCount: 4},
		{EmployeeCode: "1001", ScanDate: "2024-01-16", Times: []string{"08:00", "17:00"}, ScanCount: 2},
		{EmployeeCode: "1002", ScanDate: "2024-01-15", Times: []string{"09:00", "18:00"}, ScanCount: 2},
	}))

	adjustments := memory.NewAdjustmentRepository()
	svc := NewWorkCalculationService(employees, shifts, scans, adjustments, NewReconciler(NewCalculator(), 2), 31).(*WorkCalculationServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC) }

	return workCalcFixture{svc: svc, adjustments: adjustments}
}

func TestWorkCalculation_Calculate(t *testing.T) {
	f := setupWorkCalculation(t)

	resp, err := f.svc.Calculate(context.Background(), attendance.WorkCalculationFilter{StartDate: "2024-01-15", EndDate: "2024-01-17"})
	require.NoError(t, err)
	require.Len(t, resp.Records, 6)
	assert.Equal(t, "2024-02-01T10:00:00Z", resp.GeneratedAt)

	mon := resp.Records[0]
	assert.Equal(t, "1001", mon.EmployeeCode)
	assert.Equal(t, attendance.StatusPresent, mon.Status)
	assert.True(t, mon.IsLate)
	assert.Equal(t, 5, mon.LateMinutes)
	assert.Equal(t, "8h 05m", mon.WorkingHours)
	assert.Equal(t, attendance.SourceDerived, mon.Source)

	tue := resp.Records[1]
	assert.True(t, tue.MissingBreak)
	assert.True(t, tue.NeedsReview)
	assert.Equal(t, 480, tue.WorkingMinutes)

	wed := resp.Records[2]
	assert.Equal(t, attendance.StatusAbsent, wed.Status)
	assert.True(t, wed.NeedsManualInput)

	unscheduled := resp.Records[3]
	assert.Equal(t, "1002", unscheduled.EmployeeCode)
	assert.Nil(t, unscheduled.ShiftID)
	assert.Equal(t, attendance.Status(""), unscheduled.DerivedStatus)
	assert.Equal(t, attendance.StatusDayOff, unscheduled.Status)
	assert.True(t, unscheduled.NeedsReview)

	ind := resp.Indicators
	assert.Equal(t, 6, ind.TotalRecords)
	assert.Equal(t, 1, ind.LateCount)
	assert.Equal(t, 5, ind.TotalLateMinutes)
	assert.Equal(t, 1, ind.OvertimeCount)
	assert.Equal(t, 10, ind.TotalOvertimeMinutes)
	assert.Equal(t, 965, ind.TotalWorkingMinutes)
	assert.True(t, decimal.RequireFromString("16.08").Equal(ind.TotalWorkingHours))
	assert.Equal(t, 1, ind.MissingCheckInCount)
	assert.Equal(t, 2, ind.MissingBreakCount)
	assert.Equal(t, 5, ind.NeedsReviewCount)
	assert.Equal(t, 0, ind.AdjustedCount)
	assert.Equal(t, map[attendance.Status]int{
		attendance.StatusPresent: 2,
		attendance.StatusAbsent:  1,
		attendance.StatusDayOff:  3,
	}, ind.StatusCounts)
}

func TestWorkCalculation_AdjustmentIsAuthoritative(t *testing.T) {
	f := setupWorkCalculation(t)
	ctx := context.Background()
	notes := "traffic accident, approved"

	_, err := f.adjustments.Upsert(ctx, attendance.AdjustmentRecord{
		EmployeeID: "e1", WorkDate: "2024-01-15", Status: attendance.StatusPresent,
		Notes: &notes, AdjustedBy: "supervisor", AdjustedAt: time.Now(),
	})
	require.NoError(t, err)

	resp, err := f.svc.Calculate(ctx, attendance.WorkCalculationFilter{StartDate: "2024-01-15", EndDate: "2024-01-15", EmployeeIDs: []string{"e1"}})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)

	rec := resp.Records[0]
	assert.Equal(t, attendance.SourceAdjusted, rec.Source)
	assert.False(t, rec.IsLate)
	assert.Equal(t, 0, rec.LateMinutes)
	assert.Equal(t, 5, rec.TotalLateMinutes)
	assert.Equal(t, attendance.StatusPresent, rec.DerivedStatus)
	require.NotNil(t, rec.Original)
	assert.Equal(t, "original: PRESENT, late 5m", *rec.Original)
	require.NotNil(t, rec.Adjustment)
	assert.Equal(t, "supervisor", rec.Adjustment.AdjustedBy)
	assert.Equal(t, notes, *rec.Notes)

	assert.Equal(t, 0, resp.Indicators.LateCount)
	assert.Equal(t, 1, resp.Indicators.AdjustedCount)
}

func TestWorkCalculation_RangeChecks(t *testing.T) {
	f := setupWorkCalculation(t)
	ctx := context.Background()

	_, err := f.svc.Calculate(ctx, attendance.WorkCalculationFilter{StartDate: "2024-01-01", EndDate: "2024-03-01"})
	assert.ErrorIs(t, err, attendance.ErrDateRangeTooLarge)

	_, err = f.svc.Calculate(ctx, attendance.WorkCalculationFilter{StartDate: "2024-01-10", EndDate: "2024-01-01"})
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.ToMap(), "end_date")
}

func TestWorkCalculation_NoEmployees(t *testing.T) {
	f := setupWorkCalculation(t)

	resp, err := f.svc.Calculate(context.Background(), attendance.WorkCalculationFilter{
		StartDate: "2024-01-15", EndDate: "2024-01-15", BranchID: strPtr("b9"),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Records)
	assert.Equal(t, 0, resp.Indicators.TotalRecords)
}

func TestWorkCalculation_Export(t *testing.T) {
	f := setupWorkCalculation(t)

	buf, filename, err := f.svc.Export(context.Background(), attendance.WorkCalculationFilter{StartDate: "2024-01-15", EndDate: "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, "work-calculation_2024-01-15_2024-01-16.xlsx", filename)

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Work Calculation")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Employee Code", rows[0][0])
	assert.Equal(t, "1001", rows[1][0])
	assert.Equal(t, "08:05", rows[1][6])

	summary, err := wb.GetRows("Indicators")
	require.NoError(t, err)
	assert.Equal(t, "Records", summary[1][0])
	assert.Equal(t, "4", summary[1][1])
}

func TestSummarize_CountsRecords(t *testing.T) {
	ind := Summarize([]attendance.AttendanceView{
		{Status: attendance.StatusPresent, BreakExceededMinutes: 15, OvertimeMinutes: 30, WorkingMinutes: 480},
		{Status: attendance.StatusPresent, BreakExceededMinutes: 5, WorkingMinutes: 470},
		{Status: attendance.StatusPresent, OvertimeMinutes: 10, WorkingMinutes: 490},
		{Status: attendance.StatusAbsent},
	})

	assert.Equal(t, 4, ind.TotalRecords)
	assert.Equal(t, 2, ind.BreakExceededCount)
	assert.Equal(t, 20, ind.TotalBreakExceededMinutes)
	assert.Equal(t, 2, ind.OvertimeCount)
	assert.Equal(t, 40, ind.TotalOvertimeMinutes)
	assert.Equal(t, 1440, ind.TotalWorkingMinutes)
	assert.True(t, decimal.NewFromInt(24).Equal(ind.TotalWorkingHours))
	assert.Equal(t, 3, ind.StatusCounts[attendance.StatusPresent])
}

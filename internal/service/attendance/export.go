package attendance

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Employee Code", "Name", "Date", "Day", "Shift", "Scans",
	"Check In", "Break Out", "Break In", "Check Out",
	"Shift Late", "Break Late", "Total Late", "Break Exceeded", "Overtime", "Early Leave",
	"Working Hours", "Missing", "Derived Status", "Status", "Source", "Original", "Notes",
}

// Export renders the work calculation as an xlsx workbook: one sheet of
// records and one of indicators.
func (s *WorkCalculationServiceImpl) Export(ctx context.Context, filter attendance.WorkCalculationFilter) (*bytes.Buffer, string, error) {
	report, err := s.Calculate(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	buf, err := RenderWorkbook(report)
	if err != nil {
		slog.Error("Failed to render work calculation workbook", "error", err)
		return nil, "", err
	}

	filename := fmt.Sprintf("work-calculation_%s_%s.xlsx", report.StartDate, report.EndDate)
	return buf, filename, nil
}

func RenderWorkbook(report attendance.WorkCalculationResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Work Calculation"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	reviewStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
	})

	for i, h := range exportHeaders {
		f.SetCellValue(sheet, cell(i, 1), h)
	}
	f.SetCellStyle(sheet, cell(0, 1), cell(len(exportHeaders)-1, 1), headerStyle)
	f.SetColWidth(sheet, "A", "B", 18)
	f.SetColWidth(sheet, "C", "C", 12)
	f.SetColWidth(sheet, "V", "W", 30)

	for i, r := range report.Records {
		row := i + 2
		values := []any{
			r.EmployeeCode, r.FullName, r.Date, string(r.Weekday), deref(r.ShiftName), r.ScanCount,
			deref(r.CheckIn), deref(r.BreakOut), deref(r.BreakIn), deref(r.CheckOut),
			r.ShiftLateMinutes, r.BreakLateMinutes, r.LateMinutes, r.BreakExceededMinutes, r.OvertimeMinutes, r.EarlyLeaveMinutes,
			r.WorkingHours, missingLabel(r), string(r.DerivedStatus), string(r.Status), r.Source, deref(r.Original), deref(r.Notes),
		}
		for col, v := range values {
			f.SetCellValue(sheet, cell(col, row), v)
		}
		if r.NeedsReview {
			f.SetCellStyle(sheet, cell(0, row), cell(len(values)-1, row), reviewStyle)
		}
	}

	const summary = "Indicators"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	ind := report.Indicators
	rows := [][]any{
		{"Period", report.StartDate + " - " + report.EndDate},
		{"Records", ind.TotalRecords},
		{"Late", ind.LateCount},
		{"Total Late Minutes", ind.TotalLateMinutes},
		{"Break Exceeded", ind.BreakExceededCount},
		{"Total Break Exceeded Minutes", ind.TotalBreakExceededMinutes},
		{"Overtime", ind.OvertimeCount},
		{"Total Overtime Minutes", ind.TotalOvertimeMinutes},
		{"Total Working Hours", ind.TotalWorkingHours.InexactFloat64()},
		{"Missing Check In", ind.MissingCheckInCount},
		{"Missing Check Out", ind.MissingCheckOutCount},
		{"Missing Break", ind.MissingBreakCount},
		{"Needs Review", ind.NeedsReviewCount},
		{"Adjusted", ind.AdjustedCount},
	}
	for _, status := range attendance.StatusValues {
		rows = append(rows, []any{status, ind.StatusCounts[attendance.Status(status)]})
	}
	for i, values := range rows {
		for col, v := range values {
			f.SetCellValue(summary, cell(col, i+1), v)
		}
	}
	f.SetColWidth(summary, "A", "A", 30)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func missingLabel(r attendance.AttendanceView) string {
	var label string
	add := func(s string) {
		if label != "" {
			label += ", "
		}
		label += s
	}
	if r.MissingCheckIn {
		add("check in")
	}
	if r.MissingCheckOut {
		add("check out")
	}
	if r.MissingBreak {
		add("break")
	}
	return label
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

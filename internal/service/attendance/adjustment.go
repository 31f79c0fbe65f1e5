package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type AdjustmentServiceImpl struct {
	adjustmentRepo attendance.AdjustmentRepository
	employeeRepo   employee.EmployeeRepository
	locker         keylock.Locker
	now            func() time.Time
}

func NewAdjustmentService(
	adjustmentRepo attendance.AdjustmentRepository,
	employeeRepo employee.EmployeeRepository,
	locker keylock.Locker,
) attendance.AdjustmentService {
	return &AdjustmentServiceImpl{
		adjustmentRepo: adjustmentRepo,
		employeeRepo:   employeeRepo,
		locker:         locker,
		now:            time.Now,
	}
}

// ApplyAdjustment replaces the override for (employee, date). The previous
// override, if any, is not kept.
func (s *AdjustmentServiceImpl) ApplyAdjustment(ctx context.Context, req attendance.ApplyAdjustmentRequest) (attendance.AdjustmentResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AdjustmentResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AdjustmentResponse{}, fmt.Errorf("%w: %w", attendance.ErrAdjustmentTargetNotFound, err)
		}
		return attendance.AdjustmentResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	rec, err := s.write(ctx, attendance.AdjustmentRecord{
		EmployeeID:  req.EmployeeID,
		WorkDate:    req.Date,
		Status:      attendance.Status(req.Status),
		Notes:       req.Notes,
		IsLate:      req.IsLate,
		LateMinutes: req.LateMinutes,
		ShiftID:     req.ShiftID,
		AdjustedBy:  req.AdjustedBy,
	})
	if err != nil {
		return attendance.AdjustmentResponse{}, err
	}

	slog.Info("Attendance adjusted",
		"employee_id", rec.EmployeeID,
		"date", rec.WorkDate,
		"status", rec.Status,
		"adjusted_by", rec.AdjustedBy,
	)
	return attendance.NewAdjustmentResponse(rec), nil
}

// BulkAssignDayOff validates the whole request before writing anything, then
// upserts each employee-date on its own. A failed pair does not undo the
// others; failures are reported per pair.
func (s *AdjustmentServiceImpl) BulkAssignDayOff(ctx context.Context, req attendance.BulkDayOffRequest) (attendance.BulkDayOffResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkDayOffResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)
	dates := DateRange(start, end)
	status := attendance.Status(req.Status)

	found, err := s.employeeRepo.List(ctx, employee.ListFilter{IDs: req.EmployeeIDs})
	if err != nil {
		return attendance.BulkDayOffResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}
	known := make(map[string]struct{}, len(found))
	for _, e := range found {
		known[e.ID] = struct{}{}
	}

	response := attendance.BulkDayOffResponse{
		Status:      status,
		PerEmployee: make(map[string]int, len(req.EmployeeIDs)),
	}

	for _, employeeID := range req.EmployeeIDs {
		response.PerEmployee[employeeID] = 0
		if _, ok := known[employeeID]; !ok {
			response.Failures = append(response.Failures, attendance.BulkDayOffFailure{
				EmployeeID: employeeID,
				Reason:     attendance.FailureNotFound,
				Message:    employee.ErrEmployeeNotFound.Error(),
			})
			continue
		}

		weekdays := req.WeekdaySet(employeeID)
		for _, date := range dates {
			if status == attendance.StatusDayOff && !weekdays[shift.DayOf(date)] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return response, err
			}

			response.Requested++
			workDate := date.Format("2006-01-02")
			_, err := s.write(ctx, attendance.AdjustmentRecord{
				EmployeeID: employeeID,
				WorkDate:   workDate,
				Status:     status,
				Notes:      req.Notes,
				AdjustedBy: req.AdjustedBy,
			})
			if err != nil {
				response.Failures = append(response.Failures, attendance.BulkDayOffFailure{
					EmployeeID: employeeID,
					Date:       workDate,
					Reason:     failureReason(err),
					Message:    err.Error(),
				})
				continue
			}
			response.Applied++
			response.PerEmployee[employeeID]++
		}
	}

	if len(response.Failures) > 0 {
		slog.Warn("Bulk day off finished with failures",
			"status", status,
			"applied", response.Applied,
			"failures", len(response.Failures),
		)
	}
	slog.Info("Bulk day off assigned",
		"status", status,
		"employees", len(req.EmployeeIDs),
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"applied", response.Applied,
		"adjusted_by", req.AdjustedBy,
	)
	return response, nil
}

func (s *AdjustmentServiceImpl) GetAdjustment(ctx context.Context, employeeID string, workDate string) (attendance.AdjustmentResponse, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(employeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if _, ok := validator.IsValidDate(workDate); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if err := errs.OrNil(); err != nil {
		return attendance.AdjustmentResponse{}, err
	}

	rec, err := s.adjustmentRepo.GetByEmployeeAndDate(ctx, employeeID, workDate)
	if err != nil {
		return attendance.AdjustmentResponse{}, err
	}
	return attendance.NewAdjustmentResponse(rec), nil
}

// write upserts rec while holding the lock of its key, so concurrent writes
// to one employee-date land one after the other.
func (s *AdjustmentServiceImpl) write(ctx context.Context, rec attendance.AdjustmentRecord) (attendance.AdjustmentRecord, error) {
	release, err := s.locker.Lock(ctx, rec.EmployeeID+":"+rec.WorkDate)
	if err != nil {
		if errors.Is(err, keylock.ErrNotObtained) {
			return attendance.AdjustmentRecord{}, fmt.Errorf("%w: %w", attendance.ErrAdjustmentInProgress, err)
		}
		return attendance.AdjustmentRecord{}, err
	}
	defer release()

	rec.AdjustedAt = s.now()
	saved, err := s.adjustmentRepo.Upsert(ctx, rec)
	if err != nil {
		return attendance.AdjustmentRecord{}, fmt.Errorf("failed to save adjustment: %w", err)
	}
	return saved, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, attendance.ErrAdjustmentInProgress):
		return attendance.FailureLocked
	case errors.Is(err, attendance.ErrAdjustmentTargetNotFound):
		return attendance.FailureNotFound
	default:
		return attendance.FailureStorage
	}
}

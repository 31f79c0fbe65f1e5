package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrManagerAccessRequired), errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Scan domain errors
	case errors.Is(err, scan.ErrImportBatchNotFound):
		NotFound(w, "Import batch not found")
	case errors.Is(err, scan.ErrEmptyScanLog), errors.Is(err, scan.ErrNoUsableRecords):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, scan.ErrUnsupportedFormat), errors.Is(err, scan.ErrInvalidCSVHeader):
		BadRequest(w, err.Error(), nil)

	// Shift domain errors
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, shift.ErrShiftNameExists):
		Conflict(w, "Shift name already exists")
	case errors.Is(err, shift.ErrDuplicateAssignment), errors.Is(err, shift.ErrConflictingAssignment):
		Conflict(w, err.Error())
	case errors.Is(err, shift.ErrInvalidScopeAssignment):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAdjustmentTargetNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrAdjustmentNotFound):
		NotFound(w, "Attendance adjustment not found")
	case errors.Is(err, attendance.ErrAdjustmentInProgress):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrDateRangeTooLarge):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

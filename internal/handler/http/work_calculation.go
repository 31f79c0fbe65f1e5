package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type WorkCalculationHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type workCalculationHandlerImpl struct {
	workCalculationService attendance.WorkCalculationService
}

func NewWorkCalculationHandler(workCalculationService attendance.WorkCalculationService) WorkCalculationHandler {
	return &workCalculationHandlerImpl{
		workCalculationService: workCalculationService,
	}
}

func parseWorkCalculationFilter(r *http.Request) attendance.WorkCalculationFilter {
	q := r.URL.Query()
	filter := attendance.WorkCalculationFilter{
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
		EmployeeIDs: splitQueryList(q.Get("employee_ids")),
	}
	if branchID := q.Get("branch_id"); branchID != "" {
		filter.BranchID = &branchID
	}
	if departmentID := q.Get("department_id"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	return filter
}

// Calculate implements WorkCalculationHandler.
func (h *workCalculationHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	filter := parseWorkCalculationFilter(r)

	result, err := h.workCalculationService.Calculate(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements WorkCalculationHandler.
func (h *workCalculationHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	filter := parseWorkCalculationFilter(r)

	buf, filename, err := h.workCalculationService.Export(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	w.Header().Set("Content-Type", xlsxContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write export", "filename", filename, "error", err)
	}
}

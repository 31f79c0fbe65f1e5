package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/organization"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type ShiftServiceImpl struct {
	tx           database.Transactor
	shiftRepo    shift.ShiftRepository
	orgRepo      organization.Repository
	employeeRepo employee.EmployeeRepository
}

func NewShiftService(
	tx database.Transactor,
	shiftRepo shift.ShiftRepository,
	orgRepo organization.Repository,
	employeeRepo employee.EmployeeRepository,
) shift.ShiftService {
	return &ShiftServiceImpl{
		tx:           tx,
		shiftRepo:    shiftRepo,
		orgRepo:      orgRepo,
		employeeRepo: employeeRepo,
	}
}

func (s *ShiftServiceImpl) Create(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	if err := validateShiftRequest(req.Validate(), req.Days); err != nil {
		return shift.ShiftResponse{}, err
	}

	model := newShiftModel(req)
	var created shift.Shift
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.validateScopes(txCtx, "", model.IsActive, model.ScopeAssignments); err != nil {
			return err
		}
		var err error
		created, err = s.shiftRepo.Create(txCtx, model)
		return err
	})
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	slog.Info("Shift created", "shift_id", created.ID, "name", created.Name, "assignments", len(created.ScopeAssignments))
	return shift.NewShiftResponse(created), nil
}

func (s *ShiftServiceImpl) Update(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	if err := validateShiftRequest(req.Validate(), req.Days); err != nil {
		return shift.ShiftResponse{}, err
	}

	var updated shift.Shift
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.shiftRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}

		model := newShiftModel(req.CreateShiftRequest)
		model.ID = existing.ID
		if req.IsActive == nil {
			model.IsActive = existing.IsActive
		}
		if err := s.validateScopes(txCtx, model.ID, model.IsActive, model.ScopeAssignments); err != nil {
			return err
		}

		updated, err = s.shiftRepo.Update(txCtx, model)
		return err
	})
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	slog.Info("Shift updated", "shift_id", updated.ID, "name", updated.Name, "is_active", updated.IsActive)
	return shift.NewShiftResponse(updated), nil
}

func (s *ShiftServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.shiftRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Shift deleted", "shift_id", id)
	return nil
}

func (s *ShiftServiceImpl) GetByID(ctx context.Context, id string) (shift.ShiftResponse, error) {
	model, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return shift.NewShiftResponse(model), nil
}

func (s *ShiftServiceImpl) List(ctx context.Context, filter shift.ListShiftFilter) ([]shift.ShiftResponse, error) {
	shifts, err := s.shiftRepo.List(ctx, shift.ListFilter{Name: filter.Name, ActiveOnly: filter.ActiveOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	result := make([]shift.ShiftResponse, 0, len(shifts))
	for _, m := range shifts {
		result = append(result, shift.NewShiftResponse(m))
	}
	return result, nil
}

// ValidateTemplate reports every problem of a weekly template without
// saving anything.
func (s *ShiftServiceImpl) ValidateTemplate(ctx context.Context, req shift.ValidateTemplateRequest) (shift.ValidateTemplateResponse, error) {
	errs := ValidateWeeklyTemplate(shift.ToDays(req.Days))
	if len(errs) > 0 {
		return shift.ValidateTemplateResponse{Valid: false, Errors: errs.ToMap()}, nil
	}
	return shift.ValidateTemplateResponse{Valid: true}, nil
}

// PreviewAssignments lists the employees the shift's scope covers and, for
// each, the shift that actually resolves once every active shift is taken
// into account. An inactive shift is previewed as if it were active.
func (s *ShiftServiceImpl) PreviewAssignments(ctx context.Context, id string) (shift.AssignmentPreviewResponse, error) {
	target, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return shift.AssignmentPreviewResponse{}, err
	}
	target.IsActive = true

	active, err := s.shiftRepo.List(ctx, shift.ListFilter{ActiveOnly: true})
	if err != nil {
		return shift.AssignmentPreviewResponse{}, fmt.Errorf("failed to list shifts: %w", err)
	}
	candidates := []shift.Shift{target}
	for _, m := range active {
		if m.ID != target.ID {
			candidates = append(candidates, m)
		}
	}
	resolver := NewResolver(candidates)

	employees, err := s.employeeRepo.List(ctx, employee.ListFilter{ActiveOnly: true})
	if err != nil {
		return shift.AssignmentPreviewResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	response := shift.AssignmentPreviewResponse{ShiftID: target.ID, Employees: []shift.PreviewEmployee{}}
	for _, emp := range employees {
		placement := emp.Placement()
		level, ok := MatchLevel(target, placement)
		if !ok {
			continue
		}

		preview := shift.PreviewEmployee{
			EmployeeID:   emp.ID,
			EmployeeCode: emp.EmployeeCode,
			FullName:     emp.FullName,
			MatchedLevel: level,
		}
		if m, ok := resolver.Resolve(placement); ok {
			resolvedID := m.Shift.ID
			preview.ResolvedShiftID = &resolvedID
			preview.Overridden = resolvedID != target.ID
		}
		if !preview.Overridden {
			response.Effective++
		}
		response.Employees = append(response.Employees, preview)
	}
	response.Matched = len(response.Employees)

	return response, nil
}

// validateShiftRequest merges header violations with the weekly template
// check so the caller sees every problem at once.
func validateShiftRequest(headerErr error, days []shift.DayRequest) error {
	var errs validator.ValidationErrors
	if headerErr != nil {
		var ve validator.ValidationErrors
		if !errors.As(headerErr, &ve) {
			return headerErr
		}
		errs = append(errs, ve...)
	}
	errs = append(errs, ValidateWeeklyTemplate(shift.ToDays(days))...)
	return errs.OrNil()
}

func newShiftModel(req shift.CreateShiftRequest) shift.Shift {
	model := shift.Shift{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		IsActive:         true,
		Days:             shift.ToDays(req.Days),
		ScopeAssignments: shift.ToScopeAssignments(req.ScopeAssignments),
	}
	if req.IsActive != nil {
		model.IsActive = *req.IsActive
	}
	if req.GracePeriodMinutes != nil {
		model.GracePeriodMinutes = *req.GracePeriodMinutes
	}
	if req.OvertimeThresholdMinutes != nil {
		model.OvertimeThresholdMinutes = *req.OvertimeThresholdMinutes
	}
	return model
}

package shift

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/organization"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// validateScopes rejects assignments that point at unknown org units or at a
// department outside the selected branch, assignments repeated within the
// shift, and scopes already held by another active shift.
func (s *ShiftServiceImpl) validateScopes(ctx context.Context, shiftID string, active bool, assignments []shift.ScopeAssignment) error {
	var zoneIDs, branchIDs, departmentIDs []string
	for _, a := range assignments {
		if a.ZoneID != nil {
			zoneIDs = append(zoneIDs, *a.ZoneID)
		}
		if a.BranchID != nil {
			branchIDs = append(branchIDs, *a.BranchID)
		}
		if a.DepartmentID != nil {
			departmentIDs = append(departmentIDs, *a.DepartmentID)
		}
	}

	zones, err := s.orgRepo.GetZonesByIDs(ctx, zoneIDs)
	if err != nil {
		return fmt.Errorf("failed to load zones: %w", err)
	}
	branches, err := s.orgRepo.GetBranchesByIDs(ctx, branchIDs)
	if err != nil {
		return fmt.Errorf("failed to load branches: %w", err)
	}
	departments, err := s.orgRepo.GetDepartmentsByIDs(ctx, departmentIDs)
	if err != nil {
		return fmt.Errorf("failed to load departments: %w", err)
	}

	knownZones := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		knownZones[z.ID] = struct{}{}
	}
	knownBranches := make(map[string]struct{}, len(branches))
	for _, b := range branches {
		knownBranches[b.ID] = struct{}{}
	}
	departmentBranch := make(map[string]string, len(departments))
	for _, d := range departments {
		departmentBranch[d.ID] = d.BranchID
	}

	var errs validator.ValidationErrors
	for i, a := range assignments {
		field := fmt.Sprintf("scope_assignments[%d]", i)
		switch a.Level {
		case shift.ScopeZone:
			if _, ok := knownZones[*a.ZoneID]; !ok {
				errs.Add(field+".zone_id", organization.ErrZoneNotFound.Error())
			}
		case shift.ScopeBranch:
			if _, ok := knownBranches[*a.BranchID]; !ok {
				errs.Add(field+".branch_id", organization.ErrBranchNotFound.Error())
			}
		case shift.ScopeDepartment:
			if _, ok := knownBranches[*a.BranchID]; !ok {
				errs.Add(field+".branch_id", organization.ErrBranchNotFound.Error())
			}
			branchID, ok := departmentBranch[*a.DepartmentID]
			switch {
			case !ok:
				errs.Add(field+".department_id", organization.ErrDepartmentNotFound.Error())
			case branchID != *a.BranchID:
				errs.Add(field+".department_id", organization.ErrDepartmentNotInBranch.Error())
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	keys := make([]string, 0, len(assignments))
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		key := a.Key()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", shift.ErrDuplicateAssignment, key)
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	if !active || len(keys) == 0 {
		return nil
	}

	taken, err := s.shiftRepo.FindAssignmentsByKeys(ctx, keys, shiftID)
	if err != nil {
		return fmt.Errorf("failed to check scope assignments: %w", err)
	}
	if len(taken) > 0 {
		return fmt.Errorf("%w: %s is held by shift %s", shift.ErrConflictingAssignment, taken[0].Key(), taken[0].ShiftID)
	}
	return nil
}

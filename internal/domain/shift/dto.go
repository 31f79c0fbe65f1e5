package shift

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type BreakRuleRequest struct {
	Type      string `json:"type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Minutes   *int   `json:"minutes"`
}

type DayRequest struct {
	Day        string             `json:"day"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	BreakRules []BreakRuleRequest `json:"break_rules"`
}

type ScopeAssignmentRequest struct {
	Level        string  `json:"level"`
	ZoneID       *string `json:"zone_id"`
	BranchID     *string `json:"branch_id"`
	DepartmentID *string `json:"department_id"`
}

// ToDays converts the request days into templates without validating them.
func ToDays(days []DayRequest) []DailyShiftTemplate {
	result := make([]DailyShiftTemplate, 0, len(days))
	for _, d := range days {
		tmpl := DailyShiftTemplate{
			Day:       DayOfWeek(strings.ToUpper(strings.TrimSpace(d.Day))),
			StartTime: strings.TrimSpace(d.StartTime),
			EndTime:   strings.TrimSpace(d.EndTime),
		}
		for _, b := range d.BreakRules {
			rule := BreakRule{
				Type:      BreakRuleType(strings.ToUpper(strings.TrimSpace(b.Type))),
				StartTime: strings.TrimSpace(b.StartTime),
				EndTime:   strings.TrimSpace(b.EndTime),
			}
			if b.Minutes != nil {
				rule.Minutes = *b.Minutes
			}
			tmpl.BreakRules = append(tmpl.BreakRules, rule)
		}
		result = append(result, tmpl)
	}
	return result
}

// ToScopeAssignments converts the request assignments. Empty ids become nil.
func ToScopeAssignments(reqs []ScopeAssignmentRequest) []ScopeAssignment {
	result := make([]ScopeAssignment, 0, len(reqs))
	for _, r := range reqs {
		result = append(result, ScopeAssignment{
			Level:        ScopeLevel(strings.ToUpper(strings.TrimSpace(r.Level))),
			ZoneID:       trimmedOrNil(r.ZoneID),
			BranchID:     trimmedOrNil(r.BranchID),
			DepartmentID: trimmedOrNil(r.DepartmentID),
		})
	}
	return result
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type CreateShiftRequest struct {
	Name                     string                   `json:"name"`
	Description              *string                  `json:"description"`
	IsActive                 *bool                    `json:"is_active"`
	GracePeriodMinutes       *int                     `json:"grace_period_minutes"`
	OvertimeThresholdMinutes *int                     `json:"overtime_threshold_minutes"`
	Days                     []DayRequest             `json:"days"`
	ScopeAssignments         []ScopeAssignmentRequest `json:"scope_assignments"`
}

// Validate checks the shift header and scope assignment shapes. Day
// templates are checked by the template validator so every violation can be
// reported together.
func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	errs = append(errs, validateMinuteSetting("grace_period_minutes", r.GracePeriodMinutes)...)
	errs = append(errs, validateMinuteSetting("overtime_threshold_minutes", r.OvertimeThresholdMinutes)...)
	errs = append(errs, ValidateScopeShapes(r.ScopeAssignments)...)

	return errs.OrNil()
}

type UpdateShiftRequest struct {
	ID string `json:"-"`
	CreateShiftRequest
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if err := r.CreateShiftRequest.Validate(); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, ve...)
		}
	}

	return errs.OrNil()
}

func validateMinuteSetting(field string, v *int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if v != nil && *v < 0 {
		errs.Add(field, field+" must be a non-negative number")
	}
	return errs
}

// ValidateScopeShapes checks that each assignment carries the ids its level
// needs. Existence in the org tree is checked by the service.
func ValidateScopeShapes(reqs []ScopeAssignmentRequest) validator.ValidationErrors {
	var errs validator.ValidationErrors

	for i, a := range ToScopeAssignments(reqs) {
		field := fmt.Sprintf("scope_assignments[%d]", i)
		switch a.Level {
		case ScopeZone:
			if a.ZoneID == nil {
				errs.Add(field+".zone_id", "zone_id is required for ZONE level")
			}
		case ScopeBranch:
			if a.BranchID == nil {
				errs.Add(field+".branch_id", "branch_id is required for BRANCH level")
			}
		case ScopeDepartment:
			if a.BranchID == nil {
				errs.Add(field+".branch_id", "branch_id is required for DEPARTMENT level")
			}
			if a.DepartmentID == nil {
				errs.Add(field+".department_id", "department_id is required for DEPARTMENT level")
			}
		case "":
			errs.Add(field+".level", "level is required")
		default:
			errs.Add(field+".level", "level must be one of: "+strings.Join(ScopeLevelValues, ", "))
		}
	}

	return errs
}

type ListShiftFilter struct {
	Name       *string `json:"name,omitempty"`
	ActiveOnly bool    `json:"active_only"`
}

type ValidateTemplateRequest struct {
	Days []DayRequest `json:"days"`
}

type ValidateTemplateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

type ShiftResponse struct {
	ID                       string               `json:"id"`
	Name                     string               `json:"name"`
	Description              *string              `json:"description,omitempty"`
	IsActive                 bool                 `json:"is_active"`
	GracePeriodMinutes       int                  `json:"grace_period_minutes"`
	OvertimeThresholdMinutes int                  `json:"overtime_threshold_minutes"`
	Days                     []DailyShiftTemplate `json:"days"`
	ScopeAssignments         []ScopeAssignment    `json:"scope_assignments"`
	CreatedAt                string               `json:"created_at"`
	UpdatedAt                string               `json:"updated_at"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:                       s.ID,
		Name:                     s.Name,
		Description:              s.Description,
		IsActive:                 s.IsActive,
		GracePeriodMinutes:       s.GracePeriodMinutes,
		OvertimeThresholdMinutes: s.OvertimeThresholdMinutes,
		Days:                     s.Days,
		ScopeAssignments:         s.ScopeAssignments,
		CreatedAt:                s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                s.UpdatedAt.Format(time.RFC3339),
	}
}

type PreviewEmployee struct {
	EmployeeID      string     `json:"employee_id"`
	EmployeeCode    string     `json:"employee_code"`
	FullName        string     `json:"full_name"`
	MatchedLevel    ScopeLevel `json:"matched_level"`
	ResolvedShiftID *string    `json:"resolved_shift_id"`
	Overridden      bool       `json:"overridden"`
}

// AssignmentPreviewResponse lists the employees a shift's scope matches and
// whether a more specific shift takes precedence for them.
type AssignmentPreviewResponse struct {
	ShiftID   string            `json:"shift_id"`
	Matched   int               `json:"matched"`
	Effective int               `json:"effective"`
	Employees []PreviewEmployee `json:"employees"`
}

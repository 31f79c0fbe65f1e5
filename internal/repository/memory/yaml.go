package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/organization"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"gopkg.in/yaml.v3"
)

// Dataset is the offline master data file read by the reconcile command.
type Dataset struct {
	Zones       []zoneRecord       `yaml:"zones"`
	Branches    []branchRecord     `yaml:"branches"`
	Departments []departmentRecord `yaml:"departments"`
	Employees   []employeeRecord   `yaml:"employees"`
	Shifts      []shiftRecord      `yaml:"shifts"`
}

type zoneRecord struct {
	ID   string `yaml:"id"`
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type branchRecord struct {
	ID     string `yaml:"id"`
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	ZoneID string `yaml:"zone_id"`
}

type departmentRecord struct {
	ID       string `yaml:"id"`
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	BranchID string `yaml:"branch_id"`
}

type employeeRecord struct {
	ID           string `yaml:"id"`
	EmployeeCode string `yaml:"employee_code"`
	FullName     string `yaml:"full_name"`
	ZoneID       string `yaml:"zone_id"`
	BranchID     string `yaml:"branch_id"`
	DepartmentID string `yaml:"department_id"`
	Active       *bool  `yaml:"active"`
}

type shiftRecord struct {
	ID                       string                     `yaml:"id"`
	Name                     string                     `yaml:"name"`
	Description              string                     `yaml:"description"`
	Active                   *bool                      `yaml:"active"`
	GracePeriodMinutes       int                        `yaml:"grace_period_minutes"`
	OvertimeThresholdMinutes int                        `yaml:"overtime_threshold_minutes"`
	Days                     []shift.DailyShiftTemplate `yaml:"days"`
	ScopeAssignments         []shift.ScopeAssignment    `yaml:"scope_assignments"`
}

// Repositories groups the stores filled from a Dataset.
type Repositories struct {
	Organization *OrganizationRepository
	Employee     *EmployeeRepository
	Shift        *ShiftRepository
}

// LoadYAML decodes a dataset and loads it into fresh in-memory repositories.
// Employees without a zone inherit the zone of their branch.
func LoadYAML(ctx context.Context, r io.Reader) (Repositories, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return Repositories{}, fmt.Errorf("failed to decode dataset: %w", err)
	}

	repos := Repositories{
		Organization: NewOrganizationRepository(),
		Employee:     NewEmployeeRepository(),
		Shift:        NewShiftRepository(),
	}

	branchZone := make(map[string]string, len(ds.Branches))
	for _, z := range ds.Zones {
		repos.Organization.AddZone(organization.Zone{ID: z.ID, Code: z.Code, Name: z.Name})
	}
	for _, b := range ds.Branches {
		repos.Organization.AddBranch(organization.Branch{ID: b.ID, Code: b.Code, Name: b.Name, ZoneID: b.ZoneID})
		branchZone[b.ID] = b.ZoneID
	}
	for _, d := range ds.Departments {
		repos.Organization.AddDepartment(organization.Department{ID: d.ID, Code: d.Code, Name: d.Name, BranchID: d.BranchID})
	}

	for i, e := range ds.Employees {
		if strings.TrimSpace(e.EmployeeCode) == "" {
			return Repositories{}, fmt.Errorf("employees[%d]: employee_code is required", i)
		}
		id := e.ID
		if id == "" {
			id = e.EmployeeCode
		}
		zoneID := e.ZoneID
		if zoneID == "" {
			zoneID = branchZone[e.BranchID]
		}
		repos.Employee.Add(employee.Employee{
			ID:           id,
			EmployeeCode: e.EmployeeCode,
			FullName:     e.FullName,
			ZoneID:       optional(zoneID),
			BranchID:     optional(e.BranchID),
			DepartmentID: optional(e.DepartmentID),
			IsActive:     e.Active == nil || *e.Active,
		})
	}

	for _, s := range ds.Shifts {
		model := shift.Shift{
			ID:                       s.ID,
			Name:                     s.Name,
			Description:              optional(s.Description),
			IsActive:                 s.Active == nil || *s.Active,
			GracePeriodMinutes:       s.GracePeriodMinutes,
			OvertimeThresholdMinutes: s.OvertimeThresholdMinutes,
			Days:                     s.Days,
			ScopeAssignments:         s.ScopeAssignments,
		}
		for i := range model.Days {
			model.Days[i].Day = shift.DayOfWeek(strings.ToUpper(string(model.Days[i].Day)))
			for j := range model.Days[i].BreakRules {
				rule := &model.Days[i].BreakRules[j]
				rule.Type = shift.BreakRuleType(strings.ToUpper(string(rule.Type)))
			}
		}
		for i := range model.ScopeAssignments {
			a := &model.ScopeAssignments[i]
			a.Level = shift.ScopeLevel(strings.ToUpper(string(a.Level)))
		}
		if _, err := repos.Shift.Create(ctx, model); err != nil {
			return Repositories{}, fmt.Errorf("failed to load shift %q: %w", s.Name, err)
		}
	}

	return repos, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

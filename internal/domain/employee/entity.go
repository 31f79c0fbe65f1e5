package employee

import "time"

// Employee is the directory entry the engine needs: the scanner code and the
// org placement used for shift resolution.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	ZoneID       *string
	BranchID     *string
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Placement is an employee's position in the zone, branch, department tree.
type Placement struct {
	ZoneID       string
	BranchID     string
	DepartmentID string
}

func (e Employee) Placement() Placement {
	return Placement{
		ZoneID:       deref(e.ZoneID),
		BranchID:     deref(e.BranchID),
		DepartmentID: deref(e.DepartmentID),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

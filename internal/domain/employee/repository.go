package employee

import "context"

type ListFilter struct {
	IDs           []string
	EmployeeCodes []string
	BranchID      *string
	DepartmentID  *string
	ActiveOnly    bool
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter ListFilter) ([]Employee, error)
}

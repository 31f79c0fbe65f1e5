package organization

import "errors"

var (
	ErrZoneNotFound          = errors.New("zone not found")
	ErrBranchNotFound        = errors.New("branch not found")
	ErrDepartmentNotFound    = errors.New("department not found")
	ErrDepartmentNotInBranch = errors.New("department does not belong to the selected branch")
)

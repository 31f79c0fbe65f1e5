package shift

import "errors"

var (
	ErrShiftNotFound          = errors.New("shift not found")
	ErrShiftNameExists        = errors.New("shift name already exists")
	ErrDuplicateAssignment    = errors.New("scope assignment is listed more than once")
	ErrConflictingAssignment  = errors.New("scope is already assigned to another active shift at the same level")
	ErrInvalidScopeAssignment = errors.New("invalid scope assignment")
)

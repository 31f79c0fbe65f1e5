package shift

import "context"

type ListFilter struct {
	Name       *string
	ActiveOnly bool
}

type ShiftRepository interface {
	Create(ctx context.Context, s Shift) (Shift, error)
	Update(ctx context.Context, s Shift) (Shift, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Shift, error)
	// List returns shifts with their days and scope assignments loaded.
	List(ctx context.Context, filter ListFilter) ([]Shift, error)
	// FindAssignmentsByKeys returns assignments of active shifts other than
	// excludeShiftID that target any of the given scope keys.
	FindAssignmentsByKeys(ctx context.Context, keys []string, excludeShiftID string) ([]ScopeAssignment, error)
}

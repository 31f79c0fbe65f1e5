package attendance

import "context"

type AdjustmentRepository interface {
	// Upsert writes rec for its (employee_id, work_date) key, replacing every
	// field of an existing override.
	Upsert(ctx context.Context, rec AdjustmentRecord) (AdjustmentRecord, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate string) (AdjustmentRecord, error)
	ListByDateRange(ctx context.Context, employeeIDs []string, startDate string, endDate string) ([]AdjustmentRecord, error)
}

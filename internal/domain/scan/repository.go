package scan

import "context"

// DailyScanKey identifies one employee-day.
type DailyScanKey struct {
	EmployeeCode string
	ScanDate     string
}

type DailyScanSetRepository interface {
	// UpsertMany writes each set keyed by (employee_code, scan_date),
	// replacing times, count and batch of an existing row.
	UpsertMany(ctx context.Context, sets []DailyScanSet) error
	GetByKeys(ctx context.Context, keys []DailyScanKey) ([]DailyScanSet, error)
	List(ctx context.Context, filter DailyScanFilter) ([]DailyScanSet, error)
}

type ImportBatchRepository interface {
	Create(ctx context.Context, batch ImportBatch) (ImportBatch, error)
	GetByID(ctx context.Context, id string) (ImportBatch, error)
}

package scan

import "context"

type ScanService interface {
	Import(ctx context.Context, req ImportScanLogRequest) (ImportScanLogResponse, error)
	ListDailyScans(ctx context.Context, filter DailyScanFilter) ([]DailyScanSetResponse, error)
	GetImportBatch(ctx context.Context, id string) (ImportBatchResponse, error)
}

package attendance

import (
	"bytes"
	"context"
)

type WorkCalculationService interface {
	Calculate(ctx context.Context, filter WorkCalculationFilter) (WorkCalculationResponse, error)
	Export(ctx context.Context, filter WorkCalculationFilter) (*bytes.Buffer, string, error)
}

type AdjustmentService interface {
	ApplyAdjustment(ctx context.Context, req ApplyAdjustmentRequest) (AdjustmentResponse, error)
	BulkAssignDayOff(ctx context.Context, req BulkDayOffRequest) (BulkDayOffResponse, error)
	GetAdjustment(ctx context.Context, employeeID string, workDate string) (AdjustmentResponse, error)
}

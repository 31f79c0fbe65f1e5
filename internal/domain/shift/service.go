package shift

import "context"

type ShiftService interface {
	Create(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	Update(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (ShiftResponse, error)
	List(ctx context.Context, filter ListShiftFilter) ([]ShiftResponse, error)
	ValidateTemplate(ctx context.Context, req ValidateTemplateRequest) (ValidateTemplateResponse, error)
	PreviewAssignments(ctx context.Context, id string) (AssignmentPreviewResponse, error)
}

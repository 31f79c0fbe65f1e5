package organization

import "context"

// Repository looks up org units by id. Missing ids are simply absent from
// the result.
type Repository interface {
	GetZonesByIDs(ctx context.Context, ids []string) ([]Zone, error)
	GetBranchesByIDs(ctx context.Context, ids []string) ([]Branch, error)
	GetDepartmentsByIDs(ctx context.Context, ids []string) ([]Department, error)
}

package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/organization"
)

type OrganizationRepository struct {
	store
	zones       map[string]organization.Zone
	branches    map[string]organization.Branch
	departments map[string]organization.Department
}

func NewOrganizationRepository() *OrganizationRepository {
	return &OrganizationRepository{
		zones:       make(map[string]organization.Zone),
		branches:    make(map[string]organization.Branch),
		departments: make(map[string]organization.Department),
	}
}

func (r *OrganizationRepository) AddZone(z organization.Zone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z.ID] = z
}

func (r *OrganizationRepository) AddBranch(b organization.Branch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches[b.ID] = b
}

func (r *OrganizationRepository) AddDepartment(d organization.Department) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departments[d.ID] = d
}

func (r *OrganizationRepository) GetZonesByIDs(ctx context.Context, ids []string) ([]organization.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []organization.Zone
	for _, id := range ids {
		if z, ok := r.zones[id]; ok {
			result = append(result, z)
		}
	}
	return result, nil
}

func (r *OrganizationRepository) GetBranchesByIDs(ctx context.Context, ids []string) ([]organization.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []organization.Branch
	for _, id := range ids {
		if b, ok := r.branches[id]; ok {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *OrganizationRepository) GetDepartmentsByIDs(ctx context.Context, ids []string) ([]organization.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []organization.Department
	for _, id := range ids {
		if d, ok := r.departments[id]; ok {
			result = append(result, d)
		}
	}
	return result, nil
}

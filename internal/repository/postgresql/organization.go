package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/organization"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

type organizationRepositoryImpl struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.Repository {
	return &organizationRepositoryImpl{db: db}
}

// GetZonesByIDs implements organization.Repository.
func (r *organizationRepositoryImpl) GetZonesByIDs(ctx context.Context, ids []string) ([]organization.Zone, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name
		FROM zones
		WHERE id = ANY($1)
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get zones: %w", err)
	}
	defer rows.Close()

	var zones []organization.Zone
	for rows.Next() {
		var z organization.Zone
		if err := rows.Scan(&z.ID, &z.Code, &z.Name); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// GetBranchesByIDs implements organization.Repository.
func (r *organizationRepositoryImpl) GetBranchesByIDs(ctx context.Context, ids []string) ([]organization.Branch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, zone_id
		FROM branches
		WHERE id = ANY($1)
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}
	defer rows.Close()

	var branches []organization.Branch
	for rows.Next() {
		var b organization.Branch
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.ZoneID); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// GetDepartmentsByIDs implements organization.Repository.
func (r *organizationRepositoryImpl) GetDepartmentsByIDs(ctx context.Context, ids []string) ([]organization.Department, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, branch_id
		FROM departments
		WHERE id = ANY($1)
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get departments: %w", err)
	}
	defer rows.Close()

	var departments []organization.Department
	for rows.Next() {
		var d organization.Department
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.BranchID); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

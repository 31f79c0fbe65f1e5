package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
)

type EmployeeRepository struct {
	store
	employees map[string]employee.Employee
}

func NewEmployeeRepository(employees ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]employee.Employee)}
	for _, e := range employees {
		r.Add(e)
	}
	return r
}

func (r *EmployeeRepository) Add(e employee.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[e.ID] = e
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// List returns matching employees ordered by employee code.
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []employee.Employee
	for _, id := range sortedKeys(r.employees) {
		e := r.employees[id]
		if filter.ActiveOnly && !e.IsActive {
			continue
		}
		if len(filter.IDs) > 0 && !contains(filter.IDs, e.ID) {
			continue
		}
		if len(filter.EmployeeCodes) > 0 && !contains(filter.EmployeeCodes, e.EmployeeCode) {
			continue
		}
		if filter.BranchID != nil && (e.BranchID == nil || *e.BranchID != *filter.BranchID) {
			continue
		}
		if filter.DepartmentID != nil && (e.DepartmentID == nil || *e.DepartmentID != *filter.DepartmentID) {
			continue
		}
		result = append(result, e)
	}
	sortEmployees(result)
	return result, nil
}

func sortEmployees(list []employee.Employee) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].EmployeeCode != list[j].EmployeeCode {
			return list[i].EmployeeCode < list[j].EmployeeCode
		}
		return list[i].ID < list[j].ID
	})
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
)

type adjustmentKey struct {
	employeeID string
	workDate   string
}

type AdjustmentRepository struct {
	store
	records map[adjustmentKey]attendance.AdjustmentRecord
}

func NewAdjustmentRepository() *AdjustmentRepository {
	return &AdjustmentRepository{
		store:   store{now: time.Now},
		records: make(map[adjustmentKey]attendance.AdjustmentRecord),
	}
}

func (r *AdjustmentRepository) Upsert(ctx context.Context, rec attendance.AdjustmentRecord) (attendance.AdjustmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := adjustmentKey{employeeID: rec.EmployeeID, workDate: rec.WorkDate}
	if prev, ok := r.records[key]; ok {
		rec.ID = prev.ID
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.ID = newID()
		rec.CreatedAt = r.now()
	}
	r.records[key] = rec
	return rec, nil
}

func (r *AdjustmentRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate string) (attendance.AdjustmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[adjustmentKey{employeeID: employeeID, workDate: workDate}]
	if !ok {
		return attendance.AdjustmentRecord{}, attendance.ErrAdjustmentNotFound
	}
	return rec, nil
}

func (r *AdjustmentRepository) ListByDateRange(ctx context.Context, employeeIDs []string, startDate string, endDate string) ([]attendance.AdjustmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []attendance.AdjustmentRecord
	for k, rec := range r.records {
		if k.workDate < startDate || k.workDate > endDate {
			continue
		}
		if len(employeeIDs) > 0 && !contains(employeeIDs, k.employeeID) {
			continue
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].WorkDate < result[j].WorkDate
	})
	return result, nil
}

// Count returns the number of stored overrides.
func (r *AdjustmentRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

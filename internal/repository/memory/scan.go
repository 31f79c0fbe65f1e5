package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
)

type DailyScanSetRepository struct {
	store
	sets map[scan.DailyScanKey]scan.DailyScanSet
}

func NewDailyScanSetRepository() *DailyScanSetRepository {
	return &DailyScanSetRepository{
		store: store{now: time.Now},
		sets:  make(map[scan.DailyScanKey]scan.DailyScanSet),
	}
}

func (r *DailyScanSetRepository) UpsertMany(ctx context.Context, sets []scan.DailyScanSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, s := range sets {
		key := scan.DailyScanKey{EmployeeCode: s.EmployeeCode, ScanDate: s.ScanDate}
		if prev, ok := r.sets[key]; ok {
			s.ID = prev.ID
			s.CreatedAt = prev.CreatedAt
		} else {
			s.ID = newID()
			s.CreatedAt = now
		}
		s.Times = append([]string(nil), s.Times...)
		s.UpdatedAt = now
		r.sets[key] = s
	}
	return nil
}

func (r *DailyScanSetRepository) GetByKeys(ctx context.Context, keys []scan.DailyScanKey) ([]scan.DailyScanSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []scan.DailyScanSet
	for _, k := range keys {
		if s, ok := r.sets[k]; ok {
			result = append(result, s)
		}
	}
	return result, nil
}

// List returns sets in the inclusive date range ordered by code, then date.
func (r *DailyScanSetRepository) List(ctx context.Context, filter scan.DailyScanFilter) ([]scan.DailyScanSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []scan.DailyScanSet
	for k, s := range r.sets {
		if k.ScanDate < filter.StartDate || k.ScanDate > filter.EndDate {
			continue
		}
		if len(filter.EmployeeCodes) > 0 && !contains(filter.EmployeeCodes, k.EmployeeCode) {
			continue
		}
		result = append(result, s)
	}
	sortScanSets(result)
	return result, nil
}

// DateRange returns the first and last scan date held. ok is false when the
// store is empty.
func (r *DailyScanSetRepository) DateRange() (start, end string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for k := range r.sets {
		if !ok || k.ScanDate < start {
			start = k.ScanDate
		}
		if !ok || k.ScanDate > end {
			end = k.ScanDate
		}
		ok = true
	}
	return start, end, ok
}

type ImportBatchRepository struct {
	store
	batches map[string]scan.ImportBatch
}

func NewImportBatchRepository() *ImportBatchRepository {
	return &ImportBatchRepository{batches: make(map[string]scan.ImportBatch)}
}

func (r *ImportBatchRepository) Create(ctx context.Context, batch scan.ImportBatch) (scan.ImportBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if batch.ID == "" {
		batch.ID = newID()
	}
	r.batches[batch.ID] = batch
	return batch, nil
}

func (r *ImportBatchRepository) GetByID(ctx context.Context, id string) (scan.ImportBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok {
		return scan.ImportBatch{}, scan.ErrImportBatchNotFound
	}
	return b, nil
}

func sortScanSets(list []scan.DailyScanSet) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].EmployeeCode != list[j].EmployeeCode {
			return list[i].EmployeeCode < list[j].EmployeeCode
		}
		return list[i].ScanDate < list[j].ScanDate
	})
}

package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

type ShiftRepository struct {
	store
	shifts map[string]shift.Shift
}

func NewShiftRepository() *ShiftRepository {
	return &ShiftRepository{
		store:  store{now: time.Now},
		shifts: make(map[string]shift.Shift),
	}
}

func (r *ShiftRepository) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(s.Name, "") {
		return shift.Shift{}, shift.ErrShiftNameExists
	}
	if s.ID == "" {
		s.ID = newID()
	}
	now := r.now()
	s.CreatedAt, s.UpdatedAt = now, now
	s = withAssignmentIDs(s)
	r.shifts[s.ID] = s
	return s, nil
}

func (r *ShiftRepository) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.shifts[s.ID]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	if r.nameTaken(s.Name, s.ID) {
		return shift.Shift{}, shift.ErrShiftNameExists
	}
	s.CreatedAt = prev.CreatedAt
	s.UpdatedAt = r.now()
	s = withAssignmentIDs(s)
	r.shifts[s.ID] = s
	return s, nil
}

func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shifts[id]; !ok {
		return shift.ErrShiftNotFound
	}
	delete(r.shifts, id)
	return nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (r *ShiftRepository) List(ctx context.Context, filter shift.ListFilter) ([]shift.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []shift.Shift
	for _, s := range r.shifts {
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		if filter.Name != nil && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(*filter.Name)) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *ShiftRepository) FindAssignmentsByKeys(ctx context.Context, keys []string, excludeShiftID string) ([]shift.ScopeAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []shift.ScopeAssignment
	for _, id := range sortedKeys(r.shifts) {
		s := r.shifts[id]
		if !s.IsActive || s.ID == excludeShiftID {
			continue
		}
		for _, a := range s.ScopeAssignments {
			if contains(keys, a.Key()) {
				result = append(result, a)
			}
		}
	}
	return result, nil
}

func (r *ShiftRepository) nameTaken(name, exceptID string) bool {
	for _, s := range r.shifts {
		if s.ID != exceptID && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func withAssignmentIDs(s shift.Shift) shift.Shift {
	assignments := make([]shift.ScopeAssignment, len(s.ScopeAssignments))
	for i, a := range s.ScopeAssignments {
		if a.ID == "" {
			a.ID = newID()
		}
		a.ShiftID = s.ID
		assignments[i] = a
	}
	s.ScopeAssignments = assignments
	return s
}

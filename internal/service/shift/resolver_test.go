package shift

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func zoneShift(id, zoneID string) shift.Shift {
	return shift.Shift{ID: id, Name: id, IsActive: true, Days: officeWeek(), ScopeAssignments: []shift.ScopeAssignment{
		{Level: shift.ScopeZone, ZoneID: strPtr(zoneID)},
	}}
}

func branchShift(id, branchID string) shift.Shift {
	return shift.Shift{ID: id, Name: id, IsActive: true, Days: officeWeek(), ScopeAssignments: []shift.ScopeAssignment{
		{Level: shift.ScopeBranch, BranchID: strPtr(branchID)},
	}}
}

func departmentShift(id, branchID, departmentID string) shift.Shift {
	return shift.Shift{ID: id, Name: id, IsActive: true, Days: officeWeek(), ScopeAssignments: []shift.ScopeAssignment{
		{Level: shift.ScopeDepartment, BranchID: strPtr(branchID), DepartmentID: strPtr(departmentID)},
	}}
}

func TestMatches(t *testing.T) {
	p := employee.Placement{ZoneID: "z1", BranchID: "b1", DepartmentID: "d1"}

	assert.True(t, Matches(shift.ScopeAssignment{Level: shift.ScopeZone, ZoneID: strPtr("z1")}, p))
	assert.False(t, Matches(shift.ScopeAssignment{Level: shift.ScopeZone, ZoneID: strPtr("z2")}, p))
	assert.True(t, Matches(shift.ScopeAssignment{Level: shift.ScopeBranch, BranchID: strPtr("b1")}, p))
	assert.True(t, Matches(shift.ScopeAssignment{Level: shift.ScopeDepartment, BranchID: strPtr("b1"), DepartmentID: strPtr("d1")}, p))
	assert.False(t, Matches(shift.ScopeAssignment{Level: shift.ScopeDepartment, BranchID: strPtr("b2"), DepartmentID: strPtr("d1")}, p))
	assert.False(t, Matches(shift.ScopeAssignment{Level: shift.ScopeZone}, employee.Placement{}))
}

func TestResolver_Precedence(t *testing.T) {
	shifts := []shift.Shift{
		zoneShift("zone", "z1"),
		branchShift("branch", "b1"),
		departmentShift("dept", "b1", "d1"),
	}
	r := NewResolver(shifts)

	tests := []struct {
		name      string
		placement employee.Placement
		wantShift string
		wantLevel shift.ScopeLevel
		wantFound bool
	}{
		{"department wins", employee.Placement{ZoneID: "z1", BranchID: "b1", DepartmentID: "d1"}, "dept", shift.ScopeDepartment, true},
		{"branch beats zone", employee.Placement{ZoneID: "z1", BranchID: "b1", DepartmentID: "d2"}, "branch", shift.ScopeBranch, true},
		{"zone only", employee.Placement{ZoneID: "z1", BranchID: "b9"}, "zone", shift.ScopeZone, true},
		{"department needs matching branch", employee.Placement{ZoneID: "z9", BranchID: "b2", DepartmentID: "d1"}, "", "", false},
		{"no placement", employee.Placement{}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := r.Resolve(tt.placement)
			assert.Equal(t, tt.wantFound, ok)
			assert.Equal(t, tt.wantShift, m.Shift.ID)
			assert.Equal(t, tt.wantLevel, m.Level)
		})
	}
}

func TestResolver_IgnoresInactiveShifts(t *testing.T) {
	inactive := departmentShift("dept", "b1", "d1")
	inactive.IsActive = false
	r := NewResolver([]shift.Shift{inactive, zoneShift("zone", "z1")})

	m, ok := r.Resolve(employee.Placement{ZoneID: "z1", BranchID: "b1", DepartmentID: "d1"})
	require.True(t, ok)
	assert.Equal(t, "zone", m.Shift.ID)
}

func TestResolver_DeterministicUnderReordering(t *testing.T) {
	shifts := []shift.Shift{
		branchShift("s-c", "b1"),
		branchShift("s-a", "b1"),
		zoneShift("s-b", "z1"),
		branchShift("s-d", "b1"),
	}
	p := employee.Placement{ZoneID: "z1", BranchID: "b1"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		rng.Shuffle(len(shifts), func(a, b int) { shifts[a], shifts[b] = shifts[b], shifts[a] })
		m, ok := NewResolver(shifts).Resolve(p)
		require.True(t, ok)
		assert.Equal(t, "s-a", m.Shift.ID)
		assert.Equal(t, shift.ScopeBranch, m.Level)
	}
}

func TestResolver_ResolveDay(t *testing.T) {
	s := zoneShift("zone", "z1")
	s.Days = []shift.DailyShiftTemplate{officeDay(shift.Monday)}
	r := NewResolver([]shift.Shift{s})
	p := employee.Placement{ZoneID: "z1"}

	monday := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	res, ok := r.ResolveDay(p, monday)
	require.True(t, ok)
	assert.Equal(t, shift.Monday, res.Weekday)
	assert.Equal(t, "2024-01-15", res.Date)
	assert.Equal(t, "08:00", res.Day.StartTime)

	_, ok = r.ResolveDay(p, monday.AddDate(0, 0, 1))
	assert.False(t, ok)
}

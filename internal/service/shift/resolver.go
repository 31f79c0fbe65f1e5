package shift

import (
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

// Match is the shift chosen for a placement and the level that selected it.
type Match struct {
	Shift shift.Shift
	Level shift.ScopeLevel
}

// Resolution is a Match narrowed to one calendar day.
type Resolution struct {
	Match
	Date    string
	Weekday shift.DayOfWeek
	Day     shift.DailyShiftTemplate
}

// Resolver picks the single applicable shift for an employee placement.
// The most specific matching level wins (DEPARTMENT, then BRANCH, then
// ZONE). Two shifts matching at the same level should have been rejected
// when assigned; if it still happens the lowest shift ID wins.
type Resolver struct {
	shifts []shift.Shift
}

// NewResolver keeps the active shifts, ordered by ID.
func NewResolver(shifts []shift.Shift) *Resolver {
	active := make([]shift.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.IsActive {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return &Resolver{shifts: active}
}

// MatchLevel returns the most specific level at which s targets p.
func MatchLevel(s shift.Shift, p employee.Placement) (shift.ScopeLevel, bool) {
	var (
		best  shift.ScopeLevel
		found bool
	)
	for _, a := range s.ScopeAssignments {
		if !Matches(a, p) {
			continue
		}
		if !found || a.Level.Specificity() > best.Specificity() {
			best, found = a.Level, true
		}
	}
	return best, found
}

// Matches reports whether a single assignment covers the placement.
func Matches(a shift.ScopeAssignment, p employee.Placement) bool {
	switch a.Level {
	case shift.ScopeZone:
		return p.ZoneID != "" && a.ZoneID != nil && *a.ZoneID == p.ZoneID
	case shift.ScopeBranch:
		return p.BranchID != "" && a.BranchID != nil && *a.BranchID == p.BranchID
	case shift.ScopeDepartment:
		return p.BranchID != "" && p.DepartmentID != "" &&
			a.BranchID != nil && *a.BranchID == p.BranchID &&
			a.DepartmentID != nil && *a.DepartmentID == p.DepartmentID
	default:
		return false
	}
}

// Resolve returns the shift that applies to p. No match is a valid outcome.
func (r *Resolver) Resolve(p employee.Placement) (Match, bool) {
	var (
		best  Match
		found bool
		tied  []string
	)
	for _, s := range r.shifts {
		level, ok := MatchLevel(s, p)
		if !ok {
			continue
		}
		switch {
		case !found || level.Specificity() > best.Level.Specificity():
			best, found = Match{Shift: s, Level: level}, true
			tied = tied[:0]
		case level.Specificity() == best.Level.Specificity():
			tied = append(tied, s.ID)
		}
	}

	if len(tied) > 0 {
		slog.Warn("Multiple shifts match at the same scope level, using lowest shift id",
			"level", best.Level,
			"shift_id", best.Shift.ID,
			"ignored_shift_ids", tied,
			"zone_id", p.ZoneID,
			"branch_id", p.BranchID,
			"department_id", p.DepartmentID,
		)
	}
	return best, found
}

// ResolveDay resolves the shift for p and returns its template for date.
func (r *Resolver) ResolveDay(p employee.Placement, date time.Time) (Resolution, bool) {
	m, ok := r.Resolve(p)
	if !ok {
		return Resolution{}, false
	}
	weekday := shift.DayOf(date)
	day, ok := m.Shift.Day(weekday)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{
		Match:   m,
		Date:    date.Format("2006-01-02"),
		Weekday: weekday,
		Day:     day,
	}, true
}

package shift

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/clock"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "MON"
	Tuesday   DayOfWeek = "TUE"
	Wednesday DayOfWeek = "WED"
	Thursday  DayOfWeek = "THU"
	Friday    DayOfWeek = "FRI"
	Saturday  DayOfWeek = "SAT"
	Sunday    DayOfWeek = "SUN"
)

// Week lists the weekdays in template order.
var Week = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d DayOfWeek) IsValid() bool {
	for _, w := range Week {
		if w == d {
			return true
		}
	}
	return false
}

// DayOf maps a calendar date to its weekday.
func DayOf(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

type BreakRuleType string

const (
	// BreakDuration expects a break of Minutes length somewhere inside the window.
	BreakDuration BreakRuleType = "DURATION"
	// BreakFixed expects the break to cover exactly the window.
	BreakFixed BreakRuleType = "FIXED"
)

var BreakRuleTypeValues = []string{string(BreakDuration), string(BreakFixed)}

type BreakRule struct {
	Type      BreakRuleType `json:"type" yaml:"type"`
	StartTime string        `json:"start_time" yaml:"start_time"`
	EndTime   string        `json:"end_time" yaml:"end_time"`
	Minutes   int           `json:"minutes,omitempty" yaml:"minutes,omitempty"`
}

// Window returns the rule's window in minutes since midnight.
func (b BreakRule) Window() (start, end int, ok bool) {
	start, okStart := clock.ParseMinutes(b.StartTime)
	end, okEnd := clock.ParseMinutes(b.EndTime)
	return start, end, okStart && okEnd
}

// AllowedMinutes is the break length deducted from working time: the
// configured minutes of a duration rule, or the window length of a fixed one.
func (b BreakRule) AllowedMinutes() int {
	if b.Type == BreakDuration {
		return b.Minutes
	}
	start, end, ok := b.Window()
	if !ok || end < start {
		return 0
	}
	return end - start
}

// Contains reports whether minute m falls inside the window, bounds included.
func (b BreakRule) Contains(m int) bool {
	start, end, ok := b.Window()
	return ok && m >= start && m <= end
}

type DailyShiftTemplate struct {
	Day        DayOfWeek   `json:"day" yaml:"day"`
	StartTime  string      `json:"start_time" yaml:"start_time"`
	EndTime    string      `json:"end_time" yaml:"end_time"`
	BreakRules []BreakRule `json:"break_rules" yaml:"break_rules"`
}

// OrderedBreakRules returns the break rules sorted by window start.
func (d DailyShiftTemplate) OrderedBreakRules() []BreakRule {
	rules := make([]BreakRule, len(d.BreakRules))
	copy(rules, d.BreakRules)
	sort.SliceStable(rules, func(i, j int) bool {
		si, _, _ := rules[i].Window()
		sj, _, _ := rules[j].Window()
		return si < sj
	})
	return rules
}

type ScopeLevel string

const (
	ScopeZone       ScopeLevel = "ZONE"
	ScopeBranch     ScopeLevel = "BRANCH"
	ScopeDepartment ScopeLevel = "DEPARTMENT"
)

var ScopeLevelValues = []string{string(ScopeZone), string(ScopeBranch), string(ScopeDepartment)}

// Specificity ranks levels for resolution; higher wins.
func (l ScopeLevel) Specificity() int {
	switch l {
	case ScopeDepartment:
		return 3
	case ScopeBranch:
		return 2
	case ScopeZone:
		return 1
	default:
		return 0
	}
}

type ScopeAssignment struct {
	ID           string     `json:"id,omitempty" yaml:"id,omitempty"`
	ShiftID      string     `json:"shift_id,omitempty" yaml:"-"`
	Level        ScopeLevel `json:"level" yaml:"level"`
	ZoneID       *string    `json:"zone_id,omitempty" yaml:"zone_id,omitempty"`
	BranchID     *string    `json:"branch_id,omitempty" yaml:"branch_id,omitempty"`
	DepartmentID *string    `json:"department_id,omitempty" yaml:"department_id,omitempty"`
}

// Key identifies the scope an assignment targets, independent of its shift.
func (a ScopeAssignment) Key() string {
	switch a.Level {
	case ScopeZone:
		return "ZONE:" + deref(a.ZoneID)
	case ScopeBranch:
		return "BRANCH:" + deref(a.BranchID)
	case ScopeDepartment:
		return "DEPARTMENT:" + deref(a.BranchID) + ":" + deref(a.DepartmentID)
	default:
		return string(a.Level)
	}
}

type Shift struct {
	ID                       string
	Name                     string
	Description              *string
	IsActive                 bool
	GracePeriodMinutes       int
	OvertimeThresholdMinutes int
	Days                     []DailyShiftTemplate
	ScopeAssignments         []ScopeAssignment
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Day returns the template for d, if the shift defines one.
func (s Shift) Day(d DayOfWeek) (DailyShiftTemplate, bool) {
	for _, day := range s.Days {
		if day.Day == d {
			return day, true
		}
	}
	return DailyShiftTemplate{}, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

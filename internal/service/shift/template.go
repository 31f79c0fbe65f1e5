package shift

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// ValidateDailyShift checks one weekday template. Every violation is
// returned; field names are relative to the day.
func ValidateDailyShift(day shift.DailyShiftTemplate) validator.ValidationErrors {
	var errs validator.ValidationErrors

	start, okStart := clock.ParseMinutes(day.StartTime)
	if !okStart {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	end, okEnd := clock.ParseMinutes(day.EndTime)
	if !okEnd {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}

	bounded := okStart && okEnd
	total := end - start
	if bounded && total <= 0 {
		errs.Add("end_time", "end_time must be after start_time")
		bounded = false
	}

	for i, rule := range day.BreakRules {
		field := fmt.Sprintf("break_rules[%d]", i)
		errs.Merge(field, validateBreakRule(rule, start, end, bounded))
	}

	return errs
}

func validateBreakRule(rule shift.BreakRule, shiftStart, shiftEnd int, bounded bool) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if rule.Type != shift.BreakDuration && rule.Type != shift.BreakFixed {
		errs.Add("type", "type must be one of: DURATION, FIXED")
		return errs
	}

	winStart, okStart := clock.ParseMinutes(rule.StartTime)
	if !okStart {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	winEnd, okEnd := clock.ParseMinutes(rule.EndTime)
	if !okEnd {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}

	if rule.Type == shift.BreakDuration {
		if rule.Minutes <= 0 {
			errs.Add("minutes", "minutes must be greater than 0")
		} else if bounded && rule.Minutes >= shiftEnd-shiftStart {
			errs.Add("minutes", "minutes must be shorter than the shift")
		}
	}

	if !okStart || !okEnd {
		return errs
	}

	window := winEnd - winStart
	if window <= 0 {
		errs.Add("end_time", "break window end_time must be after start_time")
		return errs
	}
	if bounded && (winStart < shiftStart || winEnd > shiftEnd) {
		errs.Add("window", fmt.Sprintf("break window %s-%s must fall within the shift %s-%s",
			rule.StartTime, rule.EndTime, clock.FormatHHMM(shiftStart), clock.FormatHHMM(shiftEnd)))
	}
	if rule.Type == shift.BreakDuration && rule.Minutes > 0 && window < rule.Minutes {
		errs.Add("window", fmt.Sprintf("break window of %d minutes is shorter than the %d minute break", window, rule.Minutes))
	}

	return errs
}

// ValidateWeeklyTemplate requires each of the seven weekdays exactly once
// and every day to pass ValidateDailyShift. Violations across all days are
// collected.
func ValidateWeeklyTemplate(days []shift.DailyShiftTemplate) validator.ValidationErrors {
	var errs validator.ValidationErrors

	seen := make(map[shift.DayOfWeek]int, len(days))
	for i, day := range days {
		field := fmt.Sprintf("days[%d]", i)
		if day.Day.IsValid() {
			field = fmt.Sprintf("days[%s]", day.Day)
		}

		switch {
		case !day.Day.IsValid():
			errs.Add(field+".day", fmt.Sprintf("invalid weekday %q", day.Day))
		case seen[day.Day] > 0:
			errs.Add("days", fmt.Sprintf("%s is defined more than once", day.Day))
		}
		seen[day.Day]++

		errs.Merge(field, ValidateDailyShift(day))
	}

	for _, d := range shift.Week {
		if seen[d] == 0 {
			errs.Add("days", fmt.Sprintf("%s is missing", d))
		}
	}

	return errs
}

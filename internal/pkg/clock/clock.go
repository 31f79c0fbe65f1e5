// Package clock converts wall-clock strings to minutes since midnight and back.
package clock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const MinutesPerDay = 24 * 60

// ParseMinutes parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are truncated.
func ParseMinutes(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 || len(parts[0]) > 2 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return 0, false
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 || len(parts[2]) != 2 {
			return 0, false
		}
	}

	return hour*60 + minute, true
}

// Canonical rewrites any time ParseMinutes accepts as zero-padded
// "HH:MM:SS". A missing seconds field becomes "00".
func Canonical(s string) (string, bool) {
	s = strings.TrimSpace(s)
	minutes, ok := ParseMinutes(s)
	if !ok {
		return "", false
	}
	second := "00"
	if parts := strings.Split(s, ":"); len(parts) == 3 {
		second = parts[2]
	}
	return FormatHHMM(minutes) + ":" + second, true
}

// FormatHHMM renders minutes since midnight as zero-padded "HH:MM".
func FormatHHMM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}

// FormatDuration renders a minute count as "8h 05m", "45m" or "0m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// ToHours converts minutes to hours rounded to two decimals.
func ToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2)
}

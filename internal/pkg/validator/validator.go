package validator

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/clock"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap flattens the errors by field. Messages for the same field are joined
// so that no violation is lost in the response.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		if existing, ok := result[err.Field]; ok {
			result[err.Field] = existing + "; " + err.Message
			continue
		}
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a violation.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Merge appends other's violations with their fields nested under prefix.
func (v *ValidationErrors) Merge(prefix string, other ValidationErrors) {
	for _, e := range other {
		field := e.Field
		if prefix != "" {
			field = prefix + "." + e.Field
		}
		*v = append(*v, ValidationError{Field: field, Message: e.Message})
	}
}

// Fields returns the distinct failing fields in sorted order.
func (v ValidationErrors) Fields() []string {
	seen := make(map[string]struct{}, len(v))
	var fields []string
	for _, e := range v {
		if _, ok := seen[e.Field]; ok {
			continue
		}
		seen[e.Field] = struct{}{}
		fields = append(fields, e.Field)
	}
	sort.Strings(fields)
	return fields
}

// OrNil returns nil for an empty set so callers can `return errs.OrNil()`.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidTime accepts "HH:MM" and "HH:MM:SS".
func IsValidTime(timeStr string) bool {
	_, ok := clock.ParseMinutes(timeStr)
	return ok
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

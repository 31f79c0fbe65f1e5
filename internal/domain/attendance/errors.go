package attendance

import "errors"

var (
	ErrAdjustmentNotFound       = errors.New("attendance adjustment not found")
	ErrAdjustmentTargetNotFound = errors.New("adjustment target not found")
	ErrDateRangeTooLarge        = errors.New("date range is too large")
	ErrAdjustmentInProgress     = errors.New("another adjustment for this employee and date is in progress")
)

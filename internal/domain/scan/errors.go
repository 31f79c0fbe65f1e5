package scan

import "errors"

var (
	ErrEmptyScanLog        = errors.New("scan log is empty")
	ErrNoUsableRecords     = errors.New("scan log contains no usable records")
	ErrUnsupportedFormat   = errors.New("unsupported scan log format")
	ErrImportBatchNotFound = errors.New("import batch not found")
	ErrInvalidCSVHeader    = errors.New("csv header is missing required columns")
)

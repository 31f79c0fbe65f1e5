package scan

import "time"

// PunchEvent is one raw scanner reading. Fields are kept as they appear in
// the log; date and time are not validated at parse time.
type PunchEvent struct {
	EmployeeCode string
	Date         string
	Time         string
	Status       string
	VerifyMode   string
	WorkCode     string
	Reserved     string
	Line         int
}

// DailyScanSet holds the distinct punch times of one employee on one day.
// Times are sorted ascending and ScanCount always equals len(Times).
type DailyScanSet struct {
	ID            string
	EmployeeCode  string
	ScanDate      string
	Times         []string
	ScanCount     int
	ImportBatchID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Source string

const (
	SourceDAT   Source = "DAT"
	SourceCSV   Source = "CSV"
	SourceInbox Source = "INBOX"
)

var SourceValues = []string{string(SourceDAT), string(SourceCSV), string(SourceInbox)}

// ImportBatch records where a group of daily scan sets came from.
type ImportBatch struct {
	ID           string
	Source       Source
	FileName     string
	TotalLines   int
	EventCount   int
	SkippedLines int
	SetCount     int
	ImportedBy   *string
	ImportedAt   time.Time
}

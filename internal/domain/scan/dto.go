package scan

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

const (
	FormatDAT = "dat"
	FormatCSV = "csv"
)

var FormatValues = []string{FormatDAT, FormatCSV}

type ImportScanLogRequest struct {
	Format     string  `json:"format"`
	FileName   string  `json:"file_name"`
	Source     Source  `json:"source"`
	Content    []byte  `json:"-"`
	ImportedBy *string `json:"-"`
}

func (r *ImportScanLogRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	if r.Format == "" {
		r.Format = FormatDAT
	}
	if !validator.IsInSlice(r.Format, FormatValues) {
		errs.Add("format", "format must be one of: "+strings.Join(FormatValues, ", "))
	}
	if r.Source != "" && !validator.IsInSlice(string(r.Source), SourceValues) {
		errs.Add("source", "source must be one of: "+strings.Join(SourceValues, ", "))
	}
	if len(strings.TrimSpace(string(r.Content))) == 0 {
		errs.Add("file", "file is empty")
	}

	return errs.OrNil()
}

type ImportScanLogResponse struct {
	BatchID            string   `json:"batch_id"`
	Source             Source   `json:"source"`
	FileName           string   `json:"file_name,omitempty"`
	TotalLines         int      `json:"total_lines"`
	ParsedEvents       int      `json:"parsed_events"`
	SkippedLines       int      `json:"skipped_lines"`
	SkippedLineNumbers []int    `json:"skipped_line_numbers,omitempty"`
	DailySets          int      `json:"daily_sets"`
	RejectedDates      []string `json:"rejected_dates,omitempty"`
	ImportedAt         string   `json:"imported_at"`
}

type ImportBatchResponse struct {
	ID           string  `json:"id"`
	Source       Source  `json:"source"`
	FileName     string  `json:"file_name"`
	TotalLines   int     `json:"total_lines"`
	EventCount   int     `json:"event_count"`
	SkippedLines int     `json:"skipped_lines"`
	SetCount     int     `json:"set_count"`
	ImportedBy   *string `json:"imported_by,omitempty"`
	ImportedAt   string  `json:"imported_at"`
}

type DailyScanFilter struct {
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	EmployeeCodes []string `json:"employee_codes,omitempty"`
}

func (f *DailyScanFilter) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(f.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(f.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.OrNil()
}

type DailyScanSetResponse struct {
	EmployeeCode  string   `json:"employee_code"`
	ScanDate      string   `json:"scan_date"`
	Times         []string `json:"times"`
	ScanCount     int      `json:"scan_count"`
	ImportBatchID string   `json:"import_batch_id"`
	UpdatedAt     string   `json:"updated_at"`
}

func NewDailyScanSetResponse(s DailyScanSet) DailyScanSetResponse {
	return DailyScanSetResponse{
		EmployeeCode:  s.EmployeeCode,
		ScanDate:      s.ScanDate,
		Times:         s.Times,
		ScanCount:     s.ScanCount,
		ImportBatchID: s.ImportBatchID,
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
}

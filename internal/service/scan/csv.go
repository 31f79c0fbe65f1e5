package scan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

const csvColumns = 6

var csvHeaderNames = []string{"employeecode", "employee_code", "code"}

// CSVResult is the outcome of reading a pre-aggregated scan CSV.
type CSVResult struct {
	Sets      []scan.DailyScanSet
	TotalRows int
}

// ReadScanCSV reads rows of `employeeCode,name,department,date,scanCount,scans`
// where scans is a comma or semicolon separated list of times. A header row is optional.
// Every row is validated and all violations are returned together; a file
// with any invalid row is rejected as a whole.
func ReadScanCSV(r io.Reader, batchID string) (CSVResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		result CSVResult
		errs   validator.ValidationErrors
		events []scan.PunchEvent
	)

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs.Add("file", "malformed csv: "+err.Error())
			return CSVResult{}, errs
		}
		if line == 1 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\uFEFF")
			if validator.IsInSlice(strings.ToLower(strings.TrimSpace(record[0])), csvHeaderNames) {
				continue
			}
		}
		if isBlankRecord(record) {
			continue
		}
		result.TotalRows++

		rowEvents, rowErrs := parseCSVRow(record)
		errs.Merge(fmt.Sprintf("row[%d]", line), rowErrs)
		events = append(events, rowEvents...)
	}

	if result.TotalRows == 0 {
		return CSVResult{}, scan.ErrEmptyScanLog
	}
	if len(errs) > 0 {
		return CSVResult{}, errs
	}

	result.Sets = Aggregate(events, batchID)
	return result, nil
}

func parseCSVRow(record []string) ([]scan.PunchEvent, validator.ValidationErrors) {
	var errs validator.ValidationErrors

	if len(record) < csvColumns {
		errs.Add("columns", fmt.Sprintf("expected %d columns, got %d", csvColumns, len(record)))
		return nil, errs
	}

	code := strings.TrimSpace(record[0])
	date := strings.TrimSpace(record[3])
	rawScans := strings.TrimSpace(record[5])

	if code == "" {
		errs.Add("employee_code", "employee code is required")
	}
	if date == "" {
		errs.Add("date", "date is required")
	} else if _, ok := validator.IsValidDate(date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	scanCount, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil || scanCount <= 0 {
		errs.Add("scan_count", "scan count must be greater than 0")
	}

	var times []string
	if rawScans == "" {
		errs.Add("scans", "scan times are required")
	} else {
		parts := strings.FieldsFunc(rawScans, isScanSeparator)
		for _, t := range parts {
			t = strings.TrimSpace(t)
			if !validator.IsValidTime(t) {
				errs.Add("scans", fmt.Sprintf("invalid scan time %q", t))
				continue
			}
			times = append(times, t)
		}
		if n := len(parts); err == nil && n != scanCount {
			errs.Add("scan_count", fmt.Sprintf("scan count %d does not match %d scan times", scanCount, n))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	events := make([]scan.PunchEvent, 0, len(times))
	for _, t := range times {
		events = append(events, scan.PunchEvent{EmployeeCode: code, Date: date, Time: t})
	}
	return events, nil
}

func isScanSeparator(r rune) bool {
	return r == ',' || r == ';'
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

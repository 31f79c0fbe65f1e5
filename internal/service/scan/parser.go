package scan

import (
	"regexp"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParseResult is the outcome of parsing a scanner log.
type ParseResult struct {
	Events       []scan.PunchEvent
	TotalLines   int
	SkippedLines []int
}

// ParseScanLog turns a whitespace-delimited scanner log into punch events.
// Each non-blank line is `code date time [status] [verify] [workcode] [reserved]`;
// lines with fewer than three fields are skipped and their 1-based line
// numbers reported. Dates and times are passed through unvalidated.
func ParseScanLog(content string) ParseResult {
	var result ParseResult

	content = strings.TrimSpace(strings.TrimPrefix(content, "\uFEFF"))
	if content == "" {
		return result
	}

	for i, raw := range lineBreak.Split(content, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		result.TotalLines++

		fields := strings.Fields(line)
		if len(fields) < 3 {
			result.SkippedLines = append(result.SkippedLines, i+1)
			continue
		}

		ev := scan.PunchEvent{
			EmployeeCode: fields[0],
			Date:         fields[1],
			Time:         fields[2],
			Line:         i + 1,
		}
		optional := []*string{&ev.Status, &ev.VerifyMode, &ev.WorkCode, &ev.Reserved}
		for j, dst := range optional {
			if len(fields) > 3+j {
				*dst = fields[3+j]
			}
		}
		result.Events = append(result.Events, ev)
	}

	return result
}

// Command reconcile runs the attendance engine offline: it reads a scanner
// log and a YAML master data file and prints the work calculation as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	scanService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/scan"
)

type options struct {
	logPath    string
	format     string
	configPath string
	startDate  string
	endDate    string
	employees  string
	workers    int
	xlsxPath   string
}

func main() {
	var opts options
	flag.StringVar(&opts.logPath, "log", "", "scanner log file (DAT or CSV)")
	flag.StringVar(&opts.format, "format", "", "log format: dat or csv (defaults to the file extension)")
	flag.StringVar(&opts.configPath, "config", "", "YAML file with org units, employees and shifts")
	flag.StringVar(&opts.startDate, "start", "", "first date, YYYY-MM-DD (defaults to the first scan date)")
	flag.StringVar(&opts.endDate, "end", "", "last date, YYYY-MM-DD (defaults to the last scan date)")
	flag.StringVar(&opts.employees, "employees", "", "comma separated employee ids (defaults to all active)")
	flag.IntVar(&opts.workers, "workers", 0, "parallel workers (0 = one per CPU)")
	flag.StringVar(&opts.xlsxPath, "xlsx", "", "also write the report as an XLSX workbook")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		slog.Error("Reconcile failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if opts.logPath == "" || opts.configPath == "" {
		return errors.New("-log and -config are required")
	}

	configFile, err := os.Open(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer configFile.Close()

	repos, err := memory.LoadYAML(ctx, configFile)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(opts.logPath)
	if err != nil {
		return fmt.Errorf("failed to read scanner log: %w", err)
	}

	scanSets := memory.NewDailyScanSetRepository()
	imported, err := scanService.NewScanService(memory.NewTransactor(), scanSets, memory.NewImportBatchRepository()).
		Import(ctx, scan.ImportScanLogRequest{
			Format:   detectFormat(opts.format, opts.logPath),
			FileName: filepath.Base(opts.logPath),
			Content:  content,
		})
	if err != nil {
		return err
	}
	slog.Info("Scanner log imported",
		"parsed_events", imported.ParsedEvents,
		"skipped_lines", imported.SkippedLines,
		"daily_sets", imported.DailySets,
	)

	start, end, ok := scanSets.DateRange()
	if opts.startDate != "" {
		start = opts.startDate
	}
	if opts.endDate != "" {
		end = opts.endDate
	}
	if !ok && (start == "" || end == "") {
		return errors.New("no scans imported; pass -start and -end")
	}

	filter := attendance.WorkCalculationFilter{StartDate: start, EndDate: end}
	for _, id := range strings.Split(opts.employees, ",") {
		if id = strings.TrimSpace(id); id != "" {
			filter.EmployeeIDs = append(filter.EmployeeIDs, id)
		}
	}

	// The offline run has no supervisor overrides and no range cap.
	svc := attendanceService.NewWorkCalculationService(
		repos.Employee,
		repos.Shift,
		scanSets,
		memory.NewAdjustmentRepository(),
		attendanceService.NewReconciler(attendanceService.NewCalculator(), opts.workers),
		0,
	)

	report, err := svc.Calculate(ctx, filter)
	if err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		buf, _, err := svc.Export(ctx, filter)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func detectFormat(flagValue, path string) string {
	if flagValue != "" {
		return flagValue
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return scan.FormatCSV
	}
	return scan.FormatDAT
}

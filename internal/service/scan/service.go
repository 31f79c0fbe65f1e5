package scan

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type ScanServiceImpl struct {
	tx database.Transactor
	scan.DailyScanSetRepository
	scan.ImportBatchRepository
	now func() time.Time
}

func NewScanService(tx database.Transactor, setRepo scan.DailyScanSetRepository, batchRepo scan.ImportBatchRepository) scan.ScanService {
	return &ScanServiceImpl{
		tx:                     tx,
		DailyScanSetRepository: setRepo,
		ImportBatchRepository:  batchRepo,
		now:                    time.Now,
	}
}

// Import parses a DAT log or a pre-aggregated CSV, merges the resulting
// daily sets with what is already stored and records the batch.
func (s *ScanServiceImpl) Import(ctx context.Context, req scan.ImportScanLogRequest) (scan.ImportScanLogResponse, error) {
	if err := req.Validate(); err != nil {
		return scan.ImportScanLogResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return scan.ImportScanLogResponse{}, fmt.Errorf("failed to generate batch id: %w", err)
	}
	batchID := id.String()

	batch := scan.ImportBatch{
		ID:         batchID,
		Source:     req.Source,
		FileName:   req.FileName,
		ImportedBy: req.ImportedBy,
		ImportedAt: s.now(),
	}
	response := scan.ImportScanLogResponse{
		BatchID:  batchID,
		FileName: req.FileName,
	}

	var sets []scan.DailyScanSet
	switch req.Format {
	case scan.FormatCSV:
		if batch.Source == "" {
			batch.Source = scan.SourceCSV
		}
		result, err := ReadScanCSV(bytes.NewReader(req.Content), batchID)
		if err != nil {
			return scan.ImportScanLogResponse{}, err
		}
		sets = result.Sets
		batch.TotalLines = result.TotalRows
		for _, set := range sets {
			batch.EventCount += set.ScanCount
		}
	default:
		if batch.Source == "" {
			batch.Source = scan.SourceDAT
		}
		parsed := ParseScanLog(string(req.Content))
		if parsed.TotalLines == 0 {
			return scan.ImportScanLogResponse{}, scan.ErrEmptyScanLog
		}
		if len(parsed.SkippedLines) > 0 {
			slog.Warn("Skipped malformed scan log lines",
				"batch_id", batchID,
				"count", len(parsed.SkippedLines),
				"lines", parsed.SkippedLines,
			)
		}

		events, rejected := normalizeEvents(parsed.Events)
		if len(rejected) > 0 {
			slog.Warn("Skipped scan events with unreadable dates", "batch_id", batchID, "dates", rejected)
		}
		if len(events) == 0 {
			return scan.ImportScanLogResponse{}, scan.ErrNoUsableRecords
		}

		sets = Aggregate(events, batchID)
		batch.TotalLines = parsed.TotalLines
		batch.EventCount = len(parsed.Events)
		batch.SkippedLines = len(parsed.SkippedLines)
		response.SkippedLineNumbers = parsed.SkippedLines
		response.RejectedDates = rejected
	}
	batch.SetCount = len(sets)

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.ImportBatchRepository.Create(txCtx, batch); err != nil {
			return fmt.Errorf("failed to create import batch: %w", err)
		}

		keys := make([]scan.DailyScanKey, 0, len(sets))
		for _, set := range sets {
			keys = append(keys, scan.DailyScanKey{EmployeeCode: set.EmployeeCode, ScanDate: set.ScanDate})
		}
		existing, err := s.DailyScanSetRepository.GetByKeys(txCtx, keys)
		if err != nil {
			return fmt.Errorf("failed to load existing scan sets: %w", err)
		}
		stored := make(map[scan.DailyScanKey]scan.DailyScanSet, len(existing))
		for _, e := range existing {
			stored[scan.DailyScanKey{EmployeeCode: e.EmployeeCode, ScanDate: e.ScanDate}] = e
		}
		for i, set := range sets {
			if prev, ok := stored[keys[i]]; ok {
				sets[i] = MergeDailyScanSet(prev, set)
			}
		}

		if err := s.DailyScanSetRepository.UpsertMany(txCtx, sets); err != nil {
			return fmt.Errorf("failed to save scan sets: %w", err)
		}
		return nil
	})
	if err != nil {
		return scan.ImportScanLogResponse{}, err
	}

	slog.Info("Scan log imported",
		"batch_id", batchID,
		"source", batch.Source,
		"file_name", batch.FileName,
		"events", batch.EventCount,
		"daily_sets", batch.SetCount,
		"skipped_lines", batch.SkippedLines,
	)

	response.Source = batch.Source
	response.TotalLines = batch.TotalLines
	response.ParsedEvents = batch.EventCount
	response.SkippedLines = batch.SkippedLines
	response.DailySets = batch.SetCount
	response.ImportedAt = batch.ImportedAt.Format(time.RFC3339)
	return response, nil
}

func (s *ScanServiceImpl) ListDailyScans(ctx context.Context, filter scan.DailyScanFilter) ([]scan.DailyScanSetResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	sets, err := s.DailyScanSetRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily scans: %w", err)
	}

	result := make([]scan.DailyScanSetResponse, 0, len(sets))
	for _, set := range sets {
		result = append(result, scan.NewDailyScanSetResponse(set))
	}
	return result, nil
}

func (s *ScanServiceImpl) GetImportBatch(ctx context.Context, id string) (scan.ImportBatchResponse, error) {
	batch, err := s.ImportBatchRepository.GetByID(ctx, id)
	if err != nil {
		return scan.ImportBatchResponse{}, err
	}

	return scan.ImportBatchResponse{
		ID:           batch.ID,
		Source:       batch.Source,
		FileName:     batch.FileName,
		TotalLines:   batch.TotalLines,
		EventCount:   batch.EventCount,
		SkippedLines: batch.SkippedLines,
		SetCount:     batch.SetCount,
		ImportedBy:   batch.ImportedBy,
		ImportedAt:   batch.ImportedAt.Format(time.RFC3339),
	}, nil
}

var scanDateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02"}

// normalizeEvents rewrites dates to YYYY-MM-DD. Events whose date cannot be
// read are dropped; their distinct raw dates are returned.
func normalizeEvents(events []scan.PunchEvent) ([]scan.PunchEvent, []string) {
	var (
		out          []scan.PunchEvent
		rejected     []string
		seenRejected = make(map[string]struct{})
	)

	for _, ev := range events {
		date, ok := normalizeScanDate(ev.Date)
		if !ok {
			if _, seen := seenRejected[ev.Date]; !seen {
				seenRejected[ev.Date] = struct{}{}
				rejected = append(rejected, ev.Date)
			}
			continue
		}
		ev.Date = date
		out = append(out, ev)
	}
	return out, rejected
}

func normalizeScanDate(raw string) (string, bool) {
	for _, layout := range scanDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}


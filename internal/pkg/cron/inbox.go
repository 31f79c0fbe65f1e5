package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/storage"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// InboxJobs imports scanner exports dropped into the storage inbox. Each file
// ends up under processed/ or failed/ so it is read at most once.
type InboxJobs struct {
	scanService scan.ScanService
	storage     storage.FileStorage
	inboxDir    string
	now         func() time.Time
}

func NewInboxJobs(scanService scan.ScanService, fileStorage storage.FileStorage, inboxDir string) *InboxJobs {
	return &InboxJobs{
		scanService: scanService,
		storage:     fileStorage,
		inboxDir:    strings.Trim(inboxDir, "/"),
		now:         time.Now,
	}
}

func (j *InboxJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("import_scanner_inbox", interval, j.ImportInbox)
}

// formatFor picks the import format from the file extension. Unknown
// extensions are left in the inbox.
func formatFor(name string) (string, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".dat", ".txt":
		return scan.FormatDAT, true
	case ".csv":
		return scan.FormatCSV, true
	default:
		return "", false
	}
}

func (j *InboxJobs) ImportInbox(ctx context.Context) error {
	files, err := j.storage.List(ctx, j.inboxDir)
	if err != nil {
		return fmt.Errorf("failed to list inbox: %w", err)
	}

	var imported, failed int
	var errs []error
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		format, ok := formatFor(file)
		if !ok {
			continue
		}

		target := processedDir
		result, importErr := j.importFile(ctx, file, format)
		if importErr != nil {
			slog.Error("Cron: Failed to import scanner file", "file", file, "error", importErr)
			target = failedDir
			failed++
		} else {
			slog.Info("Cron: Imported scanner file",
				"file", file,
				"batch_id", result.BatchID,
				"parsed_events", result.ParsedEvents,
				"skipped_lines", result.SkippedLines,
				"daily_sets", result.DailySets,
			)
			imported++
		}

		if err := j.storage.Move(ctx, file, j.archivePath(target, file)); err != nil {
			errs = append(errs, fmt.Errorf("failed to move %s to %s: %w", file, target, err))
		}
	}

	if imported > 0 || failed > 0 {
		slog.Info("Cron: Scanner inbox processed", "imported", imported, "failed", failed)
	}
	return errors.Join(errs...)
}

func (j *InboxJobs) importFile(ctx context.Context, file, format string) (scan.ImportScanLogResponse, error) {
	rc, err := j.storage.Download(ctx, file)
	if err != nil {
		return scan.ImportScanLogResponse{}, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return scan.ImportScanLogResponse{}, fmt.Errorf("failed to read file: %w", err)
	}

	return j.scanService.Import(ctx, scan.ImportScanLogRequest{
		Format:   format,
		FileName: path.Base(file),
		Source:   scan.SourceInbox,
		Content:  content,
	})
}

// archivePath prefixes the file name with the processing time so repeated
// drops of the same name do not collide.
func (j *InboxJobs) archivePath(dir, file string) string {
	return dir + "/" + j.now().UTC().Format("20060102T150405") + "_" + path.Base(file)
}

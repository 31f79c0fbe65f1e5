package cron

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingScanService struct {
	requests []scan.ImportScanLogRequest
}

func (r *recordingScanService) Import(ctx context.Context, req scan.ImportScanLogRequest) (scan.ImportScanLogResponse, error) {
	r.requests = append(r.requests, req)
	if strings.Contains(string(req.Content), "garbage") {
		return scan.ImportScanLogResponse{}, scan.ErrNoUsableRecords
	}
	return scan.ImportScanLogResponse{BatchID: "batch-" + req.FileName, ParsedEvents: 1, DailySets: 1}, nil
}

func (r *recordingScanService) ListDailyScans(ctx context.Context, filter scan.DailyScanFilter) ([]scan.DailyScanSetResponse, error) {
	return nil, nil
}

func (r *recordingScanService) GetImportBatch(ctx context.Context, id string) (scan.ImportBatchResponse, error) {
	return scan.ImportBatchResponse{}, scan.ErrImportBatchNotFound
}

func TestInboxJobs_ImportInbox(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files := map[string]string{
		"inbox/ATT2024.dat": "1001\t2024-01-15 08:00:00\t1\t0\t1\t0\n",
		"inbox/broken.txt":  "garbage",
		"inbox/summary.csv": "employeeCode,name,department,date,scanCount,scans\n1001,Somchai,Ops,2024-01-15,1,08:00\n",
		"inbox/readme.md":   "not a scan log",
	}
	for name, content := range files {
		_, err := store.Upload(ctx, strings.NewReader(content), name)
		require.NoError(t, err)
	}

	svc := &recordingScanService{}
	jobs := NewInboxJobs(svc, store, "/inbox/")
	jobs.now = func() time.Time { return time.Date(2024, 1, 16, 1, 2, 3, 0, time.UTC) }

	require.NoError(t, jobs.ImportInbox(ctx))

	require.Len(t, svc.requests, 3)
	assert.Equal(t, "ATT2024.dat", svc.requests[0].FileName)
	assert.Equal(t, scan.FormatDAT, svc.requests[0].Format)
	assert.Equal(t, scan.SourceInbox, svc.requests[0].Source)
	assert.Equal(t, scan.FormatDAT, svc.requests[1].Format)
	assert.Equal(t, scan.FormatCSV, svc.requests[2].Format)

	remaining, err := store.List(ctx, "inbox")
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox/readme.md"}, remaining)

	processed, err := store.List(ctx, "processed")
	require.NoError(t, err)
	assert.Equal(t, []string{"processed/20240116T010203_ATT2024.dat", "processed/20240116T010203_summary.csv"}, processed)

	failed, err := store.List(ctx, "failed")
	require.NoError(t, err)
	assert.Equal(t, []string{"failed/20240116T010203_broken.txt"}, failed)

	// A second run finds nothing new.
	require.NoError(t, jobs.ImportInbox(ctx))
	assert.Len(t, svc.requests, 3)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	var calls int32
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	s.AddJob("broken", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start(context.Background())
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()

	// Registration after start is ignored.
	s.AddJob("late", time.Hour, func(ctx context.Context) error { return nil })
	assert.Len(t, s.jobs, 1)
}

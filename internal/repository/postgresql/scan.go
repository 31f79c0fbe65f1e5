package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type dailyScanSetRepositoryImpl struct {
	db *database.DB
}

func NewDailyScanSetRepository(db *database.DB) scan.DailyScanSetRepository {
	return &dailyScanSetRepositoryImpl{db: db}
}

const dailyScanSetColumns = `d.id, d.employee_code, to_char(d.scan_date, 'YYYY-MM-DD'), d.times, d.scan_count,
	COALESCE(d.import_batch_id::text, ''), d.created_at, d.updated_at`

func scanDailyScanSet(row pgx.Row) (scan.DailyScanSet, error) {
	var s scan.DailyScanSet
	var timesJSON []byte
	err := row.Scan(
		&s.ID,
		&s.EmployeeCode,
		&s.ScanDate,
		&timesJSON,
		&s.ScanCount,
		&s.ImportBatchID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return scan.DailyScanSet{}, err
	}
	if err := json.Unmarshal(timesJSON, &s.Times); err != nil {
		return scan.DailyScanSet{}, fmt.Errorf("failed to parse scan times: %w", err)
	}
	return s, nil
}

// UpsertMany implements scan.DailyScanSetRepository. The sets are written in
// one statement; keys must be unique within sets.
func (r *dailyScanSetRepositoryImpl) UpsertMany(ctx context.Context, sets []scan.DailyScanSet) error {
	if len(sets) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	n := len(sets)
	codes := make([]string, n)
	dates := make([]string, n)
	times := make([]string, n)
	counts := make([]int32, n)
	batches := make([]string, n)
	for i, s := range sets {
		list := s.Times
		if list == nil {
			list = []string{}
		}
		raw, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("failed to encode scan times: %w", err)
		}
		codes[i], dates[i], times[i], counts[i], batches[i] = s.EmployeeCode, s.ScanDate, string(raw), int32(s.ScanCount), s.ImportBatchID
	}

	query := `
		INSERT INTO daily_scan_sets (employee_code, scan_date, times, scan_count, import_batch_id, created_at, updated_at)
		SELECT s.employee_code, s.scan_date::date, s.times::jsonb, s.scan_count, NULLIF(s.batch_id, '')::uuid, NOW(), NOW()
		FROM unnest($1::text[], $2::text[], $3::text[], $4::int[], $5::text[]) AS s(employee_code, scan_date, times, scan_count, batch_id)
		ON CONFLICT (employee_code, scan_date) DO UPDATE
		SET times = EXCLUDED.times,
			scan_count = EXCLUDED.scan_count,
			import_batch_id = EXCLUDED.import_batch_id,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, codes, dates, times, counts, batches); err != nil {
		return fmt.Errorf("failed to upsert daily scan sets: %w", err)
	}
	return nil
}

// GetByKeys implements scan.DailyScanSetRepository.
func (r *dailyScanSetRepositoryImpl) GetByKeys(ctx context.Context, keys []scan.DailyScanKey) ([]scan.DailyScanSet, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	codes := make([]string, len(keys))
	dates := make([]string, len(keys))
	for i, k := range keys {
		codes[i], dates[i] = k.EmployeeCode, k.ScanDate
	}

	query := `
		SELECT ` + dailyScanSetColumns + `
		FROM unnest($1::text[], $2::text[]) AS k(employee_code, scan_date)
		JOIN daily_scan_sets d ON d.employee_code = k.employee_code AND d.scan_date = k.scan_date::date
		ORDER BY d.employee_code, d.scan_date
	`
	return r.query(ctx, q, query, codes, dates)
}

// List implements scan.DailyScanSetRepository.
func (r *dailyScanSetRepositoryImpl) List(ctx context.Context, filter scan.DailyScanFilter) ([]scan.DailyScanSet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dailyScanSetColumns + `
		FROM daily_scan_sets d
		WHERE d.scan_date BETWEEN $1::date AND $2::date`
	args := []interface{}{filter.StartDate, filter.EndDate}
	if len(filter.EmployeeCodes) > 0 {
		query += ` AND d.employee_code = ANY($3)`
		args = append(args, filter.EmployeeCodes)
	}
	query += ` ORDER BY d.employee_code, d.scan_date`

	return r.query(ctx, q, query, args...)
}

func (r *dailyScanSetRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]scan.DailyScanSet, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily scan sets: %w", err)
	}
	defer rows.Close()

	var sets []scan.DailyScanSet
	for rows.Next() {
		s, err := scanDailyScanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily scan set: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

type importBatchRepositoryImpl struct {
	db *database.DB
}

func NewImportBatchRepository(db *database.DB) scan.ImportBatchRepository {
	return &importBatchRepositoryImpl{db: db}
}

const importBatchColumns = `id, source, file_name, total_lines, event_count, skipped_lines, set_count, imported_by, imported_at`

func scanImportBatch(row pgx.Row) (scan.ImportBatch, error) {
	var b scan.ImportBatch
	err := row.Scan(
		&b.ID,
		&b.Source,
		&b.FileName,
		&b.TotalLines,
		&b.EventCount,
		&b.SkippedLines,
		&b.SetCount,
		&b.ImportedBy,
		&b.ImportedAt,
	)
	return b, err
}

// Create implements scan.ImportBatchRepository.
func (r *importBatchRepositoryImpl) Create(ctx context.Context, batch scan.ImportBatch) (scan.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO import_batches (` + importBatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + importBatchColumns

	created, err := scanImportBatch(q.QueryRow(ctx, query,
		batch.ID, batch.Source, batch.FileName, batch.TotalLines, batch.EventCount,
		batch.SkippedLines, batch.SetCount, batch.ImportedBy, batch.ImportedAt,
	))
	if err != nil {
		return scan.ImportBatch{}, fmt.Errorf("failed to create import batch: %w", err)
	}
	return created, nil
}

// GetByID implements scan.ImportBatchRepository.
func (r *importBatchRepositoryImpl) GetByID(ctx context.Context, id string) (scan.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + importBatchColumns + ` FROM import_batches WHERE id = $1`

	b, err := scanImportBatch(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == invalidTextRepresentation {
			return scan.ImportBatch{}, scan.ErrImportBatchNotFound
		}
		return scan.ImportBatch{}, fmt.Errorf("failed to get import batch %s: %w", id, err)
	}
	return b, nil
}

package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type adjustmentRepositoryImpl struct {
	db *database.DB
}

func NewAdjustmentRepository(db *database.DB) attendance.AdjustmentRepository {
	return &adjustmentRepositoryImpl{db: db}
}

const adjustmentColumns = `id, employee_id, to_char(work_date, 'YYYY-MM-DD'), status, notes, is_late, late_minutes,
	shift_id::text, adjusted_by, adjusted_at, created_at`

func scanAdjustment(row pgx.Row) (attendance.AdjustmentRecord, error) {
	var a attendance.AdjustmentRecord
	err := row.Scan(
		&a.ID,
		&a.EmployeeID,
		&a.WorkDate,
		&a.Status,
		&a.Notes,
		&a.IsLate,
		&a.LateMinutes,
		&a.ShiftID,
		&a.AdjustedBy,
		&a.AdjustedAt,
		&a.CreatedAt,
	)
	return a, err
}

// Upsert implements attendance.AdjustmentRepository. A second write for the
// same employee and date replaces every field but id and created_at.
func (r *adjustmentRepositoryImpl) Upsert(ctx context.Context, rec attendance.AdjustmentRecord) (attendance.AdjustmentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_adjustments
			(employee_id, work_date, status, notes, is_late, late_minutes, shift_id, adjusted_by, adjusted_at, created_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7::uuid, $8, $9, NOW())
		ON CONFLICT (employee_id, work_date) DO UPDATE
		SET status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			is_late = EXCLUDED.is_late,
			late_minutes = EXCLUDED.late_minutes,
			shift_id = EXCLUDED.shift_id,
			adjusted_by = EXCLUDED.adjusted_by,
			adjusted_at = EXCLUDED.adjusted_at
		RETURNING ` + adjustmentColumns

	saved, err := scanAdjustment(q.QueryRow(ctx, query,
		rec.EmployeeID, rec.WorkDate, rec.Status, rec.Notes, rec.IsLate, rec.LateMinutes,
		rec.ShiftID, rec.AdjustedBy, rec.AdjustedAt,
	))
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return attendance.AdjustmentRecord{}, fmt.Errorf("%w: %w", attendance.ErrAdjustmentTargetNotFound, employee.ErrEmployeeNotFound)
		}
		return attendance.AdjustmentRecord{}, fmt.Errorf("failed to upsert adjustment: %w", err)
	}
	return saved, nil
}

// GetByEmployeeAndDate implements attendance.AdjustmentRepository.
func (r *adjustmentRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate string) (attendance.AdjustmentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + adjustmentColumns + `
		FROM attendance_adjustments
		WHERE employee_id = $1 AND work_date = $2::date
	`
	a, err := scanAdjustment(q.QueryRow(ctx, query, employeeID, workDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AdjustmentRecord{}, attendance.ErrAdjustmentNotFound
		}
		return attendance.AdjustmentRecord{}, fmt.Errorf("failed to get adjustment: %w", err)
	}
	return a, nil
}

// ListByDateRange implements attendance.AdjustmentRepository. An empty
// employeeIDs lists every employee.
func (r *adjustmentRepositoryImpl) ListByDateRange(ctx context.Context, employeeIDs []string, startDate string, endDate string) ([]attendance.AdjustmentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + adjustmentColumns + `
		FROM attendance_adjustments
		WHERE work_date BETWEEN $1::date AND $2::date`
	args := []interface{}{startDate, endDate}
	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($3)`
		args = append(args, employeeIDs)
	}
	query += ` ORDER BY employee_id, work_date`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var result []attendance.AdjustmentRecord
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adjustmentColumnNames = []string{"id", "employee_id", "work_date", "status", "notes", "is_late", "late_minutes", "shift_id", "adjusted_by", "adjusted_at", "created_at"}

func TestAdjustmentRepository_Upsert(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewAdjustmentRepository(db)
	at := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	notes := strPtr("sick, certificate received")
	rec := attendance.AdjustmentRecord{
		EmployeeID: "e1", WorkDate: "2024-01-15", Status: attendance.StatusLeave,
		Notes: notes, AdjustedBy: "supervisor", AdjustedAt: at,
	}

	mock.ExpectQuery("ON CONFLICT \\(employee_id, work_date\\) DO UPDATE").
		WithArgs("e1", "2024-01-15", attendance.StatusLeave, notes, false, 0, rec.ShiftID, "supervisor", at).
		WillReturnRows(pgxmock.NewRows(adjustmentColumnNames).
			AddRow("adj-1", "e1", "2024-01-15", "LEAVE", notes, false, 0, nil, "supervisor", at, at))

	saved, err := repo.Upsert(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "adj-1", saved.ID)
	assert.Equal(t, attendance.StatusLeave, saved.Status)
	assert.Equal(t, *notes, *saved.Notes)
	assert.Nil(t, saved.ShiftID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustmentRepository_UpsertUnknownEmployee(t *testing.T) {
	mock, db := newMockDB(t)
	rec := attendance.AdjustmentRecord{EmployeeID: "ghost", WorkDate: "2024-01-15", Status: attendance.StatusPresent, AdjustedBy: "hr"}

	mock.ExpectQuery("INSERT INTO attendance_adjustments").
		WithArgs("ghost", "2024-01-15", attendance.StatusPresent, rec.Notes, false, 0, rec.ShiftID, "hr", rec.AdjustedAt).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolation})

	_, err := NewAdjustmentRepository(db).Upsert(context.Background(), rec)
	assert.ErrorIs(t, err, attendance.ErrAdjustmentTargetNotFound)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAdjustmentRepository_GetAndList(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewAdjustmentRepository(db)
	at := time.Now()

	mock.ExpectQuery("FROM attendance_adjustments").
		WithArgs("e1", "2024-01-20").
		WillReturnRows(pgxmock.NewRows(adjustmentColumnNames))
	mock.ExpectQuery("FROM attendance_adjustments").
		WithArgs("2024-01-01", "2024-01-31").
		WillReturnRows(pgxmock.NewRows(adjustmentColumnNames).
			AddRow("adj-1", "e1", "2024-01-06", "DAY_OFF", nil, false, 0, nil, "hr", at, at).
			AddRow("adj-2", "e2", "2024-01-06", "DAY_OFF", nil, false, 0, strPtr("s1"), "hr", at, at))

	_, err := repo.GetByEmployeeAndDate(context.Background(), "e1", "2024-01-20")
	assert.ErrorIs(t, err, attendance.ErrAdjustmentNotFound)

	list, err := repo.ListByDateRange(context.Background(), nil, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, attendance.StatusDayOff, list[1].Status)
	assert.Equal(t, "s1", *list[1].ShiftID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

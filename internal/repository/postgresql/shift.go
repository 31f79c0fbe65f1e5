package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

// NewShiftRepository stores shifts across shifts, shift_days and
// shift_scope_assignments. Create and Update write all three tables and
// expect to run inside a transaction.
func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

const shiftColumns = `id, name, description, is_active, grace_period_minutes, overtime_threshold_minutes, created_at, updated_at`

func scanShift(row pgx.Row) (shift.Shift, error) {
	var s shift.Shift
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.IsActive,
		&s.GracePeriodMinutes,
		&s.OvertimeThresholdMinutes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// Create implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shifts (name, description, is_active, grace_period_minutes, overtime_threshold_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + shiftColumns

	created, err := scanShift(q.QueryRow(ctx, query,
		s.Name, s.Description, s.IsActive, s.GracePeriodMinutes, s.OvertimeThresholdMinutes,
	))
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	if err := r.writeDetails(ctx, q, created.ID, s); err != nil {
		return shift.Shift{}, err
	}
	return r.GetByID(ctx, created.ID)
}

// Update implements shift.ShiftRepository. Days and scope assignments are
// replaced as a whole.
func (r *shiftRepositoryImpl) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts
		SET name = $2, description = $3, is_active = $4,
			grace_period_minutes = $5, overtime_threshold_minutes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + shiftColumns

	_, err := scanShift(q.QueryRow(ctx, query,
		s.ID, s.Name, s.Description, s.IsActive, s.GracePeriodMinutes, s.OvertimeThresholdMinutes,
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), pgErrorCode(err) == invalidTextRepresentation:
			return shift.Shift{}, shift.ErrShiftNotFound
		case pgErrorCode(err) == uniqueViolation:
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to update shift %s: %w", s.ID, err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM shift_days WHERE shift_id = $1`, s.ID); err != nil {
		return shift.Shift{}, fmt.Errorf("failed to clear shift days: %w", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM shift_scope_assignments WHERE shift_id = $1`, s.ID); err != nil {
		return shift.Shift{}, fmt.Errorf("failed to clear scope assignments: %w", err)
	}
	if err := r.writeDetails(ctx, q, s.ID, s); err != nil {
		return shift.Shift{}, err
	}
	return r.GetByID(ctx, s.ID)
}

func (r *shiftRepositoryImpl) writeDetails(ctx context.Context, q database.Querier, shiftID string, s shift.Shift) error {
	if len(s.Days) > 0 {
		days := make([]string, len(s.Days))
		starts := make([]string, len(s.Days))
		ends := make([]string, len(s.Days))
		rules := make([]string, len(s.Days))
		for i, d := range s.Days {
			breakRules := d.BreakRules
			if breakRules == nil {
				breakRules = []shift.BreakRule{}
			}
			raw, err := json.Marshal(breakRules)
			if err != nil {
				return fmt.Errorf("failed to encode break rules: %w", err)
			}
			days[i], starts[i], ends[i], rules[i] = string(d.Day), d.StartTime, d.EndTime, string(raw)
		}

		query := `
			INSERT INTO shift_days (shift_id, day, start_time, end_time, break_rules)
			SELECT $1, d.day, d.start_time, d.end_time, d.break_rules::jsonb
			FROM unnest($2::text[], $3::text[], $4::text[], $5::text[]) AS d(day, start_time, end_time, break_rules)
		`
		if _, err := q.Exec(ctx, query, shiftID, days, starts, ends, rules); err != nil {
			return fmt.Errorf("failed to insert shift days: %w", err)
		}
	}

	if len(s.ScopeAssignments) > 0 {
		n := len(s.ScopeAssignments)
		levels := make([]string, n)
		zones := make([]*string, n)
		branches := make([]*string, n)
		departments := make([]*string, n)
		keys := make([]string, n)
		for i, a := range s.ScopeAssignments {
			levels[i], zones[i], branches[i], departments[i], keys[i] = string(a.Level), a.ZoneID, a.BranchID, a.DepartmentID, a.Key()
		}

		query := `
			INSERT INTO shift_scope_assignments (shift_id, level, zone_id, branch_id, department_id, scope_key)
			SELECT $1, a.level, a.zone_id, a.branch_id, a.department_id, a.scope_key
			FROM unnest($2::text[], $3::text[], $4::text[], $5::text[], $6::text[]) AS a(level, zone_id, branch_id, department_id, scope_key)
		`
		if _, err := q.Exec(ctx, query, shiftID, levels, zones, branches, departments, keys); err != nil {
			switch pgErrorCode(err) {
			case uniqueViolation:
				return shift.ErrDuplicateAssignment
			case foreignKeyViolation:
				return fmt.Errorf("%w: unknown org unit", shift.ErrInvalidScopeAssignment)
			}
			return fmt.Errorf("failed to insert scope assignments: %w", err)
		}
	}
	return nil
}

// Delete implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		if pgErrorCode(err) == invalidTextRepresentation {
			return shift.ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	s, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == invalidTextRepresentation {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift %s: %w", id, err)
	}

	shifts := []shift.Shift{s}
	if err := r.loadDetails(ctx, q, shifts); err != nil {
		return shift.Shift{}, err
	}
	return shifts[0], nil
}

// List implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) List(ctx context.Context, filter shift.ListFilter) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if filter.Name != nil && strings.TrimSpace(*filter.Name) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Name)+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	var shifts []shift.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	if err := r.loadDetails(ctx, q, shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

// loadDetails fills Days and ScopeAssignments of shifts in place.
func (r *shiftRepositoryImpl) loadDetails(ctx context.Context, q database.Querier, shifts []shift.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	ids := make([]string, len(shifts))
	index := make(map[string]int, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
		index[s.ID] = i
	}

	dayQuery := `
		SELECT shift_id, day, start_time, end_time, break_rules
		FROM shift_days
		WHERE shift_id = ANY($1::uuid[])
		ORDER BY shift_id, array_position(ARRAY['MON','TUE','WED','THU','FRI','SAT','SUN'], day)
	`
	rows, err := q.Query(ctx, dayQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to get shift days: %w", err)
	}
	for rows.Next() {
		var shiftID string
		var day shift.DailyShiftTemplate
		var rulesJSON []byte
		if err := rows.Scan(&shiftID, &day.Day, &day.StartTime, &day.EndTime, &rulesJSON); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan shift day: %w", err)
		}
		if err := json.Unmarshal(rulesJSON, &day.BreakRules); err != nil {
			rows.Close()
			return fmt.Errorf("failed to parse break rules: %w", err)
		}
		if i, ok := index[shiftID]; ok {
			shifts[i].Days = append(shifts[i].Days, day)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to get shift days: %w", err)
	}

	assignmentQuery := `
		SELECT id, shift_id, level, zone_id, branch_id, department_id
		FROM shift_scope_assignments
		WHERE shift_id = ANY($1::uuid[])
		ORDER BY shift_id, scope_key
	`
	rows, err = q.Query(ctx, assignmentQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to get scope assignments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return fmt.Errorf("failed to scan scope assignment: %w", err)
		}
		if i, ok := index[a.ShiftID]; ok {
			shifts[i].ScopeAssignments = append(shifts[i].ScopeAssignments, a)
		}
	}
	return rows.Err()
}

func scanAssignment(row pgx.Row) (shift.ScopeAssignment, error) {
	var a shift.ScopeAssignment
	err := row.Scan(&a.ID, &a.ShiftID, &a.Level, &a.ZoneID, &a.BranchID, &a.DepartmentID)
	return a, err
}

// FindAssignmentsByKeys implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) FindAssignmentsByKeys(ctx context.Context, keys []string, excludeShiftID string) ([]shift.ScopeAssignment, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.shift_id, a.level, a.zone_id, a.branch_id, a.department_id
		FROM shift_scope_assignments a
		JOIN shifts s ON s.id = a.shift_id
		WHERE s.is_active
		  AND a.scope_key = ANY($1)
		  AND ($2 = '' OR a.shift_id::text <> $2)
		ORDER BY a.shift_id, a.scope_key
	`
	rows, err := q.Query(ctx, query, keys, excludeShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to find scope assignments: %w", err)
	}
	defer rows.Close()

	var result []shift.ScopeAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scope assignment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

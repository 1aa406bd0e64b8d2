package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const shiftColumns = `s.code, s.name,
			   to_char(s.start_time, 'HH24:MI:SS'), to_char(s.end_time, 'HH24:MI:SS'),
			   s.overnight, s.late_tolerance_minutes, s.check_in_window_minutes, s.check_out_window_minutes,
			   s.weekdays, s.created_at, s.updated_at`

const (
	getBindingQuery = `
		SELECT e.employee_code, e.shift_code, e.office_code, e.shift_assigned_at
		FROM employees e
		WHERE e.employee_code = $1
		  AND e.shift_code IS NOT NULL
		  AND e.resigned_at IS NULL
	`

	getShiftByCodeQuery = `
		SELECT ` + shiftColumns + `
		FROM shifts s
		WHERE s.code = $1
	`

	listScheduledEmployeesQuery = `
		SELECT e.employee_code, e.office_code, e.shift_assigned_at, ` + shiftColumns + `
		FROM employees e
		JOIN shifts s ON s.code = e.shift_code
		WHERE e.resigned_at IS NULL
		ORDER BY e.employee_code
	`
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

// GetBinding implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetBinding(ctx context.Context, employeeCode string) (shift.Binding, error) {
	q := GetQuerier(ctx, r.db)

	var b shift.Binding
	err := q.QueryRow(ctx, getBindingQuery, employeeCode).Scan(&b.EmployeeCode, &b.ShiftCode, &b.OfficeCode, &b.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Binding{}, shift.ErrBindingNotFound
		}
		return shift.Binding{}, fmt.Errorf("failed to get shift binding: %w", err)
	}

	return b, nil
}

// GetByCode implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetByCode(ctx context.Context, code string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	var s shiftRow
	if err := q.QueryRow(ctx, getShiftByCodeQuery, code).Scan(s.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	return s.toShift()
}

// ListScheduledEmployees implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) ListScheduledEmployees(ctx context.Context) ([]shift.ScheduledEmployee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, listScheduledEmployeesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled employees: %w", err)
	}
	defer rows.Close()

	var employees []shift.ScheduledEmployee
	for rows.Next() {
		var (
			emp shift.ScheduledEmployee
			s   shiftRow
		)
		dest := append([]any{&emp.Binding.EmployeeCode, &emp.Binding.OfficeCode, &emp.Binding.AssignedAt}, s.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled employee: %w", err)
		}

		emp.Shift, err = s.toShift()
		if err != nil {
			return nil, err
		}
		emp.Binding.ShiftCode = emp.Shift.Code
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled employees: %w", err)
	}

	return employees, nil
}

type shiftRow struct {
	code                  string
	name                  string
	startTime             sql.NullString
	endTime               sql.NullString
	overnight             bool
	lateToleranceMinutes  int
	checkInWindowMinutes  int
	checkOutWindowMinutes int
	weekdays              []int16
	createdAt             time.Time
	updatedAt             time.Time
}

func (s *shiftRow) dest() []any {
	return []any{
		&s.code, &s.name,
		&s.startTime, &s.endTime,
		&s.overnight, &s.lateToleranceMinutes, &s.checkInWindowMinutes, &s.checkOutWindowMinutes,
		&s.weekdays, &s.createdAt, &s.updatedAt,
	}
}

func (s *shiftRow) toShift() (shift.Shift, error) {
	out := shift.Shift{
		Code:                  s.code,
		Name:                  s.name,
		Overnight:             s.overnight,
		LateToleranceMinutes:  s.lateToleranceMinutes,
		CheckInWindowMinutes:  s.checkInWindowMinutes,
		CheckOutWindowMinutes: s.checkOutWindowMinutes,
		CreatedAt:             s.createdAt,
		UpdatedAt:             s.updatedAt,
	}

	for _, raw := range []struct {
		value sql.NullString
		dst   **shift.TimeOfDay
	}{{s.startTime, &out.StartTime}, {s.endTime, &out.EndTime}} {
		if !raw.value.Valid {
			continue
		}
		t, err := shift.ParseTimeOfDay(raw.value.String)
		if err != nil {
			return shift.Shift{}, fmt.Errorf("shift %s: %w", s.code, err)
		}
		*raw.dst = &t
	}

	for _, d := range s.weekdays {
		out.Weekdays = append(out.Weekdays, time.Weekday(d))
	}

	return out, nil
}

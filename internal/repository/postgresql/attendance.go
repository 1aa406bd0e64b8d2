package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `id, employee_code, date, shift_code,
			   check_in_time, check_out_time, check_in_status, check_out_status,
			   late_minutes, overtime_minutes,
			   check_in_latitude, check_in_longitude, check_in_distance_meters,
			   check_out_latitude, check_out_longitude, check_out_distance_meters,
			   created_at, updated_at`

const (
	findAttendanceByEmployeeAndDateQuery = `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_code = $1
		  AND date = $2
	`

	findOpenSessionQuery = `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_code = $1
		  AND date BETWEEN $2 AND $3
		  AND check_in_time IS NOT NULL
		  AND check_out_time IS NULL
		ORDER BY date DESC
		LIMIT 1
	`

	createAttendanceQuery = `
		INSERT INTO attendances (
			id, employee_code, date, shift_code,
			check_in_time, check_in_status, late_minutes,
			check_in_latitude, check_in_longitude, check_in_distance_meters
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	updateCheckOutQuery = `
		UPDATE attendances
		SET check_out_time = $2,
			check_out_status = $3,
			overtime_minutes = $4,
			check_out_latitude = $5,
			check_out_longitude = $6,
			check_out_distance_meters = $7,
			updated_at = NOW()
		WHERE id = $1
		  AND check_in_time IS NOT NULL
		  AND check_out_time IS NULL
		RETURNING updated_at
	`

	listRecordedEmployeeDaysQuery = `
		SELECT employee_code, date
		FROM attendances
		WHERE date BETWEEN $1 AND $2
	`

	bulkCreateAbsencesQuery = `
		INSERT INTO attendances (
			id, employee_code, date, shift_code,
			check_in_status, check_out_status, late_minutes, overtime_minutes
		)
		SELECT t.id::uuid, t.employee_code, t.date, t.shift_code, $5, $6, 0, 0
		FROM unnest($1::text[], $2::text[], $3::date[], $4::text[]) AS t(id, employee_code, date, shift_code)
		ON CONFLICT (employee_code, date) DO NOTHING
		RETURNING employee_code, date
	`
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// FindByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) FindByEmployeeAndDate(ctx context.Context, employeeCode string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	att, err := scanAttendance(q.QueryRow(ctx, findAttendanceByEmployeeAndDateQuery, employeeCode, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return att, nil
}

// FindOpenSession implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) FindOpenSession(ctx context.Context, employeeCode string, from, to time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	att, err := scanAttendance(q.QueryRow(ctx, findOpenSessionQuery, employeeCode, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}

	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, createAttendanceQuery,
		newAttendance.ID,
		newAttendance.EmployeeCode,
		newAttendance.Date,
		newAttendance.ShiftCode,
		newAttendance.CheckInTime,
		string(newAttendance.CheckInStatus),
		newAttendance.LateMinutes,
		newAttendance.CheckInLatitude,
		newAttendance.CheckInLongitude,
		newAttendance.CheckInDistanceMeters,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, attendanceEmployeeDateKey) {
			return attendance.Attendance{}, attendance.ErrAlreadyRecorded
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// UpdateCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) UpdateCheckOut(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	var status *string
	if att.CheckOutStatus != nil {
		s := string(*att.CheckOutStatus)
		status = &s
	}

	err := q.QueryRow(ctx, updateCheckOutQuery,
		att.ID,
		att.CheckOutTime,
		status,
		att.OvertimeMinutes,
		att.CheckOutLatitude,
		att.CheckOutLongitude,
		att.CheckOutDistanceMeters,
	).Scan(&att.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNoActiveSession
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update check-out: %w", err)
	}

	return att, nil
}

// ListRecordedEmployeeDays implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListRecordedEmployeeDays(ctx context.Context, from, to time.Time) ([]attendance.EmployeeDay, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, listRecordedEmployeeDaysQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list recorded employee days: %w", err)
	}
	defer rows.Close()

	return scanEmployeeDays(rows)
}

// BulkCreateAbsences implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) BulkCreateAbsences(ctx context.Context, absences []attendance.Attendance) ([]attendance.EmployeeDay, error) {
	if len(absences) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	ids := make([]string, len(absences))
	codes := make([]string, len(absences))
	dates := make([]time.Time, len(absences))
	shifts := make([]string, len(absences))
	for i, a := range absences {
		ids[i] = a.ID
		codes[i] = a.EmployeeCode
		dates[i] = a.Date
		shifts[i] = a.ShiftCode
	}

	rows, err := q.Query(ctx, bulkCreateAbsencesQuery,
		ids, codes, dates, shifts,
		string(attendance.CheckInAbsent),
		string(attendance.CheckOutMissed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk create absences: %w", err)
	}
	defer rows.Close()

	return scanEmployeeDays(rows)
}

func scanEmployeeDays(rows pgx.Rows) ([]attendance.EmployeeDay, error) {
	var days []attendance.EmployeeDay
	for rows.Next() {
		var day attendance.EmployeeDay
		if err := rows.Scan(&day.EmployeeCode, &day.Date); err != nil {
			return nil, fmt.Errorf("failed to scan employee day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee days: %w", err)
	}
	return days, nil
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att            attendance.Attendance
		checkIn        sql.NullTime
		checkOut       sql.NullTime
		checkInStatus  string
		checkOutStatus sql.NullString
		inLat, inLon   sql.NullFloat64
		inDistance     sql.NullFloat64
		outLat, outLon sql.NullFloat64
		outDistance    sql.NullFloat64
	)

	err := row.Scan(
		&att.ID, &att.EmployeeCode, &att.Date, &att.ShiftCode,
		&checkIn, &checkOut, &checkInStatus, &checkOutStatus,
		&att.LateMinutes, &att.OvertimeMinutes,
		&inLat, &inLon, &inDistance,
		&outLat, &outLon, &outDistance,
		&att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.CheckInTime = nullTime(checkIn)
	att.CheckOutTime = nullTime(checkOut)
	att.CheckInStatus = attendance.CheckInStatus(checkInStatus)
	if checkOutStatus.Valid {
		s := attendance.CheckOutStatus(checkOutStatus.String)
		att.CheckOutStatus = &s
	}
	att.CheckInLatitude = nullFloat(inLat)
	att.CheckInLongitude = nullFloat(inLon)
	att.CheckInDistanceMeters = nullFloat(inDistance)
	att.CheckOutLatitude = nullFloat(outLat)
	att.CheckOutLongitude = nullFloat(outLon)
	att.CheckOutDistanceMeters = nullFloat(outDistance)

	return att, nil
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

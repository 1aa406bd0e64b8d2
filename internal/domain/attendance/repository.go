package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// FindByEmployeeAndDate returns ErrAttendanceNotFound when the employee-day has no record.
	FindByEmployeeAndDate(ctx context.Context, employeeCode string, date time.Time) (Attendance, error)

	// FindOpenSession returns the most recent record dated between from and to that is checked in
	// and not yet checked out, or ErrAttendanceNotFound.
	FindOpenSession(ctx context.Context, employeeCode string, from, to time.Time) (Attendance, error)

	// Create returns ErrAlreadyRecorded when the employee-day already has a record.
	Create(ctx context.Context, a Attendance) (Attendance, error)

	// UpdateCheckOut writes the check-out fields. It returns ErrNoActiveSession when the record
	// is no longer open.
	UpdateCheckOut(ctx context.Context, a Attendance) (Attendance, error)

	// ListRecordedEmployeeDays returns every employee-day with a record between from and to.
	ListRecordedEmployeeDays(ctx context.Context, from, to time.Time) ([]EmployeeDay, error)

	// BulkCreateAbsences inserts absence records, silently skipping employee-days that already
	// have a record, and returns the employee-days actually inserted.
	BulkCreateAbsences(ctx context.Context, absences []Attendance) ([]EmployeeDay, error)
}

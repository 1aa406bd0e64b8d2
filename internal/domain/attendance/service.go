package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn records the employee's arrival for today
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInSummary, error)

	// CheckOut closes the employee's open session, which may have started yesterday
	CheckOut(ctx context.Context, req CheckOutRequest) (CheckOutSummary, error)

	// Status reports today's attendance state and what the employee can do next
	Status(ctx context.Context, employeeCode string) (StatusSummary, error)

	// RunAbsenceSweep marks employees absent whose shift has closed by now without a record
	RunAbsenceSweep(ctx context.Context, now time.Time) (SweepReport, error)
}

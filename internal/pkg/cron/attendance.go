package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// AbsenceSweeper is the part of attendance.AttendanceService the sweep job needs.
type AbsenceSweeper interface {
	RunAbsenceSweep(ctx context.Context, now time.Time) (attendance.SweepReport, error)
}

type AttendanceJobs struct {
	sweeper  AbsenceSweeper
	interval time.Duration
	timeout  time.Duration
	clock    func() time.Time
}

func NewAttendanceJobs(sweeper AbsenceSweeper, interval, timeout time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		sweeper:  sweeper,
		interval: interval,
		timeout:  timeout,
		clock:    time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", j.interval, j.timeout, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees runs one absence sweep as of now. The sweep logs its own report.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	_, err := j.sweeper.RunAbsenceSweep(ctx, j.clock())
	return err
}

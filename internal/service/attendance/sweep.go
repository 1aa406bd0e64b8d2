package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

type employeeDayKey struct {
	employeeCode string
	date         string
}

func keyOf(employeeCode string, date time.Time) employeeDayKey {
	return employeeDayKey{employeeCode: employeeCode, date: utils.FormatDate(date)}
}

// RunAbsenceSweep implements attendance.AttendanceService.
//
// Every scheduled employee is judged for today and the previous lookback days. The whole
// run is one transaction: either every absence of the run is written or none is.
func (s *AttendanceServiceImpl) RunAbsenceSweep(ctx context.Context, now time.Time) (attendance.SweepReport, error) {
	if now.After(s.now()) {
		return attendance.SweepReport{}, attendance.ErrInvalidSweepTime
	}

	start := time.Now()
	today := utils.DateOf(now, s.loc)
	from := today.AddDate(0, 0, -s.lookbackDays)
	dates := utils.DateRange(from, today)

	report := attendance.NewSweepReport(now.In(s.loc), dates)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		employees, err := s.ShiftRepository.ListScheduledEmployees(ctx)
		if err != nil {
			return err
		}
		recorded, err := s.AttendanceRepository.ListRecordedEmployeeDays(ctx, from, today)
		if err != nil {
			return err
		}
		holidays, err := s.HolidayRepository.ListHolidays(ctx, from, today)
		if err != nil {
			return err
		}

		present := make(map[employeeDayKey]struct{}, len(recorded))
		for _, day := range recorded {
			present[keyOf(day.EmployeeCode, day.Date)] = struct{}{}
		}

		var absences []attendance.Attendance
		for _, emp := range employees {
			if err := emp.Shift.Validate(); err != nil {
				slog.Warn("Shift cannot be scheduled, employee skipped by absence sweep",
					"employee_code", emp.Binding.EmployeeCode,
					"shift_code", emp.Shift.Code,
					"error", err,
				)
			}

			for _, date := range dates {
				report.Scanned++

				_, isPresent := present[keyOf(emp.Binding.EmployeeCode, date)]
				reason, absent := attendance.EvaluateAbsence(emp, date, isPresent, holidays, now, s.loc)
				if !absent {
					report.Skip(reason, 1)
					continue
				}

				id, err := s.newID()
				if err != nil {
					return err
				}
				absences = append(absences, attendance.NewAbsence(id, emp.Binding.EmployeeCode, emp.Shift.Code, date))
			}
		}

		inserted, err := s.AttendanceRepository.BulkCreateAbsences(ctx, absences)
		if err != nil {
			return err
		}
		for _, day := range inserted {
			report.MarkAbsent(day)
		}
		// Rows that lost the unique key to a concurrent check-in or sweep.
		report.Skip(attendance.SkipRaced, len(absences)-len(inserted))

		return nil
	})
	if err != nil {
		return attendance.SweepReport{}, fmt.Errorf("absence sweep failed: %w", err)
	}

	slog.Info("Absence sweep finished",
		"as_of", now.In(s.loc).Format(time.RFC3339),
		"dates", report.Dates,
		"scanned", report.Scanned,
		"marked_absent", report.MarkedAbsent,
		"exempt", report.Exempt,
		"not_yet_eligible", report.NotYetEligible,
		"skipped", report.SkippedReasons,
		"duration", time.Since(start),
	)
	return report, nil
}

package attendance

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

// SkipReason explains why the absence sweep left an employee-day alone.
type SkipReason string

const (
	SkipAlreadyPresent    SkipReason = "already_present"
	SkipRaced             SkipReason = "raced"
	SkipMissingShiftTimes SkipReason = "missing_shift_times"
	SkipInvalidShift      SkipReason = "invalid_shift"
	SkipNotBound          SkipReason = "not_bound"
	SkipOffDay            SkipReason = "off_day"
	SkipHoliday           SkipReason = "holiday"
	SkipWindowOpen        SkipReason = "window_open"
)

type SkipCategory string

const (
	CategoryRecorded       SkipCategory = "recorded"
	CategoryExempt         SkipCategory = "exempt"
	CategoryNotYetEligible SkipCategory = "not_yet_eligible"
	CategoryDataIntegrity  SkipCategory = "data_integrity"
)

func (r SkipReason) Category() SkipCategory {
	switch r {
	case SkipOffDay, SkipHoliday, SkipNotBound:
		return CategoryExempt
	case SkipWindowOpen:
		return CategoryNotYetEligible
	case SkipMissingShiftTimes, SkipInvalidShift:
		return CategoryDataIntegrity
	default:
		return CategoryRecorded
	}
}

// EvaluateAbsence decides whether emp should be marked absent for date at now.
// It returns true with an empty reason when the employee-day is absent. A shift instance that
// started before the employee's binding took effect is never judged.
func EvaluateAbsence(emp shift.ScheduledEmployee, date time.Time, present bool, holidays []calendar.Holiday, now time.Time, loc *time.Location) (SkipReason, bool) {
	if present {
		return SkipAlreadyPresent, false
	}
	if !emp.Shift.HasTimes() {
		return SkipMissingShiftTimes, false
	}
	if !calendar.IsAttendanceDay(emp.Shift, date) {
		return SkipOffDay, false
	}
	if calendar.MatchHoliday(holidays, date, emp.Binding.OfficeCode) != nil {
		return SkipHoliday, false
	}

	windows, err := shift.ComputeWindows(emp.Shift, date, loc)
	if err != nil {
		if errors.Is(err, shift.ErrInvalidShift) {
			return SkipInvalidShift, false
		}
		return SkipMissingShiftTimes, false
	}
	if assigned := emp.Binding.AssignedAt; !assigned.IsZero() && assigned.After(windows.NominalStart) {
		return SkipNotBound, false
	}
	if !windows.Closed(now) {
		return SkipWindowOpen, false
	}
	return "", true
}

type AbsenceMark struct {
	EmployeeCode string `json:"employee_code"`
	Date         string `json:"date"`
}

// SweepReport summarizes one absence sweep run.
type SweepReport struct {
	RunAt          time.Time          `json:"run_at"`
	Dates          []string           `json:"dates"`
	Scanned        int                `json:"scanned"`
	MarkedAbsent   int                `json:"marked_absent"`
	SkippedReasons map[SkipReason]int `json:"skipped_reasons"`
	Exempt         int                `json:"exempt"`
	NotYetEligible int                `json:"not_yet_eligible"`
	Absentees      []AbsenceMark      `json:"absentees"`
}

func NewSweepReport(runAt time.Time, dates []time.Time) SweepReport {
	r := SweepReport{
		RunAt:          runAt,
		SkippedReasons: make(map[SkipReason]int),
		Absentees:      []AbsenceMark{},
	}
	for _, d := range dates {
		r.Dates = append(r.Dates, utils.FormatDate(d))
	}
	return r
}

func (r *SweepReport) Skip(reason SkipReason, n int) {
	if n <= 0 {
		return
	}
	r.SkippedReasons[reason] += n
	switch reason.Category() {
	case CategoryExempt:
		r.Exempt += n
	case CategoryNotYetEligible:
		r.NotYetEligible += n
	}
}

func (r *SweepReport) MarkAbsent(day EmployeeDay) {
	r.MarkedAbsent++
	r.Absentees = append(r.Absentees, AbsenceMark{
		EmployeeCode: day.EmployeeCode,
		Date:         utils.FormatDate(day.Date),
	})
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/office"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/google/uuid"
)

// Transactor runs fn inside one database transaction. Repositories called with the
// context passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type Options struct {
	// Location is the organization timezone every shift time is read in.
	Location *time.Location

	// SweepLookbackDays is how many civil dates before today the absence sweep re-evaluates.
	SweepLookbackDays int

	// Clock defaults to time.Now.
	Clock func() time.Time
}

type AttendanceServiceImpl struct {
	tx Transactor
	attendance.AttendanceRepository
	shift.ShiftRepository
	office.OfficeRepository
	calendar.HolidayRepository

	loc          *time.Location
	lookbackDays int
	now          func() time.Time
	newID        func() (string, error)
}

func NewAttendanceService(
	tx Transactor,
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo shift.ShiftRepository,
	officeRepo office.OfficeRepository,
	holidayRepo calendar.HolidayRepository,
	opts Options,
) *AttendanceServiceImpl {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.SweepLookbackDays < 0 {
		opts.SweepLookbackDays = 0
	}

	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		ShiftRepository:      shiftRepo,
		OfficeRepository:     officeRepo,
		HolidayRepository:    holidayRepo,
		loc:                  opts.Location,
		lookbackDays:         opts.SweepLookbackDays,
		now:                  opts.Clock,
		newID:                newAttendanceID,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

func newAttendanceID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate attendance id: %w", err)
	}
	return id.String(), nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInSummary, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInSummary{}, err
	}

	now := s.now()
	today := utils.DateOf(now, s.loc)

	var summary attendance.CheckInSummary
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		in := attendance.CheckInInput{
			Today:     today,
			Now:       now,
			Location:  s.loc,
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		}

		existing, err := s.findRecord(ctx, req.EmployeeCode, today)
		if err != nil {
			return err
		}
		in.Existing = existing

		if in.Existing == nil {
			if err := s.loadAssignment(ctx, req.EmployeeCode, &in.Binding, &in.Shift, &in.Office); err != nil {
				return err
			}
			if in.Binding != nil {
				in.Holidays, err = s.HolidayRepository.ListHolidays(ctx, today, today)
				if err != nil {
					return err
				}
			}
		}

		decision, err := attendance.DecideCheckIn(in)
		if err != nil {
			return err
		}

		id, err := s.newID()
		if err != nil {
			return err
		}

		record := attendance.Attendance{
			ID:               id,
			EmployeeCode:     req.EmployeeCode,
			Date:             today,
			ShiftCode:        in.Shift.Code,
			CheckInTime:      &now,
			CheckInStatus:    decision.Status,
			LateMinutes:      decision.LateMinutes,
			CheckInLatitude:  req.Latitude,
			CheckInLongitude: req.Longitude,
		}
		if decision.Geofence.Checked {
			record.CheckInDistanceMeters = utils.Ptr(decision.Geofence.DistanceMeters)
		}

		created, err := s.AttendanceRepository.Create(ctx, record)
		if err != nil {
			return err
		}

		summary = attendance.CheckInSummary{
			AttendanceID:   created.ID,
			EmployeeCode:   created.EmployeeCode,
			Date:           utils.FormatDate(created.Date),
			CheckInTime:    now.In(s.loc),
			Status:         created.CheckInStatus,
			LateMinutes:    created.LateMinutes,
			DistanceMeters: created.CheckInDistanceMeters,
			Windows:        attendance.NewWindowSummary(created.ShiftCode, created.Date, decision.Windows, s.loc),
		}
		return nil
	})
	if err != nil {
		return attendance.CheckInSummary{}, err
	}

	slog.Info("Employee checked in",
		"employee_code", summary.EmployeeCode,
		"date", summary.Date,
		"status", summary.Status,
		"late_minutes", summary.LateMinutes,
	)
	return summary, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.CheckOutSummary, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckOutSummary{}, err
	}

	now := s.now()
	today := utils.DateOf(now, s.loc)

	var summary attendance.CheckOutSummary
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		in := attendance.CheckOutInput{
			Now:       now,
			Location:  s.loc,
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		}

		session, err := s.findOpenSession(ctx, req.EmployeeCode, today)
		if err != nil {
			return err
		}
		if session == nil {
			return attendance.ErrNoActiveSession
		}
		in.Session = session

		// The binding decides the office; the shift is the one stored on the session.
		var current *shift.Shift
		if err := s.loadAssignment(ctx, req.EmployeeCode, &in.Binding, &current, &in.Office); err != nil {
			return err
		}
		switch {
		case current != nil && current.Code == session.ShiftCode:
			in.Shift = current
		case in.Binding != nil:
			in.Shift, err = s.findShift(ctx, session.ShiftCode)
			if err != nil {
				return err
			}
		}

		decision, err := attendance.DecideCheckOut(in)
		if err != nil {
			return err
		}

		record := *session
		record.CheckOutTime = &now
		record.CheckOutStatus = &decision.Status
		record.OvertimeMinutes = decision.OvertimeMinutes
		record.CheckOutLatitude = req.Latitude
		record.CheckOutLongitude = req.Longitude
		if decision.Geofence.Checked {
			record.CheckOutDistanceMeters = utils.Ptr(decision.Geofence.DistanceMeters)
		}

		updated, err := s.AttendanceRepository.UpdateCheckOut(ctx, record)
		if err != nil {
			return err
		}

		summary = attendance.CheckOutSummary{
			AttendanceID:    updated.ID,
			EmployeeCode:    updated.EmployeeCode,
			Date:            utils.FormatDate(updated.Date),
			ShiftCode:       updated.ShiftCode,
			CheckInTime:     updated.CheckInTime.In(s.loc),
			CheckOutTime:    now.In(s.loc),
			NominalEnd:      decision.NominalEnd.In(s.loc),
			Status:          decision.Status,
			OvertimeMinutes: updated.OvertimeMinutes,
			DistanceMeters:  updated.CheckOutDistanceMeters,
		}
		return nil
	})
	if err != nil {
		return attendance.CheckOutSummary{}, err
	}

	slog.Info("Employee checked out",
		"employee_code", summary.EmployeeCode,
		"date", summary.Date,
		"status", summary.Status,
		"overtime_minutes", summary.OvertimeMinutes,
	)
	return summary, nil
}

// Status implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Status(ctx context.Context, employeeCode string) (attendance.StatusSummary, error) {
	now := s.now()
	today := utils.DateOf(now, s.loc)

	summary := attendance.StatusSummary{
		EmployeeCode: employeeCode,
		Date:         utils.FormatDate(today),
		State:        attendance.StateNoRecord,
	}

	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		open, err := s.findOpenSession(ctx, employeeCode, today)
		if err != nil {
			return err
		}
		record, err := s.findRecord(ctx, employeeCode, today)
		if err != nil {
			return err
		}

		current := record
		if open != nil {
			current = open
		}
		summary.State = attendance.StateOf(current)
		summary.CanCheckOut = open != nil
		if current != nil {
			resp := attendance.NewAttendanceResponse(*current, s.loc)
			summary.Attendance = &resp
		}

		in := attendance.CheckInInput{
			Existing: record,
			Today:    today,
			Now:      now,
			Location: s.loc,
		}
		var officeLoc *office.Office
		if err := s.loadAssignment(ctx, employeeCode, &in.Binding, &in.Shift, &officeLoc); err != nil {
			return err
		}
		if in.Binding == nil {
			summary.Message = attendance.ErrNoShiftAssigned.Message
			return nil
		}
		summary.ShiftCode = utils.Ptr(in.Binding.ShiftCode)
		summary.OfficeCode = utils.Ptr(in.Binding.OfficeCode)

		in.Holidays, err = s.HolidayRepository.ListHolidays(ctx, today, today)
		if err != nil {
			return err
		}
		if h := calendar.MatchHoliday(in.Holidays, today, in.Binding.OfficeCode); h != nil {
			summary.Holiday = &attendance.HolidayInfo{
				Date:        utils.FormatDate(h.Date),
				Description: h.Description,
				OfficeCode:  h.OfficeCode,
			}
		}
		if in.Shift != nil {
			summary.IsWorkDay = calendar.IsAttendanceDay(*in.Shift, today) && summary.Holiday == nil
			if windows, err := shift.ComputeWindows(*in.Shift, today, s.loc); err == nil {
				ws := attendance.NewWindowSummary(in.Shift.Code, today, windows, s.loc)
				summary.Windows = &ws
			}
		}

		// The geofence is left out: position is only known at check-in time.
		_, refusal := attendance.DecideCheckIn(in)
		summary.CanCheckIn = refusal == nil
		summary.Message = statusMessage(summary, open, refusal, s.loc)
		return nil
	})
	if err != nil {
		return attendance.StatusSummary{}, err
	}

	return summary, nil
}

func statusMessage(summary attendance.StatusSummary, open *attendance.Attendance, refusal error, loc *time.Location) string {
	switch {
	case open != nil:
		return fmt.Sprintf("checked in since %s", open.CheckInTime.In(loc).Format("2006-01-02 15:04"))
	case summary.State == attendance.StateCheckedOut:
		return "attendance for today is complete"
	case summary.State == attendance.StateAbsent:
		return "marked absent for today"
	case summary.CanCheckIn:
		return fmt.Sprintf("check-in is open until %s", summary.Windows.GateClose.Format("15:04"))
	case refusal != nil:
		return refusal.Error()
	}
	return ""
}

// findRecord returns the employee's record for date, or nil.
func (s *AttendanceServiceImpl) findRecord(ctx context.Context, employeeCode string, date time.Time) (*attendance.Attendance, error) {
	record, err := s.AttendanceRepository.FindByEmployeeAndDate(ctx, employeeCode, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// findOpenSession looks back one day so an overnight session can be closed after midnight.
// A session from yesterday whose shift ended yesterday is left alone.
func (s *AttendanceServiceImpl) findOpenSession(ctx context.Context, employeeCode string, today time.Time) (*attendance.Attendance, error) {
	session, err := s.AttendanceRepository.FindOpenSession(ctx, employeeCode, today.AddDate(0, 0, -1), today)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if utils.FormatDate(session.Date) == utils.FormatDate(today) {
		return &session, nil
	}

	sh, err := s.findShift(ctx, session.ShiftCode)
	if err != nil {
		return nil, err
	}
	if !attendance.SessionOpenOn(session, sh, today, s.loc) {
		return nil, nil
	}
	return &session, nil
}

func (s *AttendanceServiceImpl) findShift(ctx context.Context, code string) (*shift.Shift, error) {
	sh, err := s.ShiftRepository.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sh, nil
}

// loadAssignment reads the employee's binding, the bound shift and the bound office.
// A missing binding or shift is left nil for the decision functions to report. A missing
// office is a data-integrity error, since skipping the geofence would accept any position.
func (s *AttendanceServiceImpl) loadAssignment(ctx context.Context, employeeCode string, binding **shift.Binding, sh **shift.Shift, off **office.Office) error {
	b, err := s.ShiftRepository.GetBinding(ctx, employeeCode)
	if err != nil {
		if errors.Is(err, shift.ErrBindingNotFound) {
			return nil
		}
		return err
	}
	*binding = &b

	*sh, err = s.findShift(ctx, b.ShiftCode)
	if err != nil {
		return err
	}

	o, err := s.OfficeRepository.GetByCode(ctx, b.OfficeCode)
	if err != nil {
		if errors.Is(err, office.ErrOfficeNotFound) {
			return attendance.NewDataIntegrityError("office %s bound to employee %s does not exist", b.OfficeCode, employeeCode)
		}
		return err
	}
	*off = &o
	return nil
}

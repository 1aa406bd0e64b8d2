package attendance

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/office"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

// CheckInInput is everything a check-in decision depends on, read in one transaction.
// Nil pointers mean the row does not exist.
type CheckInInput struct {
	Existing  *Attendance
	Binding   *shift.Binding
	Shift     *shift.Shift
	Office    *office.Office
	Holidays  []calendar.Holiday
	Today     time.Time // civil date of Now in Location
	Now       time.Time
	Location  *time.Location
	Latitude  float64
	Longitude float64
}

type CheckInDecision struct {
	Windows     shift.Windows
	Status      CheckInStatus
	LateMinutes int
	Geofence    office.GeofenceResult
}

// DecideCheckIn accepts or refuses a check-in. Checks run in a fixed order so the first
// applicable refusal is the one reported.
func DecideCheckIn(in CheckInInput) (CheckInDecision, error) {
	if in.Existing != nil {
		return CheckInDecision{}, alreadyRecorded(*in.Existing)
	}
	if in.Binding == nil {
		return CheckInDecision{}, ErrNoShiftAssigned
	}
	if in.Shift == nil {
		return CheckInDecision{}, NewDataIntegrityError("shift %s bound to employee %s does not exist", in.Binding.ShiftCode, in.Binding.EmployeeCode)
	}

	if h := calendar.MatchHoliday(in.Holidays, in.Today, in.Binding.OfficeCode); h != nil {
		return CheckInDecision{}, holidayClosed(h.Description, in.Today)
	}
	if !calendar.IsAttendanceDay(*in.Shift, in.Today) {
		return CheckInDecision{}, offDay(in.Shift.Code, in.Today)
	}

	windows, err := shift.ComputeWindows(*in.Shift, in.Today, in.Location)
	if err != nil {
		return CheckInDecision{}, shiftIntegrity(err)
	}
	if in.Now.Before(windows.GateOpen) {
		return CheckInDecision{}, tooEarly(windows.GateOpen.In(in.Location))
	}
	if windows.Closed(in.Now) {
		return CheckInDecision{}, windowClosed(windows.GateClose.In(in.Location))
	}

	decision := CheckInDecision{Windows: windows, Status: CheckInInTime}
	if windows.IsLate(in.Now) {
		decision.Status = CheckInLate
		decision.LateMinutes = wholeMinutes(in.Now.Sub(windows.NominalStart))
	}

	if in.Office != nil {
		decision.Geofence = in.Office.Geofence(in.Latitude, in.Longitude)
		if !decision.Geofence.Within {
			return CheckInDecision{}, outOfRange(decision.Geofence.DistanceMeters, decision.Geofence.RadiusMeters)
		}
	}

	return decision, nil
}

// CheckOutInput is everything a check-out decision depends on. Session is the open
// record being closed and Shift is the shift stored on it.
type CheckOutInput struct {
	Session   *Attendance
	Binding   *shift.Binding
	Shift     *shift.Shift
	Office    *office.Office
	Now       time.Time
	Location  *time.Location
	Latitude  float64
	Longitude float64
}

type CheckOutDecision struct {
	NominalEnd      time.Time
	Status          CheckOutStatus
	OvertimeMinutes int
	Geofence        office.GeofenceResult
}

// DecideCheckOut accepts or refuses a check-out. The nominal end is taken from the
// session's own date so an overnight session closes correctly after midnight.
func DecideCheckOut(in CheckOutInput) (CheckOutDecision, error) {
	if StateOf(in.Session) != StateCheckedIn {
		return CheckOutDecision{}, ErrNoActiveSession
	}
	if in.Binding == nil {
		return CheckOutDecision{}, ErrNoShiftAssigned
	}

	var decision CheckOutDecision
	if in.Office != nil {
		decision.Geofence = in.Office.Geofence(in.Latitude, in.Longitude)
		if !decision.Geofence.Within {
			return CheckOutDecision{}, outOfRange(decision.Geofence.DistanceMeters, decision.Geofence.RadiusMeters)
		}
	}

	if in.Shift == nil {
		return CheckOutDecision{}, NewDataIntegrityError("shift %s recorded on attendance %s does not exist", in.Session.ShiftCode, in.Session.ID)
	}
	windows, err := shift.ComputeWindows(*in.Shift, in.Session.Date, in.Location)
	if err != nil {
		return CheckOutDecision{}, shiftIntegrity(err)
	}
	decision.NominalEnd = windows.NominalEnd

	switch {
	case in.Now.Before(windows.NominalEnd):
		decision.Status = CheckOutEarly
	case in.Now.After(windows.NominalEnd):
		decision.Status = CheckOutOvertime
		decision.OvertimeMinutes = wholeMinutes(in.Now.Sub(windows.NominalEnd))
	default:
		decision.Status = CheckOutInTime
	}

	return decision, nil
}

// SessionOpenOn reports whether session can still be checked out on today. A session dated
// before today qualifies only when its shift instance ends on today, which is the case for an
// overnight shift closed after midnight. s is the shift recorded on the session and may be nil.
func SessionOpenOn(session Attendance, s *shift.Shift, today time.Time, loc *time.Location) bool {
	if StateOf(&session) != StateCheckedIn {
		return false
	}
	if utils.FormatDate(session.Date) == utils.FormatDate(today) {
		return true
	}
	if s == nil {
		return false
	}
	windows, err := shift.ComputeWindows(*s, session.Date, loc)
	if err != nil {
		return false
	}
	return utils.FormatDate(utils.DateOf(windows.NominalEnd, loc)) == utils.FormatDate(today)
}

func shiftIntegrity(err error) *Error {
	e := NewDataIntegrityError("%s", err.Error())
	if errors.Is(err, shift.ErrShiftTimesMissing) {
		e.Details = map[string]string{"reason": "missing_shift_times"}
	}
	return e
}

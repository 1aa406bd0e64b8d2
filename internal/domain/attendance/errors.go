package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

// Kind is the machine-readable reason a check-in or check-out was refused.
type Kind string

const (
	KindAlreadyRecorded Kind = "ALREADY_RECORDED"
	KindNoShiftAssigned Kind = "NO_SHIFT_ASSIGNED"
	KindHolidayClosed   Kind = "HOLIDAY_CLOSED"
	KindOffDay          Kind = "OFF_DAY"
	KindTooEarly        Kind = "TOO_EARLY"
	KindWindowClosed    Kind = "WINDOW_CLOSED"
	KindOutOfRange      Kind = "OUT_OF_RANGE"
	KindNoActiveSession Kind = "NO_ACTIVE_SESSION"
	KindDataIntegrity   Kind = "DATA_INTEGRITY"
)

// Error is a refused attendance operation. Details carries the context needed to explain it.
// errors.Is matches any two errors of the same Kind.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrAlreadyRecorded = &Error{Kind: KindAlreadyRecorded, Message: "attendance has already been recorded for today"}
	ErrNoShiftAssigned = &Error{Kind: KindNoShiftAssigned, Message: "no shift is assigned to this employee"}
	ErrHolidayClosed   = &Error{Kind: KindHolidayClosed, Message: "attendance is closed for a holiday"}
	ErrOffDay          = &Error{Kind: KindOffDay, Message: "today is not a scheduled work day"}
	ErrTooEarly        = &Error{Kind: KindTooEarly, Message: "too early to check in"}
	ErrWindowClosed    = &Error{Kind: KindWindowClosed, Message: "the check-in window for today has closed"}
	ErrOutOfRange      = &Error{Kind: KindOutOfRange, Message: "you are outside the allowed radius"}
	ErrNoActiveSession = &Error{Kind: KindNoActiveSession, Message: "you have not checked in yet"}
	ErrDataIntegrity   = &Error{Kind: KindDataIntegrity, Message: "attendance data is inconsistent"}
)

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidSweepTime   = errors.New("sweep time must not be in the future")
)

// KindOf returns the kind of err if it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func alreadyRecorded(a Attendance) *Error {
	return &Error{
		Kind:    KindAlreadyRecorded,
		Message: fmt.Sprintf("attendance has already been recorded for %s", utils.FormatDate(a.Date)),
		Details: map[string]string{
			"date":  utils.FormatDate(a.Date),
			"state": string(StateOf(&a)),
		},
	}
}

func holidayClosed(description string, date time.Time) *Error {
	return &Error{
		Kind:    KindHolidayClosed,
		Message: fmt.Sprintf("attendance is closed on %s: %s", utils.FormatDate(date), description),
		Details: map[string]string{
			"date":    utils.FormatDate(date),
			"holiday": description,
		},
	}
}

func offDay(shiftCode string, date time.Time) *Error {
	return &Error{
		Kind:    KindOffDay,
		Message: fmt.Sprintf("%s is not a scheduled work day for shift %s", date.Weekday(), shiftCode),
		Details: map[string]string{
			"date":       utils.FormatDate(date),
			"weekday":    date.Weekday().String(),
			"shift_code": shiftCode,
		},
	}
}

func tooEarly(gateOpen time.Time) *Error {
	return &Error{
		Kind:    KindTooEarly,
		Message: fmt.Sprintf("too early to check in, check-in opens at %s", gateOpen.Format("15:04")),
		Details: map[string]string{"gate_open": gateOpen.Format(time.RFC3339)},
	}
}

func windowClosed(gateClose time.Time) *Error {
	return &Error{
		Kind:    KindWindowClosed,
		Message: fmt.Sprintf("the check-in window closed at %s", gateClose.Format("15:04")),
		Details: map[string]string{"gate_close": gateClose.Format(time.RFC3339)},
	}
}

func outOfRange(distance, radius float64) *Error {
	return &Error{
		Kind:    KindOutOfRange,
		Message: fmt.Sprintf("you are %.0f meters from the office, the allowed radius is %.0f meters", distance, radius),
		Details: map[string]string{
			"distance_meters": fmt.Sprintf("%.1f", distance),
			"radius_meters":   fmt.Sprintf("%.1f", radius),
		},
	}
}

// NewDataIntegrityError reports stored data the engine cannot decide on, such as a dangling shift code.
func NewDataIntegrityError(format string, args ...any) *Error {
	return &Error{
		Kind:    KindDataIntegrity,
		Message: fmt.Sprintf(format, args...),
	}
}

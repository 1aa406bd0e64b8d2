package attendance

import "time"

type CheckInStatus string

const (
	CheckInInTime CheckInStatus = "in_time"
	CheckInLate   CheckInStatus = "late"
	CheckInAbsent CheckInStatus = "absent"
)

type CheckOutStatus string

const (
	CheckOutInTime   CheckOutStatus = "in_time"
	CheckOutEarly    CheckOutStatus = "early"
	CheckOutOvertime CheckOutStatus = "overtime"
	CheckOutMissed   CheckOutStatus = "missed"
)

// Attendance is the single record of one employee-day.
type Attendance struct {
	ID              string
	EmployeeCode    string
	Date            time.Time // civil date, midnight UTC
	ShiftCode       string
	CheckInTime     *time.Time
	CheckOutTime    *time.Time
	CheckInStatus   CheckInStatus
	CheckOutStatus  *CheckOutStatus
	LateMinutes     int
	OvertimeMinutes int

	CheckInLatitude        *float64
	CheckInLongitude       *float64
	CheckInDistanceMeters  *float64
	CheckOutLatitude       *float64
	CheckOutLongitude      *float64
	CheckOutDistanceMeters *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// State is the position of an employee-day in the attendance lifecycle.
type State string

const (
	StateNoRecord   State = "no_record"
	StateCheckedIn  State = "checked_in"
	StateCheckedOut State = "checked_out"
	StateAbsent     State = "absent"
)

// StateOf derives the lifecycle state of a stored record. A nil record is StateNoRecord.
func StateOf(a *Attendance) State {
	switch {
	case a == nil:
		return StateNoRecord
	case a.CheckInTime == nil:
		return StateAbsent
	case a.CheckOutTime == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// EmployeeDay identifies one attendance record.
type EmployeeDay struct {
	EmployeeCode string
	Date         time.Time
}

// NewAbsence builds the record the absence sweep inserts for an employee-day.
func NewAbsence(id, employeeCode, shiftCode string, date time.Time) Attendance {
	missed := CheckOutMissed
	return Attendance{
		ID:             id,
		EmployeeCode:   employeeCode,
		Date:           date,
		ShiftCode:      shiftCode,
		CheckInStatus:  CheckInAbsent,
		CheckOutStatus: &missed,
	}
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

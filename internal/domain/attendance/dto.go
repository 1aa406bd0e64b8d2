package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// REQUESTS
// ========================================

type CheckInRequest struct {
	EmployeeCode string   `json:"-"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (r *CheckInRequest) Validate() error {
	return validatePosition(r.EmployeeCode, r.Latitude, r.Longitude)
}

type CheckOutRequest struct {
	EmployeeCode string   `json:"-"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (r *CheckOutRequest) Validate() error {
	return validatePosition(r.EmployeeCode, r.Latitude, r.Longitude)
}

func validatePosition(employeeCode string, lat, lon *float64) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	}

	if lat == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lon == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if !validator.IsValidLongitude(*lon) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SweepRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// Validate rejects an as_of instant later than now.
func (r *SweepRequest) Validate(now time.Time) error {
	if r.AsOf != nil && !validator.IsNotFuture(*r.AsOf, now) {
		return validator.ValidationErrors{{
			Field:   "as_of",
			Message: "as_of must not be in the future",
		}}
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type WindowSummary struct {
	Date          string    `json:"date"`
	ShiftCode     string    `json:"shift_code"`
	GateOpen      time.Time `json:"gate_open"`
	LateThreshold time.Time `json:"late_threshold"`
	NominalStart  time.Time `json:"nominal_start"`
	NominalEnd    time.Time `json:"nominal_end"`
	GateClose     time.Time `json:"gate_close"`
}

func NewWindowSummary(shiftCode string, date time.Time, w shift.Windows, loc *time.Location) WindowSummary {
	return WindowSummary{
		Date:          utils.FormatDate(date),
		ShiftCode:     shiftCode,
		GateOpen:      w.GateOpen.In(loc),
		LateThreshold: w.LateThreshold.In(loc),
		NominalStart:  w.NominalStart.In(loc),
		NominalEnd:    w.NominalEnd.In(loc),
		GateClose:     w.GateClose.In(loc),
	}
}

type CheckInSummary struct {
	AttendanceID   string        `json:"attendance_id"`
	EmployeeCode   string        `json:"employee_code"`
	Date           string        `json:"date"`
	CheckInTime    time.Time     `json:"check_in_time"`
	Status         CheckInStatus `json:"status"`
	LateMinutes    int           `json:"late_minutes"`
	DistanceMeters *float64      `json:"distance_meters,omitempty"`
	Windows        WindowSummary `json:"windows"`
}

type CheckOutSummary struct {
	AttendanceID    string         `json:"attendance_id"`
	EmployeeCode    string         `json:"employee_code"`
	Date            string         `json:"date"`
	ShiftCode       string         `json:"shift_code"`
	CheckInTime     time.Time      `json:"check_in_time"`
	CheckOutTime    time.Time      `json:"check_out_time"`
	NominalEnd      time.Time      `json:"nominal_end"`
	Status          CheckOutStatus `json:"status"`
	OvertimeMinutes int            `json:"overtime_minutes"`
	DistanceMeters  *float64       `json:"distance_meters,omitempty"`
}

type AttendanceResponse struct {
	ID              string          `json:"id"`
	EmployeeCode    string          `json:"employee_code"`
	Date            string          `json:"date"`
	ShiftCode       string          `json:"shift_code"`
	State           State           `json:"state"`
	CheckInTime     *time.Time      `json:"check_in_time"`
	CheckOutTime    *time.Time      `json:"check_out_time"`
	CheckInStatus   CheckInStatus   `json:"check_in_status"`
	CheckOutStatus  *CheckOutStatus `json:"check_out_status"`
	LateMinutes     int             `json:"late_minutes"`
	OvertimeMinutes int             `json:"overtime_minutes"`
}

func NewAttendanceResponse(a Attendance, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:              a.ID,
		EmployeeCode:    a.EmployeeCode,
		Date:            utils.FormatDate(a.Date),
		ShiftCode:       a.ShiftCode,
		State:           StateOf(&a),
		CheckInStatus:   a.CheckInStatus,
		CheckOutStatus:  a.CheckOutStatus,
		LateMinutes:     a.LateMinutes,
		OvertimeMinutes: a.OvertimeMinutes,
	}
	if a.CheckInTime != nil {
		resp.CheckInTime = utils.Ptr(a.CheckInTime.In(loc))
	}
	if a.CheckOutTime != nil {
		resp.CheckOutTime = utils.Ptr(a.CheckOutTime.In(loc))
	}
	return resp
}

type HolidayInfo struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	OfficeCode  *string `json:"office_code"`
}

type StatusSummary struct {
	EmployeeCode string              `json:"employee_code"`
	Date         string              `json:"date"`
	State        State               `json:"state"`
	ShiftCode    *string             `json:"shift_code"`
	OfficeCode   *string             `json:"office_code"`
	Windows      *WindowSummary      `json:"windows"`
	Holiday      *HolidayInfo        `json:"holiday"`
	IsWorkDay    bool                `json:"is_work_day"`
	CanCheckIn   bool                `json:"can_check_in"`
	CanCheckOut  bool                `json:"can_check_out"`
	Message      string              `json:"message"`
	Attendance   *AttendanceResponse `json:"attendance"`
}

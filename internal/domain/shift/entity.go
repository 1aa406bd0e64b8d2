package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Shift struct {
	Code                  string
	Name                  string
	StartTime             *TimeOfDay
	EndTime               *TimeOfDay
	Overnight             bool
	LateToleranceMinutes  int
	CheckInWindowMinutes  int // how long before StartTime the check-in gate opens
	CheckOutWindowMinutes int
	Weekdays              []time.Weekday // 0=Sunday ... 6=Saturday
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasTimes reports whether both the start and end time of the shift are configured.
func (s Shift) HasTimes() bool {
	return s.StartTime != nil && s.EndTime != nil
}

// Validate checks the invariants of a shift definition that window computation relies on.
func (s Shift) Validate() error {
	if !s.HasTimes() {
		return fmt.Errorf("%w: shift %s", ErrShiftTimesMissing, s.Code)
	}
	if !s.Overnight && *s.StartTime == *s.EndTime {
		return fmt.Errorf("%w: shift %s starts and ends at %s", ErrInvalidShift, s.Code, s.StartTime)
	}
	if s.LateToleranceMinutes < 0 || s.CheckInWindowMinutes < 0 || s.CheckOutWindowMinutes < 0 {
		return fmt.Errorf("%w: shift %s has negative minutes", ErrInvalidShift, s.Code)
	}
	for _, d := range s.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: shift %s has weekday %d", ErrInvalidShift, s.Code, d)
		}
	}
	return nil
}

// Binding is the active shift and office of one employee.
type Binding struct {
	EmployeeCode string
	ShiftCode    string
	OfficeCode   string
	// AssignedAt is when ShiftCode took effect. Zero means unknown.
	AssignedAt   time.Time
}

// ScheduledEmployee is an employee with an active binding together with the bound shift.
type ScheduledEmployee struct {
	Binding Binding
	Shift   Shift
}

// TimeOfDay is a wall-clock time, interpreted in the organization's timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "15:04" and "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}

	values := make([]int, 3)
	limits := []int{23, 59, 59}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
		}
		values[i] = v
	}

	return TimeOfDay{Hour: values[0], Minute: values[1], Second: values[2]}, nil
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On returns the instant at which date (only its year, month and day are used) reaches t in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, loc)
}

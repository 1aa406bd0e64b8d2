package attendance

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/office"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

type passThroughTx struct {
	calls int
}

func (t *passThroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func (t *passThroughTx) WithinReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type memAttendance struct {
	records []attendance.Attendance

	// hideFromSnapshot makes ListRecordedEmployeeDays miss rows, as if they were
	// written by a concurrent transaction after the sweep read its snapshot.
	hideFromSnapshot bool
}

func sameDay(a, b time.Time) bool {
	return utils.FormatDate(a) == utils.FormatDate(b)
}

func (m *memAttendance) FindByEmployeeAndDate(_ context.Context, employeeCode string, date time.Time) (attendance.Attendance, error) {
	for _, r := range m.records {
		if r.EmployeeCode == employeeCode && sameDay(r.Date, date) {
			return r, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (m *memAttendance) FindOpenSession(_ context.Context, employeeCode string, from, to time.Time) (attendance.Attendance, error) {
	var found *attendance.Attendance
	for i := range m.records {
		r := &m.records[i]
		if r.EmployeeCode != employeeCode || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		if attendance.StateOf(r) != attendance.StateCheckedIn {
			continue
		}
		if found == nil || r.Date.After(found.Date) {
			found = r
		}
	}
	if found == nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *found, nil
}

func (m *memAttendance) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	for _, r := range m.records {
		if r.EmployeeCode == a.EmployeeCode && sameDay(r.Date, a.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyRecorded
		}
	}
	m.records = append(m.records, a)
	return a, nil
}

func (m *memAttendance) UpdateCheckOut(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	for i := range m.records {
		r := &m.records[i]
		if r.ID == a.ID && attendance.StateOf(r) == attendance.StateCheckedIn {
			*r = a
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNoActiveSession
}

func (m *memAttendance) ListRecordedEmployeeDays(_ context.Context, from, to time.Time) ([]attendance.EmployeeDay, error) {
	if m.hideFromSnapshot {
		return nil, nil
	}
	var days []attendance.EmployeeDay
	for _, r := range m.records {
		if !r.Date.Before(from) && !r.Date.After(to) {
			days = append(days, attendance.EmployeeDay{EmployeeCode: r.EmployeeCode, Date: r.Date})
		}
	}
	return days, nil
}

func (m *memAttendance) BulkCreateAbsences(ctx context.Context, absences []attendance.Attendance) ([]attendance.EmployeeDay, error) {
	var inserted []attendance.EmployeeDay
	for _, a := range absences {
		if _, err := m.Create(ctx, a); err != nil {
			continue
		}
		inserted = append(inserted, attendance.EmployeeDay{EmployeeCode: a.EmployeeCode, Date: a.Date})
	}
	return inserted, nil
}

type memShifts struct {
	bindings map[string]shift.Binding
	shifts   map[string]shift.Shift
}

func (m *memShifts) GetBinding(_ context.Context, employeeCode string) (shift.Binding, error) {
	b, ok := m.bindings[employeeCode]
	if !ok {
		return shift.Binding{}, shift.ErrBindingNotFound
	}
	return b, nil
}

func (m *memShifts) GetByCode(_ context.Context, code string) (shift.Shift, error) {
	s, ok := m.shifts[code]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (m *memShifts) ListScheduledEmployees(_ context.Context) ([]shift.ScheduledEmployee, error) {
	var out []shift.ScheduledEmployee
	for _, b := range m.bindings {
		s, ok := m.shifts[b.ShiftCode]
		if !ok {
			continue
		}
		out = append(out, shift.ScheduledEmployee{Binding: b, Shift: s})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Binding.EmployeeCode < out[j].Binding.EmployeeCode
	})
	return out, nil
}

type memOffices map[string]office.Office

func (m memOffices) GetByCode(_ context.Context, code string) (office.Office, error) {
	o, ok := m[code]
	if !ok {
		return office.Office{}, office.ErrOfficeNotFound
	}
	return o, nil
}

type memHolidays struct {
	list []calendar.Holiday
}

func (m *memHolidays) ListHolidays(_ context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	var out []calendar.Holiday
	for _, h := range m.list {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

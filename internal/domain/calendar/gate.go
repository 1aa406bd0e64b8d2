package calendar

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
)

// IsAttendanceDay reports whether date's weekday is one of the shift's scheduled weekdays.
// date must be a civil date; see utils.DateOf.
func IsAttendanceDay(s shift.Shift, date time.Time) bool {
	return slices.Contains(s.Weekdays, date.Weekday())
}

// MatchHoliday returns the holiday closing officeCode on date, or nil.
// A global holiday wins over an office-scoped one on the same date.
func MatchHoliday(holidays []Holiday, date time.Time, officeCode string) *Holiday {
	var scoped *Holiday
	for i := range holidays {
		h := &holidays[i]
		if !sameDate(h.Date, date) || !h.AppliesTo(officeCode) {
			continue
		}
		if h.IsGlobal() {
			return h
		}
		if scoped == nil {
			scoped = h
		}
	}
	return scoped
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

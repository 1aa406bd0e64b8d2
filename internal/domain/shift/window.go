package shift

import "time"

// Windows are the canonical instants of one shift instance.
type Windows struct {
	GateOpen      time.Time
	LateThreshold time.Time
	NominalStart  time.Time
	NominalEnd    time.Time
	GateClose     time.Time
}

// ComputeWindows returns the windows of s on referenceDate. Only the year, month and day of
// referenceDate are used; every instant is built in loc.
//
// An overnight shift, or one whose end time is earlier than its start time, ends on the
// following calendar day. Check-in is accepted from GateOpen through GateClose inclusive and
// is late strictly after LateThreshold.
func ComputeWindows(s Shift, referenceDate time.Time, loc *time.Location) (Windows, error) {
	if err := s.Validate(); err != nil {
		return Windows{}, err
	}

	start := s.StartTime.On(referenceDate, loc)
	end := s.EndTime.On(referenceDate, loc)
	if s.Overnight || end.Before(start) {
		end = s.EndTime.On(referenceDate.AddDate(0, 0, 1), loc)
	}

	return Windows{
		GateOpen:      start.Add(-time.Duration(s.CheckInWindowMinutes) * time.Minute),
		LateThreshold: start.Add(time.Duration(s.LateToleranceMinutes) * time.Minute),
		NominalStart:  start,
		NominalEnd:    end,
		GateClose:     end,
	}, nil
}

// Accepts reports whether a check-in at now falls inside the gate.
func (w Windows) Accepts(now time.Time) bool {
	return !now.Before(w.GateOpen) && !now.After(w.GateClose)
}

// Closed reports whether the whole shift instance is over at now.
func (w Windows) Closed(now time.Time) bool {
	return now.After(w.GateClose)
}

// IsLate reports whether a check-in at now is past the late threshold.
func (w Windows) IsLate(now time.Time) bool {
	return now.After(w.LateThreshold)
}

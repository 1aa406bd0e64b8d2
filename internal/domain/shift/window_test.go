package shift

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

func newShift(start, end string, overnight bool, tolerance, window int) Shift {
	s := MustParseTimeOfDay(start)
	e := MustParseTimeOfDay(end)
	return Shift{
		Code:                 "S-" + start + "-" + end,
		StartTime:            &s,
		EndTime:              &e,
		Overnight:            overnight,
		LateToleranceMinutes: tolerance,
		CheckInWindowMinutes: window,
		Weekdays:             []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

func at(date time.Time, hh, mm int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hh, mm, 0, 0, wib)
}

func TestComputeWindows_DayShift(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	s := newShift("09:00", "18:00", false, 15, 60)

	w, err := ComputeWindows(s, date, wib)
	require.NoError(t, err)

	assert.True(t, w.GateOpen.Equal(at(date, 8, 0)))
	assert.True(t, w.NominalStart.Equal(at(date, 9, 0)))
	assert.True(t, w.LateThreshold.Equal(at(date, 9, 15)))
	assert.True(t, w.NominalEnd.Equal(at(date, 18, 0)))
	assert.True(t, w.GateClose.Equal(w.NominalEnd))
}

func TestComputeWindows_Overnight(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	next := date.AddDate(0, 0, 1)

	tests := []struct {
		name      string
		overnight bool
	}{
		{"flagged overnight", true},
		{"end before start without flag", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ComputeWindows(newShift("22:00", "06:00", tt.overnight, 10, 30), date, wib)
			require.NoError(t, err)

			assert.True(t, w.NominalStart.Equal(at(date, 22, 0)))
			assert.True(t, w.NominalEnd.Equal(at(next, 6, 0)))
			assert.Equal(t, 8*time.Hour, w.NominalEnd.Sub(w.NominalStart))
			assert.Equal(t, 4, w.NominalEnd.In(wib).Day())
			assert.True(t, w.GateOpen.Equal(at(date, 21, 30)))
		})
	}
}

func TestComputeWindows_GateOpensPreviousDay(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	w, err := ComputeWindows(newShift("00:30", "08:30", false, 0, 60), date, wib)
	require.NoError(t, err)

	assert.True(t, w.GateOpen.Equal(at(date.AddDate(0, 0, -1), 23, 30)))
	assert.True(t, w.LateThreshold.Equal(w.NominalStart))
}

func TestComputeWindows_OrderingProperty(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	starts := []string{"00:00", "06:15", "08:00", "09:00", "12:30", "17:45"}
	ends := []string{"06:30", "13:00", "18:00", "23:59"}

	for _, start := range starts {
		for _, end := range ends {
			s := newShift(start, end, false, 15, 60)
			if !s.StartTime.On(date, wib).Before(s.EndTime.On(date, wib)) {
				continue
			}
			w, err := ComputeWindows(s, date, wib)
			require.NoError(t, err)

			assert.True(t, w.GateOpen.Before(w.LateThreshold), "%s-%s", start, end)
			assert.True(t, w.LateThreshold.Equal(w.NominalStart.Add(15*time.Minute)), "%s-%s", start, end)
			assert.False(t, w.GateClose.Before(w.LateThreshold), "%s-%s", start, end)
			assert.Equal(t, w.NominalStart.In(wib).YearDay(), w.NominalEnd.In(wib).YearDay(), "%s-%s", start, end)
		}
	}
}

func TestComputeWindows_Deterministic(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	s := newShift("22:00", "06:00", true, 15, 60)

	first, err := ComputeWindows(s, date, wib)
	require.NoError(t, err)
	second, err := ComputeWindows(s, date, wib)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeWindows_ReferenceDateLocationIgnored(t *testing.T) {
	s := newShift("09:00", "18:00", false, 15, 60)
	utcDate := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	localDate := time.Date(2025, 3, 3, 23, 0, 0, 0, wib)

	a, err := ComputeWindows(s, utcDate, wib)
	require.NoError(t, err)
	b, err := ComputeWindows(s, localDate, wib)
	require.NoError(t, err)

	assert.True(t, a.NominalStart.Equal(b.NominalStart))
}

func TestComputeWindows_DaylightSavingNight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks move forward at 02:00 on 2025-03-09.
	date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	w, err := ComputeWindows(newShift("22:00", "06:00", true, 0, 0), date, ny)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Hour, w.NominalEnd.Sub(w.NominalStart))
	assert.Equal(t, 6, w.NominalEnd.In(ny).Hour())
}

func TestComputeWindows_InvalidShift(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	t.Run("missing times", func(t *testing.T) {
		_, err := ComputeWindows(Shift{Code: "EMPTY"}, date, wib)
		assert.ErrorIs(t, err, ErrShiftTimesMissing)
	})

	t.Run("zero length day shift", func(t *testing.T) {
		_, err := ComputeWindows(newShift("09:00", "09:00", false, 0, 0), date, wib)
		assert.ErrorIs(t, err, ErrInvalidShift)
	})

	t.Run("zero length overnight shift spans a day", func(t *testing.T) {
		w, err := ComputeWindows(newShift("09:00", "09:00", true, 0, 0), date, wib)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, w.NominalEnd.Sub(w.NominalStart))
	})
}

func TestWindows_Predicates(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	w, err := ComputeWindows(newShift("09:00", "18:00", false, 15, 60), date, wib)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		accepts bool
		late    bool
		closed  bool
	}{
		{"before gate", at(date, 7, 30), false, false, false},
		{"gate open instant", at(date, 8, 0), true, false, false},
		{"early", at(date, 8, 5), true, false, false},
		{"late threshold instant", at(date, 9, 15), true, false, false},
		{"late", at(date, 9, 20), true, true, false},
		{"gate close instant", at(date, 18, 0), true, true, false},
		{"after close", at(date, 18, 30), false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.accepts, w.Accepts(tt.now))
			assert.Equal(t, tt.late, w.IsLate(tt.now))
			assert.Equal(t, tt.closed, w.Closed(tt.now))
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", TimeOfDay{9, 0, 0}, false},
		{"22:30:15", TimeOfDay{22, 30, 15}, false},
		{" 06:05 ", TimeOfDay{6, 5, 0}, false},
		{"24:00", TimeOfDay{}, true},
		{"9", TimeOfDay{}, true},
		{"aa:bb", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "07:05:00", TimeOfDay{7, 5, 0}.String())
}

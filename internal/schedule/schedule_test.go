package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// at builds a time on the given weekday at hh:mm. The week starting
// 2024-01-07 is used: January 7 2024 is a Sunday, so day offsets line up
// with time.Weekday values.
func at(wd time.Weekday, hh, mm int) time.Time {
	return time.Date(2024, 1, 7+int(wd), hh, mm, 0, 0, time.UTC)
}

func shiftDay(shifts ...Shift) Day {
	return Day{Shifts: shifts}
}

func TestIsOpenAt_SameDayShift(t *testing.T) {
	var w Weekly
	w[time.Monday] = shiftDay(Shift{Start: 10 * 60, End: 22 * 60})

	assert.True(t, w.IsOpenAt(at(time.Monday, 10, 0)), "opening minute is open")
	assert.True(t, w.IsOpenAt(at(time.Monday, 21, 59)), "last minute is open")
	assert.False(t, w.IsOpenAt(at(time.Monday, 22, 0)), "closing minute is closed")
	assert.False(t, w.IsOpenAt(at(time.Monday, 5, 0)))
	assert.False(t, w.IsOpenAt(at(time.Tuesday, 12, 0)), "other days closed")
}

func TestIsOpenAt_OvernightShift(t *testing.T) {
	var w Weekly
	w[time.Friday] = shiftDay(Shift{Start: 20 * 60, End: 5 * 60})

	assert.True(t, w.IsOpenAt(at(time.Friday, 20, 0)))
	assert.True(t, w.IsOpenAt(at(time.Friday, 23, 59)))

	// The tail belongs to Saturday's civil day via Friday's definition.
	assert.True(t, w.IsOpenAt(at(time.Saturday, 0, 30)))
	assert.True(t, w.IsOpenAt(at(time.Saturday, 4, 59)))
	assert.False(t, w.IsOpenAt(at(time.Saturday, 5, 0)))

	assert.False(t, w.IsOpenAt(at(time.Friday, 19, 59)))
	assert.False(t, w.IsOpenAt(at(time.Friday, 10, 0)))
	// Friday's own early morning is not covered by Friday's shift.
	assert.False(t, w.IsOpenAt(at(time.Friday, 2, 0)))
}

func TestIsOpenAt_MultiShift(t *testing.T) {
	var w Weekly
	w[time.Wednesday] = shiftDay(
		Shift{Start: 7 * 60, End: 11 * 60},
		Shift{Start: 17 * 60, End: 22 * 60},
	)

	assert.True(t, w.IsOpenAt(at(time.Wednesday, 8, 0)))
	assert.True(t, w.IsOpenAt(at(time.Wednesday, 18, 30)))
	assert.False(t, w.IsOpenAt(at(time.Wednesday, 12, 0)), "gap between shifts closed")
}

func TestIsOpenAt_ClosedDay(t *testing.T) {
	var w Weekly
	w[time.Monday] = Day{Closed: true, Shifts: []Shift{{Start: 0, End: 1439}}}

	assert.False(t, w.IsOpenAt(at(time.Monday, 12, 0)), "closed flag overrides shifts")
}

func TestIsOpenAt_ClosedPreviousDayBlocksWrap(t *testing.T) {
	var w Weekly
	w[time.Friday] = Day{Closed: true}
	w[time.Saturday] = shiftDay(Shift{Start: 9 * 60, End: 17 * 60})

	// No Friday overnight shift can leak into Saturday morning.
	assert.False(t, w.IsOpenAt(at(time.Saturday, 2, 0)))
}

func TestIsOpenAt_ZeroLengthShiftNeverMatches(t *testing.T) {
	var w Weekly
	w[time.Monday] = shiftDay(Shift{Start: 12 * 60, End: 12 * 60})

	assert.False(t, w.IsOpenAt(at(time.Monday, 12, 0)))
	assert.False(t, w.IsOpenAt(at(time.Monday, 0, 0)))
	assert.False(t, w.IsOpenAt(at(time.Tuesday, 11, 0)))
}

func TestIsOpenAt_UntilMidnight(t *testing.T) {
	// "09:00-24:00" normalizes to End 0: open until midnight, nothing after.
	var w Weekly
	w[time.Monday] = shiftDay(Shift{Start: 9 * 60, End: 0})

	assert.True(t, w.IsOpenAt(at(time.Monday, 9, 0)))
	assert.True(t, w.IsOpenAt(at(time.Monday, 23, 59)))
	assert.False(t, w.IsOpenAt(at(time.Tuesday, 0, 0)))
	assert.False(t, w.IsOpenAt(at(time.Monday, 8, 59)))
}

func TestAlwaysOpen(t *testing.T) {
	w := AlwaysOpen()
	assert.True(t, w.FailedOpen())
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		assert.True(t, w.IsOpenAt(at(wd, 0, 0)))
		assert.True(t, w.IsOpenAt(at(wd, 23, 59)))
	}
}

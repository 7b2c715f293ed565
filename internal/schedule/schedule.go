// Package schedule implements weekly merchant operating hours: a canonical
// representation, normalization of the legacy encodings found in merchant
// records, and open/closed matching with overnight-shift support.
package schedule

import "time"

// MinutesPerDay is the number of minute-of-day offsets in one civil day.
const MinutesPerDay = 24 * 60

// Shift is a single open interval within one weekday, in minute-of-day
// offsets. End <= Start means the shift wraps past midnight into the
// following civil day. Start == End is a zero-length shift that never
// matches.
type Shift struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Day is one weekday's schedule. AlwaysOpen marks a day whose stored
// encoding could not be parsed: the merchant is treated as open rather than
// silently hidden from the wheel.
type Day struct {
	Closed     bool    `json:"closed"`
	AlwaysOpen bool    `json:"always_open,omitempty"`
	Shifts     []Shift `json:"shifts"`
}

// Weekly is a full week of day schedules, indexed by time.Weekday
// (Sunday = 0).
type Weekly [7]Day

// AlwaysOpen returns a schedule that matches at every instant. Used as the
// fail-open result for merchants whose schedule record is absent or corrupt.
func AlwaysOpen() Weekly {
	var w Weekly
	for i := range w {
		w[i].AlwaysOpen = true
	}
	return w
}

// FailedOpen reports whether any part of the schedule fell back to the
// always-open default because its stored encoding could not be parsed.
func (w Weekly) FailedOpen() bool {
	for i := range w {
		if w[i].AlwaysOpen {
			return true
		}
	}
	return false
}

// IsOpenAt reports whether the schedule is open at t. The caller must
// resolve t to the home timezone first; IsOpenAt reads weekday and
// minute-of-day from t as given.
//
// A same-day shift (End > Start) matches Start <= m < End. An overnight
// shift (End <= Start) matches m >= Start on its own day and m < End on the
// following day, so a query at 02:00 against a 20:00-05:00 shift matches
// through the previous day's shift definition.
func (w Weekly) IsOpenAt(t time.Time) bool {
	wd := int(t.Weekday())
	m := t.Hour()*60 + t.Minute()

	today := w[wd]
	if today.AlwaysOpen {
		return true
	}
	if !today.Closed {
		for _, s := range today.Shifts {
			if s.Start == s.End {
				continue
			}
			if s.End > s.Start {
				if m >= s.Start && m < s.End {
					return true
				}
			} else if m >= s.Start {
				return true
			}
		}
	}

	// The tail of an overnight shift belongs to the previous civil day.
	prev := w[(wd+6)%7]
	if prev.Closed || prev.AlwaysOpen {
		return false
	}
	for _, s := range prev.Shifts {
		if s.Start == s.End || s.End > s.Start {
			continue
		}
		if m < s.End {
			return true
		}
	}
	return false
}

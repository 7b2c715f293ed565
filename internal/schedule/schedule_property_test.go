// Property-based tests comparing IsOpenAt against a brute-force
// minute-by-minute expansion of the week.
package schedule

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// expandWeek marks every open minute of the week: same-day shifts mark
// [start,end) on their own day, overnight shifts mark [start,1440) on their
// own day and [0,end) on the next.
func expandWeek(w Weekly) [7][MinutesPerDay]bool {
	var open [7][MinutesPerDay]bool
	for d := 0; d < 7; d++ {
		day := w[d]
		if day.AlwaysOpen {
			for m := 0; m < MinutesPerDay; m++ {
				open[d][m] = true
			}
			continue
		}
		if day.Closed {
			continue
		}
		for _, s := range day.Shifts {
			if s.Start == s.End {
				continue
			}
			if s.End > s.Start {
				for m := s.Start; m < s.End; m++ {
					open[d][m] = true
				}
			} else {
				for m := s.Start; m < MinutesPerDay; m++ {
					open[d][m] = true
				}
				next := (d + 1) % 7
				for m := 0; m < s.End; m++ {
					open[next][m] = true
				}
			}
		}
	}
	return open
}

func shiftGen() *rapid.Generator[Shift] {
	return rapid.Custom(func(t *rapid.T) Shift {
		return Shift{
			Start: rapid.IntRange(0, MinutesPerDay-1).Draw(t, "start"),
			End:   rapid.IntRange(0, MinutesPerDay-1).Draw(t, "end"),
		}
	})
}

func weeklyGen() *rapid.Generator[Weekly] {
	return rapid.Custom(func(t *rapid.T) Weekly {
		var w Weekly
		for d := 0; d < 7; d++ {
			if rapid.Bool().Draw(t, "closed") {
				w[d] = Day{Closed: true}
				continue
			}
			n := rapid.IntRange(0, 3).Draw(t, "shiftCount")
			for i := 0; i < n; i++ {
				w[d].Shifts = append(w[d].Shifts, shiftGen().Draw(t, "shift"))
			}
		}
		return w
	})
}

// TestIsOpenAtMatchesBruteForce checks that for any weekly schedule and any
// instant, interval matching agrees with minute-of-day enumeration,
// overnight wraps included.
func TestIsOpenAtMatchesBruteForce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := weeklyGen().Draw(t, "weekly")
		open := expandWeek(w)

		day := rapid.IntRange(0, 6).Draw(t, "day")
		minute := rapid.IntRange(0, MinutesPerDay-1).Draw(t, "minute")

		// 2024-01-07 is a Sunday, so day offsets equal time.Weekday values.
		instant := time.Date(2024, 1, 7+day, minute/60, minute%60, 0, 0, time.UTC)

		got := w.IsOpenAt(instant)
		want := open[day][minute]
		if got != want {
			t.Fatalf("day=%d minute=%02d:%02d: IsOpenAt=%v, brute force=%v (schedule %+v)",
				day, minute/60, minute%60, got, want, w)
		}
	})
}

package model

import (
	"fmt"
	"time"
)

// Period is one of the five named meal windows used for quota bucketing.
type Period string

const (
	PeriodBreakfast    Period = "breakfast"
	PeriodLunch        Period = "lunch"
	PeriodAfternoonTea Period = "afternoon_tea"
	PeriodDinner       Period = "dinner"
	PeriodLateNight    Period = "late_night"
)

// Periods returns all valid periods in display order.
func Periods() []Period {
	return []Period{
		PeriodBreakfast,
		PeriodLunch,
		PeriodAfternoonTea,
		PeriodDinner,
		PeriodLateNight,
	}
}

// ParsePeriod validates a raw period value from the API boundary.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	switch p {
	case PeriodBreakfast, PeriodLunch, PeriodAfternoonTea, PeriodDinner, PeriodLateNight:
		return p, nil
	}
	return "", fmt.Errorf("invalid period %q", s)
}

// PeriodOf maps a home-region clock time to its display period. Quota and
// draw calls still take the period as explicit input; this is only a default
// for clients that want one.
func PeriodOf(t time.Time) Period {
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return PeriodBreakfast
	case h >= 11 && h < 14:
		return PeriodLunch
	case h >= 14 && h < 17:
		return PeriodAfternoonTea
	case h >= 17 && h < 21:
		return PeriodDinner
	default:
		return PeriodLateNight
	}
}

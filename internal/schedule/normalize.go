package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Merchant records carry their weekly hours as JSON keyed by weekday name.
// Four encodings exist in the wild and all must normalize to Weekly:
//
//	"10:00-22:00"                          bare single-shift string
//	"07:00-11:00,17:00-22:00"              comma-joined multi-shift string
//	{"start": "20:00", "end": "05:00"}     single-shift object
//	{"closed": false, "shifts": [...]}     canonical multi-shift object
//
// Anything unrecognized fails open: a corrupt record must not hide the
// merchant from the wheel.

var weekdayKeys = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseWeekly normalizes a stored schedule document into the canonical
// Weekly form. It never fails: an absent, empty, or structurally corrupt
// document yields AlwaysOpen(), and a corrupt single day entry yields an
// always-open day. Days not mentioned in a valid document are closed.
func ParseWeekly(raw json.RawMessage) Weekly {
	if len(raw) == 0 || string(raw) == "null" {
		return AlwaysOpen()
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return AlwaysOpen()
	}
	if len(doc) == 0 {
		return AlwaysOpen()
	}

	var w Weekly
	for i := range w {
		w[i].Closed = true
	}
	for key, val := range doc {
		wd, ok := weekdayKeys[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		w[wd] = parseDay(val)
	}
	return w
}

// parseDay decodes one weekday entry in any of the legacy encodings.
func parseDay(raw json.RawMessage) Day {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return Day{Closed: true}
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Day{AlwaysOpen: true}
		}
		return parseDayString(s)
	}

	var obj struct {
		Closed *bool             `json:"closed"`
		Shifts []json.RawMessage `json:"shifts"`
		Start  json.RawMessage   `json:"start"`
		End    json.RawMessage   `json:"end"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Day{AlwaysOpen: true}
	}

	if obj.Closed != nil && *obj.Closed {
		return Day{Closed: true}
	}

	if obj.Shifts != nil {
		var day Day
		for _, rs := range obj.Shifts {
			shift, err := parseShiftObject(rs)
			if err != nil {
				return Day{AlwaysOpen: true}
			}
			day.Shifts = append(day.Shifts, shift)
		}
		if len(day.Shifts) == 0 {
			day.Closed = true
		}
		return day
	}

	// Single-shift object without a shifts array.
	if obj.Start != nil || obj.End != nil {
		shift, err := parseShiftBounds(obj.Start, obj.End)
		if err != nil {
			return Day{AlwaysOpen: true}
		}
		return Day{Shifts: []Shift{shift}}
	}

	return Day{AlwaysOpen: true}
}

// parseDayString handles the bare and comma-joined "HH:MM-HH:MM" forms.
func parseDayString(s string) Day {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "closed") {
		return Day{Closed: true}
	}

	var day Day
	for _, part := range strings.Split(s, ",") {
		shift, err := parseShiftString(part)
		if err != nil {
			return Day{AlwaysOpen: true}
		}
		day.Shifts = append(day.Shifts, shift)
	}
	return day
}

func parseShiftString(s string) (Shift, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Shift{}, fmt.Errorf("shift %q: missing '-'", s)
	}
	start, err := parseClock(lo)
	if err != nil {
		return Shift{}, err
	}
	end, err := parseClock(hi)
	if err != nil {
		return Shift{}, err
	}
	return Shift{Start: start, End: end}, nil
}

func parseShiftObject(raw json.RawMessage) (Shift, error) {
	var obj struct {
		Start json.RawMessage `json:"start"`
		End   json.RawMessage `json:"end"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Shift{}, err
	}
	return parseShiftBounds(obj.Start, obj.End)
}

func parseShiftBounds(start, end json.RawMessage) (Shift, error) {
	s, err := parseBound(start)
	if err != nil {
		return Shift{}, fmt.Errorf("start: %w", err)
	}
	e, err := parseBound(end)
	if err != nil {
		return Shift{}, fmt.Errorf("end: %w", err)
	}
	return Shift{Start: s, End: e}, nil
}

// parseBound accepts a shift boundary as either a "HH:MM" string or a bare
// minute-of-day number.
func parseBound(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing bound")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseClock(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("bound %s: neither clock string nor minutes", raw)
	}
	if n == MinutesPerDay {
		n = 0
	}
	if n < 0 || n >= MinutesPerDay {
		return 0, fmt.Errorf("minutes %d out of range", n)
	}
	return n, nil
}

// parseClock converts "HH:MM" to a minute-of-day offset. "24:00" is folded
// to 0 so "09:00-24:00" reads as open until midnight.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: missing ':'", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	if h == 24 && m == 0 {
		return 0, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*60 + m, nil
}

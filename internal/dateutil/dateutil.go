// Package dateutil provides calendar-day arithmetic over YYYYMMDD day keys.
//
// Day keys are fixed-width zero-padded strings, so lexical ordering equals
// chronological ordering and keys can be compared, sorted and used as map
// keys directly.
package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// DayKeyLayout is the time layout matching a day key.
const DayKeyLayout = "20060102"

// ErrInvalidRange reports a malformed or inverted day-key range.
var ErrInvalidRange = errors.New("invalid date range")

// ParseDayKey converts a YYYYMMDD key into a time.Time at local midnight.
// The key must denote a real calendar date.
func ParseDayKey(key string) (time.Time, error) {
	if len(key) != 8 {
		return time.Time{}, fmt.Errorf("%w: day key %q is not 8 digits", ErrInvalidRange, key)
	}
	t, err := time.ParseInLocation(DayKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day key %q: %v", ErrInvalidRange, key, err)
	}
	return t, nil
}

// FormatDayKey renders a time as its YYYYMMDD day key.
func FormatDayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// Today returns the current day key.
func Today() string {
	return FormatDayKey(time.Now())
}

// Yesterday returns the day key of the previous calendar day.
func Yesterday() string {
	return FormatDayKey(time.Now().AddDate(0, 0, -1))
}

// EnumerateDays returns every day key from start to end inclusive, in
// chronological order. It fails with ErrInvalidRange when either key is
// malformed or start sorts after end.
func EnumerateDays(start, end string) ([]string, error) {
	from, err := ParseDayKey(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDayKey(end)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}
	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDayKey(d))
	}
	return days, nil
}

// InRange reports whether key falls within [start, end] inclusive. Valid
// because keys are fixed width and zero padded.
func InRange(key, start, end string) bool {
	return start <= key && key <= end
}

// NextDay returns the day key following key.
func NextDay(key string) (string, error) {
	t, err := ParseDayKey(key)
	if err != nil {
		return "", err
	}
	return FormatDayKey(t.AddDate(0, 0, 1)), nil
}

// ConsecutiveDays reports whether b is exactly one calendar day after a.
func ConsecutiveDays(a, b string) bool {
	next, err := NextDay(a)
	if err != nil {
		return false
	}
	return next == b
}

// Minutes carries the formatted renditions of a minutes-since-midnight (or
// minutes-of-duration) amount used throughout timesheet rendering.
type Minutes struct {
	Total    int
	Hours    int
	Mins     int
	HHMM     string
	Negative bool
}

// FormatMinutes splits a minute amount into hour/minute parts. The sign is
// preserved in Total and Negative; HHMM is always unsigned.
func FormatMinutes(total int) Minutes {
	abs := total
	if abs < 0 {
		abs = -abs
	}
	h := abs / 60
	m := abs % 60
	return Minutes{
		Total:    total,
		Hours:    h,
		Mins:     m,
		HHMM:     fmt.Sprintf("%02d:%02d", h, m),
		Negative: total < 0,
	}
}

// SignedHHMM renders the amount with an explicit deficit sign: negative
// amounts are prefixed with "-", everything else with "+".
func (m Minutes) SignedHHMM() string {
	if m.Negative {
		return "-" + m.HHMM
	}
	return "+" + m.HHMM
}

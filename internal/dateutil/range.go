package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// RangeOptions describes the ways a command line can express a day range.
// Exactly one of the shortcuts is honored; priority mirrors the option
// evaluation order: Today, Yesterday, Month, FromTodayMinus, then the
// explicit Start/End pair. With no options at all the range is today only.
type RangeOptions struct {
	Start          string // explicit YYYYMMDD start
	End            string // explicit YYYYMMDD end; defaults to today when only Start is set
	Today          bool
	Yesterday      bool
	CurrentMonth   bool
	Month          int // 1-12; combined with Year when non-zero
	Year           int
	FromTodayMinus string // e.g. "3d", "2w", "1m": start = today - amount, end = today
}

var fromTodayMinusRe = regexp.MustCompile(`^(\d+)([dwm])$`)

// EvaluateRange resolves the options into a concrete [start, end] pair of day
// keys. Explicit pairs are validated; inverted or malformed input fails with
// ErrInvalidRange.
func EvaluateRange(opts RangeOptions) (start, end string, err error) {
	now := time.Now()
	today := FormatDayKey(now)

	switch {
	case opts.Today:
		return today, today, nil
	case opts.Yesterday:
		y := Yesterday()
		return y, y, nil
	case opts.CurrentMonth:
		return monthBounds(int(now.Month()), now.Year())
	case opts.Month != 0:
		if opts.Month < 1 || opts.Month > 12 {
			return "", "", fmt.Errorf("%w: month %d", ErrInvalidRange, opts.Month)
		}
		year := opts.Year
		if year == 0 {
			year = now.Year()
		}
		return monthBounds(opts.Month, year)
	case opts.FromTodayMinus != "":
		start, err := fromTodayMinus(opts.FromTodayMinus, now)
		if err != nil {
			return "", "", err
		}
		return start, today, nil
	case opts.Start != "" && opts.End != "":
		if err := validatePair(opts.Start, opts.End); err != nil {
			return "", "", err
		}
		return opts.Start, opts.End, nil
	case opts.Start != "":
		if err := validatePair(opts.Start, today); err != nil {
			return "", "", err
		}
		return opts.Start, today, nil
	default:
		return today, today, nil
	}
}

func monthBounds(month, year int) (string, string, error) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)
	return FormatDayKey(first), FormatDayKey(last), nil
}

func fromTodayMinus(expr string, now time.Time) (string, error) {
	m := fromTodayMinusRe.FindStringSubmatch(expr)
	if m == nil {
		return "", fmt.Errorf("%w: offset %q (want <n>d, <n>w or <n>m)", ErrInvalidRange, expr)
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return "", fmt.Errorf("%w: offset %q", ErrInvalidRange, expr)
	}
	switch m[2] {
	case "d":
		return FormatDayKey(now.AddDate(0, 0, -amount)), nil
	case "w":
		return FormatDayKey(now.AddDate(0, 0, -amount*7)), nil
	default:
		return FormatDayKey(now.AddDate(0, -amount, 0)), nil
	}
}

func validatePair(start, end string) error {
	if _, err := ParseDayKey(start); err != nil {
		return err
	}
	if _, err := ParseDayKey(end); err != nil {
		return err
	}
	if start > end {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}
	return nil
}

package poll

import (
	"fmt"
	"time"
)

// Window is a daily quiet-hours interval during which polling pauses. A
// window whose start is after its end wraps past midnight.
type Window struct {
	from    int // minutes since midnight
	to      int
	enabled bool
}

// ParseWindow builds a window from two "HH:MM" bounds. Two empty strings
// disable the window; a single empty bound is an error.
func ParseWindow(from, to string) (Window, error) {
	if from == "" && to == "" {
		return Window{}, nil
	}
	f, err := parseClock(from)
	if err != nil {
		return Window{}, fmt.Errorf("quiet hours from: %w", err)
	}
	t, err := parseClock(to)
	if err != nil {
		return Window{}, fmt.Errorf("quiet hours to: %w", err)
	}
	return Window{from: f, to: t, enabled: true}, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("malformed clock %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*60 + m, nil
}

// Contains reports whether the instant falls inside the window. Bounds are
// inclusive at the start, exclusive at the end.
func (w Window) Contains(t time.Time) bool {
	if !w.enabled {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	if w.from <= w.to {
		return minutes >= w.from && minutes < w.to
	}
	return minutes >= w.from || minutes < w.to
}

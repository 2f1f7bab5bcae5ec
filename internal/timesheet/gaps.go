package timesheet

import (
	"github.com/diego-devita/stopweb/internal/dateutil"
)

// Gap is a maximal contiguous run of day keys missing from the cache.
// Bounds are inclusive.
type Gap struct {
	From string
	To   string
}

// FindUncoveredIntervals computes the ordered list of maximal gaps in
// existing relative to [start, end]. The enumeration is chronological, so
// coalescing is a single pass; returned gaps never overlap and never touch.
// An empty result means the range is fully covered.
func FindUncoveredIntervals(existing map[string]struct{}, start, end string) ([]Gap, error) {
	days, err := dateutil.EnumerateDays(start, end)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, day := range days {
		if _, ok := existing[day]; !ok {
			missing = append(missing, day)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	gaps := []Gap{}
	current := Gap{From: missing[0], To: missing[0]}
	for _, day := range missing[1:] {
		if dateutil.ConsecutiveDays(current.To, day) {
			current.To = day
			continue
		}
		gaps = append(gaps, current)
		current = Gap{From: day, To: day}
	}
	gaps = append(gaps, current)
	return gaps, nil
}

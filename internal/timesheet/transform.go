package timesheet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diego-devita/stopweb/internal/dateutil"
	"github.com/diego-devita/stopweb/internal/portal"
)

// Policy carries the presence rules needed to derive expected checkout and
// deficit figures.
type Policy struct {
	RequiredMinutes   int // daily required presence, e.g. 432 (07:12)
	LunchBreakMinutes int // mandatory lunch break length
}

// Lunch exits are only recognized inside this window.
const (
	lunchWindowFrom = 12*60 + 30
	lunchWindowTo   = 14*60 + 30
)

// Transform converts a raw cartellino response into day records keyed by
// day key.
func Transform(resp *portal.TimesheetResponse, policy Policy) (Cache, error) {
	out := make(Cache)
	for i, row := range resp.Result.Summary.Data {
		rec, err := transformRow(row, policy)
		if err != nil {
			return nil, fmt.Errorf("cartellino row %d: %w", i, err)
		}
		out[rec.Key] = rec
	}
	return out, nil
}

func transformRow(row portal.TimesheetRow, policy Policy) (DayRecord, error) {
	rawDate, err := row.Text(portal.RowDate)
	if err != nil {
		return DayRecord{}, err
	}
	if len(rawDate) < 8 {
		return DayRecord{}, fmt.Errorf("malformed date %q", rawDate)
	}
	key := rawDate[:8]
	date, err := dateutil.ParseDayKey(key)
	if err != nil {
		return DayRecord{}, err
	}

	dayDescr, err := row.Text(portal.RowDayDescription)
	if err != nil {
		return DayRecord{}, err
	}
	worked, err := row.Number(portal.RowWorkedMinutes)
	if err != nil {
		return DayRecord{}, err
	}

	var punchTable portal.EmbeddedTable
	if err := row.Embedded(portal.RowPunches, &punchTable); err != nil {
		return DayRecord{}, err
	}
	punches, err := decodePunches(punchTable)
	if err != nil {
		return DayRecord{}, err
	}

	var itemTable portal.EmbeddedTable
	if err := row.Embedded(portal.RowProcessedItems, &itemTable); err != nil {
		return DayRecord{}, err
	}
	flags, permission, err := decodeProcessedItems(itemTable)
	if err != nil {
		return DayRecord{}, err
	}

	rec := DayRecord{
		Key:               key,
		Date:              date,
		DayType:           classifyDay(dayDescr),
		Punches:           punches,
		WorkedMinutes:     int(worked),
		RemoteWork:        flags.remoteWork,
		Vacation:          flags.vacation,
		MealVoucher:       flags.mealVoucher,
		BusinessTrip:      flags.businessTrip,
		PermissionMinutes: permission,
	}
	rec.Intervals = computeIntervals(punches)
	rec.Lunch = lunchDetail(rec.Intervals.Absences, policy.LunchBreakMinutes)
	rec.HasExpectation, rec.ExpectedCheckout, rec.Deficit = expectation(rec, policy)
	return rec, nil
}

// BlankRecord synthesizes a placeholder for a day absent from both cache and
// portal. Blank records are never persisted.
func BlankRecord(key string) (DayRecord, error) {
	date, err := dateutil.ParseDayKey(key)
	if err != nil {
		return DayRecord{}, err
	}
	return DayRecord{
		Key:       key,
		Date:      date,
		Origin:    OriginBlank,
		DayType:   DayBlank,
		Punches:   []Punch{},
		Intervals: computeIntervals(nil),
	}, nil
}

func classifyDay(descr string) DayType {
	switch descr {
	case "FESTIVO":
		return DayHoliday
	case "SABATO":
		return DaySaturday
	case "DOMENICA":
		return DaySunday
	default:
		return DayOrdinary
	}
}

func decodePunches(table portal.EmbeddedTable) ([]Punch, error) {
	punches := make([]Punch, 0, len(table.Data))
	for _, entry := range table.Data {
		if len(entry) < 2 {
			return nil, fmt.Errorf("punch entry has %d fields, want 2", len(entry))
		}
		var direction string
		if err := json.Unmarshal(entry[0], &direction); err != nil {
			return nil, fmt.Errorf("punch direction: %w", err)
		}
		var minutes float64
		if err := json.Unmarshal(entry[1], &minutes); err != nil {
			return nil, fmt.Errorf("punch minutes: %w", err)
		}
		punches = append(punches, Punch{Direction: direction, Minutes: int(minutes)})
	}
	return punches, nil
}

type dayFlags struct {
	remoteWork   bool
	vacation     bool
	mealVoucher  bool
	businessTrip bool
}

func decodeProcessedItems(table portal.EmbeddedTable) (dayFlags, int, error) {
	var flags dayFlags
	permission := 0
	for _, entry := range table.Data {
		if len(entry) < 2 {
			continue
		}
		var descr string
		if err := json.Unmarshal(entry[0], &descr); err != nil {
			return dayFlags{}, 0, fmt.Errorf("processed item description: %w", err)
		}
		switch {
		case descr == "SMART WORKING":
			flags.remoteWork = true
		case descr == "FERIE":
			flags.vacation = true
		case descr == "BUONO PASTO":
			flags.mealVoucher = true
		case strings.Contains(strings.ToUpper(descr), "TRASFERTA"):
			flags.businessTrip = true
		case descr == "ROL" || descr == "BANCA ORE GODUTA":
			var value float64
			if err := json.Unmarshal(entry[1], &value); err != nil {
				return dayFlags{}, 0, fmt.Errorf("processed item value: %w", err)
			}
			permission += int(value)
		}
	}
	return flags, permission, nil
}

// computeIntervals folds the ordered punch list into presence and absence
// spans. The list must alternate in/out starting with an in; a leading out,
// a repeated direction, or a trailing open in marks the day anomalous.
func computeIntervals(punches []Punch) Intervals {
	iv := Intervals{Presences: []Interval{}, Absences: []Interval{}}

	previousDirection := "U"
	var previous Punch

	for i, p := range punches {
		if !p.In() && i == 0 {
			iv.Anomaly = true
			break
		}
		if p.Direction == previousDirection {
			iv.Anomaly = true
			break
		}
		if i > 0 {
			delta := p.Minutes - previous.Minutes
			span := Interval{From: previous, To: p, Minutes: delta}
			if p.In() {
				iv.AbsenceMinutes += delta
				iv.Absences = append(iv.Absences, span)
			} else {
				iv.ValidPunches += 2
				iv.PresenceMinutes += delta
				iv.Presences = append(iv.Presences, span)
			}
		}
		previousDirection = p.Direction
		previous = p
	}

	if !iv.Anomaly && previousDirection == "E" {
		iv.Anomaly = true
	}
	return iv
}

// lunchDetail matches the first absence whose exit falls inside the lunch
// window against the mandatory break length.
func lunchDetail(absences []Interval, breakMinutes int) Lunch {
	for _, a := range absences {
		if a.From.Minutes >= lunchWindowFrom && a.From.Minutes <= lunchWindowTo {
			return Lunch{
				Taken:   true,
				Break:   a,
				Deficit: breakMinutes - a.Minutes,
				Valid:   a.Minutes >= breakMinutes,
			}
		}
	}
	return Lunch{}
}

// expectation derives the expected checkout time and the current deficit.
// The required presence grows by the lunch shortfall when the break was cut
// short, or by the whole mandatory break when none was taken yet; permission
// minutes shrink both figures.
func expectation(rec DayRecord, policy Policy) (ok bool, checkout, deficit int) {
	if len(rec.Punches) == 0 {
		return false, 0, 0
	}
	required := policy.RequiredMinutes
	if rec.Lunch.Taken && rec.Lunch.Deficit > 0 {
		required += rec.Lunch.Deficit
	}
	if !rec.Lunch.Taken {
		required += policy.LunchBreakMinutes
	}
	checkout = rec.Punches[0].Minutes + rec.Intervals.AbsenceMinutes + required - rec.PermissionMinutes
	deficit = required - rec.Intervals.PresenceMinutes - rec.PermissionMinutes
	return true, checkout, deficit
}

// Package timesheet implements the day-record cache: transformation of raw
// cartellino rows into day records, a whole-file JSON store keyed by
// YYYYMMDD, gap detection over a requested range, and the fetch engine that
// fills those gaps from the portal.
package timesheet

import (
	"time"
)

// Origin tags where a day record came from. The zero value means freshly
// fetched; the tag is not authoritative in the persisted form, every loaded
// record is re-tagged OriginCache.
type Origin string

const (
	OriginFetched Origin = ""
	OriginCache   Origin = "CACHE"
	OriginBlank   Origin = "BLANK"
)

// String renders the tag for diagnostics; the fetched zero value is shown
// explicitly.
func (o Origin) String() string {
	if o == OriginFetched {
		return "FETCHED"
	}
	return string(o)
}

// Punch is a single badge event.
type Punch struct {
	Direction string `json:"direction"` // "E" in, "U" out
	Minutes   int    `json:"minutes"`   // minutes since midnight
}

// In reports whether the punch is a check-in.
func (p Punch) In() bool { return p.Direction == "E" }

// Interval is a span between two consecutive punches.
type Interval struct {
	From    Punch `json:"from"`
	To      Punch `json:"to"`
	Minutes int   `json:"minutes"`
}

// Intervals is the derived presence/absence breakdown of a day's punches.
type Intervals struct {
	Anomaly         bool       `json:"anomaly"`
	ValidPunches    int        `json:"validPunches"`
	PresenceMinutes int        `json:"presenceMinutes"`
	AbsenceMinutes  int        `json:"absenceMinutes"`
	Presences       []Interval `json:"presences"`
	Absences        []Interval `json:"absences"`
}

// Lunch describes the absence matched against the mandatory lunch window.
type Lunch struct {
	Taken   bool     `json:"taken"`
	Break   Interval `json:"break,omitempty"`
	Deficit int      `json:"deficit"` // missing minutes vs the mandatory break
	Valid   bool     `json:"valid"`
}

// DayType classifies the calendar day as the portal reports it.
type DayType string

const (
	DayOrdinary DayType = "ordinary"
	DaySaturday DayType = "saturday"
	DaySunday   DayType = "sunday"
	DayHoliday  DayType = "holiday"
	DayBlank    DayType = "blank"
)

// DayRecord is the cached attendance summary for one calendar day.
type DayRecord struct {
	Key    string    `json:"key"`  // YYYYMMDD, duplicated from the map key
	Date   time.Time `json:"date"` // local midnight of Key
	Origin Origin    `json:"origin,omitempty"`

	DayType   DayType   `json:"dayType"`
	Punches   []Punch   `json:"punches"`
	Intervals Intervals `json:"intervals"`
	Lunch     Lunch     `json:"lunch"`

	// Expected checkout (minutes since midnight) and running deficit given
	// the presence policy. Meaningless when HasExpectation is false (no
	// punches yet).
	HasExpectation   bool `json:"hasExpectation"`
	ExpectedCheckout int  `json:"expectedCheckout"`
	Deficit          int  `json:"deficit"`

	WorkedMinutes int `json:"workedMinutes"`

	RemoteWork   bool `json:"remoteWork"`
	Vacation     bool `json:"vacation"`
	MealVoucher  bool `json:"mealVoucher"`
	BusinessTrip bool `json:"businessTrip"`

	PermissionMinutes int `json:"permissionMinutes"`
}

// Cache is the day-record map owned by the Store. Keys are always valid
// day keys.
type Cache map[string]DayRecord

// Keys returns the cached day keys as a set, for gap finding.
func (c Cache) Keys() map[string]struct{} {
	set := make(map[string]struct{}, len(c))
	for k := range c {
		set[k] = struct{}{}
	}
	return set
}

// Subset returns the entries of c whose keys fall within [start, end].
func (c Cache) Subset(start, end string) Cache {
	out := make(Cache)
	for k, v := range c {
		if start <= k && k <= end {
			out[k] = v
		}
	}
	return out
}

// Merge copies every entry of other into c, overwriting existing keys.
func (c Cache) Merge(other Cache) {
	for k, v := range other {
		c[k] = v
	}
}

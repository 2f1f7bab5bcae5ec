// Package events tracks the monitored people between poll cycles: a mutable
// per-entity snapshot, an append-only NDJSON queue of change events, and the
// diff rules that derive events from a freshly fetched directory entry.
package events

import (
	"fmt"
	"time"

	"github.com/diego-devita/stopweb/internal/portal"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

// Type identifies one kind of change event. The wire names are the ones the
// queue and history files have always carried.
type Type string

const (
	EntityFirstSeen                            Type = "Pref_Nuovo"
	EntityReset                                Type = "Pref_Reset"
	PresenceStateChanged                       Type = "Pref_CambioStato"
	JustificationChangedFromYesterdaysForecast Type = "Pref_CambioGiust_Oggi-DomaniDiIeri"
	JustificationChangedTodayVsToday           Type = "Pref_CambioGiust_Oggi-OggiDiOggi"
	JustificationChangedTomorrowVsToday        Type = "Pref_CambioGiust_Domani-DomaniDiOggi"
	TimesheetNewDay                            Type = "Timbr_NuovoGiorno"
	TimesheetPunchesChanged                    Type = "Timbr_Cambio"
)

// Payload carries the event-specific fields. Unused fields stay empty.
type Payload struct {
	EntityID      int64  `json:"idDipendente,omitempty"`
	DisplayName   string `json:"nominativo,omitempty"`
	PresenceState string `json:"macrostato,omitempty"`
	Today         string `json:"oggi,omitempty"`
	Tomorrow      string `json:"domani,omitempty"`

	// Previous/Current hold the two sides of a change event: serialized
	// justifications, presence states, or punch lists.
	Previous string `json:"precedente,omitempty"`
	Current  string `json:"corrente,omitempty"`

	DayKey string `json:"giorno,omitempty"`
}

// LogEntry is one line of the event queue.
type LogEntry struct {
	ID        string    `json:"id"`
	Type      Type      `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
}

// EntitySnapshot is the last-seen state of one monitored person. The
// justification fields hold the serialized form only.
type EntitySnapshot struct {
	EntityID      int64     `json:"idDipendente"`
	DisplayName   string    `json:"nominativo"`
	PresenceState string    `json:"macrostato"`
	Today         string    `json:"oggi"`
	Tomorrow      string    `json:"domani"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// NullJustification is the sentinel stored when no justification object
// exists at all.
const NullJustification = "NULL"

// SerializeJustification renders a justification into the canonical token
// string. Change detection compares these strings, never the parsed flags, so
// the encoding must stay byte-stable.
func SerializeJustification(j *portal.RawJustification) string {
	if j == nil {
		return NullJustification
	}
	return fmt.Sprintf("TL:%d;MT:%d;AL:%d;", boolFlag(j.RemoteWork), boolFlag(j.BusinessTrip), boolFlag(j.Other))
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SerializePunches renders a punch list for string comparison between poll
// cycles.
func SerializePunches(punches []timesheet.Punch) string {
	out := ""
	for _, p := range punches {
		out += fmt.Sprintf("%s:%d;", p.Direction, p.Minutes)
	}
	return out
}

func entityKey(id int64) string {
	return fmt.Sprintf("id_%d", id)
}

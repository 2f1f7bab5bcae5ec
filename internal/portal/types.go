package portal

import (
	"encoding/json"
	"fmt"
)

// TimesheetResponse mirrors the ConsultaCartellino payload: one positional
// row per calendar day.
type TimesheetResponse struct {
	Result struct {
		Summary struct {
			Data []TimesheetRow `json:"data"`
		} `json:"sintesi"`
	} `json:"result"`
}

// TimesheetRow is a positional cartellino record. The portal serializes each
// day as a heterogeneous array; the indexes that matter are exposed through
// the typed accessors below.
type TimesheetRow []json.RawMessage

// Cartellino row indexes (the portal's column order).
const (
	RowEmployeeID      = 0  // _iiddip
	RowDate            = 1  // _dtdata, YYYYMMDD000000
	RowDayDescription  = 5  // _60descrorario ("SABATO", "FESTIVO", entry window text)
	RowFullName        = 6  // _121nominativo
	RowRequiredMinutes = 15 // _foremedie
	RowWorkedMinutes   = 16 // _fsvolto
	RowPunches         = 23 // _jslistatimbvariate, embedded table [["E",482],...]
	RowProcessedItems  = 28 // _jslistavbdescrestesa, embedded table of pay items
)

// Text decodes the element at index i as a string. Numeric elements are
// rendered in their JSON form.
func (r TimesheetRow) Text(i int) (string, error) {
	if i < 0 || i >= len(r) {
		return "", fmt.Errorf("row index %d out of bounds (len %d)", i, len(r))
	}
	var s string
	if err := json.Unmarshal(r[i], &s); err == nil {
		return s, nil
	}
	return string(r[i]), nil
}

// Number decodes the element at index i as a number.
func (r TimesheetRow) Number(i int) (float64, error) {
	if i < 0 || i >= len(r) {
		return 0, fmt.Errorf("row index %d out of bounds (len %d)", i, len(r))
	}
	var n float64
	if err := json.Unmarshal(r[i], &n); err != nil {
		return 0, fmt.Errorf("row index %d is not numeric: %w", i, err)
	}
	return n, nil
}

// Embedded decodes the element at index i, a JSON-encoded string holding a
// nested table, into dest.
func (r TimesheetRow) Embedded(i int, dest any) error {
	s, err := r.Text(i)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return fmt.Errorf("row index %d embedded table: %w", i, err)
	}
	return nil
}

// EmbeddedTable is the common {meta, data} shape of nested cartellino tables.
type EmbeddedTable struct {
	Data [][]json.RawMessage `json:"data"`
}

// RawJustification is the portal's per-day justification object attached to
// directory entries. Nil means no justification at all.
type RawJustification struct {
	RemoteWork   bool `json:"telelavoro"`
	BusinessTrip bool `json:"misstrasf"`
	Other        bool `json:"altro"`
}

// DirectoryEntry is one rubrica row.
type DirectoryEntry struct {
	ID            int64             `json:"id"`
	FullName      string            `json:"nominativo"`
	FirstName     string            `json:"nome"`
	LastName      string            `json:"cognome"`
	Phone         string            `json:"telefono"`
	PresenceState string            `json:"macrostato"` // "P" present, "A" absent
	StateDetail   string            `json:"descrstato"`
	Today         *RawJustification `json:"oggi"`
	Tomorrow      *RawJustification `json:"domani"`
}

// EmployeeListEntry is one row of the full employee list.
type EmployeeListEntry struct {
	ID       int64  `json:"id"`
	LastName string `json:"cognome"`
	Name     string `json:"nome"`
}

// FavoritesResponse mirrors ReadDipendentiRubricaPreferiti.
type FavoritesResponse struct {
	Employees []EmployeeListEntry `json:"dipendenti"`
	Favorites []EmployeeListEntry `json:"dipendentipreferiti"`
}

// Schedule mirrors one ReadOrariPreferiti row.
type Schedule struct {
	Code        string  `json:"cvdescr"`
	Description string  `json:"descr"`
	MinHours    float64 `json:"oreminime"`
	AvgHours    float64 `json:"oremedie"`
}

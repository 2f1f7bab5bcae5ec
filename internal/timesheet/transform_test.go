package timesheet

import (
	"encoding/json"
	"testing"

	"github.com/diego-devita/stopweb/internal/portal"
)

var testPolicy = Policy{RequiredMinutes: 432, LunchBreakMinutes: 30}

// buildRow assembles a positional cartellino row with the given punches and
// processed pay items.
func buildRow(t *testing.T, date, descr string, worked int, punches [][]any, items [][]any) portal.TimesheetRow {
	t.Helper()

	embed := func(data [][]any) string {
		table := map[string]any{"meta": []any{}, "data": data}
		raw, err := json.Marshal(table)
		if err != nil {
			t.Fatalf("marshal embedded table: %v", err)
		}
		return string(raw)
	}

	cells := make([]any, 31)
	cells[portal.RowEmployeeID] = 42
	cells[portal.RowDate] = date + "000000"
	cells[portal.RowDayDescription] = descr
	cells[portal.RowFullName] = "ROSSI MARIO"
	cells[portal.RowRequiredMinutes] = 432
	cells[portal.RowWorkedMinutes] = worked
	cells[portal.RowPunches] = embed(punches)
	cells[portal.RowProcessedItems] = embed(items)

	raw, err := json.Marshal(cells)
	if err != nil {
		t.Fatalf("marshal row: %v", err)
	}
	var row portal.TimesheetRow
	if err := json.Unmarshal(raw, &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	return row
}

func TestTransformOrdinaryDay(t *testing.T) {
	// 08:02 in, 12:36 out, 13:07 in, 17:29 out.
	punches := [][]any{{"E", 482}, {"U", 756}, {"E", 787}, {"U", 1049}}
	items := [][]any{{"BUONO PASTO", 1, "GG"}}
	row := buildRow(t, "20240115", "07.12 ingresso 08.00 entro le 09.30 COM", 512, punches, items)

	resp := &portal.TimesheetResponse{}
	resp.Result.Summary.Data = []portal.TimesheetRow{row}

	cache, err := Transform(resp, testPolicy)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	rec, ok := cache["20240115"]
	if !ok {
		t.Fatalf("missing record; cache keys = %v", cache.Keys())
	}

	if rec.DayType != DayOrdinary {
		t.Fatalf("DayType = %q, want ordinary", rec.DayType)
	}
	if rec.WorkedMinutes != 512 {
		t.Fatalf("WorkedMinutes = %d, want 512", rec.WorkedMinutes)
	}
	if !rec.MealVoucher || rec.RemoteWork || rec.Vacation || rec.BusinessTrip {
		t.Fatalf("flags = %+v", rec)
	}

	iv := rec.Intervals
	if iv.Anomaly {
		t.Fatal("well-formed day flagged anomalous")
	}
	if iv.PresenceMinutes != (756-482)+(1049-787) {
		t.Fatalf("PresenceMinutes = %d", iv.PresenceMinutes)
	}
	if iv.AbsenceMinutes != 787-756 {
		t.Fatalf("AbsenceMinutes = %d", iv.AbsenceMinutes)
	}
	if iv.ValidPunches != 4 {
		t.Fatalf("ValidPunches = %d, want 4", iv.ValidPunches)
	}

	// The 12:36 exit falls inside the lunch window; 31 minutes covers the
	// mandatory 30.
	if !rec.Lunch.Taken || !rec.Lunch.Valid || rec.Lunch.Deficit != -1 {
		t.Fatalf("Lunch = %+v", rec.Lunch)
	}

	// Expected checkout: first in + absence + required presence.
	if !rec.HasExpectation {
		t.Fatal("expectation missing")
	}
	if want := 482 + 31 + 432; rec.ExpectedCheckout != want {
		t.Fatalf("ExpectedCheckout = %d, want %d", rec.ExpectedCheckout, want)
	}
	if want := 432 - 536; rec.Deficit != want {
		t.Fatalf("Deficit = %d, want %d", rec.Deficit, want)
	}
}

func TestTransformFlagsAndPermissions(t *testing.T) {
	punches := [][]any{{"E", 480}, {"U", 960}}
	items := [][]any{
		{"SMART WORKING", 1, "GG"},
		{"TRASFERTA ITALIA", 1, "GG"},
		{"ROL", 60, "HH"},
		{"BANCA ORE GODUTA", 30, "HH"},
	}
	row := buildRow(t, "20240116", "07.12 ingresso 08.00 entro le 09.30 COM", 480, punches, items)

	rec, err := transformRow(row, testPolicy)
	if err != nil {
		t.Fatalf("transformRow: %v", err)
	}
	if !rec.RemoteWork || !rec.BusinessTrip {
		t.Fatalf("flags = remote:%v trip:%v", rec.RemoteWork, rec.BusinessTrip)
	}
	if rec.PermissionMinutes != 90 {
		t.Fatalf("PermissionMinutes = %d, want 90", rec.PermissionMinutes)
	}

	// No lunch exit: the mandatory break is added to the requirement, and
	// permissions shrink checkout and deficit.
	want := 480 + 0 + (432 + 30) - 90
	if rec.ExpectedCheckout != want {
		t.Fatalf("ExpectedCheckout = %d, want %d", rec.ExpectedCheckout, want)
	}
	if wantDeficit := (432 + 30) - 480 - 90; rec.Deficit != wantDeficit {
		t.Fatalf("Deficit = %d, want %d", rec.Deficit, wantDeficit)
	}
}

func TestTransformWeekendAndHoliday(t *testing.T) {
	cases := []struct {
		descr string
		want  DayType
	}{
		{"SABATO", DaySaturday},
		{"DOMENICA", DaySunday},
		{"FESTIVO", DayHoliday},
	}
	for _, tc := range cases {
		row := buildRow(t, "20240106", tc.descr, 0, nil, nil)
		rec, err := transformRow(row, testPolicy)
		if err != nil {
			t.Fatalf("transformRow(%s): %v", tc.descr, err)
		}
		if rec.DayType != tc.want {
			t.Fatalf("DayType(%s) = %q, want %q", tc.descr, rec.DayType, tc.want)
		}
		if rec.HasExpectation {
			t.Fatalf("%s with no punches should have no expectation", tc.descr)
		}
	}
}

func TestComputeIntervalsAnomalies(t *testing.T) {
	cases := []struct {
		name    string
		punches []Punch
	}{
		{"leading out", []Punch{{Direction: "U", Minutes: 500}}},
		{"repeated direction", []Punch{{Direction: "E", Minutes: 480}, {Direction: "E", Minutes: 500}}},
		{"trailing open entry", []Punch{{Direction: "E", Minutes: 480}}},
		{"open after pair", []Punch{{Direction: "E", Minutes: 480}, {Direction: "U", Minutes: 700}, {Direction: "E", Minutes: 720}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iv := computeIntervals(tc.punches)
			if !iv.Anomaly {
				t.Fatalf("punches %v not flagged anomalous", tc.punches)
			}
		})
	}

	if iv := computeIntervals(nil); iv.Anomaly {
		t.Fatal("empty punch list is not anomalous")
	}
}

func TestLunchDetailOutsideWindow(t *testing.T) {
	// A 10:00 coffee break is not lunch.
	absences := []Interval{{From: Punch{Direction: "U", Minutes: 600}, To: Punch{Direction: "E", Minutes: 615}, Minutes: 15}}
	if l := lunchDetail(absences, 30); l.Taken {
		t.Fatalf("Lunch = %+v, want not taken", l)
	}
}

func TestBlankRecord(t *testing.T) {
	rec, err := BlankRecord("20240102")
	if err != nil {
		t.Fatalf("BlankRecord: %v", err)
	}
	if rec.Origin != OriginBlank || rec.DayType != DayBlank {
		t.Fatalf("blank record = %+v", rec)
	}
	if len(rec.Punches) != 0 || rec.HasExpectation {
		t.Fatalf("blank record carries data: %+v", rec)
	}
	if _, err := BlankRecord("2024-01-02"); err == nil {
		t.Fatal("malformed key must fail")
	}
}

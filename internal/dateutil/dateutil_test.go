package dateutil

import (
	"errors"
	"reflect"
	"testing"
)

func TestEnumerateDays(t *testing.T) {
	got, err := EnumerateDays("20240101", "20240103")
	if err != nil {
		t.Fatalf("EnumerateDays returned error: %v", err)
	}
	want := []string{"20240101", "20240102", "20240103"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EnumerateDays = %v, want %v", got, want)
	}
}

func TestEnumerateDaysSingleDay(t *testing.T) {
	got, err := EnumerateDays("20240229", "20240229")
	if err != nil {
		t.Fatalf("EnumerateDays returned error: %v", err)
	}
	if len(got) != 1 || got[0] != "20240229" {
		t.Fatalf("EnumerateDays = %v, want single leap day", got)
	}
}

func TestEnumerateDaysCrossesMonth(t *testing.T) {
	got, err := EnumerateDays("20240130", "20240202")
	if err != nil {
		t.Fatalf("EnumerateDays returned error: %v", err)
	}
	want := []string{"20240130", "20240131", "20240201", "20240202"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EnumerateDays = %v, want %v", got, want)
	}
}

func TestEnumerateDaysInvalid(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"inverted", "20240103", "20240101"},
		{"short key", "2024010", "20240103"},
		{"not a date", "20241341", "20241342"},
		{"garbage", "abcdefgh", "20240101"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := EnumerateDays(tc.start, tc.end); !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("EnumerateDays(%q, %q) err = %v, want ErrInvalidRange", tc.start, tc.end, err)
			}
		})
	}
}

func TestInRange(t *testing.T) {
	if !InRange("20240102", "20240101", "20240103") {
		t.Fatal("middle key should be in range")
	}
	if !InRange("20240101", "20240101", "20240103") || !InRange("20240103", "20240101", "20240103") {
		t.Fatal("bounds are inclusive")
	}
	if InRange("20231231", "20240101", "20240103") {
		t.Fatal("key before range should be out")
	}
	if InRange("20240104", "20240101", "20240103") {
		t.Fatal("key after range should be out")
	}
}

func TestConsecutiveDays(t *testing.T) {
	if !ConsecutiveDays("20240131", "20240201") {
		t.Fatal("month boundary should be consecutive")
	}
	if !ConsecutiveDays("20241231", "20250101") {
		t.Fatal("year boundary should be consecutive")
	}
	if ConsecutiveDays("20240101", "20240103") {
		t.Fatal("two days apart is not consecutive")
	}
	if ConsecutiveDays("20240102", "20240101") {
		t.Fatal("backwards is not consecutive")
	}
}

func TestFormatMinutes(t *testing.T) {
	m := FormatMinutes(432)
	if m.HHMM != "07:12" || m.Hours != 7 || m.Mins != 12 || m.Negative {
		t.Fatalf("FormatMinutes(432) = %+v", m)
	}
	n := FormatMinutes(-15)
	if n.HHMM != "00:15" || !n.Negative || n.Total != -15 {
		t.Fatalf("FormatMinutes(-15) = %+v", n)
	}
	if got := n.SignedHHMM(); got != "-00:15" {
		t.Fatalf("SignedHHMM = %q, want -00:15", got)
	}
	if got := m.SignedHHMM(); got != "+07:12" {
		t.Fatalf("SignedHHMM = %q, want +07:12", got)
	}
}

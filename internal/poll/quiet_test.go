package poll

import (
	"testing"
	"time"
)

func clock(h, m int) time.Time {
	return time.Date(2024, 1, 10, h, m, 0, 0, time.Local)
}

func TestParseWindowDisabled(t *testing.T) {
	w, err := ParseWindow("", "")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	if w.Contains(clock(3, 0)) {
		t.Fatal("disabled window must contain nothing")
	}
}

func TestParseWindowHalfEmptyFails(t *testing.T) {
	if _, err := ParseWindow("22:00", ""); err == nil {
		t.Fatal("single empty bound must fail")
	}
	if _, err := ParseWindow("", "06:00"); err == nil {
		t.Fatal("single empty bound must fail")
	}
}

func TestParseWindowMalformed(t *testing.T) {
	for _, bad := range []string{"25:00", "12:61", "noon"} {
		if _, err := ParseWindow(bad, "06:00"); err == nil {
			t.Fatalf("ParseWindow(%q) must fail", bad)
		}
	}
}

func TestWindowContains(t *testing.T) {
	w, err := ParseWindow("13:00", "14:30")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	cases := []struct {
		h, m int
		want bool
	}{
		{12, 59, false},
		{13, 0, true}, // inclusive start
		{14, 0, true},
		{14, 30, false}, // exclusive end
	}
	for _, tc := range cases {
		if got := w.Contains(clock(tc.h, tc.m)); got != tc.want {
			t.Fatalf("Contains(%02d:%02d) = %v, want %v", tc.h, tc.m, got, tc.want)
		}
	}
}

func TestWindowWrapsMidnight(t *testing.T) {
	w, err := ParseWindow("22:00", "06:00")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	cases := []struct {
		h, m int
		want bool
	}{
		{21, 59, false},
		{22, 0, true},
		{23, 59, true},
		{0, 0, true},
		{5, 59, true},
		{6, 0, false},
		{12, 0, false},
	}
	for _, tc := range cases {
		if got := w.Contains(clock(tc.h, tc.m)); got != tc.want {
			t.Fatalf("Contains(%02d:%02d) = %v, want %v", tc.h, tc.m, got, tc.want)
		}
	}
}

package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/state"
)

type recordingSkipper struct{ skips int }

func (r *recordingSkipper) Skip() { r.skips++ }

func TestUpdateQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		m := NewModel(Options{})
		_, cmd := m.Update(keyMsg(key))
		if cmd == nil {
			t.Fatalf("key %q returned no command", key)
		}
		if msg := cmd(); msg != tea.Quit() {
			t.Fatalf("key %q produced %v, want quit", key, msg)
		}
	}
}

func TestUpdateSkipKey(t *testing.T) {
	skipper := &recordingSkipper{}
	m := NewModel(Options{Loop: skipper})

	if _, cmd := m.Update(keyMsg("s")); cmd != nil {
		t.Fatal("skip must not quit")
	}
	if skipper.skips != 1 {
		t.Fatalf("skips = %d, want 1", skipper.skips)
	}
}

func TestTickRefreshesSnapshot(t *testing.T) {
	store := &state.Store{}
	store.RecordCycle([]events.LogEntry{{
		ID:        "ev-1",
		Type:      events.PresenceStateChanged,
		Timestamp: time.Now(),
		Payload:   events.Payload{DisplayName: "BIANCHI ANNA", Previous: "P", Current: "A"},
	}}, nil)

	m := NewModel(Options{Store: store})
	updated, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick must schedule the next tick")
	}

	view := updated.View()
	if !strings.Contains(view, "BIANCHI ANNA") {
		t.Fatalf("view does not show the event:\n%s", view)
	}
	if !strings.Contains(view, string(events.PresenceStateChanged)) {
		t.Fatalf("view does not show the event type:\n%s", view)
	}
}

func TestViewShowsCountdownAndPause(t *testing.T) {
	store := &state.Store{}
	store.SetSchedule(time.Now().Add(90*time.Second), true)

	m := NewModel(Options{Store: store})
	updated, _ := m.Update(tickMsg(time.Now()))

	view := updated.View()
	if !strings.Contains(view, "prossimo aggiornamento tra") {
		t.Fatalf("view has no countdown:\n%s", view)
	}
	if !strings.Contains(view, "in pausa") {
		t.Fatalf("view has no pause indicator:\n%s", view)
	}
}

func TestDescribeEvent(t *testing.T) {
	cases := []struct {
		entry events.LogEntry
		want  string
	}{
		{
			events.LogEntry{Type: events.PresenceStateChanged, Payload: events.Payload{DisplayName: "ROSSI MARIO", Previous: "P", Current: "A"}},
			"ROSSI MARIO: stato P -> A",
		},
		{
			events.LogEntry{Type: events.TimesheetNewDay, Payload: events.Payload{DayKey: "20240110"}},
			"prima timbratura del 20240110",
		},
	}
	for _, tc := range cases {
		if got := DescribeEvent(tc.entry); got != tc.want {
			t.Fatalf("DescribeEvent = %q, want %q", got, tc.want)
		}
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

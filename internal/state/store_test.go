package state

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diego-devita/stopweb/internal/events"
)

func TestRecordCycleSuccess(t *testing.T) {
	var store Store

	emitted := []events.LogEntry{{ID: "a", Type: events.EntityFirstSeen}}
	store.RecordCycle(emitted, nil)

	snap := store.Snapshot()
	if snap.Cycles != 1 {
		t.Fatalf("Cycles = %d, want 1", snap.Cycles)
	}
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.RecentEvents) != 1 || snap.RecentEvents[0].ID != "a" {
		t.Fatalf("RecentEvents = %v", snap.RecentEvents)
	}
	if snap.LastCycle.IsZero() {
		t.Fatal("LastCycle not stamped")
	}
}

func TestRecordCycleFailureKeepsFeed(t *testing.T) {
	var store Store

	store.RecordCycle([]events.LogEntry{{ID: "a"}}, nil)
	pollErr := errors.New("portal unreachable")
	store.RecordCycle(nil, pollErr)
	store.RecordCycle(nil, pollErr)

	snap := store.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsDegraded() {
		t.Fatalf("failures = %d, degraded = %v", snap.ConsecutiveFailures, snap.IsDegraded())
	}
	if snap.LastError == nil {
		t.Fatal("LastError not recorded")
	}
	if len(snap.RecentEvents) != 1 {
		t.Fatalf("RecentEvents = %v, want the pre-failure feed", snap.RecentEvents)
	}

	store.RecordCycle(nil, nil)
	if snap := store.Snapshot(); snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("success did not clear the failure streak: %+v", snap)
	}
}

func TestRecentEventsBounded(t *testing.T) {
	var store Store

	for i := 0; i < recentEventsLimit+10; i++ {
		store.RecordCycle([]events.LogEntry{{ID: fmt.Sprintf("ev-%d", i)}}, nil)
	}
	snap := store.Snapshot()
	if len(snap.RecentEvents) != recentEventsLimit {
		t.Fatalf("feed holds %d events, want %d", len(snap.RecentEvents), recentEventsLimit)
	}
	if snap.RecentEvents[0].ID != "ev-10" {
		t.Fatalf("oldest kept event = %s, want ev-10", snap.RecentEvents[0].ID)
	}
}

func TestSetSchedule(t *testing.T) {
	var store Store

	next := time.Now().Add(90 * time.Second)
	store.SetSchedule(next, true)

	snap := store.Snapshot()
	if !snap.NextCycle.Equal(next) || !snap.Paused {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	var store Store
	store.RecordCycle([]events.LogEntry{{ID: "a"}}, nil)

	snap := store.Snapshot()
	snap.RecentEvents[0].ID = "mutated"

	if store.Snapshot().RecentEvents[0].ID != "a" {
		t.Fatal("snapshot shares the event slice with the store")
	}
}

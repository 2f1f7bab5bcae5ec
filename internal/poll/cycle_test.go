package poll

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/diego-devita/stopweb/internal/dateutil"
	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/portal"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

type cycleFixture struct {
	cycle     *Cycle
	events    *events.Store
	statePath string
	calls     *[]string
}

// newCycleFixture wires a cycle over real stores in a temp dir, a fake
// directory source and a fake timesheet fetcher, recording call order.
func newCycleFixture(t *testing.T, entries []portal.DirectoryEntry, dirErr, fetchErr error) cycleFixture {
	t.Helper()
	dir := t.TempDir()
	today := dateutil.Today()

	var calls []string

	source := DirectorySourceFunc(func(_ context.Context, employeeID string) ([]portal.DirectoryEntry, error) {
		calls = append(calls, "directory "+employeeID)
		if dirErr != nil {
			return nil, dirErr
		}
		return entries, nil
	})

	tsStore := timesheet.NewStore(filepath.Join(dir, "giornate.json"))
	fetch := timesheet.FetcherFunc(func(_ context.Context, start, end string) (timesheet.Cache, error) {
		calls = append(calls, "timesheet "+start)
		if fetchErr != nil {
			return nil, fetchErr
		}
		rec, err := timesheet.BlankRecord(start)
		if err != nil {
			return nil, err
		}
		rec.Origin = timesheet.OriginFetched
		rec.DayType = timesheet.DayOrdinary
		rec.Punches = []timesheet.Punch{{Direction: "E", Minutes: 482}}
		return timesheet.Cache{start: rec}, nil
	})
	engine := timesheet.NewEngine(tsStore, fetch)

	statePath := filepath.Join(dir, "stato.json")
	evStore := events.NewStore(statePath, filepath.Join(dir, "coda.jsonl"), filepath.Join(dir, "storia"))
	evStore.Load()

	cycle := NewCycle(source, engine, tsStore, evStore, events.NewReconciler(evStore))
	cycle.today = func() string { return today }

	return cycleFixture{cycle: cycle, events: evStore, statePath: statePath, calls: &calls}
}

func favoriteEntry() portal.DirectoryEntry {
	return portal.DirectoryEntry{
		ID:            77,
		FullName:      "BIANCHI ANNA",
		PresenceState: "P",
		Today:         &portal.RawJustification{RemoteWork: true},
	}
}

func TestCycleRunOrderAndSave(t *testing.T) {
	fx := newCycleFixture(t, []portal.DirectoryEntry{favoriteEntry()}, nil, nil)

	emitted, err := fx.cycle.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The empty cache makes today a gap, and the always-refresh still runs
	// afterwards, so today is fetched twice on the very first cycle.
	today := dateutil.Today()
	wantCalls := []string{"directory " + portal.DirectoryFavorites, "timesheet " + today, "timesheet " + today}
	if len(*fx.calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", *fx.calls, wantCalls)
	}
	for i, want := range wantCalls {
		if (*fx.calls)[i] != want {
			t.Fatalf("call %d = %q, want %q", i, (*fx.calls)[i], want)
		}
	}

	if len(emitted) != 2 {
		t.Fatalf("emitted %d events, want 2: %v", len(emitted), emitted)
	}
	if emitted[0].Type != events.EntityFirstSeen || emitted[1].Type != events.TimesheetNewDay {
		t.Fatalf("event types = %v / %v", emitted[0].Type, emitted[1].Type)
	}

	// The snapshot must have been persisted exactly once, at the end.
	if _, err := os.Stat(fx.statePath); err != nil {
		t.Fatalf("event state not saved: %v", err)
	}
	if fx.events.Dirty() {
		t.Fatal("store still dirty after a successful cycle")
	}

	queued, err := fx.events.ReadEvents()
	if err != nil {
		t.Fatal(err)
	}
	if len(queued) != 2 {
		t.Fatalf("queue holds %d events, want 2", len(queued))
	}
}

func TestCycleSecondRunIsQuiet(t *testing.T) {
	fx := newCycleFixture(t, []portal.DirectoryEntry{favoriteEntry()}, nil, nil)

	if _, err := fx.cycle.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	emitted, err := fx.cycle.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("unchanged second cycle emitted %v", emitted)
	}
}

func TestCycleDirectoryFailureSkipsTimesheet(t *testing.T) {
	dirErr := errors.New("portal down")
	fx := newCycleFixture(t, nil, dirErr, nil)

	if _, err := fx.cycle.Run(context.Background()); !errors.Is(err, dirErr) {
		t.Fatalf("err = %v, want the directory error", err)
	}
	if len(*fx.calls) != 1 {
		t.Fatalf("calls = %v, want the directory call only", *fx.calls)
	}
	if _, err := os.Stat(fx.statePath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("event state saved despite failure (stat err = %v)", err)
	}
}

func TestCycleTimesheetFailureDiscardsSnapshot(t *testing.T) {
	fetchErr := errors.New("session expired")
	fx := newCycleFixture(t, []portal.DirectoryEntry{favoriteEntry()}, nil, fetchErr)

	if _, err := fx.cycle.Run(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("err = %v, want the fetch error", err)
	}

	// The directory reconcile had already mutated the in-memory snapshot;
	// the failed cycle must not leave it behind.
	if _, ok := fx.events.Entity(77); ok {
		t.Fatal("half-applied snapshot survived the failed cycle")
	}
	if _, err := os.Stat(fx.statePath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("event state saved despite failure (stat err = %v)", err)
	}
}

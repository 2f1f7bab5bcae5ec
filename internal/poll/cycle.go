// Package poll implements the eventi listen loop: a repeating cycle that
// reconciles the favorites directory, refreshes today's timesheet record, and
// persists the event state once per pass.
package poll

import (
	"context"
	"fmt"

	"github.com/diego-devita/stopweb/internal/dateutil"
	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/portal"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

// DirectorySource is the portal surface the cycle needs. Implemented by
// *portal.Client.
type DirectorySource interface {
	FetchDirectory(ctx context.Context, employeeID string) ([]portal.DirectoryEntry, error)
}

// DirectorySourceFunc adapts a function to the DirectorySource interface.
type DirectorySourceFunc func(ctx context.Context, employeeID string) ([]portal.DirectoryEntry, error)

// FetchDirectory implements DirectorySource.
func (f DirectorySourceFunc) FetchDirectory(ctx context.Context, employeeID string) ([]portal.DirectoryEntry, error) {
	return f(ctx, employeeID)
}

// Cycle is one poll pass over the portal. Order is fixed: directory
// reconciliation first, then today's timesheet, then a single event-state
// save.
type Cycle struct {
	Directory  DirectorySource
	Engine     *timesheet.Engine
	Timesheet  *timesheet.Store
	Events     *events.Store
	Reconciler *events.Reconciler

	// today is injectable for tests; defaults to the wall clock.
	today func() string
}

// NewCycle wires a cycle over already constructed collaborators.
func NewCycle(dir DirectorySource, engine *timesheet.Engine, ts *timesheet.Store, ev *events.Store, rec *events.Reconciler) *Cycle {
	return &Cycle{
		Directory:  dir,
		Engine:     engine,
		Timesheet:  ts,
		Events:     ev,
		Reconciler: rec,
		today:      dateutil.Today,
	}
}

// Run executes one pass and returns the emitted events. On any failure the
// in-memory snapshot is reloaded from disk so a half-applied cycle never
// leaks into the next save.
func (c *Cycle) Run(ctx context.Context) ([]events.LogEntry, error) {
	entries, err := c.Directory.FetchDirectory(ctx, portal.DirectoryFavorites)
	if err != nil {
		c.Events.Load()
		return nil, fmt.Errorf("directory fetch: %w", err)
	}

	var emitted []events.LogEntry
	for _, entry := range entries {
		evs, err := c.Reconciler.ReconcileEntity(events.Update{
			EntityID:      entry.ID,
			DisplayName:   entry.FullName,
			PresenceState: entry.PresenceState,
			Today:         entry.Today,
			Tomorrow:      entry.Tomorrow,
		})
		if err != nil {
			c.Events.Load()
			return nil, fmt.Errorf("reconcile %s: %w", entry.FullName, err)
		}
		emitted = append(emitted, evs...)
	}

	today := c.today()
	previous := c.Timesheet.Load()[today].Punches

	fetched, err := c.Engine.FetchRange(ctx, timesheet.Options{
		Start:            today,
		End:              today,
		FetchTodayAlways: true,
	})
	if err != nil {
		c.Events.Load()
		return nil, fmt.Errorf("today refresh: %w", err)
	}

	evs, err := c.Reconciler.ReconcileToday(today, previous, fetched[today].Punches)
	if err != nil {
		c.Events.Load()
		return nil, fmt.Errorf("today events: %w", err)
	}
	emitted = append(emitted, evs...)

	if err := c.Events.Save(); err != nil {
		return nil, fmt.Errorf("save event state: %w", err)
	}
	return emitted, nil
}

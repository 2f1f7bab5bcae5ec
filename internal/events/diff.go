package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/diego-devita/stopweb/internal/dateutil"
	"github.com/diego-devita/stopweb/internal/portal"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

// Update is a freshly fetched directory entry for one monitored person.
type Update struct {
	EntityID      int64
	DisplayName   string
	PresenceState string
	Today         *portal.RawJustification
	Tomorrow      *portal.RawJustification
}

// Reconciler diffs fetched snapshots against the store and appends the
// resulting events to the queue. It performs no network I/O and never fails
// on malformed input; a missing justification is the NULL sentinel.
//
// Reconcile calls mutate the in-memory snapshot only; the caller runs one
// store.Save per poll cycle.
type Reconciler struct {
	store *Store

	// injectable for tests
	now   func() time.Time
	newID func() string
}

// NewReconciler builds a reconciler over a loaded store.
func NewReconciler(store *Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now, newID: uuid.NewString}
}

// ReconcileEntity applies the day-boundary rules to one fetched entry and
// returns the emitted events, already appended to the queue.
//
// The rule is picked by the stored snapshot's age: never seen, updated
// yesterday, updated today, or stale. A stale snapshot is reset outright
// with no diffing against its values.
func (r *Reconciler) ReconcileEntity(u Update) ([]LogEntry, error) {
	now := r.now()
	today := SerializeJustification(u.Today)
	tomorrow := SerializeJustification(u.Tomorrow)

	stored, seen := r.store.Entity(u.EntityID)
	if !seen {
		return r.overwrite(EntityFirstSeen, u, today, tomorrow, now)
	}

	storedDay := dateutil.FormatDayKey(stored.LastUpdated)
	nowDay := dateutil.FormatDayKey(now)
	yesterday := dateutil.FormatDayKey(now.AddDate(0, 0, -1))

	switch storedDay {
	case nowDay:
		return r.sameDay(stored, u, today, tomorrow, now)
	case yesterday:
		return r.dayRollover(stored, u, today, tomorrow, now)
	default:
		return r.overwrite(EntityReset, u, today, tomorrow, now)
	}
}

// overwrite handles the first-seen and stale-reset rules: emit one event with
// the full current values and replace the snapshot.
func (r *Reconciler) overwrite(t Type, u Update, today, tomorrow string, now time.Time) ([]LogEntry, error) {
	e := LogEntry{
		ID:        r.newID(),
		Type:      t,
		Timestamp: now,
		Payload: Payload{
			EntityID:      u.EntityID,
			DisplayName:   u.DisplayName,
			PresenceState: u.PresenceState,
			Today:         today,
			Tomorrow:      tomorrow,
		},
	}
	if err := r.store.AppendEvent(e); err != nil {
		return nil, err
	}
	r.store.SetEntity(EntitySnapshot{
		EntityID:      u.EntityID,
		DisplayName:   u.DisplayName,
		PresenceState: u.PresenceState,
		Today:         today,
		Tomorrow:      tomorrow,
		LastUpdated:   now,
	})
	return []LogEntry{e}, nil
}

// dayRollover compares yesterday's forecast for today against what the portal
// reports today, then unconditionally refreshes the justification fields and
// the timestamp.
func (r *Reconciler) dayRollover(stored EntitySnapshot, u Update, today, tomorrow string, now time.Time) ([]LogEntry, error) {
	var emitted []LogEntry
	if stored.Tomorrow != today {
		e := LogEntry{
			ID:        r.newID(),
			Type:      JustificationChangedFromYesterdaysForecast,
			Timestamp: now,
			Payload: Payload{
				EntityID:    u.EntityID,
				DisplayName: u.DisplayName,
				Previous:    stored.Tomorrow,
				Current:     today,
			},
		}
		if err := r.store.AppendEvent(e); err != nil {
			return nil, err
		}
		emitted = append(emitted, e)
	}

	stored.Today = today
	stored.Tomorrow = tomorrow
	stored.LastUpdated = now
	r.store.SetEntity(stored)
	return emitted, nil
}

// sameDay runs the three independent intra-day checks: today justification,
// tomorrow justification, presence state.
func (r *Reconciler) sameDay(stored EntitySnapshot, u Update, today, tomorrow string, now time.Time) ([]LogEntry, error) {
	var emitted []LogEntry
	changed := false

	if stored.Today != today {
		e := LogEntry{
			ID:        r.newID(),
			Type:      JustificationChangedTodayVsToday,
			Timestamp: now,
			Payload: Payload{
				EntityID:    u.EntityID,
				DisplayName: u.DisplayName,
				Previous:    stored.Today,
				Current:     today,
			},
		}
		if err := r.store.AppendEvent(e); err != nil {
			return emitted, err
		}
		emitted = append(emitted, e)
		stored.Today = today
		changed = true
	}

	if stored.Tomorrow != tomorrow {
		e := LogEntry{
			ID:        r.newID(),
			Type:      JustificationChangedTomorrowVsToday,
			Timestamp: now,
			Payload: Payload{
				EntityID:    u.EntityID,
				DisplayName: u.DisplayName,
				Previous:    stored.Tomorrow,
				Current:     tomorrow,
			},
		}
		if err := r.store.AppendEvent(e); err != nil {
			return emitted, err
		}
		emitted = append(emitted, e)
		stored.Tomorrow = tomorrow
		changed = true
	}

	if stored.PresenceState != u.PresenceState {
		e := LogEntry{
			ID:        r.newID(),
			Type:      PresenceStateChanged,
			Timestamp: now,
			Payload: Payload{
				EntityID:    u.EntityID,
				DisplayName: u.DisplayName,
				Previous:    stored.PresenceState,
				Current:     u.PresenceState,
			},
		}
		if err := r.store.AppendEvent(e); err != nil {
			return emitted, err
		}
		emitted = append(emitted, e)
		stored.PresenceState = u.PresenceState
		changed = true
	}

	if changed {
		stored.DisplayName = u.DisplayName
		stored.LastUpdated = now
		r.store.SetEntity(stored)
	}
	return emitted, nil
}

// ReconcileToday derives the timesheet events for today's record: the first
// punches of a day, or a changed punch list. Previous is the cached record's
// punch list, nil when the day was never cached.
func (r *Reconciler) ReconcileToday(key string, previous, current []timesheet.Punch) ([]LogEntry, error) {
	prev := SerializePunches(previous)
	curr := SerializePunches(current)
	if curr == "" || prev == curr {
		return nil, nil
	}

	t := TimesheetPunchesChanged
	if prev == "" {
		t = TimesheetNewDay
	}
	e := LogEntry{
		ID:        r.newID(),
		Type:      t,
		Timestamp: r.now(),
		Payload: Payload{
			DayKey:   key,
			Previous: prev,
			Current:  curr,
		},
	}
	if err := r.store.AppendEvent(e); err != nil {
		return nil, err
	}
	return []LogEntry{e}, nil
}

package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/diego-devita/stopweb/internal/events"
)

// recentEventsLimit bounds the event feed kept for the TUI and the API.
const recentEventsLimit = 50

// Snapshot represents the latest poll data available to the UI and the API.
type Snapshot struct {
	LastCycle           time.Time
	NextCycle           time.Time
	Paused              bool // inside the quiet-hours window
	Cycles              int
	LastError           error
	ConsecutiveFailures int
	RecentEvents        []events.LogEntry
}

// IsDegraded returns true when the portal has been unreachable for multiple
// cycles.
func (s Snapshot) IsDegraded() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot between the polling
// loop and its readers.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// RecordCycle registers the outcome of one poll cycle. On failure the
// previous event feed is kept and the error recorded for visibility.
func (s *Store) RecordCycle(emitted []events.LogEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Cycles++
	s.snapshot.LastCycle = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.snapshot.RecentEvents = append(s.snapshot.RecentEvents, emitted...)
	if n := len(s.snapshot.RecentEvents); n > recentEventsLimit {
		s.snapshot.RecentEvents = s.snapshot.RecentEvents[n-recentEventsLimit:]
	}
}

// SetSchedule publishes when the next cycle will run and whether polling is
// paused by the quiet-hours window.
func (s *Store) SetSchedule(next time.Time, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.NextCycle = next
	s.snapshot.Paused = paused
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.RecentEvents = cloneEvents(s.snapshot.RecentEvents)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneEvents(items []events.LogEntry) []events.LogEntry {
	if len(items) == 0 {
		return nil
	}
	dup := make([]events.LogEntry, len(items))
	copy(dup, items)
	return dup
}

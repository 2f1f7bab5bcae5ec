package poll

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/diego-devita/stopweb/internal/config"
	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/state"
)

// Loop repeats the poll cycle on a jittered schedule. Between cycles it waits
// on a one-second tick, during which a skip request or the force-update
// sentinel file cuts the countdown short; neither cancels an in-flight fetch.
type Loop struct {
	Cycle *Cycle
	State *state.Store

	// OnEvents, when set, receives the events emitted by each successful
	// cycle (the WebSocket forwarder hooks in here).
	OnEvents func([]events.LogEntry)

	delay     time.Duration
	offsetMin int // jitter bounds, seconds
	offsetMax int
	quiet     Window
	sentinel  string

	skip chan struct{}

	// injectable for tests
	now     func() time.Time
	randInt func(n int) int
}

// NewLoop builds a loop from the profile's polling configuration. sentinel is
// the force-update marker path (eventi/aggiorna.adesso).
func NewLoop(cycle *Cycle, st *state.Store, cfg config.PollingConfig, sentinel string) (*Loop, error) {
	quiet, err := ParseWindow(cfg.QuietHoursFrom, cfg.QuietHoursTo)
	if err != nil {
		return nil, err
	}
	return &Loop{
		Cycle:     cycle,
		State:     st,
		delay:     time.Duration(cfg.DelaySeconds) * time.Second,
		offsetMin: cfg.OffsetMin,
		offsetMax: cfg.OffsetMax,
		quiet:     quiet,
		sentinel:  sentinel,
		skip:      make(chan struct{}, 1),
		now:       time.Now,
		randInt:   rand.Intn,
	}, nil
}

// Skip cuts the current countdown short. Safe to call from another
// goroutine; a skip requested while a cycle is running applies to the next
// wait.
func (l *Loop) Skip() {
	select {
	case l.skip <- struct{}{}:
	default:
	}
}

// Run polls until the context is cancelled. Failed cycles count against the
// state store and the next wait proceeds on the normal schedule.
func (l *Loop) Run(ctx context.Context) error {
	for {
		paused := l.quiet.Contains(l.now())
		if !paused {
			emitted, err := l.Cycle.Run(ctx)
			l.State.RecordCycle(emitted, err)
			if err == nil && len(emitted) > 0 && l.OnEvents != nil {
				l.OnEvents(emitted)
			}
		}

		wait := l.delay + l.jitter()
		l.State.SetSchedule(l.now().Add(wait), paused)
		if err := l.wait(ctx, wait); err != nil {
			return err
		}
	}
}

func (l *Loop) jitter() time.Duration {
	if l.offsetMax <= l.offsetMin {
		return time.Duration(l.offsetMin) * time.Second
	}
	return time.Duration(l.offsetMin+l.randInt(l.offsetMax-l.offsetMin+1)) * time.Second
}

// wait blocks until the countdown elapses, a skip arrives, or the sentinel
// file shows up. The sentinel is checked once per second and consumed.
func (l *Loop) wait(ctx context.Context, d time.Duration) error {
	deadline := l.now().Add(d)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.skip:
			return nil
		case <-ticker.C:
			if l.sentinelTriggered() {
				return nil
			}
			if !l.now().Before(deadline) {
				return nil
			}
		}
	}
}

func (l *Loop) sentinelTriggered() bool {
	if l.sentinel == "" {
		return false
	}
	if _, err := os.Stat(l.sentinel); err != nil {
		return false
	}
	os.Remove(l.sentinel)
	return true
}

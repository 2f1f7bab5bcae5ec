package timesheet

import (
	"context"

	"github.com/diego-devita/stopweb/internal/dateutil"
)

// Fetcher retrieves transformed day records for an inclusive day-key range.
// Implementations wrap the portal client plus Transform; failures (typically
// portal.ErrAuthExpired) propagate untouched.
type Fetcher interface {
	FetchRange(ctx context.Context, start, end string) (Cache, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, start, end string) (Cache, error)

// FetchRange implements Fetcher.
func (f FetcherFunc) FetchRange(ctx context.Context, start, end string) (Cache, error) {
	return f(ctx, start, end)
}

// Engine decides which sub-ranges must be fetched remotely versus served
// from the cache, merges results, and keeps today's volatile record fresh.
type Engine struct {
	store *Store
	fetch Fetcher // nil means cache-only operation

	// today is injectable for tests; defaults to the wall clock.
	today func() string
}

// NewEngine builds an engine over the given store. fetch may be nil for
// cache-only use.
func NewEngine(store *Store, fetch Fetcher) *Engine {
	return &Engine{store: store, fetch: fetch, today: dateutil.Today}
}

// Options configures one FetchRange invocation.
type Options struct {
	Start string
	End   string

	// NoCache bypasses gap detection: the whole range is fetched remotely
	// and overwrites the corresponding cache entries.
	NoCache bool
	// OnlyCache never touches the network even when a Fetcher is present.
	OnlyCache bool
	// FetchTodayAlways re-fetches today's record even when cached; today is
	// volatile until midnight.
	FetchTodayAlways bool
	// FillGaps synthesizes blank placeholders for days missing from the
	// cache in cache-only mode. Blanks are returned but never persisted.
	FillGaps bool
}

// FetchRange returns the day records for [Start, End], fetching only the
// uncovered sub-ranges. Gaps are fetched strictly sequentially in
// chronological order; the today refresh runs after all gap fetches. When a
// fetch fails nothing is merged or persisted for that gap, so it remains a
// gap on the next invocation.
func (e *Engine) FetchRange(ctx context.Context, opts Options) (Cache, error) {
	if _, err := dateutil.EnumerateDays(opts.Start, opts.End); err != nil {
		return nil, err
	}

	if opts.NoCache && e.fetch != nil && !opts.OnlyCache {
		fetched, err := e.fetch.FetchRange(ctx, opts.Start, opts.End)
		if err != nil {
			return nil, err
		}
		cache := e.store.Load()
		cache.Merge(fetched)
		if err := e.store.Save(cache); err != nil {
			return nil, err
		}
		return cache.Subset(opts.Start, opts.End), nil
	}

	cache := e.store.Load()

	switch {
	case e.fetch != nil && !opts.OnlyCache:
		gaps, err := FindUncoveredIntervals(cache.Keys(), opts.Start, opts.End)
		if err != nil {
			return nil, err
		}
		for _, gap := range gaps {
			fetched, err := e.fetch.FetchRange(ctx, gap.From, gap.To)
			if err != nil {
				return nil, err
			}
			cache.Merge(fetched)
		}

		todayRefetched := false
		if opts.FetchTodayAlways {
			today := e.today()
			if dateutil.InRange(today, opts.Start, opts.End) {
				fetched, err := e.fetch.FetchRange(ctx, today, today)
				if err != nil {
					return nil, err
				}
				if rec, ok := fetched[today]; ok {
					cache[today] = rec
				}
				todayRefetched = true
			}
		}

		if len(gaps) > 0 || todayRefetched {
			if err := e.store.Save(cache); err != nil {
				return nil, err
			}
		}

	case opts.FillGaps:
		gaps, err := FindUncoveredIntervals(cache.Keys(), opts.Start, opts.End)
		if err != nil {
			return nil, err
		}
		for _, gap := range gaps {
			days, err := dateutil.EnumerateDays(gap.From, gap.To)
			if err != nil {
				return nil, err
			}
			for _, day := range days {
				blank, err := BlankRecord(day)
				if err != nil {
					return nil, err
				}
				cache[day] = blank
			}
		}
	}

	return cache.Subset(opts.Start, opts.End), nil
}

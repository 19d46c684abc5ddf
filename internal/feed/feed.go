// Package feed turns the configured calendar feed into the current list of
// concerts: fetch, parse, drop past events, aggregate, and keep the result
// as an immutable snapshot for the HTTP layer.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"livecal/internal/clock"
	"livecal/internal/concert"
	"livecal/internal/extract"
	"livecal/internal/ics"
	appLog "livecal/internal/log"
	"livecal/internal/metrics"
	"livecal/internal/model"
)

// Fetcher retrieves the raw feed document.
type Fetcher interface {
	Fetch(ctx context.Context, src ics.Source) (ics.FetchResult, error)
}

// Snapshot is the result of one successful refresh. Concerts must not be
// modified by readers.
type Snapshot struct {
	Concerts    []model.Concert
	Skipped     int
	RefreshedAt time.Time
}

type Options struct {
	Source       ics.Source
	UpcomingOnly bool
}

type Service struct {
	fetcher Fetcher
	clock   clock.Clock
	metrics *metrics.Collector
	opts    Options

	refreshMu sync.Mutex // serializes refreshes

	mu       sync.RWMutex
	snapshot *Snapshot
}

func NewService(f Fetcher, clk clock.Clock, m *metrics.Collector, opts Options) *Service {
	return &Service{fetcher: f, clock: clk, metrics: m, opts: opts}
}

// Snapshot returns the latest snapshot, or false before the first
// successful refresh.
func (s *Service) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// Fresh returns the current snapshot if it is younger than maxAge, and
// refreshes first otherwise. Concurrent callers that find the snapshot stale
// share a single refresh.
func (s *Service) Fresh(ctx context.Context, maxAge time.Duration) (Snapshot, error) {
	if snap, ok := s.youngerThan(maxAge); ok {
		return snap, nil
	}
	return s.refreshIfOlder(ctx, maxAge)
}

// Refresh runs the whole pipeline once. On failure the previous snapshot
// stays in place.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Service) refreshIfOlder(ctx context.Context, maxAge time.Duration) (Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	// Another caller may have refreshed while we waited for the lock.
	if snap, ok := s.youngerThan(maxAge); ok {
		return snap, nil
	}
	return s.refreshLocked(ctx)
}

func (s *Service) youngerThan(maxAge time.Duration) (Snapshot, bool) {
	snap, ok := s.Snapshot()
	if !ok || s.clock.Now().Sub(snap.RefreshedAt) >= maxAge {
		return Snapshot{}, false
	}
	return snap, true
}

// refreshLocked must be called with refreshMu held.
func (s *Service) refreshLocked(ctx context.Context) (Snapshot, error) {
	began := time.Now()
	snap, err := s.build(ctx)
	elapsed := time.Since(began).Seconds()
	if err != nil {
		s.metrics.RefreshFailed(elapsed)
		appLog.Error("feed refresh failed", err, "id", s.opts.Source.ID)
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()

	s.metrics.RefreshSucceeded(elapsed, float64(snap.RefreshedAt.Unix()), len(snap.Concerts))
	appLog.Info("feed refresh completed",
		"id", s.opts.Source.ID,
		"concerts", len(snap.Concerts),
		"skipped", snap.Skipped,
		"seconds", elapsed,
	)
	return snap, nil
}

func (s *Service) build(ctx context.Context) (Snapshot, error) {
	res, err := s.fetcher.Fetch(ctx, s.opts.Source)
	if err != nil {
		return Snapshot{}, err
	}
	events, err := ics.ParseICS(res.Source, res.Body)
	if err != nil {
		return Snapshot{}, err
	}

	now := s.clock.Now()
	occs := make([]occurrence, 0, len(events))
	for _, ev := range events {
		occs = append(occs, nextOccurrence(ev, now))
	}

	// Past events are dropped before aggregation, so their defects are
	// never reported.
	var keep func(occurrence) bool
	if s.opts.UpcomingOnly {
		keep = func(o occurrence) bool { return isUpcoming(o, now) }
	}
	batch := concert.Collect(occs, keep)

	for _, f := range batch.Failures {
		s.metrics.EventSkipped(failedField(f.Err))
		appLog.Warn("getting concert from event failed", "uid", occs[f.Index].UID, "err", f.Err)
	}
	s.metrics.EventsFiltered(batch.Filtered)
	for _, c := range batch.Concerts {
		s.metrics.ConcertPublished(c)
	}

	return Snapshot{
		Concerts:    batch.Concerts,
		Skipped:     len(batch.Failures),
		RefreshedAt: now,
	}, nil
}

const (
	icalDate    = "20060102"
	icalUTCTime = "20060102T150405Z"
)

// occurrence is a feed event whose DTSTART has been moved to the next
// occurrence of its RRULE, when it has one.
type occurrence struct {
	ics.Event
	value, tzid string
	ok          bool
}

func (o occurrence) Start() (string, string, bool) { return o.value, o.tzid, o.ok }

// nextOccurrence leaves the start untouched when it cannot be resolved;
// aggregation reports that failure.
func nextOccurrence(ev ics.Event, now time.Time) occurrence {
	value, tzid, ok := ev.Start()
	o := occurrence{Event: ev, value: value, tzid: tzid, ok: ok}

	rule := ev.RRule()
	if !ok || rule == "" {
		return o
	}
	st, err := extract.ParseStartTime(value, tzid)
	if err != nil {
		return o
	}
	start, err := extract.ResolveStart(st)
	if err != nil {
		return o
	}
	zone := ""
	if z, zoned := st.(extract.Zoned); zoned {
		zone = z.TZID
	}

	next, found, err := ics.NextOccurrence(rule, start, zone, now)
	switch {
	case err != nil:
		appLog.Warn("ignoring unparseable RRULE", "uid", ev.UID, "err", err)
	case found:
		if _, allDay := st.(extract.DateOnly); allDay {
			o.value = next.Format(icalDate)
		} else {
			o.value = next.Format(icalUTCTime)
		}
		o.tzid = ""
	}
	return o
}

// isUpcoming keeps timed events that start after now, and all-day events
// dated after today (UTC). Events whose start cannot be resolved are kept
// so aggregation reports them.
func isUpcoming(o occurrence, now time.Time) bool {
	if !o.ok {
		return true
	}
	st, err := extract.ParseStartTime(o.value, o.tzid)
	if err != nil {
		return true
	}
	start, err := extract.ResolveStart(st)
	if err != nil {
		return true
	}
	if _, allDay := st.(extract.DateOnly); allDay {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start.After(today)
	}
	return start.After(now)
}

func failedField(err error) string {
	var ce *concert.Error
	if errors.As(err, &ce) {
		return ce.Field
	}
	return "unknown"
}

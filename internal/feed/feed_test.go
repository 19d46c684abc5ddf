package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecal/internal/clock"
	"livecal/internal/ics"
	"livecal/internal/metrics"
)

type stubFetcher struct {
	body  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, src ics.Source) (ics.FetchResult, error) {
	s.calls++
	if s.err != nil {
		return ics.FetchResult{}, s.err
	}
	return ics.FetchResult{Source: src, Body: []byte(s.body)}, nil
}

// slowFetcher holds every fetch long enough for concurrent callers to pile up.
type slowFetcher struct {
	body  string
	delay time.Duration
	calls atomic.Int32
}

func (s *slowFetcher) Fetch(_ context.Context, src ics.Source) (ics.FetchResult, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return ics.FetchResult{Source: src, Body: []byte(s.body)}, nil
}

func vevent(uid string, lines ...string) string {
	return "BEGIN:VEVENT\r\nUID:" + uid + "\r\nDTSTAMP:20240101T000000Z\r\n" +
		strings.Join(lines, "\r\n") + "\r\nEND:VEVENT\r\n"
}

func calendar(events ...string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//livecal//EN\r\n" +
		strings.Join(events, "") + "END:VCALENDAR\r\n"
}

var testFeed = calendar(
	vevent("future",
		"SUMMARY:(¥3500)(🌐)Future Live",
		"CATEGORIES:YouTube",
		"DESCRIPTION:Watch https://www.youtube.com/watch?v=future",
		"DTSTART;TZID=Asia/Tokyo:20240610T200000",
	),
	vevent("past",
		"SUMMARY:(Free)(🌐)Past Live",
		"CATEGORIES:YouTube",
		"DESCRIPTION:done",
		"DTSTART:20240101T100000Z",
	),
	vevent("broken",
		"SUMMARY:no tokens here",
		"CATEGORIES:YouTube",
		"DESCRIPTION:x",
		"DTSTART:20240610T100000Z",
	),
	vevent("today-all-day",
		"SUMMARY:(Free)(🪑)All Day Today",
		"CATEGORIES:Other",
		"DESCRIPTION:x",
		"DTSTART;VALUE=DATE:20240601",
	),
	vevent("tomorrow-all-day",
		"SUMMARY:(Free)(🪑)All Day Tomorrow",
		"CATEGORIES:Other",
		"DESCRIPTION:x",
		"DTSTART;VALUE=DATE:20240602",
	),
	vevent("weekly",
		"SUMMARY:(Free)(🌐)Weekly Karaoke",
		"CATEGORIES:YouTube",
		"DESCRIPTION:x",
		"DTSTART:20240503T120000Z",
		"RRULE:FREQ=WEEKLY",
	),
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(f Fetcher, upcoming bool) *Service {
	return NewService(f, clock.NewFixed(now), metrics.New(prometheus.NewRegistry()), Options{
		Source:       ics.Source{ID: "test", URL: "https://example.com/feed.ics"},
		UpcomingOnly: upcoming,
	})
}

func titles(s Snapshot) []string {
	out := make([]string, 0, len(s.Concerts))
	for _, c := range s.Concerts {
		out = append(out, c.Title)
	}
	return out
}

func TestRefreshUpcomingOnly(t *testing.T) {
	svc := newTestService(&stubFetcher{body: testFeed}, true)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Skipped)
	assert.Equal(t, now, snap.RefreshedAt)
	assert.Equal(t, []string{"All Day Tomorrow", "Weekly Karaoke", "Future Live"}, titles(snap))

	// 2024-05-03 + 5 weeks is the first occurrence after now.
	assert.True(t, time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC).Equal(snap.Concerts[1].StartTime))
	assert.True(t, time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC).Equal(snap.Concerts[2].StartTime))

	got, ok := svc.Snapshot()
	require.True(t, ok)
	assert.Equal(t, titles(snap), titles(got))
}

func TestRefreshKeepsPastWhenConfigured(t *testing.T) {
	svc := newTestService(&stubFetcher{body: testFeed}, false)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Past Live",
		"All Day Today",
		"All Day Tomorrow",
		"Weekly Karaoke",
		"Future Live",
	}, titles(snap))
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	f := &stubFetcher{body: testFeed}
	svc := newTestService(f, true)

	_, ok := svc.Snapshot()
	assert.False(t, ok)

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	f.err = errors.New("upstream down")
	_, err = svc.Refresh(context.Background())
	require.Error(t, err)

	got, ok := svc.Snapshot()
	require.True(t, ok)
	assert.Equal(t, titles(first), titles(got))
}

func TestFreshUsesSnapshotWithinMaxAge(t *testing.T) {
	f := &stubFetcher{body: testFeed}
	svc := newTestService(f, true)

	_, err := svc.Fresh(context.Background(), time.Minute)
	require.NoError(t, err)
	_, err = svc.Fresh(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)

	// The fixed clock never advances, so a zero max age always refreshes.
	_, err = svc.Fresh(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestFreshConcurrentCallersShareOneFetch(t *testing.T) {
	f := &slowFetcher{body: testFeed, delay: 50 * time.Millisecond}
	svc := newTestService(f, true)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Fresh(context.Background(), time.Hour)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestRefreshDropsPastEventsBeforeAggregating(t *testing.T) {
	body := calendar(
		vevent("past-broken",
			"SUMMARY:no tokens here",
			"CATEGORIES:YouTube",
			"DESCRIPTION:x",
			"DTSTART:20240101T100000Z",
		),
		vevent("past-bad-category",
			"SUMMARY:(Free)(🌐)Old Stream",
			"CATEGORIES:Mixer",
			"DESCRIPTION:x",
			"DTSTART;VALUE=DATE:20240301",
		),
		vevent("future",
			"SUMMARY:(Free)(🌐)Next Stream",
			"CATEGORIES:YouTube",
			"DESCRIPTION:x",
			"DTSTART:20240701T100000Z",
		),
	)

	snap, err := newTestService(&stubFetcher{body: body}, true).Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Skipped)
	assert.Equal(t, []string{"Next Stream"}, titles(snap))

	// Without the filter the same events are aggregated and reported.
	snap, err = newTestService(&stubFetcher{body: body}, false).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Skipped)
	assert.Equal(t, []string{"Next Stream"}, titles(snap))
}

func TestStartSchedulerRejectsBadSpec(t *testing.T) {
	svc := newTestService(&stubFetcher{body: testFeed}, true)
	_, err := StartScheduler(context.Background(), svc, "every now and then")
	assert.Error(t, err)

	s, err := StartScheduler(context.Background(), svc, "@every 1h")
	require.NoError(t, err)
	s.Stop()
}

package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStartTime(t *testing.T) {
	tests := []struct {
		value string
		tzid  string
		want  StartTime
	}{
		{"20240301", "", DateOnly{Year: 2024, Month: time.March, Day: 1}},
		{"20240301", "Asia/Tokyo", DateOnly{Year: 2024, Month: time.March, Day: 1}},
		{"20240301T190000", "", Floating{Wall: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)}},
		{"20240301T190000", "Asia/Tokyo", Zoned{Wall: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC), TZID: "Asia/Tokyo"}},
		{"20240301T100000Z", "", UTC{Instant: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}},
	}

	for _, tt := range tests {
		t.Run(tt.value+"/"+tt.tzid, func(t *testing.T) {
			got, err := ParseStartTime(tt.value, tt.tzid)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "2024-03-01", "20241301", "20240301T250000", "20240301T1900"} {
		_, err := ParseStartTime(bad, "")
		assert.ErrorIs(t, err, ErrStartTimeFormat, bad)
	}
}

func TestResolveStart(t *testing.T) {
	tests := []struct {
		name string
		in   StartTime
		want time.Time
	}{
		{
			name: "date only is midnight utc",
			in:   DateOnly{Year: 2024, Month: time.March, Day: 1},
			want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "floating is read as utc",
			in:   Floating{Wall: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)},
			want: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name: "tokyo converts",
			in:   Zoned{Wall: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC), TZID: "Asia/Tokyo"},
			want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "new york summer time",
			in:   Zoned{Wall: time.Date(2024, 7, 4, 20, 0, 0, 0, time.UTC), TZID: "America/New_York"},
			want: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "new york winter time",
			in:   Zoned{Wall: time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC), TZID: "America/New_York"},
			want: time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "utc passes through",
			in:   UTC{Instant: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
			want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveStart(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestResolveStartRejectsDSTEdges(t *testing.T) {
	// 2024-11-03 01:30 happens twice in New York.
	_, err := ResolveStart(Zoned{Wall: time.Date(2024, 11, 3, 1, 30, 0, 0, time.UTC), TZID: "America/New_York"})
	assert.ErrorIs(t, err, ErrAmbiguousLocalTime)
	assert.NotErrorIs(t, err, ErrNonexistentLocalTime)

	// 2024-03-10 02:30 never happens in New York.
	_, err = ResolveStart(Zoned{Wall: time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC), TZID: "America/New_York"})
	assert.ErrorIs(t, err, ErrNonexistentLocalTime)
	assert.ErrorIs(t, err, ErrAmbiguousLocalTime)

	// One hour later the clocks are unambiguous again.
	got, err := ResolveStart(Zoned{Wall: time.Date(2024, 11, 3, 2, 30, 0, 0, time.UTC), TZID: "America/New_York"})
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 11, 3, 7, 30, 0, 0, time.UTC).Equal(got))
}

func TestResolveStartUnknownZone(t *testing.T) {
	_, err := ResolveStart(Zoned{Wall: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC), TZID: "Tokyo Standard Time"})
	assert.ErrorIs(t, err, ErrUnknownTimezone)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldStartTime, fe.Field)
	assert.Equal(t, "Tokyo Standard Time", fe.Text)
}

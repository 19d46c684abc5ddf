package extract

import (
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // zone resolution must not depend on the host's zoneinfo
)

// StartTime is one of the shapes a DTSTART value can take: DateOnly,
// Floating, Zoned or UTC.
type StartTime interface {
	startTime()
}

// DateOnly is a calendar date with no time of day.
type DateOnly struct {
	Year  int
	Month time.Month
	Day   int
}

// Floating is a wall-clock time with no zone attached.
type Floating struct {
	Wall time.Time // fields only; Location is ignored
}

// Zoned is a wall-clock time in the named IANA zone.
type Zoned struct {
	Wall time.Time // fields only; Location is ignored
	TZID string
}

// UTC is an instant already expressed in UTC.
type UTC struct {
	Instant time.Time
}

func (DateOnly) startTime() {}
func (Floating) startTime() {}
func (Zoned) startTime()    {}
func (UTC) startTime()      {}

// yyyymmdd[Thhmmss[Z]]
var dtPattern = regexp.MustCompile(`^(\d{8})(?:T(\d{6})(Z)?)?$`)

const (
	icalDate     = "20060102"
	icalDateTime = "20060102T150405"
)

// ParseStartTime turns a raw DTSTART value and its optional TZID parameter
// into a StartTime. A TZID on a UTC or date-only value is ignored.
func ParseStartTime(value, tzid string) (StartTime, error) {
	value = strings.TrimSpace(value)
	m := dtPattern.FindStringSubmatch(value)
	if m == nil {
		return nil, fieldError(FieldStartTime, value, ErrStartTimeFormat)
	}

	if m[2] == "" {
		d, err := time.Parse(icalDate, m[1])
		if err != nil {
			return nil, fieldError(FieldStartTime, value, ErrStartTimeFormat)
		}
		return DateOnly{Year: d.Year(), Month: d.Month(), Day: d.Day()}, nil
	}

	wall, err := time.Parse(icalDateTime, m[1]+"T"+m[2])
	if err != nil {
		return nil, fieldError(FieldStartTime, value, ErrStartTimeFormat)
	}
	switch {
	case m[3] == "Z":
		return UTC{Instant: wall}, nil
	case strings.TrimSpace(tzid) != "":
		return Zoned{Wall: wall, TZID: strings.TrimSpace(tzid)}, nil
	default:
		return Floating{Wall: wall}, nil
	}
}

// ResolveStart converts any StartTime into its UTC instant. Date-only values
// are midnight UTC and floating values are read as UTC wall-clock time.
// Zoned values must map to exactly one instant in their zone.
func ResolveStart(st StartTime) (time.Time, error) {
	switch v := st.(type) {
	case DateOnly:
		return time.Date(v.Year, v.Month, v.Day, 0, 0, 0, 0, time.UTC), nil
	case Floating:
		return wallAsUTC(v.Wall), nil
	case UTC:
		return v.Instant.UTC(), nil
	case Zoned:
		return resolveZoned(v)
	default:
		return time.Time{}, fieldError(FieldStartTime, "", ErrStartTimeFormat)
	}
}

func resolveZoned(z Zoned) (time.Time, error) {
	loc, err := time.LoadLocation(z.TZID)
	if err != nil {
		return time.Time{}, fieldError(FieldStartTime, z.TZID, ErrUnknownTimezone)
	}

	wall := wallAsUTC(z.Wall)
	text := wall.Format(icalDateTime) + " " + z.TZID

	// time.Date silently normalizes gaps and picks one side of an overlap,
	// so collect every offset in force around the wall time and keep the
	// candidates that read back as the same wall clock.
	guess := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
	var found []time.Time
	for _, probe := range []time.Time{guess.Add(-24 * time.Hour), guess, guess.Add(24 * time.Hour)} {
		_, offset := probe.Zone()
		cand := wall.Add(-time.Duration(offset) * time.Second)
		if !sameWall(cand.In(loc), wall) || containsInstant(found, cand) {
			continue
		}
		found = append(found, cand)
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return time.Time{}, fieldError(FieldStartTime, text, ErrNonexistentLocalTime)
	default:
		return time.Time{}, fieldError(FieldStartTime, text, ErrAmbiguousLocalTime)
	}
}

func wallAsUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func sameWall(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ah, amin, as := a.Clock()
	bh, bmin, bs := b.Clock()
	return ay == by && am == bm && ad == bd && ah == bh && amin == bmin && as == bs
}

func containsInstant(ts []time.Time, t time.Time) bool {
	for _, x := range ts {
		if x.Equal(t) {
			return true
		}
	}
	return false
}

package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// NextOccurrence returns the first occurrence of a recurring event that
// starts at or after `after`. start is the event's resolved DTSTART; tzid,
// when set, is the zone the rule is expanded in so that daily/weekly rules
// keep their wall-clock time across DST changes.
//
// ok is false when the rule has no occurrence left.
func NextOccurrence(rawRRule string, start time.Time, tzid string, after time.Time) (time.Time, bool, error) {
	r, err := rrule.StrToRRule(strings.TrimSpace(rawRRule))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("ics: parse RRULE %q: %w", rawRRule, err)
	}

	loc := time.UTC
	if tzid != "" {
		if l, lerr := time.LoadLocation(tzid); lerr == nil {
			loc = l
		}
	}

	// Ensure Dtstart is set to the event's DTSTART.
	r.DTStart(start.In(loc))

	next := r.After(after, true)
	if next.IsZero() {
		return time.Time{}, false, nil
	}
	return next.UTC(), true, nil
}

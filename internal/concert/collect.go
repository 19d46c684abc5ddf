package concert

import (
	"sort"

	"livecal/internal/model"
)

// Failure records an event that could not be turned into a concert.
type Failure struct {
	Index int // position in the input slice
	Err   error
}

// Batch is the outcome of aggregating many events. Filtered counts events
// that keep rejected; those are never aggregated.
type Batch struct {
	Concerts []model.Concert
	Failures []Failure
	Filtered int
}

// Collect aggregates every event accepted by keep (nil keeps all). Failed
// events are reported and skipped; they never affect the others. Concerts
// come back ordered by start time, then title.
func Collect[E Event](events []E, keep func(E) bool) Batch {
	b := Batch{Concerts: make([]model.Concert, 0, len(events))}
	for i, ev := range events {
		if keep != nil && !keep(ev) {
			b.Filtered++
			continue
		}
		c, err := FromEvent(ev)
		if err != nil {
			b.Failures = append(b.Failures, Failure{Index: i, Err: err})
			continue
		}
		b.Concerts = append(b.Concerts, c)
	}
	SortByStart(b.Concerts)
	return b
}

func SortByStart(cs []model.Concert) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].StartTime.Equal(cs[j].StartTime) {
			return cs[i].StartTime.Before(cs[j].StartTime)
		}
		return cs[i].Title < cs[j].Title
	})
}

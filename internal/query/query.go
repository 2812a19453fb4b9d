// Package query answers the date and category queries the presentation
// surfaces (dashboard, registration list, month calendar) run over the
// in-memory collection.
//
// All functions are pure: inputs are never mutated and results are freshly
// allocated, freshly sorted slices. Date and time comparisons are
// lexicographic, which is correct because the Normalizer enforces the
// fixed-width "2006-01-02" and "15:04" formats at every admission point.
package query

import (
	"slices"
	"strings"
	"time"

	"github.com/seniorplus/agenda/internal/event"
)

// Today returns the events dated the current local day, sorted by start
// time ascending.
func Today(events []event.Event, now time.Time) []event.Event {
	return ByDate(events, now.Format(event.DateLayout))
}

// ByDate returns the events on the given date, sorted by start time
// ascending.
func ByDate(events []event.Event, date string) []event.Event {
	out := filter(events, func(e event.Event) bool { return e.Date == date })
	slices.SortStableFunc(out, func(a, b event.Event) int {
		return strings.Compare(a.StartTime, b.StartTime)
	})
	return out
}

// ByDateRange returns the events with start <= date <= end (inclusive on
// both ends), sorted by date then start time.
func ByDateRange(events []event.Event, start, end string) []event.Event {
	out := filter(events, func(e event.Event) bool {
		return e.Date >= start && e.Date <= end
	})
	slices.SortStableFunc(out, func(a, b event.Event) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})
	return out
}

// ByCategory returns the events with exactly the given category, sorted by
// date ascending.
func ByCategory(events []event.Event, category string) []event.Event {
	out := filter(events, func(e event.Event) bool { return e.Category == category })
	slices.SortStableFunc(out, func(a, b event.Event) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

// GroupByDay partitions an already-filtered sequence into a date → events
// mapping, preserving the per-day order as given. Map iteration order is
// unspecified, so consumers must walk SortedDays for ascending-date output.
func GroupByDay(events []event.Event) map[string][]event.Event {
	groups := make(map[string][]event.Event)
	for _, e := range events {
		groups[e.Date] = append(groups[e.Date], e)
	}
	return groups
}

// SortedDays returns the keys of a GroupByDay result in ascending date
// order.
func SortedDays(groups map[string][]event.Event) []string {
	days := make([]string, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	slices.Sort(days)
	return days
}

func filter(events []event.Event, keep func(event.Event) bool) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Package availability turns working intervals and booked appointments into
// the free start times a customer can choose from.
package availability

import (
	"iter"

	"slotbook/pkg/calendar"
)

// Slots yields every start time from start, stepping by durationMinutes, for
// which the whole slot still ends at or before end. The sequence is finite
// and may be ranged over more than once.
func Slots(start, end calendar.TimeOfDay, durationMinutes int) iter.Seq[calendar.TimeOfDay] {
	return func(yield func(calendar.TimeOfDay) bool) {
		if durationMinutes <= 0 || start >= end {
			return
		}
		for current := start; current.Add(durationMinutes) <= end; current = current.Add(durationMinutes) {
			if !yield(current) {
				return
			}
		}
	}
}

// Generate collects Slots into a slice.
func Generate(start, end calendar.TimeOfDay, durationMinutes int) []calendar.TimeOfDay {
	var out []calendar.TimeOfDay
	for slot := range Slots(start, end, durationMinutes) {
		out = append(out, slot)
	}
	return out
}

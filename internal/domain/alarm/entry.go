package alarm

import (
	"fmt"
	"time"
)

// ScheduledEntry is one pending occurrence: which alarm, which kind, when.
type ScheduledEntry struct {
	// ID of the alarm the entry belongs to.
	ID int
	// Type of the pending occurrence.
	Type OccurrenceType
	// Time is the absolute instant to wake up at.
	Time time.Time
}

// Equal reports whether two entries describe the same wake-up.
func (e ScheduledEntry) Equal(other ScheduledEntry) bool {
	return e.ID == other.ID && e.Type == other.Type && e.Time.Equal(other.Time)
}

// Before orders entries by time, then pre-alarm over normal over snooze,
// then by id so the order is total.
func (e ScheduledEntry) Before(other ScheduledEntry) bool {
	if !e.Time.Equal(other.Time) {
		return e.Time.Before(other.Time)
	}

	if pe, po := e.Type.priority(), other.Type.priority(); pe != po {
		return pe < po
	}

	return e.ID < other.ID
}

// String renders the entry for logs.
func (e ScheduledEntry) String() string {
	return fmt.Sprintf("#%d %s at %s", e.ID, e.Type, e.Time.Format(time.RFC3339))
}

// Earliest returns the entry that must be armed next across all values.
func Earliest(values []Value) (ScheduledEntry, bool) {
	var (
		best  ScheduledEntry
		found bool
	)

	for _, v := range values {
		entry, ok := v.PendingEntry()
		if !ok {
			continue
		}

		if !found || entry.Before(best) {
			best = entry
			found = true
		}
	}

	return best, found
}

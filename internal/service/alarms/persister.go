package alarms

import (
	"context"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Persister mirrors store changes into a Saver. It diffs consecutive
// snapshots by id and writes only what changed.
type Persister struct {
	// store is observed for list changes.
	store *store.Store
	// saver receives the diffs.
	saver Saver
}

// NewPersister creates a persister for st writing through saver.
func NewPersister(st *store.Store, saver Saver) *Persister {
	return &Persister{store: st, saver: saver}
}

// Run saves every change after baseline until ctx is done. A failed save is
// logged and retried with the next change, since baseline only advances on success.
func (p *Persister) Run(ctx context.Context, baseline store.Snapshot) {
	ctx = logger.WithName(ctx, "persister")

	for snapshot := range p.store.SubscribeAlarms(ctx) {
		if snapshot.Version <= baseline.Version {
			continue
		}

		changed, removed := diff(baseline.Alarms, snapshot.Alarms)
		if len(changed) == 0 && len(removed) == 0 {
			baseline = snapshot

			continue
		}

		if err := p.saver.Save(ctx, changed, removed); err != nil {
			logger.ErrorKV(ctx, "Failed to save alarms",
				"changed", len(changed),
				"removed", len(removed),
				"error", err,
			)

			continue
		}

		logger.DebugKV(ctx, "Alarms saved",
			"version", snapshot.Version,
			"changed", len(changed),
			"removed", len(removed),
		)

		baseline = snapshot
	}
}

// diff returns the values of next that differ from prev and the ids that disappeared.
// Both lists are ordered by id.
func diff(prev, next []alarm.Value) ([]alarm.Value, []int) {
	var (
		changed []alarm.Value
		removed []int
		i, j    int
	)

	for i < len(prev) || j < len(next) {
		switch {
		case j == len(next) || (i < len(prev) && prev[i].ID < next[j].ID):
			removed = append(removed, prev[i].ID)
			i++
		case i == len(prev) || next[j].ID < prev[i].ID:
			changed = append(changed, next[j])
			j++
		default:
			if !sameValue(prev[i], next[j]) {
				changed = append(changed, next[j])
			}

			i++
			j++
		}
	}

	return changed, removed
}

// sameValue compares values with time.Time.Equal semantics.
func sameValue(a, b alarm.Value) bool {
	return a.ID == b.ID &&
		a.Hour == b.Hour &&
		a.Minute == b.Minute &&
		a.DaysOfWeek == b.DaysOfWeek &&
		a.IsEnabled == b.IsEnabled &&
		a.IsPrealarmEnabled == b.IsPrealarmEnabled &&
		a.Label == b.Label &&
		a.Vibrate == b.Vibrate &&
		a.State == b.State &&
		a.AlarmTime.Equal(b.AlarmTime) &&
		a.OccurrenceType == b.OccurrenceType &&
		a.OccurrenceTime.Equal(b.OccurrenceTime)
}

package alarms

import (
	"context"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Notifier receives alarm actions. Calls are fire-and-forget.
type Notifier interface {
	// BroadcastAlarmState announces that action happened to alarm id.
	BroadcastAlarmState(ctx context.Context, id int, action alarm.Action)
}

// Query loads the persisted alarm set once at startup.
type Query interface {
	// Query returns every stored alarm.
	Query(ctx context.Context) ([]alarm.Value, error)
}

// Sequence is implemented by stores that remember the highest id ever
// assigned. When the Query also implements it, ids of deleted alarms are not
// handed out again after a restart.
type Sequence interface {
	// LastID returns the highest id ever saved.
	LastID(ctx context.Context) (int, error)
}

// Saver writes alarm changes to durable storage.
type Saver interface {
	// Save upserts changed and deletes removed ids in one batch.
	Save(ctx context.Context, changed []alarm.Value, removed []int) error
}

// PrefsSource returns the current global preferences.
type PrefsSource interface {
	// Prefs returns a snapshot read at the moment of the call.
	Prefs() alarm.Prefs
}

// StaticPrefs is a PrefsSource that never changes.
type StaticPrefs alarm.Prefs

// Prefs returns the fixed snapshot.
func (p StaticPrefs) Prefs() alarm.Prefs {
	return alarm.Prefs(p)
}

package alarm

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a single alarm.
type State string

const (
	// StateDisabled means the alarm is off and has no pending occurrence.
	StateDisabled State = "DISABLED"
	// StateSet means the alarm waits for its normal occurrence.
	StateSet State = "SET"
	// StatePrealarmSet means the alarm waits for the pre-alarm ahead of the normal occurrence.
	StatePrealarmSet State = "PREALARM_SET"
	// StateFired means the main alarm is sounding.
	StateFired State = "FIRED"
	// StatePrealarmFired means the pre-alarm is sounding and the main alarm is pending.
	StatePrealarmFired State = "PREALARM_FIRED"
	// StateSnoozed means a sounding occurrence was postponed.
	StateSnoozed State = "SNOOZED"
	// StateDismissed is transient: a dismissed alarm immediately resolves to
	// SET, PREALARM_SET or DISABLED and is never stored.
	StateDismissed State = "DISMISSED"
)

// IsSounding reports whether the state represents a ringing occurrence.
func (s State) IsSounding() bool {
	return s == StateFired || s == StatePrealarmFired
}

// OccurrenceType tags the instant an alarm is waiting for.
type OccurrenceType string

const (
	// OccurrenceNormal is the main alarm.
	OccurrenceNormal OccurrenceType = "NORMAL"
	// OccurrencePrealarm is the softer warning ahead of the main alarm.
	OccurrencePrealarm OccurrenceType = "PREALARM"
	// OccurrenceSnooze is a postponed occurrence; it always resolves to the main alarm.
	OccurrenceSnooze OccurrenceType = "SNOOZE"
)

// priority orders same-instant entries: pre-alarm first, snooze last.
func (t OccurrenceType) priority() int {
	switch t {
	case OccurrencePrealarm:
		return 0
	case OccurrenceNormal:
		return 1
	default:
		return 2
	}
}

// Valid reports whether t is one of the known occurrence types.
func (t OccurrenceType) Valid() bool {
	switch t {
	case OccurrenceNormal, OccurrencePrealarm, OccurrenceSnooze:
		return true
	default:
		return false
	}
}

const (
	// DefaultHour is the wall-clock hour of a freshly created alarm.
	DefaultHour = 8
	// DefaultMinute is the wall-clock minute of a freshly created alarm.
	DefaultMinute = 30
)

// Value is an immutable snapshot of one alarm's configuration and runtime status.
// It is passed by value; modifying a copy never affects the owner's record.
type Value struct {
	// ID is assigned once at creation and never reused.
	ID int
	// Hour is the local wall-clock hour (0-23).
	Hour int
	// Minute is the local wall-clock minute (0-59).
	Minute int
	// DaysOfWeek is the repeat mask; empty means one-shot.
	DaysOfWeek DaysOfWeek
	// IsEnabled reports whether the user switched the alarm on.
	IsEnabled bool
	// IsPrealarmEnabled reports whether a pre-alarm precedes the main alarm.
	IsPrealarmEnabled bool
	// Label is a free-form user caption.
	Label string
	// Vibrate asks the ringing side to vibrate.
	Vibrate bool
	// State is the lifecycle state.
	State State
	// AlarmTime is the absolute instant the current state waits for or fired at.
	// Zero when the alarm is disabled.
	AlarmTime time.Time
	// OccurrenceType tags AlarmTime.
	OccurrenceType OccurrenceType
	// OccurrenceTime is the normal instant of the occurrence currently being
	// handled (sounding or snoozed). Zero while waiting or disabled.
	OccurrenceTime time.Time
}

// New returns a fresh disabled record with default time.
func New(id int) Value {
	return Value{
		ID:     id,
		Hour:   DefaultHour,
		Minute: DefaultMinute,
		State:  StateDisabled,
	}
}

// HasAlarmTime reports whether AlarmTime is present.
func (v Value) HasAlarmTime() bool {
	return !v.AlarmTime.IsZero()
}

// IsRepeating reports whether the alarm re-arms itself after dismissal.
func (v Value) IsRepeating() bool {
	return v.DaysOfWeek.IsRepeating()
}

// PendingEntry returns the occurrence the scheduler must arm for this alarm.
// Waiting states and a sounding pre-alarm (whose main alarm is still ahead)
// carry an entry; everything else returns false.
func (v Value) PendingEntry() (ScheduledEntry, bool) {
	if !v.HasAlarmTime() {
		return ScheduledEntry{}, false
	}

	switch v.State {
	case StateSet, StatePrealarmSet, StateSnoozed, StatePrealarmFired:
		return ScheduledEntry{
			ID:   v.ID,
			Type: v.OccurrenceType,
			Time: v.AlarmTime,
		}, true
	default:
		return ScheduledEntry{}, false
	}
}

// ValidateTime checks hour, minute and days of week ranges.
func ValidateTime(hour, minute int, days DaysOfWeek) error {
	switch {
	case hour < 0 || hour > 23:
		return fmt.Errorf("%w: hour %d", ErrInvalidTime, hour)
	case minute < 0 || minute > 59:
		return fmt.Errorf("%w: minute %d", ErrInvalidTime, minute)
	case !days.Valid():
		return fmt.Errorf("%w: days of week %#x", ErrInvalidTime, uint8(days))
	}

	return nil
}

// Validate checks field ranges and the state/alarm time invariant.
func (v Value) Validate() error {
	if err := ValidateTime(v.Hour, v.Minute, v.DaysOfWeek); err != nil {
		return err
	}

	switch v.State {
	case StateDisabled:
		if v.HasAlarmTime() {
			return fmt.Errorf("alarm %d: disabled alarm carries alarm time", v.ID)
		}
	case StateSet, StatePrealarmSet, StateFired, StatePrealarmFired, StateSnoozed:
		if !v.HasAlarmTime() {
			return fmt.Errorf("alarm %d: state %s without alarm time", v.ID, v.State)
		}
	default:
		return fmt.Errorf("alarm %d: unknown state %q", v.ID, v.State)
	}

	return nil
}

// Disabled returns the value switched off with all runtime fields cleared.
func (v Value) Disabled() Value {
	v.IsEnabled = false
	v.State = StateDisabled
	v.AlarmTime = time.Time{}
	v.OccurrenceType = ""
	v.OccurrenceTime = time.Time{}

	return v
}

// Armed returns the value waiting for its next occurrence strictly after
// both now and after. The pre-alarm is used when enabled, configured and
// still ahead of now; otherwise the alarm waits for the normal instant.
func (v Value) Armed(prefs Prefs, now, after time.Time) (Value, error) {
	if after.Before(now) {
		after = now
	}

	normal, err := NextOccurrence(v.Hour, v.Minute, v.DaysOfWeek, after)
	if err != nil {
		return v, err
	}

	v.IsEnabled = true
	v.OccurrenceTime = time.Time{}

	if v.IsPrealarmEnabled && prefs.PrealarmMinutes > 0 {
		prealarm := normal.Add(-prefs.PrealarmDuration())
		if prealarm.After(MinuteOf(now)) {
			v.State = StatePrealarmSet
			v.AlarmTime = prealarm
			v.OccurrenceType = OccurrencePrealarm

			return v, nil
		}
	}

	v.State = StateSet
	v.AlarmTime = normal
	v.OccurrenceType = OccurrenceNormal

	return v, nil
}

// String renders a compact human-readable description.
func (v Value) String() string {
	s := fmt.Sprintf("#%d %02d:%02d %s %s", v.ID, v.Hour, v.Minute, v.DaysOfWeek, v.State)
	if v.HasAlarmTime() {
		s += " at " + v.AlarmTime.Format(time.RFC3339)
	}

	return s
}

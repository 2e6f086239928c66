package alarms

import (
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// env is what a transition may read besides the value: the instant and the
// preferences current at the moment the command is processed.
type env struct {
	// now is the calendar reading for this command.
	now time.Time
	// prefs is the preferences snapshot for this command.
	prefs alarm.Prefs
}

// outcome is the result of one transition.
type outcome struct {
	// value is the resulting alarm value.
	value alarm.Value
	// actions are broadcast in order after the store write, or before the
	// removal of a deleted alarm.
	actions []alarm.Action
	// deleted removes the alarm and stops its actor.
	deleted bool
	// ignored means the command has no effect in the current state.
	ignored bool
}

// transitionFunc computes the outcome of a command in a given state.
type transitionFunc func(v alarm.Value, cmd command, e env) (outcome, error)

// transitions is the flat (state, command) table. Missing pairs are ignored.
//
//nolint:gochecknoglobals // Read-only lookup table.
var transitions = map[alarm.State]map[commandKind]transitionFunc{
	alarm.StateDisabled: {
		cmdEnable:  enableFromDisabled,
		cmdEdit:    edit,
		cmdDelete:  remove,
		cmdRefresh: refreshDisabled,
	},
	alarm.StateSet: {
		cmdEnable:         enableFromArmed,
		cmdEdit:           edit,
		cmdDelete:         remove,
		cmdFired:          firedFromSet,
		cmdTimeSetChanged: rearm,
		cmdRefresh:        rearm,
	},
	alarm.StatePrealarmSet: {
		cmdEnable:         enableFromArmed,
		cmdEdit:           edit,
		cmdDelete:         remove,
		cmdFired:          firedFromPrealarmSet,
		cmdTimeSetChanged: rearm,
		cmdRefresh:        rearm,
	},
	alarm.StateFired: {
		cmdEnable:  enableFromSounding,
		cmdEdit:    editSounding,
		cmdDelete:  removeSounding,
		cmdDismiss: dismiss,
		cmdSnooze:  snooze,
	},
	alarm.StatePrealarmFired: {
		cmdEnable:  enableFromSounding,
		cmdEdit:    editSounding,
		cmdDelete:  removeSounding,
		cmdFired:   firedFromPrealarmFired,
		cmdDismiss: dismiss,
		cmdSnooze:  snooze,
	},
	alarm.StateSnoozed: {
		cmdEnable:  enableFromSnoozed,
		cmdEdit:    editSounding,
		cmdDelete:  removeSnoozed,
		cmdFired:   firedFromSnoozed,
		cmdDismiss: dismiss,
	},
}

// transition applies cmd to v.
func transition(v alarm.Value, cmd command, e env) (outcome, error) {
	fn, ok := transitions[v.State][cmd.kind]
	if !ok || supersededFire(v, cmd) {
		return outcome{value: v, ignored: true}, nil
	}

	return fn(v, cmd, e)
}

// supersededFire reports a timer fire for an instant the alarm no longer waits for.
func supersededFire(v alarm.Value, cmd command) bool {
	return cmd.kind == cmdFired && !cmd.firedAt.IsZero() && !cmd.firedAt.Equal(v.AlarmTime)
}

func ignore(v alarm.Value) (outcome, error) {
	return outcome{value: v, ignored: true}, nil
}

// arm moves v to SET or PREALARM_SET for the first occurrence after both now and after.
func arm(v alarm.Value, e env, after time.Time, actions ...alarm.Action) (outcome, error) {
	armed, err := v.Armed(e.prefs, e.now, after)
	if err != nil {
		return outcome{value: v}, fmt.Errorf("arm alarm %d: %w", v.ID, err)
	}

	return outcome{value: armed, actions: actions}, nil
}

// settle applies the enabled flag: arm when on, disable when off.
func settle(v alarm.Value, e env, actions ...alarm.Action) (outcome, error) {
	if !v.IsEnabled {
		return outcome{value: v.Disabled(), actions: actions}, nil
	}

	return arm(v, e, e.now, actions...)
}

func enableFromDisabled(v alarm.Value, cmd command, e env) (outcome, error) {
	if !cmd.enable {
		return ignore(v)
	}

	return arm(v, e, e.now)
}

func enableFromArmed(v alarm.Value, cmd command, e env) (outcome, error) {
	if !cmd.enable {
		return outcome{value: v.Disabled()}, nil
	}

	return arm(v, e, e.now)
}

func enableFromSounding(v alarm.Value, cmd command, _ env) (outcome, error) {
	if cmd.enable {
		return ignore(v)
	}

	return outcome{value: v.Disabled(), actions: []alarm.Action{alarm.ActionDismiss}}, nil
}

func enableFromSnoozed(v alarm.Value, cmd command, _ env) (outcome, error) {
	if cmd.enable {
		return ignore(v)
	}

	return outcome{value: v.Disabled(), actions: []alarm.Action{alarm.ActionCancelSnooze}}, nil
}

func edit(v alarm.Value, cmd command, e env) (outcome, error) {
	if err := cmd.change.Validate(v); err != nil {
		return outcome{value: v}, err
	}

	return settle(cmd.change.Apply(v), e)
}

// editSounding stops the current occurrence before applying the edit.
func editSounding(v alarm.Value, cmd command, e env) (outcome, error) {
	if err := cmd.change.Validate(v); err != nil {
		return outcome{value: v}, err
	}

	return settle(cmd.change.Apply(v), e, alarm.ActionDismiss)
}

func remove(v alarm.Value, _ command, _ env) (outcome, error) {
	return outcome{value: v, deleted: true}, nil
}

func removeSounding(v alarm.Value, _ command, _ env) (outcome, error) {
	return outcome{value: v, deleted: true, actions: []alarm.Action{alarm.ActionDismiss}}, nil
}

func removeSnoozed(v alarm.Value, _ command, _ env) (outcome, error) {
	return outcome{value: v, deleted: true, actions: []alarm.Action{alarm.ActionCancelSnooze}}, nil
}

// refreshDisabled repairs records loaded as enabled but without a pending occurrence.
func refreshDisabled(v alarm.Value, _ command, e env) (outcome, error) {
	if !v.IsEnabled {
		return ignore(v)
	}

	return arm(v, e, e.now)
}

// rearm recomputes the pending occurrence from now.
func rearm(v alarm.Value, _ command, e env) (outcome, error) {
	return arm(v, e, e.now)
}

// sounding returns v ringing the main alarm for the occurrence at normal.
func sounding(v alarm.Value, normal time.Time) alarm.Value {
	v.State = alarm.StateFired
	v.OccurrenceType = alarm.OccurrenceNormal
	v.OccurrenceTime = normal

	return v
}

func firedFromSet(v alarm.Value, cmd command, _ env) (outcome, error) {
	if cmd.occurrence != alarm.OccurrenceNormal {
		return ignore(v)
	}

	return outcome{value: sounding(v, v.AlarmTime), actions: []alarm.Action{alarm.ActionAlert}}, nil
}

func firedFromPrealarmSet(v alarm.Value, cmd command, _ env) (outcome, error) {
	// The main instant is the first occurrence after the pre-alarm instant.
	normal, err := alarm.NextOccurrence(v.Hour, v.Minute, v.DaysOfWeek, v.AlarmTime)
	if err != nil {
		return outcome{value: v}, fmt.Errorf("compute main occurrence of alarm %d: %w", v.ID, err)
	}

	switch cmd.occurrence {
	case alarm.OccurrencePrealarm:
		v.State = alarm.StatePrealarmFired
		v.AlarmTime = normal
		v.OccurrenceType = alarm.OccurrenceNormal
		v.OccurrenceTime = normal

		return outcome{value: v, actions: []alarm.Action{alarm.ActionPrealarm}}, nil
	case alarm.OccurrenceNormal:
		v.AlarmTime = normal

		return outcome{value: sounding(v, normal), actions: []alarm.Action{alarm.ActionAlert}}, nil
	default:
		return ignore(v)
	}
}

// firedFromPrealarmFired is the pre-alarm timing out into the main alarm.
func firedFromPrealarmFired(v alarm.Value, cmd command, _ env) (outcome, error) {
	if cmd.occurrence != alarm.OccurrenceNormal {
		return ignore(v)
	}

	return outcome{value: sounding(v, v.OccurrenceTime), actions: []alarm.Action{alarm.ActionAlert}}, nil
}

// firedFromSnoozed resolves any snoozed occurrence to the main alarm.
func firedFromSnoozed(v alarm.Value, _ command, _ env) (outcome, error) {
	normal := v.OccurrenceTime
	if normal.IsZero() {
		normal = v.AlarmTime
	}

	return outcome{value: sounding(v, normal), actions: []alarm.Action{alarm.ActionAlert}}, nil
}

// dismiss ends the current occurrence. Repeating alarms re-arm past it,
// one-shot alarms switch themselves off.
func dismiss(v alarm.Value, _ command, e env) (outcome, error) {
	if !v.IsRepeating() {
		return outcome{value: v.Disabled(), actions: []alarm.Action{alarm.ActionDismiss}}, nil
	}

	return arm(v, e, v.OccurrenceTime, alarm.ActionDismiss)
}

func snooze(v alarm.Value, cmd command, e env) (outcome, error) {
	until, err := alarm.SnoozeUntil(e.prefs, e.now, cmd.snoozeTo)
	if err != nil {
		return outcome{value: v}, fmt.Errorf("snooze alarm %d: %w", v.ID, err)
	}

	if v.OccurrenceTime.IsZero() {
		v.OccurrenceTime = v.AlarmTime
	}

	v.State = alarm.StateSnoozed
	v.AlarmTime = until
	v.OccurrenceType = alarm.OccurrenceSnooze

	return outcome{value: v, actions: []alarm.Action{alarm.ActionDismiss, alarm.ActionSnooze}}, nil
}

package alarms

import (
	"fmt"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Handle addresses one alarm through its Manager. A handle stays valid
// after deletion; its commands then fail with alarm.ErrNotFound.
type Handle struct {
	// id of the alarm.
	id int
	// manager routes the commands.
	manager *Manager
}

// ID returns the alarm id.
func (h *Handle) ID() int {
	return h.id
}

// Value returns the last value the state machine wrote to the store.
func (h *Handle) Value() (alarm.Value, error) {
	v, ok := h.manager.deps.Store.Get(h.id)
	if !ok {
		return alarm.Value{}, fmt.Errorf("%w: id %d", alarm.ErrNotFound, h.id)
	}

	return v, nil
}

// Enable switches the alarm on or off.
func (h *Handle) Enable(enable bool) error {
	return h.manager.Enable(h.id, enable)
}

// Edit starts a batch of field changes applied by Commit.
func (h *Handle) Edit() *Editor {
	return &Editor{handle: h}
}

// Delete removes the alarm.
func (h *Handle) Delete() error {
	return h.manager.Delete(h.id)
}

// Dismiss stops the current occurrence.
func (h *Handle) Dismiss() error {
	return h.manager.Dismiss(h.id)
}

// Snooze postpones the current occurrence by the configured duration.
func (h *Handle) Snooze() error {
	return h.manager.Snooze(h.id)
}

// SnoozeTo postpones the current occurrence to the next hour:minute.
func (h *Handle) SnoozeTo(hour, minute int) error {
	return h.manager.SnoozeTo(h.id, alarm.ClockTime{Hour: hour, Minute: minute})
}

// Editor collects field changes for one EDIT command.
type Editor struct {
	// handle is the alarm being edited.
	handle *Handle
	// change accumulates the edits.
	change alarm.Change
}

// WithHour sets the hour.
func (e *Editor) WithHour(hour int) *Editor {
	e.change = e.change.WithHour(hour)

	return e
}

// WithMinute sets the minute.
func (e *Editor) WithMinute(minute int) *Editor {
	e.change = e.change.WithMinute(minute)

	return e
}

// WithDaysOfWeek sets the repeat mask.
func (e *Editor) WithDaysOfWeek(days alarm.DaysOfWeek) *Editor {
	e.change = e.change.WithDaysOfWeek(days)

	return e
}

// WithEnabled switches the alarm on or off.
func (e *Editor) WithEnabled(enabled bool) *Editor {
	e.change = e.change.WithEnabled(enabled)

	return e
}

// WithPrealarm switches the pre-alarm on or off.
func (e *Editor) WithPrealarm(enabled bool) *Editor {
	e.change = e.change.WithPrealarm(enabled)

	return e
}

// WithLabel sets the caption.
func (e *Editor) WithLabel(label string) *Editor {
	e.change = e.change.WithLabel(label)

	return e
}

// WithVibrate sets the vibrate flag.
func (e *Editor) WithVibrate(vibrate bool) *Editor {
	e.change = e.change.WithVibrate(vibrate)

	return e
}

// Change returns the accumulated edits.
func (e *Editor) Change() alarm.Change {
	return e.change
}

// Commit queues all accumulated edits as one command.
func (e *Editor) Commit() error {
	return e.handle.manager.Edit(e.handle.id, e.change)
}

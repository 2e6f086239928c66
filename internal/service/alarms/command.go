package alarms

import (
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// commandKind names an input of the state machine.
type commandKind string

const (
	cmdEnable         commandKind = "ENABLE"
	cmdEdit           commandKind = "EDIT"
	cmdDelete         commandKind = "DELETE"
	cmdFired          commandKind = "FIRED"
	cmdDismiss        commandKind = "DISMISS"
	cmdSnooze         commandKind = "SNOOZE"
	cmdTimeSetChanged commandKind = "TIME_SET_CHANGED"
	cmdRefresh        commandKind = "REFRESH"
	// cmdSync carries no transition; it only marks a point in the mailbox.
	cmdSync commandKind = "SYNC"
)

// command is one mailbox item. Only the fields relevant to kind are set.
type command struct {
	// kind selects the transition.
	kind commandKind
	// enable is the ENABLE argument.
	enable bool
	// change is the EDIT argument.
	change alarm.Change
	// occurrence is the FIRED argument.
	occurrence alarm.OccurrenceType
	// firedAt is the instant the timer was armed for. Zero means unknown.
	firedAt time.Time
	// snoozeTo is the optional explicit SNOOZE time.
	snoozeTo *alarm.ClockTime
	// done is closed once the command has been handled (SYNC only).
	done chan struct{}
}

// String renders the command for logs.
func (c command) String() string {
	switch c.kind {
	case cmdFired:
		if !c.firedAt.IsZero() {
			return string(c.kind) + "(" + string(c.occurrence) + " at " + c.firedAt.Format(time.RFC3339) + ")"
		}

		return string(c.kind) + "(" + string(c.occurrence) + ")"
	case cmdEnable:
		if c.enable {
			return string(c.kind) + "(true)"
		}

		return string(c.kind) + "(false)"
	case cmdSnooze:
		if c.snoozeTo != nil {
			return string(c.kind) + "(" + c.snoozeTo.String() + ")"
		}

		return string(c.kind) + "()"
	default:
		return string(c.kind)
	}
}

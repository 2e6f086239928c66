package alarm

// Action is the vocabulary passed to state notifiers.
type Action string

const (
	// ActionAlert means the main alarm started sounding.
	ActionAlert Action = "ALERT"
	// ActionPrealarm means the pre-alarm started sounding.
	ActionPrealarm Action = "PREALARM"
	// ActionSnooze means a sounding occurrence was snoozed.
	ActionSnooze Action = "SNOOZE"
	// ActionDismiss means the sounding side must stop.
	ActionDismiss Action = "DISMISS"
	// ActionCancelSnooze means a snoozed occurrence was dropped.
	ActionCancelSnooze Action = "CANCEL_SNOOZE"
)

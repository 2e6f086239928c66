package alarm

import "errors"

var (
	// ErrNotFound is returned when a command addresses an alarm that does not exist.
	ErrNotFound = errors.New("alarm not found")
	// ErrInvalidTime is returned when hour, minute or days of week are out of range.
	ErrInvalidTime = errors.New("invalid alarm time")
	// ErrNoOccurrence signals that no future occurrence was found within the scan bound.
	// It indicates a logic fault, never a user error.
	ErrNoOccurrence = errors.New("no occurrence within a week")
)

// Package alarm contains core domain types for the alarm clock.
//
// It defines the immutable alarm Value with its lifecycle State, the
// ScheduledEntry tuple consumed by the scheduler, the Action vocabulary
// passed to state notifiers, partial edits (Change) and the next-occurrence
// arithmetic shared by every state transition.
package alarm

// Package alarms implements the alarm state machines and the Manager that
// owns them.
//
// Every alarm id is served by one actor: a goroutine draining a private
// mailbox of commands in arrival order. The actor keeps the authoritative
// value for its id, applies the flat transition table, writes the result to
// the store and then broadcasts the resulting actions. Actors never read
// each other's state; cross-alarm decisions are made by the scheduler from
// store snapshots.
package alarms

// Package checker polls the daemon and logs what changed: the armed
// wake-up, alarms starting or stopping to ring, and alarms appearing or
// disappearing.
package checker

// Package notify implements the receivers of alarm actions: a structured
// log, a JSON webhook for the ringing device and a fan-out over several
// receivers.
package notify

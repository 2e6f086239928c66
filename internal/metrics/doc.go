// Package metrics exposes Prometheus collectors for the alarm clock daemon.
// A nil *Metrics is valid and records nothing, so tests can skip it.
package metrics

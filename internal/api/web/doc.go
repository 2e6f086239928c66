// Package web serves the HTTP surface of the daemon: health and Prometheus
// endpoints, a small JSON API for the alarm list and the ringing alarm, and
// a WebSocket stream of list snapshots, scheduler decisions and alarm
// actions for displays and ringing devices.
package web

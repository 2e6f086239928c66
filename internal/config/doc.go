// Package config defines the settings shared by the alarm clock daemon and CLI
// and provides helpers to load, validate and save them in YAML format.
//
// Config carries the listen addresses, the storage driver and the global
// alarm Prefs. LivePrefs exposes Prefs as a swappable snapshot so the daemon
// can reload durations without restarting state machines.
package config

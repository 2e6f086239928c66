// Package calendar provides the clock the alarm core reads "now" from and
// a watcher that detects wall clock or time zone jumps.
package calendar

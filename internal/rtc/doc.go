// Package rtc is an in-process wake-up timer. It holds at most one armed
// occurrence and delivers it to a callback when its instant is reached on
// the calendar source.
package rtc

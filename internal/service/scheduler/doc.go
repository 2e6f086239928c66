// Package scheduler projects the alarm store onto a single wake-up timer.
//
// On every list change the Scheduler picks the earliest pending occurrence
// across all alarms and arms it through the Setter, or cancels the timer when
// nothing is pending. It remembers only the last arm the Setter acknowledged,
// so a failed arm is retried on the next change.
package scheduler

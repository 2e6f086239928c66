package alarm

import (
	"fmt"
	"time"
)

// scanDays bounds the repeating search: today plus seven days covers the case
// where only today's weekday is set and today's instant already passed.
const scanDays = 7

// MinuteOf truncates t to the start of its wall-clock minute in t's location.
func MinuteOf(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, t.Location())
}

// atClock returns hour:minute on the calendar day of t in t's location.
func atClock(t time.Time, hour, minute int) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, hour, minute, 0, 0, t.Location())
}

// NextOccurrence returns the first instant at hour:minute that is strictly
// after now at minute granularity.
//
// A one-shot alarm (empty days) fires today if that instant is still ahead,
// otherwise tomorrow. A repeating alarm fires on the first day, starting
// today, whose weekday bit is set. The result is never in the past.
func NextOccurrence(hour, minute int, days DaysOfWeek, now time.Time) (time.Time, error) {
	if err := ValidateTime(hour, minute, days); err != nil {
		return time.Time{}, err
	}

	floor := MinuteOf(now)

	if !days.IsRepeating() {
		candidate := atClock(floor, hour, minute)
		if !candidate.After(floor) {
			candidate = atClock(floor.AddDate(0, 0, 1), hour, minute)
		}

		return candidate, nil
	}

	for offset := 0; offset <= scanDays; offset++ {
		day := floor.AddDate(0, 0, offset)
		if !days.IsSet(day.Weekday()) {
			continue
		}

		if candidate := atClock(day, hour, minute); candidate.After(floor) {
			return candidate, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %02d:%02d on %s after %s",
		ErrNoOccurrence, hour, minute, days, now.Format(time.RFC3339))
}

// SnoozeUntil returns the instant a snoozed occurrence fires again: the
// next future occurrence of hour:minute when explicit, otherwise now plus
// the configured snooze duration. The result is always after now.
func SnoozeUntil(prefs Prefs, now time.Time, explicit *ClockTime) (time.Time, error) {
	if explicit != nil {
		return NextOccurrence(explicit.Hour, explicit.Minute, 0, now)
	}

	until := MinuteOf(now).Add(prefs.SnoozeDuration())
	if !until.After(now) {
		until = MinuteOf(now).Add(time.Minute)
	}

	return until, nil
}

// ClockTime is a wall-clock hour and minute.
type ClockTime struct {
	// Hour is 0-23.
	Hour int
	// Minute is 0-59.
	Minute int
}

// String renders the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClockTime parses HH:MM.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

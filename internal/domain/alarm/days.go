package alarm

import (
	"fmt"
	"strings"
	"time"
)

// DaysOfWeek is a 7-bit repeat mask. Bit 0 is Monday, bit 6 is Sunday.
// An empty mask describes a one-shot alarm.
type DaysOfWeek uint8

const (
	// EveryDay has all seven weekday bits set.
	EveryDay DaysOfWeek = 0x7f
	// Weekdays covers Monday through Friday.
	Weekdays DaysOfWeek = 0x1f
	// Weekend covers Saturday and Sunday.
	Weekend DaysOfWeek = 0x60
)

// dayNames lists short names in bit order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var dayNames = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// DaysOf builds a mask from the provided weekdays.
func DaysOf(days ...time.Weekday) DaysOfWeek {
	var mask DaysOfWeek
	for _, day := range days {
		mask |= 1 << bitOf(day)
	}

	return mask
}

// bitOf maps time.Weekday (Sunday = 0) to the mask bit (Monday = 0).
func bitOf(day time.Weekday) uint {
	return uint((day + 6) % 7)
}

// IsSet reports whether the alarm repeats on the given weekday.
func (d DaysOfWeek) IsSet(day time.Weekday) bool {
	return d&(1<<bitOf(day)) != 0
}

// IsRepeating reports whether at least one weekday is set.
func (d DaysOfWeek) IsRepeating() bool {
	return d&EveryDay != 0
}

// Valid reports whether only the seven weekday bits are used.
func (d DaysOfWeek) Valid() bool {
	return d&^EveryDay == 0
}

// Weekdays returns the set days in time.Weekday form, Monday first.
func (d DaysOfWeek) Weekdays() []time.Weekday {
	result := make([]time.Weekday, 0, 7)

	for bit := range uint(7) {
		if d&(1<<bit) != 0 {
			result = append(result, time.Weekday((bit+1)%7))
		}
	}

	return result
}

// String renders the mask as a comma-separated list ("mon,wed") or "once".
func (d DaysOfWeek) String() string {
	if !d.IsRepeating() {
		return "once"
	}

	if d&EveryDay == EveryDay {
		return "daily"
	}

	names := make([]string, 0, 7)

	for bit := range uint(7) {
		if d&(1<<bit) != 0 {
			names = append(names, dayNames[bit])
		}
	}

	return strings.Join(names, ",")
}

// ParseDaysOfWeek parses the String form back into a mask.
// It accepts "once", "daily", "weekdays", "weekend" and lists of short or full day names.
func ParseDaysOfWeek(s string) (DaysOfWeek, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "", "once", "none":
		return 0, nil
	case "daily", "every":
		return EveryDay, nil
	case "weekdays":
		return Weekdays, nil
	case "weekend":
		return Weekend, nil
	}

	var mask DaysOfWeek

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) < 3 {
			return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidTime, part)
		}

		found := false

		for bit, name := range dayNames {
			if strings.HasPrefix(part, name) {
				mask |= 1 << uint(bit)
				found = true

				break
			}
		}

		if !found {
			return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidTime, part)
		}
	}

	return mask, nil
}

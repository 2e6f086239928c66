package alarm

import (
	"errors"
	"time"
)

// Prefs is the global configuration snapshot read at the moment of each
// computation. Durations are whole minutes.
type Prefs struct {
	// PrealarmMinutes is how long before the main alarm the pre-alarm fires.
	PrealarmMinutes int `yaml:"prealarm_minutes"`
	// SnoozeMinutes is the default snooze length.
	SnoozeMinutes int `yaml:"snooze_minutes"`
	// AutoSilenceMinutes tells the ringing side when to give up.
	AutoSilenceMinutes int `yaml:"auto_silence_minutes"`
	// Is24HourFormat selects the clock format for presentation.
	Is24HourFormat bool `yaml:"is_24h"`
}

// DefaultPrefs mirrors the stock alarm clock settings.
func DefaultPrefs() Prefs {
	return Prefs{
		PrealarmMinutes:    30,
		SnoozeMinutes:      10,
		AutoSilenceMinutes: 10,
		Is24HourFormat:     true,
	}
}

// errNegativeDuration is returned when a duration preference is below zero.
var errNegativeDuration = errors.New("durations must be non-negative")

// Validate rejects negative durations.
func (p Prefs) Validate() error {
	if p.PrealarmMinutes < 0 || p.SnoozeMinutes < 0 || p.AutoSilenceMinutes < 0 {
		return errNegativeDuration
	}

	return nil
}

// PrealarmDuration returns PrealarmMinutes as a duration.
func (p Prefs) PrealarmDuration() time.Duration {
	return time.Duration(p.PrealarmMinutes) * time.Minute
}

// SnoozeDuration returns SnoozeMinutes as a duration.
func (p Prefs) SnoozeDuration() time.Duration {
	return time.Duration(p.SnoozeMinutes) * time.Minute
}

// AutoSilenceDuration returns AutoSilenceMinutes as a duration.
func (p Prefs) AutoSilenceDuration() time.Duration {
	return time.Duration(p.AutoSilenceMinutes) * time.Minute
}

// ClockLayout returns the time layout matching Is24HourFormat.
func (p Prefs) ClockLayout() string {
	if p.Is24HourFormat {
		return "15:04"
	}

	return "3:04 PM"
}

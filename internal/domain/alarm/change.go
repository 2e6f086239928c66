package alarm

// Change is a batch of field edits applied atomically by a single EDIT command.
// Nil fields are left untouched. The With* methods return modified copies so a
// Change can be built fluently and shared safely.
type Change struct {
	// Hour replaces Value.Hour.
	Hour *int
	// Minute replaces Value.Minute.
	Minute *int
	// DaysOfWeek replaces Value.DaysOfWeek.
	DaysOfWeek *DaysOfWeek
	// IsEnabled replaces Value.IsEnabled.
	IsEnabled *bool
	// IsPrealarmEnabled replaces Value.IsPrealarmEnabled.
	IsPrealarmEnabled *bool
	// Label replaces Value.Label.
	Label *string
	// Vibrate replaces Value.Vibrate.
	Vibrate *bool
}

// WithHour sets the hour.
func (c Change) WithHour(hour int) Change {
	c.Hour = &hour

	return c
}

// WithMinute sets the minute.
func (c Change) WithMinute(minute int) Change {
	c.Minute = &minute

	return c
}

// WithDaysOfWeek sets the repeat mask.
func (c Change) WithDaysOfWeek(days DaysOfWeek) Change {
	c.DaysOfWeek = &days

	return c
}

// WithEnabled switches the alarm on or off.
func (c Change) WithEnabled(enabled bool) Change {
	c.IsEnabled = &enabled

	return c
}

// WithPrealarm switches the pre-alarm on or off.
func (c Change) WithPrealarm(enabled bool) Change {
	c.IsPrealarmEnabled = &enabled

	return c
}

// WithLabel sets the caption.
func (c Change) WithLabel(label string) Change {
	c.Label = &label

	return c
}

// WithVibrate sets the vibrate flag.
func (c Change) WithVibrate(vibrate bool) Change {
	c.Vibrate = &vibrate

	return c
}

// IsEmpty reports whether the change touches nothing.
func (c Change) IsEmpty() bool {
	return c.Hour == nil && c.Minute == nil && c.DaysOfWeek == nil && c.IsEnabled == nil &&
		c.IsPrealarmEnabled == nil && c.Label == nil && c.Vibrate == nil
}

// Apply returns v with the configured fields replaced.
// Runtime fields (State, AlarmTime, occurrence) are left for the caller to recompute.
func (c Change) Apply(v Value) Value {
	if c.Hour != nil {
		v.Hour = *c.Hour
	}

	if c.Minute != nil {
		v.Minute = *c.Minute
	}

	if c.DaysOfWeek != nil {
		v.DaysOfWeek = *c.DaysOfWeek
	}

	if c.IsEnabled != nil {
		v.IsEnabled = *c.IsEnabled
	}

	if c.IsPrealarmEnabled != nil {
		v.IsPrealarmEnabled = *c.IsPrealarmEnabled
	}

	if c.Label != nil {
		v.Label = *c.Label
	}

	if c.Vibrate != nil {
		v.Vibrate = *c.Vibrate
	}

	return v
}

// Validate checks that the change would produce a valid time against base.
func (c Change) Validate(base Value) error {
	v := c.Apply(base)

	return ValidateTime(v.Hour, v.Minute, v.DaysOfWeek)
}

package calendar

import (
	"sync"
	"time"
)

// Source returns the current instant used for all alarm computations.
type Source interface {
	// Now returns the current wall-clock instant in the zone alarms are set in.
	Now() time.Time
}

// System reads the host clock in the local time zone.
type System struct{}

// Now returns time.Now.
func (System) Now() time.Time {
	return time.Now()
}

// Adjustable follows the process clock but can be jumped and moved to another
// time zone, the way a user changes the device clock.
type Adjustable struct {
	// mu guards offset and location.
	mu sync.RWMutex
	// offset is added to time.Now.
	offset time.Duration
	// location is the zone instants are reported in.
	location *time.Location
}

// NewAdjustable returns a source that reads start now and then advances with the process clock.
func NewAdjustable(start time.Time) *Adjustable {
	return &Adjustable{
		offset:   time.Until(start),
		location: start.Location(),
	}
}

// Now returns the adjusted instant.
func (a *Adjustable) Now() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return time.Now().Add(a.offset).In(a.location)
}

// Set jumps the source so that Now reads t.
func (a *Adjustable) Set(t time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.offset = time.Until(t)
	a.location = t.Location()
}

// SetLocation moves the source to another time zone without changing the instant.
func (a *Adjustable) SetLocation(loc *time.Location) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.location = loc
}

package config

import (
	"sync/atomic"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// LivePrefs holds the current Prefs snapshot and lets the daemon swap it
// while state machines keep reading it at the moment of each computation.
type LivePrefs struct {
	// current is the active snapshot.
	current atomic.Pointer[alarm.Prefs]
}

// NewLivePrefs returns a holder initialized with p.
func NewLivePrefs(p alarm.Prefs) *LivePrefs {
	live := new(LivePrefs)
	live.Store(p)

	return live
}

// Prefs returns the current snapshot.
func (l *LivePrefs) Prefs() alarm.Prefs {
	if p := l.current.Load(); p != nil {
		return *p
	}

	return alarm.DefaultPrefs()
}

// Store replaces the snapshot.
func (l *LivePrefs) Store(p alarm.Prefs) {
	l.current.Store(&p)
}

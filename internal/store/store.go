package store

import (
	"context"
	"slices"
	"sync"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Snapshot is one immutable version of the alarm list, ordered by id.
// Consumers must not modify Alarms.
type Snapshot struct {
	// Version increases by one on every list change.
	Version uint64
	// Alarms is the full list, ascending by id.
	Alarms []alarm.Value
}

// Len returns the number of alarms.
func (s Snapshot) Len() int {
	return len(s.Alarms)
}

// Get returns the alarm with the given id.
func (s Snapshot) Get(id int) (alarm.Value, bool) {
	i, found := slices.BinarySearchFunc(s.Alarms, id, compareID)
	if !found {
		return alarm.Value{}, false
	}

	return s.Alarms[i], true
}

// Next is the globally chosen wake-up, or its absence when Armed is false.
type Next struct {
	// Entry is the armed occurrence; zero when Armed is false.
	Entry alarm.ScheduledEntry
	// Armed reports whether any occurrence is pending.
	Armed bool
}

// AlarmSet confirms one scheduler recomputation.
type AlarmSet struct {
	// Version is the list version the decision was computed from.
	Version uint64
	// Next is the decision.
	Next Next
	// Err is the setter failure, if any.
	Err error
}

// Store is the single source of truth for the alarm collection.
type Store struct {
	// mu serializes list replacement.
	mu sync.Mutex
	// snapshot is the current list; replaced, never mutated in place.
	snapshot Snapshot

	// alarms fans out list snapshots.
	alarms *latest[Snapshot]
	// next fans out scheduler decisions.
	next *latest[Next]
	// sets fans out arm confirmations.
	sets *events[AlarmSet]
}

// New returns an empty store.
func New() *Store {
	return &Store{
		alarms: newLatest(Snapshot{}),
		next:   newLatest(Next{}),
		sets:   newEvents[AlarmSet](),
	}
}

func compareID(v alarm.Value, id int) int {
	return v.ID - id
}

// Alarms returns the current snapshot without blocking on subscribers.
func (s *Store) Alarms() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot
}

// Get returns the alarm with the given id.
func (s *Store) Get(id int) (alarm.Value, bool) {
	return s.Alarms().Get(id)
}

// At returns the alarm at position i in id order.
func (s *Store) At(i int) (alarm.Value, bool) {
	snapshot := s.Alarms()
	if i < 0 || i >= snapshot.Len() {
		return alarm.Value{}, false
	}

	return snapshot.Alarms[i], true
}

// Put inserts v or replaces the alarm with the same id.
func (s *Store) Put(v alarm.Value) Snapshot {
	snapshot, _ := s.update(func(list []alarm.Value) ([]alarm.Value, bool) {
		i, found := slices.BinarySearchFunc(list, v.ID, compareID)
		if found {
			list[i] = v

			return list, true
		}

		return slices.Insert(list, i, v), true
	})

	return snapshot
}

// Remove deletes the alarm with the given id. It reports whether it existed.
func (s *Store) Remove(id int) (Snapshot, bool) {
	return s.update(func(list []alarm.Value) ([]alarm.Value, bool) {
		i, found := slices.BinarySearchFunc(list, id, compareID)
		if !found {
			return list, false
		}

		return slices.Delete(list, i, i+1), true
	})
}

// Replace swaps the whole list, as done once after loading persisted alarms.
func (s *Store) Replace(values []alarm.Value) Snapshot {
	snapshot, _ := s.update(func([]alarm.Value) ([]alarm.Value, bool) {
		list := make([]alarm.Value, len(values))
		copy(list, values)
		slices.SortFunc(list, func(a, b alarm.Value) int { return a.ID - b.ID })

		return list, true
	})

	return snapshot
}

// update applies fn to a private copy of the list and publishes the result
// when fn reports a change.
func (s *Store) update(fn func([]alarm.Value) ([]alarm.Value, bool)) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, changed := fn(slices.Clone(s.snapshot.Alarms))
	if !changed {
		return s.snapshot, false
	}

	s.snapshot = Snapshot{
		Version: s.snapshot.Version + 1,
		Alarms:  list,
	}

	// Publish under mu so subscribers observe versions in order.
	s.alarms.publish(s.snapshot)

	return s.snapshot, true
}

// Next returns the last published scheduler decision.
func (s *Store) Next() Next {
	return s.next.get()
}

// PublishNext records and broadcasts a scheduler decision.
func (s *Store) PublishNext(n Next) {
	s.next.publish(n)
}

// PublishAlarmSet broadcasts an arm confirmation.
func (s *Store) PublishAlarmSet(e AlarmSet) {
	s.sets.publish(e)
}

// SubscribeAlarms delivers the current snapshot and then the latest one after each change.
// The channel is closed when ctx is done.
func (s *Store) SubscribeAlarms(ctx context.Context) <-chan Snapshot {
	return s.alarms.subscribe(ctx)
}

// SubscribeNext delivers the current decision and then the latest one after each change.
func (s *Store) SubscribeNext(ctx context.Context) <-chan Next {
	return s.next.subscribe(ctx)
}

// SubscribeAlarmSet delivers every arm confirmation published after the call.
// A subscriber more than a few events behind is dropped and its channel closed.
func (s *Store) SubscribeAlarmSet(ctx context.Context) <-chan AlarmSet {
	return s.sets.subscribe(ctx)
}

package checker

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/store"
)

type fakeSource struct {
	snapshot store.Snapshot
	next     store.Next
	err      error
	lists    int
}

func (f *fakeSource) List(context.Context) (store.Snapshot, error) {
	f.lists++

	return f.snapshot, f.err
}

func (f *fakeSource) Next(context.Context) (store.Next, error) {
	return f.next, f.err
}

func valueIn(id int, state alarm.State) alarm.Value {
	v := alarm.New(id)
	v.State = state

	return v
}

// TestWatcher_Check counts differences between polls.
func TestWatcher_Check(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		snapshot: store.Snapshot{Alarms: []alarm.Value{valueIn(1, alarm.StateSet), valueIn(2, alarm.StateDisabled)}},
	}
	w := NewWatcher(source)

	changes, err := w.Check(t.Context())
	require.NoError(t, err)
	require.Zero(t, changes)

	changes, err = w.Check(t.Context())
	require.NoError(t, err)
	require.Zero(t, changes)

	source.snapshot = store.Snapshot{Alarms: []alarm.Value{valueIn(1, alarm.StateFired), valueIn(3, alarm.StateDisabled)}}
	source.next = store.Next{
		Armed: true,
		Entry: alarm.ScheduledEntry{ID: 1, Type: alarm.OccurrenceNormal, Time: time.Date(2026, time.October, 21, 11, 0, 0, 0, time.UTC)},
	}

	changes, err = w.Check(t.Context())
	require.NoError(t, err)
	require.Equal(t, 4, changes)

	source.snapshot = store.Snapshot{Alarms: []alarm.Value{valueIn(1, alarm.StateSet), valueIn(3, alarm.StateDisabled)}}

	changes, err = w.Check(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, changes)
}

// TestWatcher_CheckError keeps the previous baseline.
func TestWatcher_CheckError(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("unavailable")}
	w := NewWatcher(source)

	_, err := w.Check(t.Context())
	require.Error(t, err)
	require.False(t, w.primed)
}

// TestWatcher_Poll checks once per interval until canceled.
func TestWatcher_Poll(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		source := &fakeSource{}
		w := NewWatcher(source)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)

		go func() { done <- w.Poll(ctx, time.Second) }()

		time.Sleep(3*time.Second + time.Millisecond)
		synctest.Wait()
		require.Equal(t, 4, source.lists)

		cancel()
		require.NoError(t, <-done)
	})
}

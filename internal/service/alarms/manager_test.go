package alarms

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

// TestManager_CreateAndEnable checks a freshly enabled alarm lands in the store.
func TestManager_CreateAndEnable(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.Equal(t, 1, a.ID())

		v, err := a.Value()
		require.NoError(t, err)
		require.Equal(t, alarm.StateDisabled, v.State)
		require.False(t, v.HasAlarmTime())

		require.NoError(t, a.Enable(true))
		synctest.Wait()

		snapshot := h.store.Alarms()
		require.Equal(t, 1, snapshot.Len())
		require.True(t, snapshot.Alarms[0].IsEnabled)
		require.Equal(t, alarm.StateSet, snapshot.Alarms[0].State)
		require.Equal(t, time.Date(2026, 10, 22, 8, 30, 0, 0, time.UTC), snapshot.Alarms[0].AlarmTime)
	})
}

// TestManager_DeleteDisabledAndEnabled removes alarms regardless of state.
func TestManager_DeleteDisabledAndEnabled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		disabled, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)

		enabled, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, enabled.Enable(true))

		require.NoError(t, disabled.Delete())
		require.NoError(t, enabled.Delete())
		synctest.Wait()

		require.Zero(t, h.store.Alarms().Len())
		require.Empty(t, h.notifier.actions(enabled.ID()))

		require.ErrorIs(t, enabled.Enable(true), alarm.ErrNotFound)
		_, err = enabled.Value()
		require.ErrorIs(t, err, alarm.ErrNotFound)
	})
}

// TestManager_CreateThreeAlarms keeps creation order and per-alarm flags.
func TestManager_CreateThreeAlarms(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		for range 3 {
			_, err := h.manager.CreateNewAlarm()
			require.NoError(t, err)
		}

		second, err := h.manager.AlarmAt(1)
		require.NoError(t, err)
		require.NoError(t, second.Enable(true))
		synctest.Wait()

		snapshot := h.store.Alarms()
		require.Equal(t, 3, snapshot.Len())

		flags := make([]bool, 0, 3)
		for _, v := range snapshot.Alarms {
			flags = append(flags, v.IsEnabled)
		}

		require.Equal(t, []bool{false, true, false}, flags)

		_, err = h.manager.AlarmAt(3)
		require.ErrorIs(t, err, alarm.ErrNotFound)
	})
}

// TestManager_LoadsPersistedAlarms makes loaded records visible and refreshes them.
func TestManager_LoadsPersistedAlarms(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		stale := alarm.New(100500)
		stale.IsEnabled = true
		stale.Label = "hello"
		stale.State = alarm.StateSet
		stale.OccurrenceType = alarm.OccurrenceNormal
		stale.AlarmTime = time.Date(2026, 10, 20, 8, 30, 0, 0, time.UTC)

		broken := alarm.New(7)
		broken.IsEnabled = true
		broken.State = alarm.StateSet

		invalid := alarm.New(8)
		invalid.Hour = 99

		h, stop := startHarness(t, queryFunc(func(context.Context) ([]alarm.Value, error) {
			return []alarm.Value{stale, broken, invalid}, nil
		}))
		defer stop()

		synctest.Wait()

		loaded := h.value(t, 100500)
		require.True(t, loaded.IsEnabled)
		require.Equal(t, "hello", loaded.Label)
		require.Equal(t, alarm.StateSet, loaded.State)
		require.Equal(t, time.Date(2026, 10, 22, 8, 30, 0, 0, time.UTC), loaded.AlarmTime)

		repaired := h.value(t, 7)
		require.Equal(t, alarm.StateSet, repaired.State)
		require.NoError(t, repaired.Validate())

		_, ok := h.store.Get(8)
		require.False(t, ok)

		created, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.Equal(t, 100501, created.ID())
	})
}

// TestManager_LoadFailureIsDegradedButUsable starts empty and still accepts new alarms.
func TestManager_LoadFailureIsDegradedButUsable(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h, stop := startHarness(t, nil)
		stop()

		h.manager = NewManager(Dependencies{
			Store:    h.store,
			Notifier: h.notifier,
			Calendar: h.clock,
			Query: queryFunc(func(context.Context) ([]alarm.Value, error) {
				return nil, errors.New("disk on fire")
			}),
		})

		snapshot, err := h.manager.Start(ctx)
		require.Error(t, err)
		require.Zero(t, snapshot.Len())

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Enable(true))
		synctest.Wait()

		require.True(t, h.value(t, a.ID()).IsEnabled)

		cancel()
		h.manager.Wait()
	})
}

// TestManager_NotStartedAndNotFound reports lookup failures to the caller.
func TestManager_NotStartedAndNotFound(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		m := NewManager(Dependencies{})

		_, err := m.CreateNewAlarm()
		require.ErrorIs(t, err, ErrNotStarted)
		require.ErrorIs(t, m.Dismiss(1), ErrNotStarted)

		h, stop := startHarness(t, nil)
		defer stop()

		require.ErrorIs(t, h.manager.Enable(42, true), alarm.ErrNotFound)
		require.ErrorIs(t, h.manager.OnAlarmFired(42, alarm.OccurrenceNormal), alarm.ErrNotFound)
		require.ErrorIs(t, h.manager.Delete(42), alarm.ErrNotFound)
		require.ErrorIs(t, h.manager.Sync(context.Background(), 42), alarm.ErrNotFound)

		_, err = h.manager.Alarm(42)
		require.ErrorIs(t, err, alarm.ErrNotFound)
	})
}

// TestManager_EditRejectsInvalidTime validates edits before queuing them.
func TestManager_EditRejectsInvalidTime(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)

		require.ErrorIs(t, a.Edit().WithHour(24).Commit(), alarm.ErrInvalidTime)
		require.ErrorIs(t, a.SnoozeTo(7, 60), alarm.ErrInvalidTime)
	})
}

// TestManager_EditCommitsAtomically applies a batch and arms the alarm.
func TestManager_EditCommitsAtomically(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)

		versions := h.store.Alarms().Version

		require.NoError(t, a.Edit().
			WithHour(6).
			WithMinute(45).
			WithDaysOfWeek(alarm.Weekdays).
			WithLabel("work").
			WithVibrate(true).
			WithEnabled(true).
			Commit())
		synctest.Wait()

		require.Equal(t, versions+1, h.store.Alarms().Version)

		v := h.value(t, a.ID())
		require.Equal(t, 6, v.Hour)
		require.Equal(t, 45, v.Minute)
		require.Equal(t, "work", v.Label)
		require.True(t, v.Vibrate)
		require.Equal(t, alarm.StateSet, v.State)
		require.Equal(t, time.Date(2026, 10, 22, 6, 45, 0, 0, time.UTC), v.AlarmTime)

		// Editing without touching the enabled flag keeps it.
		require.NoError(t, a.Edit().WithLabel("office").Commit())
		require.NoError(t, h.manager.Sync(context.Background(), a.ID()))

		v = h.value(t, a.ID())
		require.Equal(t, "office", v.Label)
		require.True(t, v.IsEnabled)
	})
}

// TestManager_OneShotFiredIsDisabledAfterDismiss self-disables non-repeating alarms.
func TestManager_OneShotFiredIsDisabledAfterDismiss(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Enable(true))
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		synctest.Wait()

		require.Equal(t, alarm.StateFired, h.value(t, a.ID()).State)

		require.NoError(t, a.Dismiss())
		synctest.Wait()

		v := h.value(t, a.ID())
		require.False(t, v.IsEnabled)
		require.Equal(t, alarm.StateDisabled, v.State)
		require.Equal(t, []alarm.Action{alarm.ActionAlert, alarm.ActionDismiss}, h.notifier.actions(a.ID()))
	})
}

// TestManager_RepeatingFiredIsRescheduled re-arms repeating alarms past the dismissed occurrence.
func TestManager_RepeatingFiredIsRescheduled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().WithEnabled(true).WithHour(0).WithDaysOfWeek(alarm.DaysOf(time.Monday)).Commit())
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		require.NoError(t, a.Dismiss())
		synctest.Wait()

		v := h.value(t, a.ID())
		require.True(t, v.IsEnabled)
		require.Equal(t, alarm.StateSet, v.State)
		require.Equal(t, time.Date(2026, 11, 2, 0, 30, 0, 0, time.UTC), v.AlarmTime)
		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionAlert))
		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionDismiss))
	})
}

// TestManager_EditWhileFiredReschedules dismisses the ringing occurrence and re-arms.
func TestManager_EditWhileFiredReschedules(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Enable(true))
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		require.NoError(t, a.Edit().WithHour(23).Commit())
		synctest.Wait()

		v := h.value(t, a.ID())
		require.Equal(t, alarm.StateSet, v.State)
		require.Equal(t, time.Date(2026, 10, 21, 23, 30, 0, 0, time.UTC), v.AlarmTime)
		require.Equal(t, []alarm.Action{alarm.ActionAlert, alarm.ActionDismiss}, h.notifier.actions(a.ID()))
	})
}

// TestManager_SnoozeThenDismiss counts one implicit and one explicit dismissal.
func TestManager_SnoozeThenDismiss(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Enable(true))
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		require.NoError(t, a.Snooze())
		synctest.Wait()

		snoozed := h.value(t, a.ID())
		require.Equal(t, alarm.StateSnoozed, snoozed.State)
		require.Equal(t, alarm.OccurrenceSnooze, snoozed.OccurrenceType)
		require.Equal(t, time.Date(2026, 10, 21, 10, 25, 0, 0, time.UTC), snoozed.AlarmTime)

		require.NoError(t, a.Dismiss())
		synctest.Wait()

		require.Equal(t, 2, h.notifier.count(a.ID(), alarm.ActionDismiss))
		require.Equal(t, alarm.StateDisabled, h.value(t, a.ID()).State)
	})
}

// TestManager_PrealarmSnoozeFireSnoozeDelete follows a pre-alarm through snoozes to deletion.
func TestManager_PrealarmSnoozeFireSnoozeDelete(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().
			WithEnabled(true).
			WithHour(0).
			WithMinute(0).
			WithDaysOfWeek(alarm.DaysOf(time.Monday)).
			WithPrealarm(true).
			Commit())
		synctest.Wait()

		v := h.value(t, a.ID())
		require.Equal(t, alarm.StatePrealarmSet, v.State)
		require.Equal(t, time.Date(2026, 10, 25, 23, 30, 0, 0, time.UTC), v.AlarmTime)

		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrencePrealarm))
		synctest.Wait()
		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionPrealarm))

		v = h.value(t, a.ID())
		require.Equal(t, alarm.StatePrealarmFired, v.State)
		require.Equal(t, time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC), v.AlarmTime)

		require.NoError(t, a.Snooze())
		synctest.Wait()
		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionSnooze))

		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		synctest.Wait()
		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionAlert))
		require.Equal(t, alarm.StateFired, h.value(t, a.ID()).State)

		require.NoError(t, a.Snooze())
		synctest.Wait()
		require.Equal(t, 2, h.notifier.count(a.ID(), alarm.ActionDismiss))

		require.NoError(t, a.Delete())
		synctest.Wait()
		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionCancelSnooze))
		require.Zero(t, h.store.Alarms().Len())
	})
}

// TestManager_SnoozeToTime uses the next occurrence of the explicit clock time.
func TestManager_SnoozeToTime(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().WithEnabled(true).WithHour(0).WithDaysOfWeek(alarm.DaysOf(time.Monday)).Commit())
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		require.NoError(t, a.SnoozeTo(23, 59))
		synctest.Wait()

		v := h.value(t, a.ID())
		require.Equal(t, alarm.StateSnoozed, v.State)
		require.Equal(t, time.Date(2026, 10, 21, 23, 59, 0, 0, time.UTC), v.AlarmTime)
		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionSnooze))
	})
}

// TestManager_SnoozedPrealarmFiresMainAlarm resolves a snoozed pre-alarm to ALERT.
func TestManager_SnoozedPrealarmFiresMainAlarm(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().
			WithEnabled(true).
			WithHour(0).
			WithDaysOfWeek(alarm.DaysOf(time.Monday)).
			WithPrealarm(true).
			Commit())
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrencePrealarm))
		require.NoError(t, a.SnoozeTo(23, 59))
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceSnooze))
		synctest.Wait()

		require.Equal(t,
			[]alarm.Action{alarm.ActionPrealarm, alarm.ActionDismiss, alarm.ActionSnooze, alarm.ActionAlert},
			h.notifier.actions(a.ID()),
		)

		// Dismissing skips the occurrence the pre-alarm belonged to.
		require.NoError(t, a.Dismiss())
		synctest.Wait()

		v := h.value(t, a.ID())
		require.Equal(t, alarm.StatePrealarmSet, v.State)
		require.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), v.AlarmTime)
	})
}

// TestManager_PrealarmTimedOutThenDisabled stops the ringing main alarm on disable.
func TestManager_PrealarmTimedOutThenDisabled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().
			WithEnabled(true).
			WithHour(0).
			WithDaysOfWeek(alarm.DaysOf(time.Monday)).
			WithPrealarm(true).
			Commit())
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrencePrealarm))
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		require.NoError(t, a.Enable(false))
		synctest.Wait()

		require.Equal(t,
			[]alarm.Action{alarm.ActionPrealarm, alarm.ActionAlert, alarm.ActionDismiss},
			h.notifier.actions(a.ID()),
		)

		v := h.value(t, a.ID())
		require.Equal(t, alarm.StateDisabled, v.State)
		require.False(t, v.HasAlarmTime())
	})
}

// TestManager_DisableSnoozedCancelsSnooze emits CANCEL_SNOOZE when a snoozed alarm is switched off.
func TestManager_DisableSnoozedCancelsSnooze(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Enable(true))
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		require.NoError(t, a.Snooze())
		require.NoError(t, a.Enable(false))
		synctest.Wait()

		require.Equal(t, 1, h.notifier.count(a.ID(), alarm.ActionCancelSnooze))
		require.Equal(t, alarm.StateDisabled, h.value(t, a.ID()).State)
	})
}

// TestManager_TimeSetChanged recomputes waiting alarms after a clock jump.
func TestManager_TimeSetChanged(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Enable(true))
		synctest.Wait()
		require.Equal(t, time.Date(2026, 10, 22, 8, 30, 0, 0, time.UTC), h.value(t, a.ID()).AlarmTime)

		// Moving the clock back to 06:00 makes today's 08:30 reachable again.
		h.clock.Set(time.Date(2026, 10, 21, 6, 0, 0, 0, time.UTC))
		h.manager.TimeSetChanged()
		synctest.Wait()

		v := h.value(t, a.ID())
		require.Equal(t, alarm.StateSet, v.State)
		require.Equal(t, time.Date(2026, 10, 21, 8, 30, 0, 0, time.UTC), v.AlarmTime)
	})
}

// TestManager_IgnoresStaleFire leaves a disabled alarm untouched by a late timer.
func TestManager_IgnoresStaleFire(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, h.manager.OnAlarmFired(a.ID(), alarm.OccurrenceNormal))
		synctest.Wait()

		require.Equal(t, alarm.StateDisabled, h.value(t, a.ID()).State)
		require.Empty(t, h.notifier.actions(a.ID()))
	})
}

// TestManager_DeleteAndWait returns once the record left the store.
func TestManager_DeleteAndWait(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)

		require.NoError(t, h.manager.DeleteAndWait(context.Background(), a.ID()))

		_, ok := h.store.Get(a.ID())
		require.False(t, ok)
		require.ErrorIs(t, h.manager.DeleteAndWait(context.Background(), a.ID()), alarm.ErrNotFound)
	})
}

// TestManager_DeleteSoundingNotifiesBeforeRemoval sends DISMISS and
// CANCEL_SNOOZE while the deleted alarm is still listed.
func TestManager_DeleteSoundingNotifiesBeforeRemoval(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		ringing, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, ringing.Enable(true))
		require.NoError(t, h.manager.OnAlarmFired(ringing.ID(), alarm.OccurrenceNormal))

		snoozed, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, snoozed.Enable(true))
		require.NoError(t, h.manager.OnAlarmFired(snoozed.ID(), alarm.OccurrenceNormal))
		require.NoError(t, snoozed.Snooze())
		synctest.Wait()

		require.NoError(t, ringing.Delete())
		require.NoError(t, snoozed.Delete())
		synctest.Wait()

		require.Equal(t, []notification{
			{id: ringing.ID(), action: alarm.ActionAlert, listed: true},
			{id: ringing.ID(), action: alarm.ActionDismiss, listed: true},
		}, h.notifier.all(ringing.ID()))

		last := h.notifier.all(snoozed.ID())
		require.Equal(t, notification{id: snoozed.ID(), action: alarm.ActionCancelSnooze, listed: true}, last[len(last)-1])

		require.Zero(t, h.store.Alarms().Len())
	})
}

// TestManager_IgnoresSupersededEntry drops a timer entry for an instant the
// alarm was moved away from.
func TestManager_IgnoresSupersededEntry(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h, stop := startHarness(t, nil)
		defer stop()

		a, err := h.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().WithEnabled(true).WithHour(11).WithMinute(0).Commit())
		synctest.Wait()

		armed, ok := h.value(t, a.ID()).PendingEntry()
		require.True(t, ok)

		require.NoError(t, a.Edit().WithHour(12).Commit())
		require.NoError(t, h.manager.OnEntryFired(armed))
		synctest.Wait()

		v := h.value(t, a.ID())
		require.Equal(t, alarm.StateSet, v.State)
		require.Equal(t, time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC), v.AlarmTime)
		require.Empty(t, h.notifier.actions(a.ID()))

		current, ok := v.PendingEntry()
		require.True(t, ok)
		require.NoError(t, h.manager.OnEntryFired(current))
		synctest.Wait()

		require.Equal(t, alarm.StateFired, h.value(t, a.ID()).State)
		require.Equal(t, []alarm.Action{alarm.ActionAlert}, h.notifier.actions(a.ID()))
	})
}

// sequencedQuery is a Query that also remembers the highest saved id.
type sequencedQuery struct {
	values []alarm.Value
	lastID int
}

func (q sequencedQuery) Query(context.Context) ([]alarm.Value, error) {
	return q.values, nil
}

func (q sequencedQuery) LastID(context.Context) (int, error) {
	return q.lastID, nil
}

// TestManager_DoesNotReuseDeletedIDs continues after the persisted high-water mark.
func TestManager_DoesNotReuseDeletedIDs(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m := NewManager(Dependencies{
			Store:    store.New(),
			Notifier: new(recordingNotifier),
			Query:    sequencedQuery{values: []alarm.Value{alarm.New(2)}, lastID: 5},
		})

		_, err := m.Start(ctx)
		require.NoError(t, err)

		a, err := m.CreateNewAlarm()
		require.NoError(t, err)
		require.Equal(t, 6, a.ID())

		cancel()
		m.Wait()
	})
}

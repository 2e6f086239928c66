package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/calendar"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/rtc"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
	"github.com/oshokin/alarm-clock/internal/store"
)

type actionLog struct {
	mu      sync.Mutex
	actions []alarm.Action
}

func (l *actionLog) BroadcastAlarmState(_ context.Context, _ int, action alarm.Action) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.actions = append(l.actions, action)
}

func (l *actionLog) list() []alarm.Action {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]alarm.Action(nil), l.actions...)
}

type clockRig struct {
	store   *store.Store
	manager *alarms.Manager
	log     *actionLog
}

// startRig wires manager, scheduler and timer the way the daemon does.
func startRig(t *testing.T, ctx context.Context) *clockRig {
	t.Helper()

	clock := calendar.NewAdjustable(time.Date(2026, time.October, 21, 10, 15, 30, 0, time.UTC))
	rig := &clockRig{store: store.New(), log: new(actionLog)}

	rig.manager = alarms.NewManager(alarms.Dependencies{
		Store:    rig.store,
		Notifier: rig.log,
		Calendar: clock,
		Prefs:    alarms.StaticPrefs(alarm.DefaultPrefs()),
	})

	timer := rtc.New(clock, func(_ context.Context, entry alarm.ScheduledEntry) {
		_ = rig.manager.OnEntryFired(entry)
	})

	go timer.Run(ctx)
	go scheduler.New(rig.store, timer, nil).Run(ctx)

	_, err := rig.manager.Start(ctx)
	require.NoError(t, err)

	return rig
}

// TestWiring_FireSnoozeDismiss drives one alarm through the real timer.
func TestWiring_FireSnoozeDismiss(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		rig := startRig(t, ctx)

		defer func() {
			cancel()
			rig.manager.Wait()
		}()

		a, err := rig.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().WithHour(10).WithMinute(20).WithEnabled(true).Commit())
		synctest.Wait()

		next := rig.store.Next()
		require.True(t, next.Armed)
		require.Equal(t, a.ID(), next.Entry.ID)

		time.Sleep(4*time.Minute + 30*time.Second)
		synctest.Wait()
		require.Equal(t, []alarm.Action{alarm.ActionAlert}, rig.log.list())

		v, err := a.Value()
		require.NoError(t, err)
		require.Equal(t, alarm.StateFired, v.State)
		require.False(t, rig.store.Next().Armed)

		require.NoError(t, a.Snooze())
		synctest.Wait()
		require.Equal(t, alarm.OccurrenceSnooze, rig.store.Next().Entry.Type)

		time.Sleep(10 * time.Minute)
		synctest.Wait()
		require.Equal(t,
			[]alarm.Action{alarm.ActionAlert, alarm.ActionDismiss, alarm.ActionSnooze, alarm.ActionAlert},
			rig.log.list(),
		)

		require.NoError(t, a.Dismiss())
		synctest.Wait()

		v, err = a.Value()
		require.NoError(t, err)
		require.Equal(t, alarm.StateDisabled, v.State)
		require.False(t, rig.store.Next().Armed)
	})
}

// TestWiring_PrealarmTimesOutIntoMainAlarm lets the timer deliver both occurrences.
func TestWiring_PrealarmTimesOutIntoMainAlarm(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		rig := startRig(t, ctx)

		defer func() {
			cancel()
			rig.manager.Wait()
		}()

		a, err := rig.manager.CreateNewAlarm()
		require.NoError(t, err)
		require.NoError(t, a.Edit().WithHour(11).WithMinute(0).WithPrealarm(true).WithEnabled(true).Commit())
		synctest.Wait()

		require.Equal(t, alarm.OccurrencePrealarm, rig.store.Next().Entry.Type)

		// 10:30 pre-alarm.
		time.Sleep(14*time.Minute + 30*time.Second)
		synctest.Wait()
		require.Equal(t, []alarm.Action{alarm.ActionPrealarm}, rig.log.list())
		require.Equal(t, alarm.OccurrenceNormal, rig.store.Next().Entry.Type)

		// 11:00 main alarm.
		time.Sleep(30 * time.Minute)
		synctest.Wait()
		require.Equal(t, []alarm.Action{alarm.ActionPrealarm, alarm.ActionAlert}, rig.log.list())
	})
}

// TestWiring_EarliestOfMany arms the nearest alarm and moves on after it fires.
func TestWiring_EarliestOfMany(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		rig := startRig(t, ctx)

		defer func() {
			cancel()
			rig.manager.Wait()
		}()

		hours := []int{12, 11, 13}
		ids := make([]int, 0, len(hours))

		for _, hour := range hours {
			a, err := rig.manager.CreateNewAlarm()
			require.NoError(t, err)
			require.NoError(t, a.Edit().WithHour(hour).WithMinute(0).WithEnabled(true).Commit())

			ids = append(ids, a.ID())
		}

		synctest.Wait()
		require.Equal(t, ids[1], rig.store.Next().Entry.ID)

		time.Sleep(45 * time.Minute)
		synctest.Wait()

		require.Equal(t, []alarm.Action{alarm.ActionAlert}, rig.log.list())
		require.Equal(t, ids[0], rig.store.Next().Entry.ID)
	})
}

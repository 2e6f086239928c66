package client

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/store"
)

var testNow = time.Date(2026, time.October, 21, 10, 15, 30, 0, time.UTC)

// fakeService records calls and answers with canned values.
type fakeService struct {
	values map[int]alarm.Value
	next   store.Next
	calls  []string
}

func newFakeService(values ...alarm.Value) *fakeService {
	f := &fakeService{values: make(map[int]alarm.Value)}
	for _, v := range values {
		f.values[v.ID] = v
	}

	return f
}

func (f *fakeService) lookup(id int) (alarm.Value, error) {
	v, ok := f.values[id]
	if !ok {
		return alarm.Value{}, alarm.ErrNotFound
	}

	return v, nil
}

func (f *fakeService) List(context.Context) (store.Snapshot, error) {
	f.calls = append(f.calls, "list")

	snapshot := store.Snapshot{Version: 1}
	for id := 1; id <= len(f.values); id++ {
		snapshot.Alarms = append(snapshot.Alarms, f.values[id])
	}

	return snapshot, nil
}

func (f *fakeService) Get(_ context.Context, id int) (alarm.Value, error) {
	f.calls = append(f.calls, "get")

	return f.lookup(id)
}

func (f *fakeService) Create(_ context.Context, change alarm.Change) (alarm.Value, error) {
	f.calls = append(f.calls, "create")

	v := change.Apply(alarm.New(len(f.values) + 1))
	f.values[v.ID] = v

	return v, nil
}

func (f *fakeService) Edit(_ context.Context, id int, change alarm.Change) (alarm.Value, error) {
	f.calls = append(f.calls, "edit")

	v, err := f.lookup(id)
	if err != nil {
		return v, err
	}

	v = change.Apply(v)
	f.values[id] = v

	return v, nil
}

func (f *fakeService) Enable(ctx context.Context, id int, enable bool) (alarm.Value, error) {
	return f.Edit(ctx, id, alarm.Change{}.WithEnabled(enable))
}

func (f *fakeService) Snooze(_ context.Context, id int, _ *alarm.ClockTime) (alarm.Value, error) {
	f.calls = append(f.calls, "snooze")

	return f.lookup(id)
}

func (f *fakeService) Dismiss(_ context.Context, id int) (alarm.Value, error) {
	f.calls = append(f.calls, "dismiss")

	return f.lookup(id)
}

func (f *fakeService) Delete(_ context.Context, id int) error {
	f.calls = append(f.calls, "delete")

	if _, err := f.lookup(id); err != nil {
		return err
	}

	delete(f.values, id)

	return nil
}

func (f *fakeService) Next(context.Context) (store.Next, error) {
	f.calls = append(f.calls, "next")

	return f.next, nil
}

func newTestPrinter(out *bytes.Buffer, prefs alarm.Prefs) *Printer {
	return NewPrinter(out, prefs, func() time.Time { return testNow })
}

func armedAlarm() alarm.Value {
	v := alarm.New(1)
	v.Hour, v.Minute = 11, 0
	v.IsEnabled = true
	v.Label = "standup"
	v.State = alarm.StateSet
	v.AlarmTime = time.Date(2026, time.October, 21, 11, 0, 0, 0, time.UTC)
	v.OccurrenceType = alarm.OccurrenceNormal

	return v
}

// TestList prints a row per alarm with the relative wake-up time.
func TestList(t *testing.T) {
	t.Parallel()

	var (
		out     bytes.Buffer
		service = newFakeService(armedAlarm(), alarm.New(2))
	)

	require.NoError(t, List()(t.Context(), service, newTestPrinter(&out, alarm.DefaultPrefs())))

	text := out.String()
	require.Contains(t, text, "ID")
	require.Contains(t, text, "standup")
	require.Contains(t, text, "NORMAL Wed 2026-10-21 11:00 (44 minutes from now)")
	require.Contains(t, text, "DISABLED")
	require.Equal(t, []string{"list"}, service.calls)
}

// TestList_Empty prints a placeholder.
func TestList_Empty(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, List()(t.Context(), newFakeService(), newTestPrinter(&out, alarm.DefaultPrefs())))
	require.Equal(t, "No alarms.\n", out.String())
}

// TestPrinter_TwelveHourClock uses the 12-hour layout when configured.
func TestPrinter_TwelveHourClock(t *testing.T) {
	t.Parallel()

	var (
		out   bytes.Buffer
		prefs = alarm.DefaultPrefs()
	)

	prefs.Is24HourFormat = false

	v := armedAlarm()
	v.Hour = 18
	v.AlarmTime = time.Date(2026, time.October, 21, 18, 0, 0, 0, time.UTC)

	require.NoError(t, newTestPrinter(&out, prefs).Alarms([]alarm.Value{v}))
	require.Contains(t, out.String(), "6:00 PM")
}

// TestOperations covers the single-alarm commands.
func TestOperations(t *testing.T) {
	t.Parallel()

	clock := alarm.ClockTime{Hour: 10, Minute: 30}

	tests := []struct {
		name     string
		op       Operation
		wantCall string
		wantText string
	}{
		{
			name:     "show",
			op:       Show(1),
			wantCall: "get",
			wantText: "standup",
		},
		{
			name:     "create",
			op:       Create(alarm.Change{}.WithHour(7).WithMinute(5).WithLabel("gym")),
			wantCall: "create",
			wantText: "07:05",
		},
		{
			name:     "edit",
			op:       Edit(1, alarm.Change{}.WithLabel("retro")),
			wantCall: "edit",
			wantText: "retro",
		},
		{
			name:     "disable",
			op:       Enable(1, false),
			wantCall: "edit",
			wantText: "no",
		},
		{
			name:     "snooze",
			op:       Snooze(1, &clock),
			wantCall: "snooze",
			wantText: "standup",
		},
		{
			name:     "dismiss",
			op:       Dismiss(1),
			wantCall: "dismiss",
			wantText: "standup",
		},
		{
			name:     "delete",
			op:       Delete(1),
			wantCall: "delete",
			wantText: "Alarm #1 deleted.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				out     bytes.Buffer
				service = newFakeService(armedAlarm())
			)

			require.NoError(t, tt.op(t.Context(), service, newTestPrinter(&out, alarm.DefaultPrefs())))
			require.Equal(t, []string{tt.wantCall}, service.calls)
			require.Contains(t, out.String(), tt.wantText)
		})
	}
}

// TestOperations_NotFound returns the daemon error unchanged.
func TestOperations_NotFound(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Dismiss(9)(t.Context(), newFakeService(), newTestPrinter(&out, alarm.DefaultPrefs()))
	require.ErrorIs(t, err, alarm.ErrNotFound)
	require.Empty(t, out.String())
}

// TestNext prints the armed entry or its absence.
func TestNext(t *testing.T) {
	t.Parallel()

	var (
		out     bytes.Buffer
		service = newFakeService()
	)

	require.NoError(t, Next()(t.Context(), service, newTestPrinter(&out, alarm.DefaultPrefs())))
	require.Equal(t, "No alarm is armed.\n", out.String())

	out.Reset()

	service.next = store.Next{
		Armed: true,
		Entry: alarm.ScheduledEntry{
			ID:   3,
			Type: alarm.OccurrencePrealarm,
			Time: time.Date(2026, time.October, 21, 12, 15, 30, 0, time.UTC),
		},
	}

	require.NoError(t, Next()(t.Context(), service, newTestPrinter(&out, alarm.DefaultPrefs())))
	require.Equal(t, "Alarm #3 (PREALARM) at Wed 2026-10-21 12:15, 2 hours from now.\n", out.String())
}

// TestLoadSettings falls back to defaults only for the default path.
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	cfg := config.Default()
	cfg.GRPCAddress = "127.0.0.1:6001"
	require.NoError(t, config.Save(path, cfg))

	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6001", loaded.GRPCAddress)
}

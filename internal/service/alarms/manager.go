package alarms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/alarm-clock/internal/calendar"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/store"
)

// ErrNotStarted is returned when commands arrive before Start.
var ErrNotStarted = errors.New("alarm manager is not started")

// Dependencies are the collaborators shared by the Manager and its state machines.
type Dependencies struct {
	// Store receives every alarm value written by the state machines.
	Store *store.Store
	// Query loads the persisted alarms at startup. Nil means start empty.
	Query Query
	// Notifier receives alarm actions.
	Notifier Notifier
	// Calendar is the source of "now".
	Calendar calendar.Source
	// Prefs returns the current global preferences.
	Prefs PrefsSource
	// Metrics records command outcomes. Nil disables metrics.
	Metrics *metrics.Metrics
}

// Manager is the aggregate root: it owns the id → state machine map,
// loads the initial alarm set and routes commands by id.
type Manager struct {
	// deps are passed to every state machine.
	deps *Dependencies

	// mu guards the fields below.
	mu sync.Mutex
	// ctx is the lifetime of the state machines, set by Start.
	ctx context.Context //nolint:containedctx // Actors live as long as Start's context.
	// machines maps alarm ids to their actors.
	machines map[int]*machine
	// nextID is the next unused id.
	nextID int
	// wg tracks actor goroutines.
	wg sync.WaitGroup
}

// NewManager creates a manager that must be started before use.
func NewManager(deps Dependencies) *Manager {
	if deps.Calendar == nil {
		deps.Calendar = calendar.System{}
	}

	if deps.Prefs == nil {
		deps.Prefs = StaticPrefs(alarm.DefaultPrefs())
	}

	return &Manager{
		deps:     &deps,
		machines: make(map[int]*machine),
		nextID:   1,
	}
}

// Start loads the persisted alarms, populates the store, starts one state
// machine per record and asks each of them to refresh its schedule.
// It returns the snapshot the store held right after loading.
//
// A load failure leaves the manager running with no alarms and is returned
// so the caller can report it; new alarms can still be created.
func (m *Manager) Start(ctx context.Context) (store.Snapshot, error) {
	ctx = logger.WithName(ctx, "alarms")

	loaded, loadErr := m.load(ctx)
	lastID := m.lastID(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx != nil {
		return m.deps.Store.Alarms(), nil
	}

	m.ctx = ctx

	snapshot := m.deps.Store.Replace(loaded)

	for _, v := range loaded {
		mc := m.spawn(v)
		mc.send(command{kind: cmdRefresh})

		if v.ID >= m.nextID {
			m.nextID = v.ID + 1
		}
	}

	if lastID >= m.nextID {
		m.nextID = lastID + 1
	}

	logger.InfoKV(ctx, "Alarm manager started",
		"loaded", len(loaded),
		"next_id", m.nextID,
	)

	return snapshot, loadErr
}

// load queries and sanitizes the persisted records.
func (m *Manager) load(ctx context.Context) ([]alarm.Value, error) {
	if m.deps.Query == nil {
		return nil, nil
	}

	records, err := m.deps.Query.Query(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to load alarms, starting with an empty set", "error", err)

		return nil, fmt.Errorf("load alarms: %w", err)
	}

	result := make([]alarm.Value, 0, len(records))
	seen := make(map[int]struct{}, len(records))

	for _, v := range records {
		if _, dup := seen[v.ID]; dup || v.ID <= 0 {
			logger.WarnKV(ctx, "Skipping alarm record with invalid or duplicate id", "alarm_id", v.ID)

			continue
		}

		if err := alarm.ValidateTime(v.Hour, v.Minute, v.DaysOfWeek); err != nil {
			logger.WarnKV(ctx, "Skipping alarm record with invalid time", "alarm_id", v.ID, "error", err)

			continue
		}

		if err := v.Validate(); err != nil {
			logger.WarnKV(ctx, "Resetting inconsistent alarm record", "alarm_id", v.ID, "error", err)

			enabled := v.IsEnabled
			v = v.Disabled()
			v.IsEnabled = enabled
		}

		seen[v.ID] = struct{}{}
		result = append(result, v)
	}

	return result, nil
}

// lastID reads the persisted id high-water mark when the store keeps one.
func (m *Manager) lastID(ctx context.Context) int {
	seq, ok := m.deps.Query.(Sequence)
	if !ok {
		return 0
	}

	lastID, err := seq.LastID(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Failed to read the alarm id sequence", "error", err)

		return 0
	}

	return lastID
}

// spawn starts an actor for v. Callers hold mu.
func (m *Manager) spawn(v alarm.Value) *machine {
	mc := newMachine(v, m.deps)
	m.machines[v.ID] = mc

	m.wg.Go(func() {
		mc.run(m.ctx)
	})

	return mc
}

// Wait blocks until every state machine has exited after Start's context is done.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// lookup returns the actor serving id.
func (m *Manager) lookup(id int) (*machine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return nil, ErrNotStarted
	}

	mc, ok := m.machines[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", alarm.ErrNotFound, id)
	}

	return mc, nil
}

// dispatch routes cmd to the actor serving id.
func (m *Manager) dispatch(id int, cmd command) error {
	mc, err := m.lookup(id)
	if err != nil {
		return err
	}

	mc.send(cmd)

	return nil
}

// CreateNewAlarm allocates a fresh id, stores a disabled record with default
// time and starts its state machine.
func (m *Manager) CreateNewAlarm() (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return nil, ErrNotStarted
	}

	v := alarm.New(m.nextID)
	m.nextID++

	m.deps.Store.Put(v)
	m.spawn(v)

	logger.InfoKV(m.ctx, "Alarm created", "alarm_id", v.ID)

	return &Handle{id: v.ID, manager: m}, nil
}

// Alarm returns a handle for the alarm with the given id.
func (m *Manager) Alarm(id int) (*Handle, error) {
	if _, err := m.lookup(id); err != nil {
		return nil, err
	}

	return &Handle{id: id, manager: m}, nil
}

// AlarmAt returns a handle for the alarm at position i of the current list.
func (m *Manager) AlarmAt(i int) (*Handle, error) {
	v, ok := m.deps.Store.At(i)
	if !ok {
		return nil, fmt.Errorf("%w: index %d", alarm.ErrNotFound, i)
	}

	return m.Alarm(v.ID)
}

// Alarms returns the current list snapshot.
func (m *Manager) Alarms() store.Snapshot {
	return m.deps.Store.Alarms()
}

// Enable switches the alarm on or off.
func (m *Manager) Enable(id int, enable bool) error {
	return m.dispatch(id, command{kind: cmdEnable, enable: enable})
}

// Edit applies a batch of field changes atomically.
// Out-of-range values are rejected before the command is queued.
func (m *Manager) Edit(id int, change alarm.Change) error {
	mc, err := m.lookup(id)
	if err != nil {
		return err
	}

	if current, ok := m.deps.Store.Get(id); ok {
		if err := change.Validate(current); err != nil {
			return err
		}
	}

	mc.send(command{kind: cmdEdit, change: change})

	return nil
}

// Delete removes the alarm. The id stops resolving immediately; the record
// leaves the store once the state machine processes the command.
func (m *Manager) Delete(id int) error {
	_, err := m.remove(id)

	return err
}

// DeleteAndWait deletes the alarm and waits until its record left the store.
func (m *Manager) DeleteAndWait(ctx context.Context, id int) error {
	mc, err := m.remove(id)
	if err != nil {
		return err
	}

	select {
	case <-mc.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for alarm %d deletion: %w", id, ctx.Err())
	}
}

func (m *Manager) remove(id int) (*machine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return nil, ErrNotStarted
	}

	mc, ok := m.machines[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", alarm.ErrNotFound, id)
	}

	delete(m.machines, id)
	mc.send(command{kind: cmdDelete})

	return mc, nil
}

// OnAlarmFired is invoked when the wake-up timer fires for id. The manager
// trusts the id and type delivered by the timer.
func (m *Manager) OnAlarmFired(id int, occurrence alarm.OccurrenceType) error {
	return m.dispatch(id, command{kind: cmdFired, occurrence: occurrence})
}

// OnEntryFired is invoked with the entry the wake-up timer was armed for.
// A fire for an instant the alarm no longer waits for is ignored.
func (m *Manager) OnEntryFired(entry alarm.ScheduledEntry) error {
	return m.dispatch(entry.ID, command{kind: cmdFired, occurrence: entry.Type, firedAt: entry.Time})
}

// Dismiss stops the sounding or snoozed occurrence.
func (m *Manager) Dismiss(id int) error {
	return m.dispatch(id, command{kind: cmdDismiss})
}

// Snooze postpones the sounding occurrence by the configured snooze duration.
func (m *Manager) Snooze(id int) error {
	return m.dispatch(id, command{kind: cmdSnooze})
}

// SnoozeTo postpones the sounding occurrence to the next hour:minute.
func (m *Manager) SnoozeTo(id int, at alarm.ClockTime) error {
	if err := alarm.ValidateTime(at.Hour, at.Minute, 0); err != nil {
		return err
	}

	return m.dispatch(id, command{kind: cmdSnooze, snoozeTo: &at})
}

// TimeSetChanged tells every alarm that the device clock or time zone changed.
func (m *Manager) TimeSetChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mc := range m.machines {
		mc.send(command{kind: cmdTimeSetChanged})
	}
}

// Sync waits until every command queued for id before the call was processed.
func (m *Manager) Sync(ctx context.Context, id int) error {
	mc, err := m.lookup(id)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	mc.send(command{kind: cmdSync, done: done})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sync alarm %d: %w", id, ctx.Err())
	}
}

package alarms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/calendar"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/store"
)

// wednesday is the start of every test clock: Wed 2026-10-21 10:15:30 UTC.
//
//nolint:gochecknoglobals // Shared test fixture.
var wednesday = time.Date(2026, time.October, 21, 10, 15, 30, 0, time.UTC)

type notification struct {
	id     int
	action alarm.Action
	// listed tells whether the alarm was in the store when the action was sent.
	listed bool
}

type recordingNotifier struct {
	mu     sync.Mutex
	store  *store.Store
	events []notification
}

func (n *recordingNotifier) BroadcastAlarmState(_ context.Context, id int, action alarm.Action) {
	n.mu.Lock()
	defer n.mu.Unlock()

	listed := false
	if n.store != nil {
		_, listed = n.store.Get(id)
	}

	n.events = append(n.events, notification{id: id, action: action, listed: listed})
}

func (n *recordingNotifier) all(id int) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var result []notification

	for _, e := range n.events {
		if e.id == id {
			result = append(result, e)
		}
	}

	return result
}

func (n *recordingNotifier) count(id int, action alarm.Action) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := 0

	for _, e := range n.events {
		if e.id == id && e.action == action {
			total++
		}
	}

	return total
}

func (n *recordingNotifier) actions(id int) []alarm.Action {
	n.mu.Lock()
	defer n.mu.Unlock()

	var result []alarm.Action

	for _, e := range n.events {
		if e.id == id {
			result = append(result, e.action)
		}
	}

	return result
}

type queryFunc func(ctx context.Context) ([]alarm.Value, error)

func (f queryFunc) Query(ctx context.Context) ([]alarm.Value, error) {
	return f(ctx)
}

type harness struct {
	manager  *Manager
	store    *store.Store
	notifier *recordingNotifier
	clock    *calendar.Adjustable
}

// startHarness builds and starts a manager inside a synctest bubble.
// The returned function stops every state machine.
func startHarness(t *testing.T, query Query) (*harness, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	h := &harness{
		store: store.New(),
		clock: calendar.NewAdjustable(wednesday),
	}
	h.notifier = &recordingNotifier{store: h.store}

	h.manager = NewManager(Dependencies{
		Store:    h.store,
		Query:    query,
		Notifier: h.notifier,
		Calendar: h.clock,
		Prefs:    StaticPrefs(alarm.DefaultPrefs()),
	})

	_, _ = h.manager.Start(ctx)

	return h, func() {
		cancel()
		h.manager.Wait()
	}
}

func (h *harness) value(t *testing.T, id int) alarm.Value {
	t.Helper()

	v, ok := h.store.Get(id)
	require.True(t, ok, "alarm %d not in store", id)

	return v
}

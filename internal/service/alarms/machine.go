package alarms

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
)

// errDeleted marks commands still queued when the alarm was deleted.
var errDeleted = errors.New("alarm deleted")

// machine is the actor owning one alarm id.
type machine struct {
	// id is the alarm served by this actor.
	id int
	// value is the authoritative record, private to the actor goroutine.
	value alarm.Value
	// deps are the shared collaborators.
	deps *Dependencies

	// mu guards queue.
	mu sync.Mutex
	// queue is the unbounded mailbox.
	queue []command
	// wake is signaled when queue becomes non-empty.
	wake chan struct{}
	// done is closed when the actor exits.
	done chan struct{}
}

func newMachine(v alarm.Value, deps *Dependencies) *machine {
	return &machine{
		id:    v.ID,
		value: v,
		deps:  deps,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// send enqueues cmd without blocking.
func (m *machine) send(cmd command) {
	m.mu.Lock()
	m.queue = append(m.queue, cmd)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// take removes and returns everything queued so far.
func (m *machine) take() []command {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := m.queue
	m.queue = nil

	return batch
}

// run processes commands in arrival order until ctx is done or the alarm is deleted.
func (m *machine) run(ctx context.Context) {
	ctx = logger.WithKV(ctx, "alarm_id", m.id)

	defer func() {
		// Release barriers that will never be reached.
		for _, cmd := range m.take() {
			if cmd.done != nil {
				close(cmd.done)
			}
		}

		close(m.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
		}

		batch := m.take()
		for i, cmd := range batch {
			if m.handle(ctx, cmd) {
				for _, rest := range batch[i+1:] {
					if rest.done != nil {
						close(rest.done)

						continue
					}

					logger.DebugKV(ctx, "Dropping command for deleted alarm",
						"command", rest.String(),
						"error", errDeleted,
					)
				}

				return
			}
		}
	}
}

// handle applies one command and reports whether the actor must stop.
func (m *machine) handle(ctx context.Context, cmd command) bool {
	if cmd.kind == cmdSync {
		close(cmd.done)

		return false
	}

	e := env{
		now:   m.deps.Calendar.Now(),
		prefs: m.deps.Prefs.Prefs(),
	}

	from := m.value.State

	out, err := transition(m.value, cmd, e)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to process alarm command",
			"command", cmd.String(),
			"state", from,
			"error", err,
		)
		m.deps.Metrics.CommandProcessed(string(cmd.kind), metrics.ResultError)

		return false
	}

	if out.ignored {
		logger.WarnKV(ctx, "Ignoring alarm command",
			"command", cmd.String(),
			"state", from,
		)
		m.deps.Metrics.CommandProcessed(string(cmd.kind), metrics.ResultIgnored)

		return false
	}

	// A deleted alarm announces the end of its occurrence while its record
	// is still listed.
	if out.deleted {
		m.broadcast(ctx, out.actions)
		m.deps.Store.Remove(m.id)
	} else {
		m.value = out.value
		m.deps.Store.Put(m.value)
		m.broadcast(ctx, out.actions)
	}

	logger.DebugKV(ctx, "Processed alarm command",
		"command", cmd.String(),
		"from", from,
		"to", m.value.State,
		"alarm_time", m.value.AlarmTime,
		"deleted", out.deleted,
	)
	m.deps.Metrics.CommandProcessed(string(cmd.kind), metrics.ResultApplied)

	return out.deleted
}

func (m *machine) broadcast(ctx context.Context, actions []alarm.Action) {
	for _, action := range actions {
		m.deps.Notifier.BroadcastAlarmState(ctx, m.id, action)
		m.deps.Metrics.NotificationSent(action)
	}
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/store"
)

const (
	operationArm    = "arm"
	operationCancel = "cancel"
)

// Setter is the platform wake-up timer. Arming the same entry twice has no
// additional effect; both calls report whether the request succeeded.
type Setter interface {
	// SetUpRTCAlarm arms the timer for entry, replacing any previous arm.
	SetUpRTCAlarm(ctx context.Context, entry alarm.ScheduledEntry) error
	// Cancel disarms the timer.
	Cancel(ctx context.Context) error
}

// Scheduler keeps exactly one wake-up armed for the earliest pending occurrence.
type Scheduler struct {
	// store is observed for list changes and receives decisions.
	store *store.Store
	// setter is the wake-up timer.
	setter Setter
	// metrics records timer operations. Nil disables metrics.
	metrics *metrics.Metrics

	// acked is the last decision the setter accepted.
	acked store.Next
	// hasAcked is false until the setter accepted a first decision.
	hasAcked bool
}

// New creates a scheduler.
func New(st *store.Store, setter Setter, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		store:   st,
		setter:  setter,
		metrics: m,
	}
}

// Run recomputes the schedule on every store change until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "scheduler")

	for snapshot := range s.store.SubscribeAlarms(ctx) {
		s.recompute(ctx, snapshot)
	}
}

// recompute selects the earliest entry of snapshot, applies it to the setter
// when it differs from the acknowledged one and publishes the decision.
func (s *Scheduler) recompute(ctx context.Context, snapshot store.Snapshot) {
	entry, armed := alarm.Earliest(snapshot.Alarms)
	decision := store.Next{Entry: entry, Armed: armed}

	var err error

	if !s.hasAcked || !sameDecision(s.acked, decision) {
		err = s.apply(ctx, decision)
		if err == nil {
			s.acked = decision
			s.hasAcked = true
		}
	}

	s.metrics.ObserveAlarms(snapshot.Alarms)
	s.metrics.ObserveNext(decision.Entry, decision.Armed)

	s.store.PublishNext(decision)
	s.store.PublishAlarmSet(store.AlarmSet{
		Version: snapshot.Version,
		Next:    decision,
		Err:     err,
	})
}

func (s *Scheduler) apply(ctx context.Context, decision store.Next) error {
	if !decision.Armed {
		err := s.setter.Cancel(ctx)
		s.metrics.TimerOperation(operationCancel, err)

		if err != nil {
			logger.ErrorKV(ctx, "Failed to cancel wake-up timer", "error", err)

			return fmt.Errorf("cancel wake-up: %w", err)
		}

		logger.DebugKV(ctx, "Wake-up timer cancelled")

		return nil
	}

	err := s.setter.SetUpRTCAlarm(ctx, decision.Entry)
	s.metrics.TimerOperation(operationArm, err)

	if err != nil {
		logger.ErrorKV(ctx, "Failed to arm wake-up timer",
			"alarm_id", decision.Entry.ID,
			"type", decision.Entry.Type,
			"at", decision.Entry.Time,
			"error", err,
		)

		return fmt.Errorf("arm wake-up for %s: %w", decision.Entry, err)
	}

	logger.InfoKV(ctx, "Wake-up timer armed",
		"alarm_id", decision.Entry.ID,
		"type", decision.Entry.Type,
		"at", decision.Entry.Time,
	)

	return nil
}

func sameDecision(a, b store.Next) bool {
	if a.Armed != b.Armed {
		return false
	}

	return !a.Armed || a.Entry.Equal(b.Entry)
}

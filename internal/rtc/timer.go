package rtc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/alarm-clock/internal/calendar"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

var (
	// ErrClosed is returned once the timer loop has stopped.
	ErrClosed = errors.New("wake-up timer is closed")
	// ErrInvalidEntry is returned for entries without id, type or time.
	ErrInvalidEntry = errors.New("invalid scheduled entry")
)

// FireFunc receives the armed entry when it is due.
type FireFunc func(ctx context.Context, entry alarm.ScheduledEntry)

// request is one arm or cancel.
type request struct {
	// entry is the occurrence to wake up for.
	entry alarm.ScheduledEntry
	// armed is false for a cancel.
	armed bool
}

// Timer implements the scheduler's Setter on top of time.Timer.
type Timer struct {
	// source is the clock entries are compared against.
	source calendar.Source
	// fire is invoked on the loop goroutine.
	fire FireFunc
	// mu makes the drain-then-send in reload atomic.
	mu sync.Mutex
	// requests holds the latest unprocessed request.
	requests chan request
	// closed is set when Run returns.
	closed atomic.Bool
}

// New creates a timer; call Run to start it.
func New(source calendar.Source, fire FireFunc) *Timer {
	return &Timer{
		source:   source,
		fire:     fire,
		requests: make(chan request, 1),
	}
}

// SetUpRTCAlarm arms the timer for entry, replacing any previous arm.
func (t *Timer) SetUpRTCAlarm(_ context.Context, entry alarm.ScheduledEntry) error {
	if entry.ID <= 0 || !entry.Type.Valid() || entry.Time.IsZero() {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, entry)
	}

	return t.reload(request{entry: entry, armed: true})
}

// Cancel disarms the timer.
func (t *Timer) Cancel(context.Context) error {
	return t.reload(request{})
}

// reload replaces the pending request with req.
func (t *Timer) reload(req request) error {
	if t.closed.Load() {
		return ErrClosed
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.requests:
	default:
	}

	t.requests <- req

	return nil
}

// Run serves requests until ctx is done.
func (t *Timer) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "rtc")

	defer t.closed.Store(true)

	timer := time.NewTimer(math.MaxInt64)
	timer.Stop()

	var pending request

	for {
		select {
		case <-ctx.Done():
			timer.Stop()

			return

		case pending = <-t.requests:
			timer.Stop()

			if pending.armed {
				timer.Reset(max(pending.entry.Time.Sub(t.source.Now()), 0))
			}

		case <-timer.C:
			if !pending.armed {
				continue
			}

			// Wall clock drift: wait again.
			if wait := pending.entry.Time.Sub(t.source.Now()); wait > 0 {
				timer.Reset(wait)

				continue
			}

			entry := pending.entry
			pending = request{}

			logger.InfoKV(ctx, "Wake-up timer fired",
				"alarm_id", entry.ID,
				"type", entry.Type,
				"at", entry.Time,
			)

			t.fire(ctx, entry)
		}
	}
}

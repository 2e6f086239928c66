package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Options controls the checker polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between checks.
	PollInterval time.Duration
}

// DefaultPollInterval is used when no interval is provided.
const DefaultPollInterval = 5 * time.Second

// Source is the part of the daemon API the checker polls.
type Source interface {
	List(ctx context.Context) (store.Snapshot, error)
	Next(ctx context.Context) (store.Next, error)
}

// Run polls the daemon until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-checker")

	cfg, err := client.LoadSettings(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	// Determine server address: command line argument overrides config.
	serverAddress := cfg.GRPCAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	conn, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = conn.Close()
	}()

	logger.InfoKV(ctx, "Watching alarms", "server_address", serverAddress, "interval", opts.PollInterval.String())

	return NewWatcher(conn).Poll(ctx, opts.PollInterval)
}

// Watcher remembers the last observed state and reports differences.
type Watcher struct {
	// source is the daemon.
	source Source
	// alarms are the last seen values by id.
	alarms map[int]alarm.Value
	// next is the last seen wake-up.
	next store.Next
	// primed is false until the first successful check.
	primed bool
}

// NewWatcher creates a watcher over source.
func NewWatcher(source Source) *Watcher {
	return &Watcher{source: source}
}

// Poll checks immediately and then on every tick until ctx is canceled.
func (w *Watcher) Poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Check(ctx); err != nil {
			logger.ErrorKV(ctx, "Check failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
		}
	}
}

// Check fetches the alarm list and the armed wake-up once and logs changes.
// It returns the number of changes since the previous check; the first
// check only records the baseline.
func (w *Watcher) Check(ctx context.Context) (int, error) {
	snapshot, err := w.source.List(ctx)
	if err != nil {
		return 0, err
	}

	next, err := w.source.Next(ctx)
	if err != nil {
		return 0, err
	}

	current := make(map[int]alarm.Value, snapshot.Len())
	for _, v := range snapshot.Alarms {
		current[v.ID] = v
	}

	if !w.primed {
		logger.InfoKV(ctx, "Alarm state", "alarms", snapshot.Len(), "next", describeNext(next))

		for _, v := range snapshot.Alarms {
			if v.State.IsSounding() {
				logger.WarnKV(ctx, "Alarm is ringing", "alarm", v.String())
			}
		}

		w.alarms, w.next, w.primed = current, next, true

		return 0, nil
	}

	changes := w.compareAlarms(ctx, current)

	if next.Armed != w.next.Armed || !next.Entry.Equal(w.next.Entry) {
		logger.InfoKV(ctx, "Next wake-up changed", "from", describeNext(w.next), "to", describeNext(next))

		changes++
	}

	w.alarms, w.next = current, next

	return changes, nil
}

func (w *Watcher) compareAlarms(ctx context.Context, current map[int]alarm.Value) int {
	changes := 0

	for id, prev := range w.alarms {
		if _, ok := current[id]; !ok {
			logger.InfoKV(ctx, "Alarm deleted", "alarm", prev.String())

			changes++
		}
	}

	for id, v := range current {
		prev, ok := w.alarms[id]

		switch {
		case !ok:
			logger.InfoKV(ctx, "Alarm created", "alarm", v.String())
		case prev.State == v.State:
			continue
		case v.State.IsSounding():
			logger.WarnKV(ctx, "Alarm is ringing", "alarm", v.String())
		case prev.State.IsSounding():
			logger.InfoKV(ctx, "Alarm stopped ringing", "alarm", v.String(), "state", v.State)
		default:
			logger.InfoKV(ctx, "Alarm state changed", "alarm_id", id, "from", prev.State, "to", v.State)
		}

		changes++
	}

	return changes
}

func describeNext(next store.Next) string {
	if !next.Armed {
		return "none"
	}

	return next.Entry.String()
}

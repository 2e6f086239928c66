package notify

import (
	"context"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Notifier receives alarm actions without acknowledging them.
type Notifier interface {
	// BroadcastAlarmState announces that action happened to alarm id.
	BroadcastAlarmState(ctx context.Context, id int, action alarm.Action)
}

// Log writes every action to the context logger.
type Log struct{}

// BroadcastAlarmState logs the action at info level.
func (Log) BroadcastAlarmState(ctx context.Context, id int, action alarm.Action) {
	logger.InfoKV(ctx, "Alarm state broadcast", "alarm_id", id, "action", action)
}

// Multi forwards every action to each receiver in order.
type Multi []Notifier

// BroadcastAlarmState forwards to all receivers.
func (m Multi) BroadcastAlarmState(ctx context.Context, id int, action alarm.Action) {
	for _, n := range m {
		if n != nil {
			n.BroadcastAlarmState(ctx, id, action)
		}
	}
}

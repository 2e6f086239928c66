package web

import (
	"context"
	"sync"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// hubBufferSize is how many actions a slow client may lag behind.
const hubBufferSize = 16

// PrefsSource returns the current global preferences.
type PrefsSource interface {
	// Prefs returns a snapshot read at the moment of the call.
	Prefs() alarm.Prefs
}

// Hub fans alarm actions out to connected WebSocket clients.
// It satisfies the alarm notifier contract and never blocks the caller.
type Hub struct {
	// prefs supplies the auto-silence duration.
	prefs PrefsSource
	// mu guards clients.
	mu sync.Mutex
	// clients are the per-connection queues.
	clients map[chan actionJSON]struct{}
}

// NewHub creates an empty hub.
func NewHub(prefs PrefsSource) *Hub {
	return &Hub{
		prefs:   prefs,
		clients: make(map[chan actionJSON]struct{}),
	}
}

// BroadcastAlarmState queues the action for every client. Clients whose
// queue is full miss the action.
func (h *Hub) BroadcastAlarmState(ctx context.Context, id int, action alarm.Action) {
	event := actionJSON{
		AlarmID:            id,
		Action:             action,
		AutoSilenceMinutes: h.prefs.Prefs().AutoSilenceMinutes,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- event:
		default:
			logger.WarnKV(ctx, "WebSocket client lags behind, dropping action",
				"alarm_id", id,
				"action", action,
			)
		}
	}
}

// subscribe registers a client queue; the returned function unregisters it.
func (h *Hub) subscribe() (<-chan actionJSON, func()) {
	ch := make(chan actionJSON, hubBufferSize)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// webhookQueueSize bounds actions waiting for delivery.
	webhookQueueSize = 64
	// defaultWebhookTimeout bounds one delivery.
	defaultWebhookTimeout = 10 * time.Second
)

var (
	// errEmptyURL is returned when the webhook has no target.
	errEmptyURL = errors.New("webhook: empty url")
	// errNon2xx is returned for unsuccessful responses.
	errNon2xx = errors.New("webhook: non-2xx response")
)

// PrefsSource returns the current global preferences.
type PrefsSource interface {
	// Prefs returns a snapshot read at the moment of the call.
	Prefs() alarm.Prefs
}

// Event is the JSON body posted for each action.
type Event struct {
	// EventID is unique per delivery attempt sequence; receivers use it to deduplicate.
	EventID string `json:"event_id"`
	// AlarmID is the alarm the action belongs to.
	AlarmID int `json:"alarm_id"`
	// Action is the alarm action.
	Action alarm.Action `json:"action"`
	// At is when the action was broadcast.
	At time.Time `json:"at"`
	// AutoSilenceMinutes tells the ringing side when to stop on its own.
	AutoSilenceMinutes int `json:"auto_silence_minutes"`
}

// Webhook posts actions to a URL from a background worker so that
// BroadcastAlarmState never blocks a state machine.
type Webhook struct {
	// url is the target endpoint.
	url string
	// client performs the requests.
	client *http.Client
	// prefs supplies the auto-silence duration.
	prefs PrefsSource
	// queue holds events waiting for delivery.
	queue chan Event
	// now stamps events.
	now func() time.Time
}

// WebhookOption configures the webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(w *Webhook) {
		if client != nil {
			w.client = client
		}
	}
}

// NewWebhook creates a webhook notifier; call Run to start delivering.
func NewWebhook(url string, prefs PrefsSource, opts ...WebhookOption) (*Webhook, error) {
	if url == "" {
		return nil, errEmptyURL
	}

	w := &Webhook{
		url:    url,
		client: &http.Client{Timeout: defaultWebhookTimeout},
		prefs:  prefs,
		queue:  make(chan Event, webhookQueueSize),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// BroadcastAlarmState queues the action; it drops it when the queue is full.
func (w *Webhook) BroadcastAlarmState(ctx context.Context, id int, action alarm.Action) {
	event := Event{
		EventID:            uuid.NewString(),
		AlarmID:            id,
		Action:             action,
		At:                 w.now().UTC(),
		AutoSilenceMinutes: w.prefs.Prefs().AutoSilenceMinutes,
	}

	select {
	case w.queue <- event:
	default:
		logger.WarnKV(ctx, "Webhook queue is full, dropping alarm action",
			"alarm_id", id,
			"action", action,
		)
	}
}

// Run delivers queued events until ctx is done.
func (w *Webhook) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "webhook")

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.queue:
			if err := w.Send(ctx, event); err != nil {
				logger.ErrorKV(ctx, "Failed to deliver alarm action",
					"event_id", event.EventID,
					"alarm_id", event.AlarmID,
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}

// Send posts one event synchronously.
func (w *Webhook) Send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", errNon2xx, resp.StatusCode)
	}

	return nil
}

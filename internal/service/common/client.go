//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarmclock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Client wraps the AlarmClockService gRPC client with domain conversions.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the AlarmClockService client.
	api api.AlarmClockClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is sent with every call when set.
	actor string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor attaches the actor to every call.
func WithActor(actor Actor) Option {
	return func(c *Client) {
		c.actor = actor.String()
	}
}

// WithConnection reuses an existing connection instead of dialing.
func WithConnection(conn grpc.ClientConnInterface) Option {
	return func(c *Client) {
		c.api = api.NewAlarmClockClient(conn)
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the daemon.
// Note: this uses insecure transport credentials; the daemon is meant for
// loopback or a trusted network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm clock daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewAlarmClockClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// List returns every alarm.
func (c *Client) List(ctx context.Context) (store.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.List(callCtx, new(emptypb.Empty))
	if err != nil {
		return store.Snapshot{}, fromStatus("list alarms", err)
	}

	return api.SnapshotFromProto(resp)
}

// Get returns one alarm.
func (c *Client) Get(ctx context.Context, id int) (alarm.Value, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Get(callCtx, wrapperspb.Int64(int64(id)))
	if err != nil {
		return alarm.Value{}, fromStatus(fmt.Sprintf("get alarm %d", id), err)
	}

	return api.AlarmFromProto(resp)
}

// Create adds an alarm with change applied.
func (c *Client) Create(ctx context.Context, change alarm.Change) (alarm.Value, error) {
	req, err := api.ChangeToProto(0, change)
	if err != nil {
		return alarm.Value{}, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Create(callCtx, req)
	if err != nil {
		return alarm.Value{}, fromStatus("create alarm", err)
	}

	return api.AlarmFromProto(resp)
}

// Edit applies change to the alarm.
func (c *Client) Edit(ctx context.Context, id int, change alarm.Change) (alarm.Value, error) {
	req, err := api.ChangeToProto(id, change)
	if err != nil {
		return alarm.Value{}, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Edit(callCtx, req)
	if err != nil {
		return alarm.Value{}, fromStatus(fmt.Sprintf("edit alarm %d", id), err)
	}

	return api.AlarmFromProto(resp)
}

// Enable switches the alarm on or off.
func (c *Client) Enable(ctx context.Context, id int, enable bool) (alarm.Value, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	call := c.api.Disable
	if enable {
		call = c.api.Enable
	}

	resp, err := call(callCtx, wrapperspb.Int64(int64(id)))
	if err != nil {
		return alarm.Value{}, fromStatus(fmt.Sprintf("switch alarm %d", id), err)
	}

	return api.AlarmFromProto(resp)
}

// Snooze postpones the sounding alarm, to at when provided.
func (c *Client) Snooze(ctx context.Context, id int, at *alarm.ClockTime) (alarm.Value, error) {
	req, err := api.SnoozeRequest(id, at)
	if err != nil {
		return alarm.Value{}, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Snooze(callCtx, req)
	if err != nil {
		return alarm.Value{}, fromStatus(fmt.Sprintf("snooze alarm %d", id), err)
	}

	return api.AlarmFromProto(resp)
}

// Dismiss stops the sounding or snoozed alarm.
func (c *Client) Dismiss(ctx context.Context, id int) (alarm.Value, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Dismiss(callCtx, wrapperspb.Int64(int64(id)))
	if err != nil {
		return alarm.Value{}, fromStatus(fmt.Sprintf("dismiss alarm %d", id), err)
	}

	return api.AlarmFromProto(resp)
}

// Delete removes the alarm.
func (c *Client) Delete(ctx context.Context, id int) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.Delete(callCtx, wrapperspb.Int64(int64(id))); err != nil {
		return fromStatus(fmt.Sprintf("delete alarm %d", id), err)
	}

	return nil
}

// Next returns the armed wake-up.
func (c *Client) Next(ctx context.Context) (store.Next, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Next(callCtx, new(emptypb.Empty))
	if err != nil {
		return store.Next{}, fromStatus("get next alarm", err)
	}

	return api.NextFromProto(resp)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, when
// known, travels as metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.actor != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, api.ActorMetadataKey, c.actor)
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// fromStatus turns a gRPC status into an error wrapping the matching domain error.
func fromStatus(operation string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s: %w", operation, err)
	}

	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", operation, alarm.ErrNotFound)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w: %s", operation, alarm.ErrInvalidTime, st.Message())
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

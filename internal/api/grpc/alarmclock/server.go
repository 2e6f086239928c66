package alarmclock

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Commands abstracts the alarm operations the transport layer depends on.
type Commands interface {
	CreateNewAlarm() (*alarms.Handle, error)
	Enable(id int, enable bool) error
	Edit(id int, change alarm.Change) error
	Snooze(id int) error
	SnoozeTo(id int, at alarm.ClockTime) error
	Dismiss(id int) error
	DeleteAndWait(ctx context.Context, id int) error
	Sync(ctx context.Context, id int) error
}

// Reader exposes the published alarm list and scheduler decision.
type Reader interface {
	Alarms() store.Snapshot
	Get(id int) (alarm.Value, bool)
	Next() store.Next
}

// Server implements the AlarmClockService gRPC API.
type Server struct {
	// commands mutate alarms.
	commands Commands
	// reader serves reads from the store.
	reader Reader
}

// NewServer wires the provided implementations into a gRPC handler.
func NewServer(commands Commands, reader Reader) *Server {
	return &Server{
		commands: commands,
		reader:   reader,
	}
}

// List returns every alarm.
func (s *Server) List(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	result, err := SnapshotToProto(s.reader.Alarms())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return result, nil
}

// Get returns one alarm.
func (s *Server) Get(_ context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	v, ok := s.reader.Get(int(req.GetValue()))
	if !ok {
		return nil, status.Errorf(codes.NotFound, "alarm %d not found", req.GetValue())
	}

	return s.encode(v)
}

// Create allocates an alarm and applies the requested fields to it.
func (s *Server) Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	change, err := ChangeFromProto(req)
	if err != nil {
		return nil, toStatus(err)
	}

	if err = change.Validate(alarm.New(0)); err != nil {
		return nil, toStatus(err)
	}

	handle, err := s.commands.CreateNewAlarm()
	if err != nil {
		return nil, toStatus(err)
	}

	logger.InfoKV(ctx, "Alarm created over gRPC", "alarm_id", handle.ID())

	if !change.IsEmpty() {
		if err = s.commands.Edit(handle.ID(), change); err != nil {
			return nil, toStatus(err)
		}
	}

	return s.settled(ctx, handle.ID())
}

// Edit applies the requested fields.
func (s *Server) Edit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, ok, err := intField(req, FieldID)
	if err != nil {
		return nil, toStatus(err)
	}

	if !ok {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	change, err := ChangeFromProto(req)
	if err != nil {
		return nil, toStatus(err)
	}

	if err = s.commands.Edit(id, change); err != nil {
		return nil, toStatus(err)
	}

	return s.settled(ctx, id)
}

// Enable switches the alarm on.
func (s *Server) Enable(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return s.apply(ctx, req, func(id int) error {
		return s.commands.Enable(id, true)
	})
}

// Disable switches the alarm off.
func (s *Server) Disable(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return s.apply(ctx, req, func(id int) error {
		return s.commands.Enable(id, false)
	})
}

// Snooze postpones a sounding alarm.
func (s *Server) Snooze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, at, err := SnoozeFromProto(req)
	if err != nil {
		return nil, toStatus(err)
	}

	if at != nil {
		err = s.commands.SnoozeTo(id, *at)
	} else {
		err = s.commands.Snooze(id)
	}

	if err != nil {
		return nil, toStatus(err)
	}

	return s.settled(ctx, id)
}

// Dismiss stops a sounding or snoozed alarm.
func (s *Server) Dismiss(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return s.apply(ctx, req, s.commands.Dismiss)
}

// Delete removes the alarm and waits until it left the list.
func (s *Server) Delete(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if err := s.commands.DeleteAndWait(ctx, int(req.GetValue())); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// Next returns the wake-up the scheduler armed.
func (s *Server) Next(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	result, err := NextToProto(s.reader.Next())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return result, nil
}

// apply runs an id command and returns the resulting alarm.
func (s *Server) apply(
	ctx context.Context,
	req *wrapperspb.Int64Value,
	command func(id int) error,
) (*structpb.Struct, error) {
	id := int(req.GetValue())

	if err := command(id); err != nil {
		return nil, toStatus(err)
	}

	return s.settled(ctx, id)
}

// settled waits for the alarm's queued commands and returns its value.
func (s *Server) settled(ctx context.Context, id int) (*structpb.Struct, error) {
	if err := s.commands.Sync(ctx, id); err != nil {
		return nil, toStatus(err)
	}

	v, ok := s.reader.Get(id)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "alarm %d not found", id)
	}

	return s.encode(v)
}

func (s *Server) encode(v alarm.Value) (*structpb.Struct, error) {
	result, err := AlarmToProto(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return result, nil
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, alarm.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, alarm.ErrInvalidTime), errors.Is(err, ErrInvalidField):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, alarms.ErrNotStarted):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

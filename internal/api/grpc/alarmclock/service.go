package alarmclock

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClockService"

// Full method names.
const (
	MethodList    = "/" + ServiceName + "/List"
	MethodGet     = "/" + ServiceName + "/Get"
	MethodCreate  = "/" + ServiceName + "/Create"
	MethodEdit    = "/" + ServiceName + "/Edit"
	MethodEnable  = "/" + ServiceName + "/Enable"
	MethodDisable = "/" + ServiceName + "/Disable"
	MethodSnooze  = "/" + ServiceName + "/Snooze"
	MethodDismiss = "/" + ServiceName + "/Dismiss"
	MethodDelete  = "/" + ServiceName + "/Delete"
	MethodNext    = "/" + ServiceName + "/Next"
)

// AlarmClockServer is the server API of the alarm clock service.
type AlarmClockServer interface {
	// List returns every alarm and the list version.
	List(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// Get returns one alarm.
	Get(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	// Create adds an alarm with the provided fields applied.
	Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Edit applies the provided fields to the alarm named by "id".
	Edit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Enable switches the alarm on.
	Enable(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	// Disable switches the alarm off.
	Disable(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	// Snooze postpones a sounding alarm, optionally to an explicit "time".
	Snooze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Dismiss stops a sounding or snoozed alarm.
	Dismiss(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	// Delete removes the alarm.
	Delete(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error)
	// Next returns the wake-up the scheduler armed.
	Next(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the alarm clock service for grpc.Server.
//
//nolint:gochecknoglobals // gRPC service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unary(MethodList, AlarmClockServer.List)},
		{MethodName: "Get", Handler: unary(MethodGet, AlarmClockServer.Get)},
		{MethodName: "Create", Handler: unary(MethodCreate, AlarmClockServer.Create)},
		{MethodName: "Edit", Handler: unary(MethodEdit, AlarmClockServer.Edit)},
		{MethodName: "Enable", Handler: unary(MethodEnable, AlarmClockServer.Enable)},
		{MethodName: "Disable", Handler: unary(MethodDisable, AlarmClockServer.Disable)},
		{MethodName: "Snooze", Handler: unary(MethodSnooze, AlarmClockServer.Snooze)},
		{MethodName: "Dismiss", Handler: unary(MethodDismiss, AlarmClockServer.Dismiss)},
		{MethodName: "Delete", Handler: unary(MethodDelete, AlarmClockServer.Delete)},
		{MethodName: "Next", Handler: unary(MethodNext, AlarmClockServer.Next)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmclock/v1/alarmclock.proto",
}

// RegisterAlarmClockServer registers srv on the registrar.
func RegisterAlarmClockServer(registrar grpc.ServiceRegistrar, srv AlarmClockServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	fullMethod string,
	call func(AlarmClockServer, context.Context, PReq) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(PReq)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// AlarmClockClient is the client API of the alarm clock service.
type AlarmClockClient interface {
	List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Get(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Edit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Enable(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Disable(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Snooze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Dismiss(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Delete(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Next(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type alarmClockClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmClockClient returns a client bound to the connection.
func NewAlarmClockClient(cc grpc.ClientConnInterface) AlarmClockClient {
	return &alarmClockClient{cc: cc}
}

func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) List(
	ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodList, in, opts)
}

func (c *alarmClockClient) Get(
	ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodGet, in, opts)
}

func (c *alarmClockClient) Create(
	ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodCreate, in, opts)
}

func (c *alarmClockClient) Edit(
	ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodEdit, in, opts)
}

func (c *alarmClockClient) Enable(
	ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodEnable, in, opts)
}

func (c *alarmClockClient) Disable(
	ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodDisable, in, opts)
}

func (c *alarmClockClient) Snooze(
	ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodSnooze, in, opts)
}

func (c *alarmClockClient) Dismiss(
	ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodDismiss, in, opts)
}

func (c *alarmClockClient) Delete(
	ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodDelete, in, opts)
}

func (c *alarmClockClient) Next(
	ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodNext, in, opts)
}

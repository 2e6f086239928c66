package alarmclock

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// ActorMetadataKey carries "user@host" of the calling client.
const ActorMetadataKey = "x-alarm-actor"

// LoggingInterceptor attaches the caller to the request logger and logs
// each call with its outcome.
func LoggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.ToContext(ctx, logger.FromContext(base))
		ctx = logger.WithKV(ctx, "method", info.FullMethod)

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if actors := md.Get(ActorMetadataKey); len(actors) > 0 {
				ctx = logger.WithKV(ctx, "actor", actors[0])
			}
		}

		started := time.Now()
		resp, err := handler(ctx, req)

		if err != nil {
			logger.WarnKV(ctx, "RPC failed",
				"code", status.Code(err).String(),
				"error", err,
				"duration", time.Since(started),
			)

			return resp, err
		}

		logger.DebugKV(ctx, "RPC handled", "duration", time.Since(started))

		return resp, nil
	}
}

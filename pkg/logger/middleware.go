package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDMetadataKey is the gRPC metadata key carrying the request id.
const RequestIDMetadataKey = "x-request-id"

// RequestIDInterceptor is a gRPC interceptor that puts the caller's request id,
// or a fresh one, into the context.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDMetadataKey); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		return handler(WithRequestID(ctx, requestID), req)
	}
}

// UnaryLoggingInterceptor logs each gRPC call with its outcome.
func UnaryLoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		resp, err := handler(ctx, req)
		l := WithContext(ctx, log).With(zap.String("method", info.FullMethod))
		if err != nil {
			l.Warn("grpc call failed", zap.Error(err))
		} else {
			l.Debug("grpc call")
		}
		return resp, err
	}
}

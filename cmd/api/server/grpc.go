package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"user-service/internal/adapter/grpc/middleware"
	"user-service/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing the standard health service.
func SetupGRPC(serviceName string, l *zap.Logger, rateLimiter *middleware.RateLimiter) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.UnaryLoggingInterceptor(l),
			rateLimiter.UnaryInterceptor(),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer, healthServer
}

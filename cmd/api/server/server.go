package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"user-service/internal/adapter/grpc/middleware"
	"user-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server
	Health *health.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, router *gin.Engine, rateLimiter *middleware.RateLimiter) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		Gin:    SetupGinServer(router, cfg.App.Host, cfg.App.HTTPPort, cfg.App.CORSOrigins, l),
	}
	if cfg.App.GRPCEnabled {
		s.GRPC, s.Health = SetupGRPC(cfg.Logger.ServiceName, l, rateLimiter)
	}
	return s
}

// Start binds the REST listener and, when enabled, the gRPC listener, then
// serves both in the background. Serve failures are delivered on the
// returned channel.
func (s *Server) Start(ctx context.Context) (<-chan error, error) {
	lc := net.ListenConfig{}

	httpLis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.Gin.Addr, err)
	}

	var grpcLis net.Listener
	if s.GRPC != nil {
		grpcLis, err = lc.Listen(ctx, "tcp", s.grpcAddress())
		if err != nil {
			_ = httpLis.Close()
			return nil, fmt.Errorf("failed to listen on %s: %w", s.grpcAddress(), err)
		}
	}

	errCh := make(chan error, 2)

	go func() {
		s.Logger.Info("REST API running", zap.String("address", httpLis.Addr().String()))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("REST server: %w", err)
		}
	}()

	if grpcLis != nil {
		go func() {
			s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
			if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	return errCh, nil
}

// Shutdown stops accepting requests and drains in-flight ones until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.Health != nil {
		s.Health.Shutdown()
	}

	if s.Gin != nil {
		s.Logger.Info("shutting down REST server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("REST shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return net.JoinHostPort(s.Config.App.Host, s.Config.App.GRPCPort)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"user-service/cmd/api/di"
	"user-service/cmd/api/server"
	"user-service/internal/config"
	"user-service/internal/observability"
	"user-service/pkg/logger"
)

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container

	shutdownTracer func(context.Context) error
}

// New creates a new application instance
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &App{Config: cfg, Logger: l}

	if cfg.Telemetry.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, cfg.Logger.ServiceName, cfg.Logger.ServiceVersion, cfg.Telemetry.OTelEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		a.shutdownTracer = shutdown
	}

	container, err := di.NewContainer(ctx, cfg, l, cfg.Telemetry.OTelEnabled)
	if err != nil {
		_ = a.flushTracer(context.Background())
		return nil, fmt.Errorf("failed to create container: %w", err)
	}
	a.Container = container

	a.Server = server.New(cfg, l, container.Router, container.GRPCLimiter)

	return a, nil
}

// Run starts the servers and blocks until ctx is canceled or a server fails.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.App.Env),
		zap.String("prefix", "/"+a.Config.App.Prefix),
		zap.String("storage", a.Config.Storage.Driver),
	)

	errCh, err := a.Server.Start(ctx)
	if err != nil {
		return errors.Join(err, a.shutdown())
	}

	if a.Config.App.SwaggerEnabled {
		a.Logger.Info("Swagger UI available", zap.String("path", "/docs"))
	}

	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
		return a.shutdown()
	case err := <-errCh:
		a.Logger.Error("server stopped unexpectedly", zap.Error(err))
		return errors.Join(err, a.shutdown())
	}
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", a.Config.App.ShutdownTimeoutSeconds),
	)

	var errs []error

	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("failed to shutdown servers", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if a.Container != nil {
		a.Logger.Info("closing container resources...")
		if err := a.Container.Close(); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	if err := a.flushTracer(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.Info("application shutdown complete")

	// stdout and stderr cannot be synced on most platforms
	if err := a.Logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}

	return errors.Join(errs...)
}

func (a *App) flushTracer(ctx context.Context) error {
	if a.shutdownTracer == nil {
		return nil
	}
	if err := a.shutdownTracer(ctx); err != nil {
		a.Logger.Error("failed to shutdown tracer", zap.Error(err))
		return fmt.Errorf("tracer shutdown: %w", err)
	}
	return nil
}

// initLogger initializes the application logger
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:            cfg.Logger.Level,
		Format:           cfg.Logger.Format,
		OutputPath:       cfg.Logger.OutputPath,
		SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
		EnableSampling:   cfg.Logger.EnableSampling,
		ServiceName:      cfg.Logger.ServiceName,
		ServiceVersion:   cfg.Logger.ServiceVersion,
		Environment:      cfg.App.Env,
	})
}

// getConfigPath returns the configuration path
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

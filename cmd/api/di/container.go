package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-service/cmd/api/infrastructure"
	"user-service/internal/adapter/cache"
	sqlitedb "user-service/internal/adapter/db/sqlite"
	ginhandler "user-service/internal/adapter/gin/handler"
	ginrouter "user-service/internal/adapter/gin/router"
	grpcmiddleware "user-service/internal/adapter/grpc/middleware"
	"user-service/internal/adapter/ratelimit"
	"user-service/internal/adapter/repository/cached"
	"user-service/internal/adapter/repository/memory"
	"user-service/internal/adapter/repository/metered"
	"user-service/internal/config"
	"user-service/internal/observability"
	"user-service/internal/usecase/user"
	redisclient "user-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	InstanceID  string
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Prom        *observability.Prom
	Limiter     ratelimit.Limiter
	UserUC      *user.Usecase
	UserHandler *ginhandler.UserHandler
	Health      *ginhandler.HealthHandler
	Router      *gin.Engine
	GRPCLimiter *grpcmiddleware.RateLimiter
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger, tracing bool) (c *Container, err error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// The store lives only as long as this process, so shared caches are
	// keyed by an ID that is new on every start.
	c = &Container{Config: cfg, Logger: l, InstanceID: uuid.NewString()}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	repo, err := c.newRepository()
	if err != nil {
		return nil, err
	}

	var gatherer prometheus.Gatherer
	if cfg.Telemetry.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		c.Prom = observability.NewProm(registry)
		gatherer = registry
		repo = metered.NewUserRepository(repo, c.Prom)
	}

	limitCfg := ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.BurstCapacity,
		Enabled:           cfg.RateLimit.Enabled,
	}

	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb

		userCache := cache.NewRedisUserCache(
			rdb.Client,
			c.InstanceID,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(repo, userCache, l)
		c.Limiter = ratelimit.NewRedisLimiter(rdb.Client, limitCfg)
	} else {
		c.Limiter = ratelimit.NewLocalLimiter(limitCfg)
	}

	c.UserUC = user.New(repo, l)
	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.Health = ginhandler.NewHealthHandler(cfg.App.Env, time.Now())
	c.GRPCLimiter = grpcmiddleware.NewRateLimiter(c.Limiter, limitCfg, l)

	c.Router = ginrouter.SetupRouter(c.UserHandler, c.Health, ginrouter.Options{
		Prefix:         cfg.App.Prefix,
		ServiceName:    cfg.Logger.ServiceName,
		SwaggerEnabled: cfg.App.SwaggerEnabled,
		TracingEnabled: tracing,
		Prom:           c.Prom,
		Gatherer:       gatherer,
		Limiter:        c.Limiter,
		RateLimit:      limitCfg,
	}, l)

	l.Info("container initialized",
		zap.String("instance_id", c.InstanceID),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("metrics", cfg.Telemetry.MetricsEnabled),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	return c, nil
}

func (c *Container) newRepository() (user.Repository, error) {
	switch c.Config.Storage.Driver {
	case config.StorageSQLite:
		db, err := infrastructure.NewDatabase(c.Config, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return sqlitedb.NewUserRepo(db, c.Logger), nil
	default:
		return memory.NewUserRepo(), nil
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if closer, ok := c.Limiter.(interface{ Close() }); ok {
		closer.Close()
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}

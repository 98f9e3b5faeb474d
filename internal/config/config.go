package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
	Logger    LoggerConfig
}

// AppConfig holds configuration for the application servers
type AppConfig struct {
	Name                   string `mapstructure:"APP_NAME"`
	Env                    string `mapstructure:"APP_ENV"`
	Host                   string `mapstructure:"HOST"`
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	Prefix                 string `mapstructure:"APP_PREFIX"`
	CORSOrigins            []string
	GRPCEnabled            bool   `mapstructure:"GRPC_ENABLED"`
	GRPCPort               string `mapstructure:"GRPC_PORT"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	SwaggerEnabled         bool   `mapstructure:"SWAGGER_ENABLED"`
}

// StorageConfig selects the user repository.
type StorageConfig struct {
	Driver    string `mapstructure:"STORAGE_DRIVER"`
	SQLiteDSN string `mapstructure:"SQLITE_DSN"`
}

// RedisConfig holds configuration for the optional Redis connection
type RedisConfig struct {
	Enabled     bool   `mapstructure:"REDIS_ENABLED"`
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	CacheTTL    int    `mapstructure:"REDIS_CACHE_TTL"` // seconds
}

// RateLimitConfig holds configuration for request throttling
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_RPS"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST"`
}

// TelemetryConfig holds metrics and tracing settings
type TelemetryConfig struct {
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	OTelEnabled    bool   `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint   string `mapstructure:"OTEL_ENDPOINT"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// IsProduction reports whether APP_ENV is production.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig reads configuration from app.env in path and from environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	// Environment dependent defaults need APP_ENV resolved first.
	setDefaults(v)

	var config Config

	config.App.Name = v.GetString("APP_NAME")
	config.App.Env = v.GetString("APP_ENV")
	config.App.Host = v.GetString("HOST")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.Prefix = strings.Trim(v.GetString("APP_PREFIX"), "/")
	config.App.CORSOrigins = splitList(v.GetString("CORS_ORIGIN"))
	config.App.GRPCEnabled = v.GetBool("GRPC_ENABLED")
	config.App.GRPCPort = v.GetString("GRPC_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.SwaggerEnabled = v.GetBool("SWAGGER_ENABLED")

	config.Storage.Driver = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	config.Storage.SQLiteDSN = v.GetString("SQLITE_DSN")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.CacheTTL = v.GetInt("REDIS_CACHE_TTL")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST")

	config.Telemetry.MetricsEnabled = v.GetBool("METRICS_ENABLED")
	config.Telemetry.OTelEnabled = v.GetBool("OTEL_ENABLED")
	config.Telemetry.OTelEndpoint = v.GetString("OTEL_ENDPOINT")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "user-service")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("APP_PREFIX", "api")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("GRPC_ENABLED", true)
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("SQLITE_DSN", "file::memory:?cache=shared")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_CACHE_TTL", 300)

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")

	production := v.GetString("APP_ENV") == "production"
	v.SetDefault("SWAGGER_ENABLED", !production)
	if production {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "user-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMemory, StorageSQLite, c.Storage.Driver))
	}
	if c.Storage.Driver == StorageSQLite && c.Storage.SQLiteDSN == "" {
		errs = append(errs, errors.New("SQLITE_DSN is required for the sqlite driver"))
	}

	if err := validatePort("HTTP_PORT", c.App.HTTPPort); err != nil {
		errs = append(errs, err)
	}
	if c.App.GRPCEnabled {
		if err := validatePort("GRPC_PORT", c.App.GRPCPort); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Redis.Enabled {
		if err := validatePort("REDIS_PORT", c.Redis.Port); err != nil {
			errs = append(errs, err)
		}
		if c.Redis.CacheTTL <= 0 {
			errs = append(errs, errors.New("REDIS_CACHE_TTL must be positive"))
		}
	}

	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
		}
		if c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive"))
		}
	}

	return errors.Join(errs...)
}

func validatePort(key, value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%s must be a port number between 1 and 65535, got %q", key, value)
	}
	return nil
}

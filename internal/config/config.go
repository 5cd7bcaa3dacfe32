package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/utafrali/TravelGo/internal/pricing"
	pkgconfig "github.com/utafrali/TravelGo/pkg/config"
	"github.com/utafrali/TravelGo/pkg/database"
	"github.com/utafrali/TravelGo/pkg/logger"
	"github.com/utafrali/TravelGo/pkg/tracing"
)

const (
	defaultSessionSecret = "change-this-to-a-secure-secret"
	defaultVoucherSecret = "change-this-voucher-secret"
	minSecretLength      = 32
)

// Config holds all configuration for the marketplace API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"travelgo-api"`
	Version     string `env:"SERVICE_VERSION" envDefault:"dev"`

	// Logging
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile          string `env:"LOG_FILE"`
	LogMaxSizeMB     int    `env:"LOG_MAX_SIZE_MB" envDefault:"64"`
	LogMaxBackups    int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	LogMaxAgeDays    int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
	LogCompressFiles bool   `env:"LOG_COMPRESS" envDefault:"false"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// PostgreSQL
	PostgresHost       string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort       int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser       string        `env:"POSTGRES_USER" envDefault:"travelgo"`
	PostgresPass       string        `env:"POSTGRES_PASSWORD" envDefault:"travelgo_secret"`
	PostgresDB         string        `env:"POSTGRES_DB" envDefault:"travelgo"`
	PostgresSSL        string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns   int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	PostgresMinConns   int32         `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaEnabled       bool          `env:"KAFKA_ENABLED" envDefault:"true"`
	DashboardConsumer  bool          `env:"DASHBOARD_CONSUMER_ENABLED" envDefault:"true"`
	ProcessedEventsTTL time.Duration `env:"PROCESSED_EVENTS_TTL" envDefault:"24h"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Sessions
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-this-to-a-secure-secret"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Identity provider
	IdentityURL    string `env:"IDENTITY_URL" envDefault:"http://localhost:9999/auth/v1"`
	IdentityAPIKey string `env:"IDENTITY_API_KEY"`

	// Vouchers
	VoucherSecret string `env:"VOUCHER_SECRET" envDefault:"change-this-voucher-secret"`

	// Pricing and dashboard
	RoundingPolicy             string        `env:"PRICE_ROUNDING" envDefault:"unit"`
	DashboardCacheTTL          time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"5m"`
	DashboardDiscountedRevenue bool          `env:"DASHBOARD_DISCOUNTED_REVENUE" envDefault:"true"`

	// Rate limiting of mutations and sign-in, per client IP. Forwarding
	// headers count only when the peer is in TrustedProxyCIDRs.
	RateLimitRPS      float64  `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst    int      `env:"RATE_LIMIT_BURST" envDefault:"10"`
	TrustedProxyCIDRs []string `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`

	// pprof and CORS
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load travelgo config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects bad ranges, and outside development, default or short
// secrets.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %g", c.OTELSampleRate))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("rate limit must be positive, got %g rps burst %d", c.RateLimitRPS, c.RateLimitBurst))
	}
	if c.PostgresMinConns > c.PostgresMaxConns {
		errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)", c.PostgresMinConns, c.PostgresMaxConns))
	}
	if _, err := c.Rounding(); err != nil {
		errs = append(errs, err)
	}
	if c.IdentityURL == "" {
		errs = append(errs, errors.New("IDENTITY_URL must be set"))
	}

	if c.Environment != "development" {
		if c.SessionSecret == defaultSessionSecret || len(c.SessionSecret) < minSecretLength {
			errs = append(errs, fmt.Errorf("SESSION_SECRET must be explicitly set to at least %d characters in %q mode", minSecretLength, c.Environment))
		}
		if c.VoucherSecret == defaultVoucherSecret || len(c.VoucherSecret) < minSecretLength {
			errs = append(errs, fmt.Errorf("VOUCHER_SECRET must be explicitly set to at least %d characters in %q mode", minSecretLength, c.Environment))
		}
		if c.IdentityAPIKey == "" {
			errs = append(errs, fmt.Errorf("IDENTITY_API_KEY must be set in %q mode", c.Environment))
		}
	}
	return errors.Join(errs...)
}

// Rounding parses PRICE_ROUNDING.
func (c *Config) Rounding() (pricing.RoundingPolicy, error) {
	switch c.RoundingPolicy {
	case "", "unit":
		return pricing.RoundUnit, nil
	case "total":
		return pricing.RoundTotal, nil
	default:
		return 0, fmt.Errorf("PRICE_ROUNDING must be unit or total, got %q", c.RoundingPolicy)
	}
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.PostgresMaxConns
	pg.MinConns = c.PostgresMinConns
	return &pg
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	r := database.DefaultRedisConfig()
	r.Host = c.RedisHost
	r.Port = c.RedisPort
	r.Password = c.RedisPassword
	r.DB = c.RedisDB
	return r
}

// Tracing returns the tracer configuration.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}

// LogFileOptions returns the rotating log file options.
func (c *Config) LogFileOptions() logger.FileOptions {
	return logger.FileOptions{
		Path:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompressFiles,
	}
}

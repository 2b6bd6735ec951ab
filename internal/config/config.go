package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/AlexandruMarc/Easy-Shops/pkg/config"
	"github.com/AlexandruMarc/Easy-Shops/pkg/database"
	"github.com/AlexandruMarc/Easy-Shops/pkg/httpclient"
	"github.com/AlexandruMarc/Easy-Shops/pkg/tracing"
)

// ServiceName tags logs, metrics and traces.
const ServiceName = "easyshops"

// Config holds all configuration for the Easy-Shops catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort  int    `env:"HTTP_PORT" envDefault:"8080"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api/v1"`
	// PublicBaseURL is prepended to stored download URLs. Empty keeps them relative.
	PublicBaseURL      string   `env:"PUBLIC_BASE_URL" envDefault:""`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	AuthzEnabled       bool     `env:"AUTHZ_ENABLED" envDefault:"false"`
	MaxUploadFiles     int      `env:"MAX_UPLOAD_FILES" envDefault:"10"`
	// Per-client limit on upload endpoints. Zero disables it.
	UploadRateLimitRPS   float64 `env:"UPLOAD_RATE_LIMIT_RPS" envDefault:"5"`
	UploadRateLimitBurst int     `env:"UPLOAD_RATE_LIMIT_BURST" envDefault:"10"`
	// Proxies whose X-Forwarded-For / X-Real-IP headers identify the client.
	TrustedProxyCIDRs []string `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"easyshops"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"easyshops_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"easyshops"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	LogSlowQueryMS    int           `env:"LOG_SLOW_QUERY_MS" envDefault:"200"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Redis
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ProductCacheTTLSeconds int `env:"PRODUCT_CACHE_TTL_SECONDS" envDefault:"300"`

	// User directory. Empty disables the existence check on profile uploads.
	UserServiceURL     string        `env:"USER_SERVICE_URL" envDefault:""`
	UserServiceTimeout time.Duration `env:"USER_SERVICE_TIMEOUT" envDefault:"3s"`
	CBFailureRatio     float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests      uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`
	CBOpenTimeout      time.Duration `env:"CB_OPEN_TIMEOUT" envDefault:"30s"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Profiling
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load easyshops config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort))
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("API_PREFIX must start with '/': %q", c.APIPrefix))
	}
	if c.MaxUploadFiles <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_FILES must be positive"))
	}
	if c.UploadRateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("UPLOAD_RATE_LIMIT_RPS must not be negative: %v", c.UploadRateLimitRPS))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		errs = append(errs, fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1]: %v", c.CBFailureRatio))
	}
	return errors.Join(errs...)
}

// APIPrefixClean returns APIPrefix without a trailing slash.
func (c *Config) APIPrefixClean() string {
	return strings.TrimRight(c.APIPrefix, "/")
}

// Postgres returns the pool settings for database.NewPostgresPool.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing(version string) tracing.Config {
	return tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}

// UserClient returns the HTTP client settings for the user directory.
func (c *Config) UserClient() httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = c.UserServiceTimeout
	return cfg
}

// UserBreaker returns the circuit breaker settings for the user directory.
func (c *Config) UserBreaker() httpclient.CircuitBreakerConfig {
	cfg := httpclient.DefaultCircuitBreakerConfig("user-service")
	cfg.FailureRatio = c.CBFailureRatio
	cfg.MinRequests = c.CBMinRequests
	cfg.Timeout = c.CBOpenTimeout
	return cfg
}

// ProductCacheTTL returns the product cache lifetime.
func (c *Config) ProductCacheTTL() time.Duration {
	return time.Duration(c.ProductCacheTTLSeconds) * time.Second
}

// SlowQueryThreshold returns the duration above which queries are logged.
// Zero disables slow-query logging.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.LogSlowQueryMS) * time.Millisecond
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type (
	// Config holds configuration settings for the bbflow service
	Config struct {
		// API Server
		APIHost         string
		APIPort         int
		LogLevel        string
		LogFormat       string
		ShutdownTimeout time.Duration

		// Request store
		StoreDriver string
		SQLitePath  string
		MySQLDSN    string
		Redis       RedisConfig

		// Remote services
		Inventory ServiceConfig
		Catalog   ServiceConfig
		Policy    ServiceConfig

		// Archiving
		ArchiveBucketURL string
		ArchivePrefix    string

		// Resolution
		ResolveConcurrency int

		// Tracing
		Tracing TracingConfig
	}

	// RedisConfig locates the Redis request store. URL, when set, takes
	// precedence over Addr, Password and DB
	RedisConfig struct {
		URL      string
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	// TracingConfig selects the OpenTelemetry span exporter
	TracingConfig struct {
		Exporter    string
		Endpoint    string
		SampleRatio float64
	}

	// ServiceConfig describes one REST dependency
	ServiceConfig struct {
		URL             string
		Username        string
		Password        string
		Timeout         time.Duration
		RateLimit       float64
		Burst           int
		MaxAttempts     int
		BreakerFailures int
	}
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreRedis  = "redis"

	DefaultAPIPort         = 8080
	DefaultAPIHost         = "0.0.0.0"
	DefaultShutdownTimeout = 10 * time.Second
	MaxTCPPort             = 65535

	DefaultSQLitePath    = "bbflow.db"
	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "bbflow"

	DefaultServiceTimeout     = 30 * time.Second
	DefaultMaxAttempts        = 3
	DefaultBreakerFailures    = 5
	DefaultInventoryRateLimit = 50
	DefaultResolveConcurrency = 4
	DefaultArchivePrefix      = "bbflow"

	MaxMaxAttempts        = 20
	MaxResolveConcurrency = 256

	TraceExporterNone       = "none"
	TraceExporterConsole    = "console"
	TraceExporterOTLP       = "otlp"
	DefaultTraceSampleRatio = 0.1
)

var (
	ErrInvalidAPIPort            = errors.New("invalid API port")
	ErrInvalidStoreDriver        = errors.New("invalid store driver")
	ErrMissingMySQLDSN           = errors.New("mysql store requires MYSQL_DSN")
	ErrMissingSQLitePath         = errors.New("sqlite store requires SQLITE_PATH")
	ErrMissingRedisAddr          = errors.New("redis store requires REDIS_URL or REDIS_ADDR")
	ErrInvalidServiceURL         = errors.New("invalid service url")
	ErrInvalidResolveConcurrency = errors.New("resolve concurrency must be positive")
	ErrInvalidLogFormat          = errors.New("invalid log format")
	ErrInvalidTraceExporter      = errors.New("invalid trace exporter")
	ErrInvalidTraceSampleRatio   = errors.New("trace sample ratio must be within [0, 1]")
)

// NewDefaultConfig creates a configuration with an in-memory store and
// local service endpoints
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: DefaultShutdownTimeout,
		StoreDriver:     StoreMemory,
		SQLitePath:      DefaultSQLitePath,
		Redis: RedisConfig{
			Addr:   DefaultRedisEndpoint,
			Prefix: DefaultRedisPrefix,
		},
		Inventory: ServiceConfig{
			URL:             "http://localhost:8443/aai/v24",
			Timeout:         DefaultServiceTimeout,
			RateLimit:       DefaultInventoryRateLimit,
			Burst:           DefaultInventoryRateLimit,
			MaxAttempts:     DefaultMaxAttempts,
			BreakerFailures: DefaultBreakerFailures,
		},
		Catalog: ServiceConfig{
			URL:             "http://localhost:8082/ecomp/mso/catalog/v1",
			Timeout:         DefaultServiceTimeout,
			MaxAttempts:     DefaultMaxAttempts,
			BreakerFailures: DefaultBreakerFailures,
		},
		Policy: ServiceConfig{
			URL:         "http://localhost:8081/pdp/api",
			Timeout:     DefaultServiceTimeout,
			MaxAttempts: DefaultMaxAttempts,
		},
		ArchivePrefix:      DefaultArchivePrefix,
		ResolveConcurrency: DefaultResolveConcurrency,
		Tracing: TracingConfig{
			Exporter:    TraceExporterNone,
			SampleRatio: DefaultTraceSampleRatio,
		},
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("LOG_LEVEL", &c.LogLevel)
	loadEnvString("LOG_FORMAT", &c.LogFormat)
	loadEnvString("STORE_DRIVER", &c.StoreDriver)
	loadEnvString("SQLITE_PATH", &c.SQLitePath)
	loadEnvString("MYSQL_DSN", &c.MySQLDSN)
	loadEnvString("REDIS_URL", &c.Redis.URL)
	loadEnvString("REDIS_ADDR", &c.Redis.Addr)
	loadEnvString("REDIS_PASSWORD", &c.Redis.Password)
	loadEnvString("REDIS_PREFIX", &c.Redis.Prefix)
	loadEnvString("ARCHIVE_BUCKET_URL", &c.ArchiveBucketURL)
	loadEnvString("ARCHIVE_PREFIX", &c.ArchivePrefix)
	loadEnvString("TRACE_EXPORTER", &c.Tracing.Exporter)
	loadEnvString("TRACE_ENDPOINT", &c.Tracing.Endpoint)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("REDIS_DB", &c.Redis.DB, -1, 15); err != nil {
		return err
	}
	if err := loadEnvInt(
		"RESOLVE_CONCURRENCY", &c.ResolveConcurrency, 0, MaxResolveConcurrency,
	); err != nil {
		return err
	}
	if err := loadEnvDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout); err != nil {
		return err
	}
	if v := os.Getenv("TRACE_SAMPLE_RATIO"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATIO: %q", v)
		}
		c.Tracing.SampleRatio = ratio
	}

	for prefix, svc := range map[string]*ServiceConfig{
		"INVENTORY": &c.Inventory,
		"CATALOG":   &c.Catalog,
		"POLICY":    &c.Policy,
	} {
		if err := LoadServiceConfigFromEnv(svc, prefix); err != nil {
			return err
		}
	}
	return nil
}

// LoadServiceConfigFromEnv loads a REST dependency's settings from
// environment variables with the given prefix (e.g., "INVENTORY")
func LoadServiceConfigFromEnv(s *ServiceConfig, prefix string) error {
	loadEnvString(prefix+"_URL", &s.URL)
	loadEnvString(prefix+"_USERNAME", &s.Username)
	loadEnvString(prefix+"_PASSWORD", &s.Password)

	if err := loadEnvDuration(prefix+"_TIMEOUT", &s.Timeout); err != nil {
		return err
	}
	if err := loadEnvInt(prefix+"_MAX_ATTEMPTS", &s.MaxAttempts, 0, MaxMaxAttempts); err != nil {
		return err
	}
	if err := loadEnvInt(prefix+"_BURST", &s.Burst, -1, 100_000); err != nil {
		return err
	}
	if err := loadEnvInt(prefix+"_BREAKER_FAILURES", &s.BreakerFailures, -1, 1000); err != nil {
		return err
	}
	if v := os.Getenv(prefix + "_RATE_LIMIT"); v != "" {
		rl, err := strconv.ParseFloat(v, 64)
		if err != nil || rl < 0 {
			return fmt.Errorf("invalid %s_RATE_LIMIT: %q", prefix, v)
		}
		s.RateLimit = rl
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: %s", ErrInvalidLogFormat, c.LogFormat)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return ErrMissingSQLitePath
		}
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return ErrMissingMySQLDSN
		}
	case StoreRedis:
		if c.Redis.URL == "" && c.Redis.Addr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreDriver, c.StoreDriver)
	}

	for name, svc := range map[string]ServiceConfig{
		"inventory": c.Inventory,
		"catalog":   c.Catalog,
		"policy":    c.Policy,
	} {
		u, err := url.Parse(svc.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s %q", ErrInvalidServiceURL, name, svc.URL)
		}
	}

	if c.ResolveConcurrency <= 0 {
		return ErrInvalidResolveConcurrency
	}

	switch c.Tracing.Exporter {
	case TraceExporterNone, TraceExporterConsole, TraceExporterOTLP:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTraceExporter, c.Tracing.Exporter)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidTraceSampleRatio, c.Tracing.SampleRatio)
	}
	return nil
}

func loadEnvString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func loadEnvDuration(key string, dst *time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = d
	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

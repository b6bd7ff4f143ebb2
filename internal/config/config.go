// Package config provides centralized configuration management for the application.
// Settings come from struct-tag defaults, an optional TOML file and environment
// variables, in that order of precedence, and are validated on startup to fail
// fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
	Rate       RateLimitConfig  `toml:"rate_limit"`
	Security   SecurityConfig   `toml:"security"`
	Logging    LoggingConfig    `toml:"logging"`
	Schedule   ScheduleConfig   `toml:"schedule"`
	Attendance AttendanceConfig `toml:"attendance"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `toml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `toml:"port" env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `toml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 2m)
	WriteTimeout time.Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `toml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `toml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"90s"`

	// WriteWait is how long a call waits for the store's write gate (default: 30s)
	WriteWait time.Duration `toml:"write_wait" env:"SERVER_WRITE_WAIT" default:"30s"`

	// MaxBodyBytes caps request bodies on the RPC and form endpoints (default: 1MB)
	MaxBodyBytes int64 `toml:"max_body_bytes" env:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// StorageConfig selects and configures the row store.
type StorageConfig struct {
	// Driver is one of memory, csv, postgres (default: csv)
	Driver string `toml:"driver" env:"STORAGE_DRIVER" default:"csv"`

	// DataDir is the directory of the csv driver (default: ./data)
	DataDir string `toml:"data_dir" env:"STORAGE_DATA_DIR" default:"./data"`

	// DatabaseURL is the PostgreSQL connection string, required for the postgres driver.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `toml:"database_url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `toml:"max_conns" env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `toml:"min_conns" env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `toml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `toml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `toml:"enabled" env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 120)
	RequestsPerMinute int `toml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey turns on X-API-Key checks for /api routes (default: false)
	RequireAPIKey bool `toml:"require_api_key" env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `toml:"api_keys" env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `toml:"trusted_proxies" env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `toml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `toml:"format" env:"LOG_FORMAT" default:"text"`

	// File, when set, receives a copy of the log with size-based rotation
	File string `toml:"file" env:"LOG_FILE"`

	// MaxSizeMB is the size at which the log file rotates (default: 50)
	MaxSizeMB int `toml:"max_size_mb" env:"LOG_MAX_SIZE_MB" default:"50"`

	// MaxBackups is the number of rotated files kept (default: 5)
	MaxBackups int `toml:"max_backups" env:"LOG_MAX_BACKUPS" default:"5"`

	// MaxAgeDays is how long rotated files are kept (default: 28)
	MaxAgeDays int `toml:"max_age_days" env:"LOG_MAX_AGE_DAYS" default:"28"`
}

// ScheduleConfig holds the cron specs of the background jobs.
type ScheduleConfig struct {
	// Enabled starts the scheduler with the server (default: false)
	Enabled bool `toml:"enabled" env:"SCHEDULE_ENABLED" default:"false"`

	// SyncCron runs form sync; empty disables it (default: every 5 minutes)
	SyncCron string `toml:"sync_cron" env:"SCHEDULE_SYNC_CRON" default:"*/5 * * * *"`

	// RecalculateCron runs attendance recalculation; empty disables it (default: 18:00 on weekdays)
	RecalculateCron string `toml:"recalculate_cron" env:"SCHEDULE_RECALCULATE_CRON" default:"0 18 * * 1-5"`

	// RunOnStart runs each enabled job once at startup (default: false)
	RunOnStart bool `toml:"run_on_start" env:"SCHEDULE_RUN_ON_START" default:"false"`
}

// AttendanceConfig holds attendance settings.
type AttendanceConfig struct {
	// TimeZone is the IANA zone attendance days are counted in (default: Local)
	TimeZone string `toml:"time_zone" env:"ATTENDANCE_TIME_ZONE" default:"Local"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled mounts the metrics handler (default: true)
	Enabled bool `toml:"enabled" env:"METRICS_ENABLED" default:"true"`

	// Path is where metrics are served (default: /metrics)
	Path string `toml:"path" env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Location resolves the attendance time zone.
func (c *AttendanceConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

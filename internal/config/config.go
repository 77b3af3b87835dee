// Package config handles application configuration.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Rate     RateLimitConfig
	Stats    StatsConfig
	CORS     CORSConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Env      string
	LogLevel string
	Testing  bool // Disables rate limiting entirely
}

// IsDevelopment returns true if the app is running in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development" || a.Env == "dev"
}

// IsProduction returns true if the app is running in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Address returns the server address in host:port format.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	URL             string // Full DSN, wins over the individual fields
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Address returns the Redis address in host:port format.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	MaxRequests   int
	Window        time.Duration
	BlockDuration time.Duration
	TrustProxy    bool // Honor X-Forwarded-For when identifying clients
}

// StatsConfig holds statistics aggregate configuration.
type StatsConfig struct {
	CacheTTL time.Duration
}

// CORSConfig holds cross-origin configuration.
type CORSConfig struct {
	AllowedOrigins []string
}

// defaults mirrors the environment variable names in lower case so the same
// keys work in a config file.
var defaults = map[string]any{
	"app_env":                   "development",
	"log_level":                 "info",
	"testing":                   "false",
	"server_host":               "0.0.0.0",
	"server_port":               "8080",
	"server_read_timeout":       "5s",
	"server_write_timeout":      "10s",
	"server_shutdown_timeout":   "30s",
	"database_url":              "",
	"db_host":                   "localhost",
	"db_port":                   "5432",
	"db_user":                   "choretracker",
	"db_password":               "",
	"db_name":                   "choretracker",
	"db_sslmode":                "disable",
	"db_max_open_conns":         "25",
	"db_max_idle_conns":         "5",
	"db_conn_max_lifetime":      "5m",
	"redis_host":                "",
	"redis_port":                "6379",
	"redis_password":            "",
	"redis_db":                  "0",
	"redis_pool_size":           "10",
	"rate_limit_max_requests":   "100",
	"rate_limit_window_seconds": "60",
	"rate_limit_block_duration": "300",
	"rate_limit_trust_proxy":    "true",
	"stats_cache_ttl":           "30s",
	"cors_allowed_origins":      "*",
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from an optional file (YAML, JSON or TOML,
// keyed by the lower-case variable names) with environment variables
// taking precedence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	if err := v.BindEnv("app_env", "APP_ENV", "ENVIRONMENT"); err != nil {
		return nil, fmt.Errorf("bind APP_ENV: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	r := &reader{v: v}
	cfg := &Config{}

	// App config
	cfg.App.Env = strings.ToLower(r.str("app_env"))
	cfg.App.LogLevel = r.str("log_level")
	cfg.App.Testing = r.boolean("testing")

	// Server config
	cfg.Server.Host = r.str("server_host")
	cfg.Server.Port = r.integer("server_port")
	cfg.Server.ReadTimeout = r.duration("server_read_timeout")
	cfg.Server.WriteTimeout = r.duration("server_write_timeout")
	cfg.Server.ShutdownTimeout = r.duration("server_shutdown_timeout")

	// Database config
	cfg.Database.URL = r.str("database_url")
	cfg.Database.Host = r.str("db_host")
	cfg.Database.Port = r.integer("db_port")
	cfg.Database.User = r.str("db_user")
	cfg.Database.Password = r.str("db_password")
	cfg.Database.DBName = r.str("db_name")
	cfg.Database.SSLMode = r.str("db_sslmode")
	cfg.Database.MaxOpenConns = r.integer("db_max_open_conns")
	cfg.Database.MaxIdleConns = r.integer("db_max_idle_conns")
	cfg.Database.ConnMaxLifetime = r.duration("db_conn_max_lifetime")

	// Redis config
	cfg.Redis.Host = r.str("redis_host")
	cfg.Redis.Port = r.integer("redis_port")
	cfg.Redis.Password = r.str("redis_password")
	cfg.Redis.DB = r.integer("redis_db")
	cfg.Redis.PoolSize = r.integer("redis_pool_size")

	// Rate limit config
	cfg.Rate.MaxRequests = r.integer("rate_limit_max_requests")
	cfg.Rate.Window = r.seconds("rate_limit_window_seconds")
	cfg.Rate.BlockDuration = r.seconds("rate_limit_block_duration")
	cfg.Rate.TrustProxy = r.boolean("rate_limit_trust_proxy")

	cfg.Stats.CacheTTL = r.duration("stats_cache_ttl")
	cfg.CORS.AllowedOrigins = splitList(r.str("cors_allowed_origins"))

	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges that parsing alone cannot catch.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT: %d out of range", c.Server.Port))
	}
	if c.Rate.MaxRequests <= 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS: must be positive, got %d", c.Rate.MaxRequests))
	}
	if c.Rate.Window <= 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: must be positive, got %s", c.Rate.Window))
	}
	if c.Rate.BlockDuration <= 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_BLOCK_DURATION: must be positive, got %s", c.Rate.BlockDuration))
	}
	if c.Stats.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("invalid STATS_CACHE_TTL: must not be negative, got %s", c.Stats.CacheTTL))
	}
	return errors.Join(errs...)
}

// DatabaseEnabled returns true if database configuration is provided.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.URL != "" || (c.Database.Host != "" && c.Database.Password != "")
}

// RedisEnabled returns true if Redis configuration is provided.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// reader pulls typed values out of viper and remembers the first failure.
type reader struct {
	v   *viper.Viper
	err error
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(r.v.GetString(key))
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
}

func (r *reader) integer(key string) int {
	n, err := strconv.Atoi(r.str(key))
	if err != nil {
		r.fail(key, err)
		return 0
	}
	return n
}

func (r *reader) boolean(key string) bool {
	b, err := strconv.ParseBool(r.str(key))
	if err != nil {
		r.fail(key, err)
		return false
	}
	return b
}

func (r *reader) duration(key string) time.Duration {
	d, err := time.ParseDuration(r.str(key))
	if err != nil {
		r.fail(key, err)
		return 0
	}
	return d
}

func (r *reader) seconds(key string) time.Duration {
	return time.Duration(r.integer(key)) * time.Second
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

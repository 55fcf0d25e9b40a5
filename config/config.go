package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config is read from an optional .env file (TOML) and the environment; environment wins */

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	QueueRedis    = "redis"
	QueueMemory   = "memory"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	Store                    string `mapstructure:"STORE"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	Queue         string `mapstructure:"QUEUE"`
	QueueSize     int    `mapstructure:"QUEUE_SIZE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisStream   string `mapstructure:"REDIS_STREAM"`
	RedisGroup    string `mapstructure:"REDIS_GROUP"`

	WorkerConcurrency      int    `mapstructure:"WORKER_CONCURRENCY"`
	WorkerID               string `mapstructure:"WORKER_ID"`
	MaxConcurrentSends     int    `mapstructure:"MAX_CONCURRENT_SENDS"`
	DeliveryTimeoutSeconds int    `mapstructure:"DELIVERY_TIMEOUT_SECONDS"`
	SweepIntervalSeconds   int    `mapstructure:"SWEEP_INTERVAL_SECONDS"`
	SweepBatchSize         int    `mapstructure:"SWEEP_BATCH_SIZE"`
	StalePendingSeconds    int    `mapstructure:"STALE_PENDING_SECONDS"`
	MaxBackoffSeconds      int    `mapstructure:"MAX_BACKOFF_SECONDS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	SubscriptionsFile string `mapstructure:"SUBSCRIPTIONS_FILE"`
	TenantHeader      string `mapstructure:"TENANT_HEADER"`
}

var defaults = map[string]any{
	"PORT":                         "8080",
	"STORE":                        StoreMemory,
	"DATABASE_URL":                 "",
	"DB_MAX_OPEN_CONNS":            25,
	"DB_MAX_IDLE_CONNS":            5,
	"DB_CONN_MAX_LIFETIME_MINUTES": 5,
	"QUEUE":                        QueueMemory,
	"QUEUE_SIZE":                   1024,
	"REDIS_ADDR":                   "localhost:6379",
	"REDIS_PASSWORD":               "",
	"REDIS_DB":                     0,
	"REDIS_STREAM":                 "webhooks:deliveries",
	"REDIS_GROUP":                  "webhook-workers",
	"WORKER_CONCURRENCY":           8,
	"WORKER_ID":                    "",
	"MAX_CONCURRENT_SENDS":         16,
	"DELIVERY_TIMEOUT_SECONDS":     10,
	"SWEEP_INTERVAL_SECONDS":       15,
	"SWEEP_BATCH_SIZE":             100,
	"STALE_PENDING_SECONDS":        120,
	"MAX_BACKOFF_SECONDS":          3600,
	"LOG_LEVEL":                    "info",
	"LOG_FORMAT":                   "json",
	"SUBSCRIPTIONS_FILE":           "",
	"TENANT_HEADER":                "X-Tenant-ID",
}

// GetConfig loads the configuration; a missing .env file is not an error
func GetConfig() (*Config, error) {
	return Load(viper.New(), ".")
}

// Load reads the configuration through v, looking for .env under path
func Load(v *viper.Viper, path string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values and their combinations
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("invalid config: DATABASE_URL is required when STORE=postgres")
		}
	default:
		return fmt.Errorf("invalid config: STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	switch c.Queue {
	case QueueMemory:
	case QueueRedis:
		if c.RedisAddr == "" {
			return errors.New("invalid config: REDIS_ADDR is required when QUEUE=redis")
		}
	default:
		return fmt.Errorf("invalid config: QUEUE must be %q or %q, got %q", QueueRedis, QueueMemory, c.Queue)
	}

	positive := map[string]int{
		"WORKER_CONCURRENCY":       c.WorkerConcurrency,
		"MAX_CONCURRENT_SENDS":     c.MaxConcurrentSends,
		"DELIVERY_TIMEOUT_SECONDS": c.DeliveryTimeoutSeconds,
		"SWEEP_INTERVAL_SECONDS":   c.SweepIntervalSeconds,
		"SWEEP_BATCH_SIZE":         c.SweepBatchSize,
		"STALE_PENDING_SECONDS":    c.StalePendingSeconds,
		"MAX_BACKOFF_SECONDS":      c.MaxBackoffSeconds,
		"QUEUE_SIZE":               c.QueueSize,
	}
	for key, value := range positive {
		if value <= 0 {
			return fmt.Errorf("invalid config: %s must be positive, got %d", key, value)
		}
	}

	if c.TenantHeader == "" {
		return errors.New("invalid config: TENANT_HEADER cannot be empty")
	}
	return nil
}

// DeliveryTimeout is the per attempt HTTP timeout
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutSeconds) * time.Second
}

// SweepInterval is the period of the recovery sweep
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// StalePending is the age after which a Pending row is re-enqueued
func (c *Config) StalePending() time.Duration {
	return time.Duration(c.StalePendingSeconds) * time.Second
}

// MaxBackoff caps the retry delay
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffSeconds) * time.Second
}

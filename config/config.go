package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Billing  BillingConfig  `yaml:"billing"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// CacheConfig controls the dashboard query cache.
type CacheConfig struct {
	TTLSeconds             int           `yaml:"ttl_seconds"`
	CleanupIntervalSeconds int           `yaml:"cleanup_interval_seconds"`
	TTL                    time.Duration `yaml:"-"`
	CleanupInterval        time.Duration `yaml:"-"`
}

// BillingConfig holds billing display thresholds.
type BillingConfig struct {
	DueSoonDays int `yaml:"due_soon_days"`
}

// NotifyConfig holds the outbound webhook configuration.
type NotifyConfig struct {
	Enabled        bool   `yaml:"enabled"`
	WebhookURL     string `yaml:"webhook_url"`
	WorkerPoolSize int    `yaml:"worker_pool_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads the configuration from the given path. A .env file, when
// present, and WORKSHOP_* environment variables override file values for
// secrets.
func Load(path string) (*Config, error) {
	godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if dsn := os.Getenv("WORKSHOP_DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if url := os.Getenv("WORKSHOP_WEBHOOK_URL"); url != "" {
		cfg.Notify.WebhookURL = url
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.CleanupIntervalSeconds <= 0 {
		cfg.Cache.CleanupIntervalSeconds = 600
	}
	cfg.Cache.TTL = time.Duration(cfg.Cache.TTLSeconds) * time.Second
	cfg.Cache.CleanupInterval = time.Duration(cfg.Cache.CleanupIntervalSeconds) * time.Second

	if cfg.Billing.DueSoonDays <= 0 {
		cfg.Billing.DueSoonDays = 7
	}

	if cfg.Notify.TimeoutSeconds <= 0 {
		cfg.Notify.TimeoutSeconds = 10
	}
	if cfg.Notify.WorkerPoolSize <= 0 {
		log.Warn("notify.worker_pool_size is not set or invalid; defaulting to 1")
		cfg.Notify.WorkerPoolSize = 1
	}
	if cfg.Notify.Enabled && cfg.Notify.WebhookURL == "" {
		log.Warn("notify.enabled is set but no webhook URL is configured; notifications disabled")
		cfg.Notify.Enabled = false
	}

	return &cfg, nil
}

package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Lending    LendingConfig    `yaml:"lending"`
	Integrity  IntegrityConfig  `yaml:"integrity"`
	Redis      RedisConfig      `yaml:"redis"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push alerts.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	// Driver is "postgres" (default) or "sqlite".
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
	// EnforceSingleActiveLoan adds a partial unique index on loans(item_id)
	// for active loans, on top of the engine's own precondition check.
	EnforceSingleActiveLoan bool `yaml:"enforce_single_active_loan"`
}

// LendingConfig holds defaults for the lending workflow and seed data.
type LendingConfig struct {
	DefaultDurationDays int      `yaml:"default_duration_days"`
	DefaultLocation     string   `yaml:"default_location"`
	SeedCategories      []string `yaml:"seed_categories"`
}

// IntegrityConfig controls the periodic consistency check.
type IntegrityConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	AutoRepair      bool          `yaml:"auto_repair"`
	Operator        string        `yaml:"operator"`
	LeaseTTLSeconds int           `yaml:"lease_ttl_seconds"`
}

// RedisConfig is optional; when Addr is empty the scheduler runs without a lease.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var defaultCategories = []string{
	"Wheelchairs",
	"Canes",
	"Crutches",
	"Walkers",
	"Orthopedic Beds",
	"Rehabilitation Equipment",
	"Other",
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
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

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration built only from defaults and environment.
// It is used when no config file exists, e.g. by the CLI.
func Default() *Config {
	var cfg Config
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.MaxOpenConns != 1 {
		log.Printf("database.max_open_conns forced to 1 for sqlite so transactions serialize")
		cfg.Database.MaxOpenConns = 1
	}

	if cfg.Lending.DefaultDurationDays <= 0 {
		cfg.Lending.DefaultDurationDays = 30
	}
	if cfg.Lending.DefaultLocation == "" {
		cfg.Lending.DefaultLocation = "Main Depot"
	}
	if len(cfg.Lending.SeedCategories) == 0 {
		cfg.Lending.SeedCategories = defaultCategories
	}

	if cfg.Integrity.IntervalSeconds <= 0 {
		cfg.Integrity.IntervalSeconds = 900
	}
	cfg.Integrity.Interval = time.Duration(cfg.Integrity.IntervalSeconds) * time.Second
	if cfg.Integrity.Operator == "" {
		cfg.Integrity.Operator = "integrity-scheduler"
	}
	if cfg.Integrity.LeaseTTLSeconds <= 0 {
		cfg.Integrity.LeaseTTLSeconds = cfg.Integrity.IntervalSeconds / 2
		if cfg.Integrity.LeaseTTLSeconds <= 0 {
			cfg.Integrity.LeaseTTLSeconds = 1
		}
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}

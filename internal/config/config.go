// Package config provides configuration loading from environment variables.
// #IMPLEMENTATION_DECISION: Using envconfig for type-safe environment variable parsing
// #CODE_ASSUMPTION: All secrets provided via environment variables (no secret manager integration)
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix of every setting
const Prefix = "HRMS"

// Database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
// #INTEGRATION_POINT: All services depend on this configuration
type Config struct {
	// Database configuration
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"mongo"`
	DatabaseURI    string `envconfig:"DATABASE_URI" default:"mongodb://localhost:27017"`
	DatabaseName   string `envconfig:"DATABASE_NAME" default:"hrms"`

	// PostgreSQL configuration, used when DATABASE_DRIVER=postgres
	PostgresDSN          string `envconfig:"POSTGRES_DSN" default:"host=localhost port=5432 user=hrms password=hrms dbname=hrms sslmode=disable"`
	PostgresMaxOpenConns int    `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"25"`
	PostgresMaxIdleConns int    `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"5"`

	// Redis configuration, empty address disables report caching and shared rate limits
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`

	// JWT configuration
	JWTPrivateKeyPath  string        `envconfig:"JWT_PRIVATE_KEY_PATH" required:"true"`
	JWTPublicKeyPath   string        `envconfig:"JWT_PUBLIC_KEY_PATH" required:"true"`
	AccessTokenExpiry  time.Duration `envconfig:"ACCESS_TOKEN_EXPIRY" default:"1h"`
	RefreshTokenExpiry time.Duration `envconfig:"REFRESH_TOKEN_EXPIRY" default:"720h"` // 30 days

	// Server configuration
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// CORS configuration
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Rate limiting
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// Seed system evaluation templates on startup
	SeedTemplates bool `envconfig:"SEED_TEMPLATES" default:"false"`
}

var (
	instance *Config
	once     sync.Once
	errInit  error
)

// Load loads configuration from environment variables.
// #IMPLEMENTATION_DECISION: Singleton pattern ensures config is loaded once
func Load() (*Config, error) {
	once.Do(func() {
		instance, errInit = FromEnv()
	})

	return instance, errInit
}

// FromEnv reads and validates a fresh configuration from the environment
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings envconfig cannot express
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}

	// #BUSINESS_RULE: The limiters divide by the window and need room for at least one request
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("rate limit requests must be positive: %d", c.RateLimitRequests)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive: %s", c.RateLimitWindow)
	}

	// Validate required file paths exist
	if _, err := os.Stat(c.JWTPrivateKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("JWT private key file not found: %s", c.JWTPrivateKeyPath)
	}
	if _, err := os.Stat(c.JWTPublicKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("JWT public key file not found: %s", c.JWTPublicKeyPath)
	}
	return nil
}

// GetConfig returns the loaded configuration.
// Panics if configuration has not been loaded.
func GetConfig() *Config {
	if instance == nil {
		panic("config: Load() must be called before GetConfig()")
	}
	return instance
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedisEnabled returns true if a Redis address is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

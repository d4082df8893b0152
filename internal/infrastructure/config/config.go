package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
	Fetch     FetchConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" validate:"required,numeric"`
	Host string `envconfig:"HOST" default:"0.0.0.0" validate:"required"`
	// AllowedOrigins is a comma separated CORS allow list; "*" allows all
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gte=1"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" validate:"gte=1"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// SessionConfig holds archive and workspace settings.
type SessionConfig struct {
	// Dir is where relative save/open paths are resolved
	Dir string `envconfig:"SESSION_DIR" default:"."`
	// SeedDir holds default styles and properties; empty disables seeding
	SeedDir string `envconfig:"SEED_DIR"`
	// ExtractDir receives app files unpacked from opened archives
	ExtractDir       string `envconfig:"SESSION_EXTRACT_DIR"`
	CompressionLevel int    `envconfig:"SESSION_COMPRESSION" default:"-1" validate:"gte=-2,lte=9"`
	HashAlgorithm    string `envconfig:"SESSION_HASH" default:"sha256" validate:"oneof=sha256 blake2b"`
}

// FetchConfig controls downloads of remote session archives.
type FetchConfig struct {
	Timeout         time.Duration `envconfig:"SESSION_FETCH_TIMEOUT" default:"60s" validate:"gt=0"`
	MaxRetries      int           `envconfig:"SESSION_FETCH_RETRIES" default:"3" validate:"gte=0,lte=10"`
	RetryWaitMin    time.Duration `envconfig:"SESSION_FETCH_WAIT_MIN" default:"1s"`
	RetryWaitMax    time.Duration `envconfig:"SESSION_FETCH_WAIT_MAX" default:"30s"`
	BreakerFailures uint32        `envconfig:"SESSION_FETCH_BREAKER_FAILURES" default:"5" validate:"gte=1"`
}

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.Fetch.RetryWaitMax < c.Fetch.RetryWaitMin {
		return fmt.Errorf("invalid config: fetch wait max %s is below min %s", c.Fetch.RetryWaitMax, c.Fetch.RetryWaitMin)
	}
	return nil
}

// Origins splits the CORS allow list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Host:           "0.0.0.0",
			AllowedOrigins: "*",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Session: SessionConfig{
			Dir:              ".",
			CompressionLevel: -1,
			HashAlgorithm:    "sha256",
		},
		Fetch: FetchConfig{
			Timeout:         60 * time.Second,
			MaxRetries:      3,
			RetryWaitMin:    time.Second,
			RetryWaitMax:    30 * time.Second,
			BreakerFailures: 5,
		},
	}
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", e.Namespace(), e.Tag(), e.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", e.Namespace(), e.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

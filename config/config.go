package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Swap          SwapConfig          `yaml:"swap"`
	Round         RoundConfig         `yaml:"round"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-memory bus.
type NATSConfig struct {
	URL        string `yaml:"url"`
	StreamName string `yaml:"stream_name"`
}

// HTTPConfig holds the REST listener settings.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// JWTConfig holds JWT verification settings. Tokens are issued elsewhere.
// AllowHeaderAuth trusts the X-Discord-ID header when Secret is empty and is
// meant for local development only.
type JWTConfig struct {
	Secret          string `yaml:"secret"`
	AllowHeaderAuth bool   `yaml:"allow_header_auth"`
}

// SwapConfig holds tag swap matcher settings.
type SwapConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// RoundConfig holds round scheduling settings.
type RoundConfig struct {
	Timezone string `yaml:"timezone"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// Defaults.
const (
	DefaultHTTPAddress  = ":8080"
	DefaultStreamName   = "TCRBOT"
	DefaultRateLimit    = 10
	DefaultRateBurst    = 20
	DefaultSwapTimeout  = 15 * time.Minute
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 15 * time.Second
)

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to environment only.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// environment only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN not set (postgres.dsn or DATABASE_URL)")
	}
	if cfg.JWT.Secret == "" && !cfg.JWT.AllowHeaderAuth {
		return nil, fmt.Errorf("jwt secret not set (jwt.secret or JWT_SECRET); set AUTH_ALLOW_HEADER=true to trust the X-Discord-ID header in development")
	}
	if cfg.Round.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Round.Timezone); err != nil {
			return nil, fmt.Errorf("invalid round timezone %q: %w", cfg.Round.Timezone, err)
		}
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_STREAM"); v != "" {
		cfg.NATS.StreamName = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("AUTH_ALLOW_HEADER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTH_ALLOW_HEADER value: %w", err)
		}
		cfg.JWT.AllowHeaderAuth = b
	}
	if v := os.Getenv("SWAP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SWAP_TIMEOUT value: %w", err)
		}
		cfg.Swap.Timeout = d
	}
	if v := os.Getenv("ROUND_TIMEZONE"); v != "" {
		cfg.Round.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.NATS.StreamName == "" {
		cfg.NATS.StreamName = DefaultStreamName
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = DefaultHTTPAddress
	}
	if cfg.HTTP.RateLimit <= 0 {
		cfg.HTTP.RateLimit = DefaultRateLimit
	}
	if cfg.HTTP.RateBurst <= 0 {
		cfg.HTTP.RateBurst = DefaultRateBurst
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if cfg.HTTP.WriteTimeout <= 0 {
		cfg.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Swap.Timeout <= 0 {
		cfg.Swap.Timeout = DefaultSwapTimeout
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
}

// Location returns the time zone rounds are scheduled in.
func (c *Config) Location() *time.Location {
	if c.Round.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Round.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config/config.toml"

type StoreConfig struct {
	URI            string `toml:"uri" validate:"required"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	Database       string `toml:"database"`
	MaxPoolSize    int    `toml:"max_pool_size" validate:"gte=1"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=1"`
}

type ServerConfig struct {
	Port                  string `toml:"port" validate:"required,numeric"`
	Mode                  string `toml:"mode" validate:"omitempty,oneof=debug release test"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds" validate:"gte=1"`
	// CORSOrigins lists browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string `toml:"cors_origins" validate:"dive,url"`
	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute int `toml:"rate_limit_per_minute" validate:"gte=0"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty means the client IP is always the connection's remote address.
	TrustedProxies []string `toml:"trusted_proxies" validate:"dive,ip|cidr"`
}

type LogConfig struct {
	Mode       string `toml:"mode" validate:"omitempty,oneof=dev development prod production"`
	Level      string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `toml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `toml:"max_age_days" validate:"gte=0"`
	Compress   bool   `toml:"compress"`
}

// BreakerConfig tunes the circuit breaker in front of the graph store.
type BreakerConfig struct {
	Enabled          bool    `toml:"enabled"`
	MaxRequests      uint32  `toml:"max_requests" validate:"gte=1"`
	IntervalSeconds  int     `toml:"interval_seconds" validate:"gte=0"`
	TimeoutSeconds   int     `toml:"timeout_seconds" validate:"gte=1"`
	FailureThreshold float64 `toml:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32  `toml:"min_requests" validate:"gte=1"`
}

type ReasoningConfig struct {
	// MaxConcurrentFetches bounds the category fan-out of one Generate call.
	// 1 serializes the fetches, 0 removes the bound.
	MaxConcurrentFetches int `toml:"max_concurrent_fetches" validate:"gte=0"`
	ListLimit            int `toml:"list_limit" validate:"gte=1"`
}

type Config struct {
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Breaker   BreakerConfig   `toml:"breaker"`
	Reasoning ReasoningConfig `toml:"reasoning"`
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{
			URI:            "bolt://localhost:7687",
			MaxPoolSize:    50,
			TimeoutSeconds: 10,
		},
		Server: ServerConfig{
			Port:                  "8080",
			RequestTimeoutSeconds: 15,
			RateLimitPerMinute:    120,
		},
		Log: LogConfig{
			Mode:       "dev",
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 10,
			MaxAgeDays: 30,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			IntervalSeconds:  30,
			TimeoutSeconds:   60,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
		Reasoning: ReasoningConfig{
			MaxConcurrentFetches: 7,
			ListLimit:            1000,
		},
	}
}

// Load reads the TOML file at path on top of Default(). A missing file is not
// an error; the defaults are used as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv resolves the config path from CONFIG_PATH, loads it, applies
// environment overrides and validates the result.
func LoadFromEnv() (*Config, error) {
	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	env := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	if v := env("NEO4J_URI", "MEMGRAPH_URI"); v != "" {
		c.Store.URI = v
	}
	if v := env("NEO4J_USER", "MEMGRAPH_USER"); v != "" {
		c.Store.User = v
	}
	if v := env("NEO4J_PASSWORD", "MEMGRAPH_PASSWORD"); v != "" {
		c.Store.Password = v
	}
	if v := env("NEO4J_DATABASE"); v != "" {
		c.Store.Database = v
	}
	if v := env("NEO4J_MAX_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Store.MaxPoolSize = n
		}
	}
	if v := env("NEO4J_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Store.TimeoutSeconds = n
		}
	}
	if v := env("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := env("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := env("TRUSTED_PROXIES"); v != "" {
		c.Server.TrustedProxies = splitList(v)
	}
	if v := env("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Server.RateLimitPerMinute = n
		}
	}
	if v := env("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := env("LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := env("LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

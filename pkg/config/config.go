package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Issuer    IssuerConfig    `yaml:"issuer"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	LogLevel  string          `yaml:"log_level"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CacheConfig holds token cache configuration.
type CacheConfig struct {
	MaxEntries    int           `yaml:"max_entries"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	SafetyMargin  time.Duration `yaml:"safety_margin"`
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// IssuerConfig holds credential issuance configuration.
type IssuerConfig struct {
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Audiences []string      `yaml:"audiences"`
}

// RateLimitConfig holds request throttling configuration. With a Redis
// address set, limits are shared across console replicas.
type RateLimitConfig struct {
	Enabled   bool   `yaml:"enabled"`
	RedisAddr string `yaml:"redis_addr"`
}

// AuthConfig holds session authentication configuration.
type AuthConfig struct {
	OIDCIssuerURL string   `yaml:"oidc_issuer_url"`
	OIDCClientID  string   `yaml:"oidc_client_id"`
	SessionSecret string   `yaml:"session_secret"`
	AdminGroups   []string `yaml:"admin_groups"`
}

// LoadConfig loads configuration from environment variables, optionally
// overlaid by a YAML file named in CONSOLE_CONFIG_FILE.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("CONSOLE_HOST", "0.0.0.0"),
			Port:            getEnv("CONSOLE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("CONSOLE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("CONSOLE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("CONSOLE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("CONSOLE_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			MaxEntries:    getEnvInt("CONSOLE_TOKEN_CACHE_MAX_ENTRIES", 100),
			DefaultTTL:    getEnvDuration("CONSOLE_TOKEN_CACHE_DEFAULT_TTL", 50*time.Minute),
			SafetyMargin:  getEnvDuration("CONSOLE_TOKEN_CACHE_SAFETY_MARGIN", 5*time.Minute),
			PruneInterval: getEnvDuration("CONSOLE_TOKEN_CACHE_PRUNE_INTERVAL", 10*time.Minute),
		},
		Issuer: IssuerConfig{
			TokenTTL:  getEnvDuration("CONSOLE_ISSUER_TOKEN_TTL", time.Hour),
			Audiences: getEnvList("CONSOLE_ISSUER_AUDIENCES", nil),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvBool("CONSOLE_RATE_LIMIT_ENABLED", true),
			RedisAddr: getEnv("CONSOLE_RATE_LIMIT_REDIS_ADDR", ""),
		},
		Auth: AuthConfig{
			OIDCIssuerURL: getEnv("CONSOLE_OIDC_ISSUER_URL", ""),
			OIDCClientID:  getEnv("CONSOLE_OIDC_CLIENT_ID", ""),
			SessionSecret: getEnv("CONSOLE_SESSION_SECRET", ""),
			AdminGroups:   getEnvList("CONSOLE_ADMIN_GROUPS", nil),
		},
		LogLevel: getEnv("CONSOLE_LOG_LEVEL", "info"),
	}

	if path := getEnv("CONSOLE_CONFIG_FILE", ""); path != "" {
		if err := overlayFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// overlayFile applies a YAML config file on top of the environment defaults.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("token cache max entries must be positive")
	}
	if c.Cache.SafetyMargin >= c.Cache.DefaultTTL {
		return fmt.Errorf("token cache safety margin must be smaller than the default TTL")
	}
	if c.Issuer.TokenTTL <= c.Cache.DefaultTTL {
		return fmt.Errorf("issuer token TTL must exceed the cache default TTL")
	}
	if c.Auth.OIDCIssuerURL != "" && c.Auth.OIDCClientID == "" {
		return fmt.Errorf("OIDC client ID is required when an OIDC issuer is configured")
	}
	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

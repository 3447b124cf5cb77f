package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                      string `yaml:"port"`
	LogLevel                  string `yaml:"logLevel"`
	BookServiceURL            string `yaml:"bookServiceURL"`
	CartServiceURL            string `yaml:"cartServiceURL"`
	RedisAddr                 string `yaml:"redisAddr"`
	RedisPassword             string `yaml:"redisPassword"`
	SessionTTL                string `yaml:"sessionTTL"`
	SessionJWTSecret          string `yaml:"sessionJwtSecret"`
	AddToCartCooldownSeconds  int    `yaml:"addToCartCooldownSeconds"`
	VisitTTLMinutes           int    `yaml:"visitTtlMinutes"`
	VisitRateLimitPerMinute   int    `yaml:"visitRateLimitPerMinute"`
	SessionRateLimitPerMinute int    `yaml:"sessionRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml), applies env
// overrides, and validates the result.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("STOREFRONT_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_BOOK_SERVICE_URL"); v != "" {
		cfg.BookServiceURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_CART_SERVICE_URL"); v != "" {
		cfg.CartServiceURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("STOREFRONT_SESSION_TTL"); v != "" {
		cfg.SessionTTL = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOREFRONT_SESSION_JWT_SECRET"); v != "" {
		cfg.SessionJWTSecret = v
	}
	if v := os.Getenv("STOREFRONT_COOLDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.AddToCartCooldownSeconds = n
		}
	}
	if v := os.Getenv("STOREFRONT_VISIT_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.VisitTTLMinutes = n
		}
	}
	if v := os.Getenv("STOREFRONT_VISIT_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.VisitRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("STOREFRONT_SESSION_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.SessionRateLimitPerMinute = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.BookServiceURL == "" {
		return errors.New("config: bookServiceURL is required (set in config.yaml)")
	}
	if cfg.CartServiceURL == "" {
		return errors.New("config: cartServiceURL is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for distributed rate limiting")
	}
	if cfg.AddToCartCooldownSeconds < 0 {
		return errors.New("config: addToCartCooldownSeconds must be >= 0")
	}
	if cfg.VisitRateLimitPerMinute < 0 || cfg.SessionRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	return nil
}

// ParseSessionTTL parses the optional session TTL duration string.
// Empty input falls back to 24 hours.
func ParseSessionTTL(ttlStr string) (time.Duration, error) {
	if strings.TrimSpace(ttlStr) == "" {
		return 24 * time.Hour, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	if dur <= 0 {
		return 0, errors.New("sessionTTL must be positive")
	}
	return dur, nil
}

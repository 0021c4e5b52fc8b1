package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMapboxBaseUrl = "https://api.mapbox.com/search/searchbox/v1"
	DefaultListenAddress = ":80"
	DefaultRedisAddress  = "localhost:6379"
	DefaultSessionTTL    = 60 * time.Minute
	DefaultTimeout       = 5 * time.Second
)

type Config struct {
	Environment   string          `yaml:"environment"`
	ListenAddress string          `yaml:"listen_address"`
	Mapbox        MapboxConfig    `yaml:"mapbox"`
	Redis         RedisConfig     `yaml:"redis"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

type MapboxConfig struct {
	AccessToken string        `yaml:"access_token"`
	BaseUrl     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Address    string        `yaml:"address"`
	Disabled   bool          `yaml:"disabled"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

func Default() *Config {
	return &Config{
		Environment:   "production",
		ListenAddress: DefaultListenAddress,
		Mapbox: MapboxConfig{
			BaseUrl: DefaultMapboxBaseUrl,
			Timeout: DefaultTimeout,
		},
		Redis: RedisConfig{
			Address:    DefaultRedisAddress,
			SessionTTL: DefaultSessionTTL,
		},
		RateLimit: RateLimitConfig{
			PerSecond: 10,
			Burst:     20,
		},
	}
}

// Load reads the named .env files (or ./.env when present if none are named), then the
// YAML file named by config_file (if set), then applies environment overrides.
// A missing access token is not an error here.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := Default()
	if path := os.Getenv("config_file"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst < 1 {
		return nil, fmt.Errorf("invalid rate_burst %d: must be at least 1", cfg.RateLimit.Burst)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("environment"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("listen_address"); v != "" {
		c.ListenAddress = v
	}

	if v := os.Getenv("mapbox_access_token"); v != "" {
		c.Mapbox.AccessToken = v
	} else if v := os.Getenv("EXPO_PUBLIC_MAPBOX_KEY"); v != "" {
		c.Mapbox.AccessToken = v
	}
	if v := os.Getenv("mapbox_baseurl"); v != "" {
		c.Mapbox.BaseUrl = v
	}
	if v := os.Getenv("mapbox_timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid mapbox_timeout %q: %w", v, err)
		}
		c.Mapbox.Timeout = d
	}

	if v := os.Getenv("redis_address"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("disable_redis"); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid disable_redis %q: %w", v, err)
		}
		c.Redis.Disabled = disabled
	}
	if v := os.Getenv("session_ttl"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid session_ttl %q: %w", v, err)
		}
		c.Redis.SessionTTL = d
	}

	if v := os.Getenv("rate_limit"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid rate_limit %q: %w", v, err)
		}
		c.RateLimit.PerSecond = r
	}
	if v := os.Getenv("rate_burst"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid rate_burst %q: %w", v, err)
		}
		c.RateLimit.Burst = b
	}
	return nil
}

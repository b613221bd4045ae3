// Package config loads the server configuration.
//
// Values are resolved in order: defaults, then the optional YAML file,
// then MORTGAGE_* environment variables. Command-line flags are applied
// last by cmd/server.
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

// Config holds all server configuration.
type Config struct {
	Port     int           `yaml:"port"`
	Database string        `yaml:"database"`
	Redis    RedisConfig   `yaml:"redis"`
	Log      LogConfig     `yaml:"log"`
	Euribor  EuriborConfig `yaml:"euribor"`
}

// RedisConfig configures the schedule cache. An empty Addr selects the
// in-memory cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "text"
}

// EuriborConfig controls path generation in the workspace.
// A zero Seed means a fresh random source per process.
type EuriborConfig struct {
	Seed int64 `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:     8080,
		Database: "mortgages.db",
		Redis: RedisConfig{
			CacheTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty) and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.Redis.CacheTTL < 0 {
		errs = append(errs, errors.New("redis.cache_ttl must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) error {
	if v, ok := lookup("MORTGAGE_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MORTGAGE_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := lookup("MORTGAGE_DB"); ok {
		cfg.Database = v
	}
	if v, ok := lookup("MORTGAGE_REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := lookup("MORTGAGE_CACHE_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MORTGAGE_CACHE_TTL: %w", err)
		}
		cfg.Redis.CacheTTL = ttl
	}
	if v, ok := lookup("MORTGAGE_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("MORTGAGE_LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := lookup("MORTGAGE_EURIBOR_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MORTGAGE_EURIBOR_SEED: %w", err)
		}
		cfg.Euribor.Seed = seed
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

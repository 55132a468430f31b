// Package config provides configuration loading and validation for the dashboard server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"salaries/internal/dataset"
)

// Environment variables that override file values.
const (
	EnvAddr            = "SALARIES_ADDR"
	EnvDataURL         = "SALARIES_DATA_URL"
	EnvFetchTimeout    = "SALARIES_FETCH_TIMEOUT"
	EnvShutdownTimeout = "SALARIES_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "SALARIES_LOG_LEVEL"
	EnvLogFormat       = "SALARIES_LOG_FORMAT"
	EnvRateLimit       = "SALARIES_RATE_LIMIT"
	EnvCORSOrigins     = "SALARIES_CORS_ORIGINS"
)

// Config is the server configuration.
type Config struct {
	Addr            string        `yaml:"addr" validate:"required"`
	DataURL         string        `yaml:"data_url" validate:"required"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat       string        `yaml:"log_format" validate:"oneof=json console"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gte=0"` // requests per second per client, 0 disables
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		DataURL:         dataset.DefaultURL,
		FetchTimeout:    dataset.DefaultTimeout,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
		RateLimit:       20,
		CORSOrigins:     []string{"*"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and environment overrides, in that order. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvDataURL); v != "" {
		c.DataURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := os.Getenv(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFetchTimeout, err)
		}
		c.FetchTimeout = d
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = d
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRateLimit, err)
		}
		c.RateLimit = f
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

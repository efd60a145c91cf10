package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/b3signals/b3dash/internal/core"
)

type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Poller  PollerConfig  `mapstructure:"poller"`
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// BackendConfig points at the analytics service.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PollerConfig controls the live feed refresh.
type PollerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	HistoryLimit  int           `mapstructure:"history_limit"`
}

// ServerConfig holds dashboard server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: 15 * time.Second,
		},
		Poller: PollerConfig{
			Interval:      5 * time.Second,
			MinConfidence: 50,
			HistoryLimit:  50,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return core.NewError(core.ErrValidation, "backend base_url is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return core.NewError(core.ErrValidation,
			fmt.Sprintf("backend base_url must be an http(s) address, got %q", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		return core.NewError(core.ErrValidation,
			fmt.Sprintf("backend timeout must be positive, got %v", c.Backend.Timeout))
	}

	if c.Poller.Interval < time.Second {
		return core.NewError(core.ErrValidation,
			fmt.Sprintf("poller interval must be at least 1s, got %v", c.Poller.Interval))
	}
	if c.Poller.MinConfidence < 0 || c.Poller.MinConfidence > 100 {
		return core.NewError(core.ErrValidation,
			fmt.Sprintf("min_confidence must be between 0 and 100, got %v", c.Poller.MinConfidence))
	}
	if c.Poller.HistoryLimit < 0 {
		return core.NewError(core.ErrValidation,
			fmt.Sprintf("history_limit cannot be negative, got %d", c.Poller.HistoryLimit))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.NewError(core.ErrValidation,
			fmt.Sprintf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.NewError(core.ErrValidation,
			fmt.Sprintf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}

// Package config loads server configuration from an optional YAML file
// with SQLGATE_* environment variable overrides.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the serve command's settings.
type Config struct {
	// Database is the path to the read-only SQLite database file.
	Database string `mapstructure:"database"`
	// Listen is the HTTP listen address.
	Listen string `mapstructure:"listen"`
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the given file path (optional) and the
// environment. Precedence is env over file over defaults; command-line
// flags are applied by the caller on top.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults double as key registrations so AutomaticEnv can override them.
	v.SetDefault("database", "")
	v.SetDefault("listen", ":9001")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("SQLGATE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

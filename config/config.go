// Package config loads reportview settings from a config file, environment
// variables and command-line flags using viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/tasmanium/reportview/logger"
)

// EnvPrefix prefixes every environment override, e.g. REPORTVIEW_THEME.
const EnvPrefix = "REPORTVIEW"

// FileName is the config file name searched for in the working directory.
const FileName = "reportview"

// Config holds the settings shared by all commands.
type Config struct {
	Report         string      `mapstructure:"report"`
	Theme          string      `mapstructure:"theme"`
	LogLevel       string      `mapstructure:"log_level"`
	LogFile        string      `mapstructure:"log_file"`
	LocationFile   string      `mapstructure:"location_file"`
	FollowLocation bool        `mapstructure:"follow_location"`
	BaseURL        string      `mapstructure:"base_url"`
	Serve          ServeConfig `mapstructure:"serve"`
}

// ServeConfig holds the settings of the serve command.
type ServeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// New returns a viper instance with defaults and environment overrides
// registered. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("report", "")
	v.SetDefault("theme", "dark")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("location_file", "")
	v.SetDefault("follow_location", false)
	v.SetDefault("base_url", "")
	v.SetDefault("serve.host", "localhost")
	v.SetDefault("serve.port", 8080)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, or reportview.{yaml,json,toml} from the
// working directory when path is empty, and returns the merged settings.
// A missing default config file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that enumerated settings hold known values.
func (c *Config) Validate() error {
	switch c.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("invalid theme %q: want dark or light", c.Theme)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve port %d", c.Serve.Port)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LogSettings controls the rotating debug log file
type LogSettings struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"maxSize"`    // megabytes
	MaxBackups int    `mapstructure:"maxBackups"` // rotated files kept
	MaxAge     int    `mapstructure:"maxAge"`     // days
}

// ReviewSettings controls GitHub access
type ReviewSettings struct {
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

// Settings are the per-user options of gstack. They come from an optional
// YAML file and GSTACK_* environment variables, environment first.
type Settings struct {
	Remote string         `mapstructure:"remote"`
	Debug  bool           `mapstructure:"debug"`
	Log    LogSettings    `mapstructure:"log"`
	Review ReviewSettings `mapstructure:"review"`
}

// DefaultSettingsPath returns $XDG_CONFIG_HOME/gstack/config.yaml, falling
// back to ~/.config/gstack/config.yaml.
func DefaultSettingsPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gstack", "config.yaml")
}

// DefaultLogFilePath returns ~/.gstack/logs/gstack.log
func DefaultLogFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gstack.log"
	}
	return filepath.Join(home, ".gstack", "logs", "gstack.log")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("remote", "origin")
	v.SetDefault("debug", false)
	v.SetDefault("log.file", DefaultLogFilePath())
	v.SetDefault("log.maxSize", 1)
	v.SetDefault("log.maxBackups", 2)
	v.SetDefault("log.maxAge", 30)
	v.SetDefault("review.cacheTTL", 30*time.Second)

	v.SetEnvPrefix("GSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// DEBUG=1 keeps working the way it does for most CLIs.
	_ = v.BindEnv("debug", "GSTACK_DEBUG", "DEBUG")
	return v
}

// LoadSettings reads settings from path (DefaultSettingsPath when empty) and
// the environment. A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	v := newViper()

	if path == "" {
		path = DefaultSettingsPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Remote == "" {
		s.Remote = "origin"
	}
	return &s, nil
}

// DefaultSettings returns settings with every default applied and no file or
// environment input.
func DefaultSettings() *Settings {
	return &Settings{
		Remote: "origin",
		Log: LogSettings{
			File:       DefaultLogFilePath(),
			MaxSize:    1,
			MaxBackups: 2,
			MaxAge:     30,
		},
		Review: ReviewSettings{CacheTTL: 30 * time.Second},
	}
}

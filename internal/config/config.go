// SPDX-License-Identifier: MPL-2.0

// Package config loads the application-level configuration for playpack.
//
// Build inputs (playbook, requirements, vars, output path) are CLI flags and
// never live here; this package only covers tool-level settings: where the
// galaxy resolver binary lives, the archive compression level, and verbosity.
// Configuration is optional: a missing config file means defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "playpack"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix is the prefix for environment variable overrides
	// (e.g. PLAYPACK_GALAXY_BIN).
	EnvPrefix = "PLAYPACK"
)

// Config holds tool-level settings.
type Config struct {
	// GalaxyBin is the command used to invoke the external role resolver.
	GalaxyBin string `mapstructure:"galaxy_bin"`

	// CompressionLevel is the gzip level used by the packager (1-9).
	CompressionLevel int `mapstructure:"compression_level"`

	// Verbose enables debug-level logging.
	Verbose bool `mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		GalaxyBin:        "ansible-galaxy",
		CompressionLevel: 9,
		Verbose:          false,
	}
}

// configFilePathOverride allows the --config flag and tests to pin the file.
var configFilePathOverride string

// SetConfigFilePathOverride sets an explicit config file path, bypassing the
// default search locations. An empty string restores default behavior.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// ConfigDir returns the playpack configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the configuration from the config file (if present) and
// environment, falling back to defaults. A missing config file is not an
// error; a malformed one is.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("galaxy_bin", defaults.GalaxyBin)
	v.SetDefault("compression_level", defaults.CompressionLevel)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configFilePathOverride != "" {
		if !fileExists(configFilePathOverride) {
			return nil, fmt.Errorf("config file not found: %s", configFilePathOverride)
		}
		v.SetConfigFile(configFilePathOverride)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFilePathOverride, err)
		}
	} else {
		cfgDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(cfgDir)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			// No config file found, defaults apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.CompressionLevel < 1 || cfg.CompressionLevel > 9 {
		return nil, fmt.Errorf("compression_level must be between 1 and 9, got %d", cfg.CompressionLevel)
	}
	if cfg.GalaxyBin == "" {
		return nil, fmt.Errorf("galaxy_bin must not be empty")
	}

	return &cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

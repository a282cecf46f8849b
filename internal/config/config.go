// SPDX-License-Identifier: MPL-2.0

// Package config loads tool configuration for bookwright. Configuration is
// read through viper from an optional YAML file in the config directory,
// with environment overrides (BOOKWRIGHT_*) and built-in defaults, so a
// fresh install works with no config file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "bookwright"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
)

type (
	// Config is the effective tool configuration.
	Config struct {
		// Source locates the template catalog repository.
		Source SourceConfig `mapstructure:"source"`
		// Host configures the remote repository host.
		Host HostConfig `mapstructure:"host"`
		// ProjectsRoot is the directory under which projects are created.
		ProjectsRoot string `mapstructure:"projects_root"`
		// FallbackProjectName is used when a project name sanitizes to
		// the empty string.
		FallbackProjectName string `mapstructure:"fallback_project_name"`
		// CustomTriggers are the words recognized (case-insensitively, as
		// substrings) in the interactive module menu to select the
		// custom-module path. The vocabulary is configurable rather than
		// hard-coded.
		CustomTriggers []string `mapstructure:"custom_triggers"`
		// Verbose enables verbose diagnostic output.
		Verbose bool `mapstructure:"verbose"`
	}

	// SourceConfig locates the template catalog.
	SourceConfig struct {
		// Owner is the repository owner of the template catalog.
		Owner string `mapstructure:"owner"`
		// Repo is the repository name of the template catalog.
		Repo string `mapstructure:"repo"`
	}

	// HostConfig configures access to the remote repository host.
	HostConfig struct {
		// APIBaseURL is the host API endpoint.
		APIBaseURL string `mapstructure:"api_base_url"`
		// TokenEnv names the environment variable holding the access token.
		TokenEnv string `mapstructure:"token_env"`
	}
)

// CloneURL returns the HTTPS clone URL for the template catalog.
func (s SourceConfig) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", s.Owner, s.Repo)
}

// Token reads the host access token from the configured environment
// variable. Empty means unauthenticated.
func (h HostConfig) Token() string {
	return os.Getenv(h.TokenEnv)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Source: SourceConfig{
			Owner: "bookwright",
			Repo:  "templates",
		},
		Host: HostConfig{
			APIBaseURL: "https://api.github.com",
			TokenEnv:   "GITHUB_TOKEN",
		},
		ProjectsRoot:        filepath.Join(home, "Projects"),
		FallbackProjectName: "NewProject",
		CustomTriggers:      []string{"custom", "own"},
	}
}

// ConfigDir returns the bookwright configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

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

// Load reads configuration from defaults, the config file (if present),
// and BOOKWRIGHT_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("source.owner", defaults.Source.Owner)
	v.SetDefault("source.repo", defaults.Source.Repo)
	v.SetDefault("host.api_base_url", defaults.Host.APIBaseURL)
	v.SetDefault("host.token_env", defaults.Host.TokenEnv)
	v.SetDefault("projects_root", defaults.ProjectsRoot)
	v.SetDefault("fallback_project_name", defaults.FallbackProjectName)
	v.SetDefault("custom_triggers", defaults.CustomTriggers)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.CustomTriggers) == 0 {
		cfg.CustomTriggers = defaults.CustomTriggers
	}
	if cfg.FallbackProjectName == "" {
		cfg.FallbackProjectName = defaults.FallbackProjectName
	}

	return &cfg, nil
}

// Package config resolves the client configuration from a TOML config
// file, a .env file, and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds the resolved client settings. Empty endpoint URLs mean
// the public defaults.
type Config struct {
	Token     string `toml:"token"`
	APIURL    string `toml:"api_url"`
	UploadURL string `toml:"upload_url"`
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// ConfigPath overrides the config file location. Empty falls back to
	// the GOFILE_GO_CONFIG environment variable, then the default path.
	ConfigPath string

	// EnvFile is the dotenv file to load into the environment before
	// reading overrides. Empty means ".env" in the working directory.
	EnvFile string
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/gofile-go/config.toml. Empty when the user config
// directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "gofile-go", "config.toml")
}

// Load resolves the effective configuration. Missing config and dotenv
// files are not errors, everything defaults to the guest session.
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}

	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := loadDotenv(opts.EnvFile); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadDotenv loads a dotenv file into the process environment. Existing
// environment variables are never overridden.
func loadDotenv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}

	if _, err := os.Stat(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("config: stating %s: %w", envFile, err)
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("config: loading %s: %w", envFile, err)
	}

	return nil
}

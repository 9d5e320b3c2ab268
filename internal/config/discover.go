package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir is the per-project directory searched for a config file.
const DefaultDir = ".zcon"

// ErrNoConfig is returned by Discover when no config file exists.
var ErrNoConfig = errors.New("no config file found")

var candidates = []string{"config.yaml", "config.yml", "config.toml"}

// Discover finds the config file path.
// Priority: explicit path > ZCON_CONFIG env var > .zcon/config.* in CWD >
// walk up parents.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config %q: %w", explicit, err)
		}
		return explicit, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", fmt.Errorf("%s=%q: %w", EnvConfig, env, os.ErrNotExist)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		for _, name := range candidates {
			candidate := filepath.Join(dir, DefaultDir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w (looked for %s/config.{yaml,yml,toml})", ErrNoConfig, DefaultDir)
}

// Open discovers and loads the configuration. When no file is found the
// defaults are used and the returned path is empty.
func Open(explicit string, overrides ...Override) (*Config, string, error) {
	path, err := Discover(explicit)
	if errors.Is(err, ErrNoConfig) {
		cfg, err := Load("", overrides...)
		return cfg, "", err
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path, overrides...)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, path, nil
}

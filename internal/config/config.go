// Package config loads the console configuration from YAML or TOML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/daviddao/zcon/internal/frame"
)

// Environment overrides.
const (
	EnvConfig   = "ZCON_CONFIG"
	EnvURL      = "ZCON_URL"
	EnvLogLevel = "ZCON_LOG_LEVEL"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level console configuration.
type Config struct {
	Hub        HubConfig        `yaml:"hub" toml:"hub"`
	Console    ConsoleConfig    `yaml:"console" toml:"console"`
	Logger     LoggerConfig     `yaml:"logger" toml:"logger"`
	Transcript TranscriptConfig `yaml:"transcript" toml:"transcript"`
}

// HubConfig holds connection settings.
type HubConfig struct {
	URL         string        `yaml:"url" toml:"url"`
	Subscribe   string        `yaml:"subscribe" toml:"subscribe"`       // join target, "*" for all spaces
	DialTimeout time.Duration `yaml:"dial_timeout" toml:"dial_timeout"` // one-shot commands only
}

// ConsoleConfig holds composer and log settings.
type ConsoleConfig struct {
	Spaces      []string `yaml:"spaces" toml:"spaces"`
	DefaultKind string   `yaml:"default_kind" toml:"default_kind"`
	EchoSent    bool     `yaml:"echo_sent" toml:"echo_sent"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level" toml:"level"`   // trace, debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // "console" or "json"
	Output string `yaml:"output" toml:"output"` // "stderr", "stdout", "discard" or a file path
}

// TranscriptConfig holds SQLite transcript settings.
type TranscriptConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Hub: HubConfig{
			URL:         "ws://127.0.0.1:26514/",
			Subscribe:   "*",
			DialTimeout: 10 * time.Second,
		},
		Console: ConsoleConfig{
			Spaces:      []string{"general"},
			DefaultKind: "message",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Transcript: TranscriptConfig{
			Path: filepath.Join(DefaultDir, "transcript.db"),
		},
	}
}

// Override adjusts a loaded configuration before it is validated.
type Override func(*Config)

// WithURL overrides hub.url when url is not empty.
func WithURL(hubURL string) Override {
	return func(c *Config) {
		if hubURL != "" {
			c.Hub.URL = hubURL
		}
	}
}

// WithLogLevel overrides logger.level when level is not empty.
func WithLogLevel(level string) Override {
	return func(c *Config) {
		if level != "" {
			c.Logger.Level = level
		}
	}
}

// Load reads path over the defaults, applies environment overrides, then
// the given overrides, and validates the result. An empty path yields the
// defaults.
func Load(path string, overrides ...Override) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, filepath.Ext(path))
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvURL); v != "" {
		c.Hub.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logger.Level = v
	}
}

// Validate checks the configuration for values the console cannot use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Hub.URL)
	if err != nil || c.Hub.URL == "" {
		return fmt.Errorf("%w: hub.url %q", ErrInvalidConfig, c.Hub.URL)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: hub.url must use ws or wss, got %q", ErrInvalidConfig, u.Scheme)
	}
	if strings.TrimSpace(c.Hub.Subscribe) == "" {
		return fmt.Errorf("%w: hub.subscribe is empty", ErrInvalidConfig)
	}
	if c.Hub.DialTimeout < 0 {
		return fmt.Errorf("%w: hub.dial_timeout is negative", ErrInvalidConfig)
	}
	if len(c.Console.Spaces) == 0 {
		return fmt.Errorf("%w: console.spaces is empty", ErrInvalidConfig)
	}
	for i, s := range c.Console.Spaces {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: console.spaces[%d] is empty", ErrInvalidConfig, i)
		}
	}
	if _, err := frame.ParseKind(c.Console.DefaultKind); err != nil {
		return fmt.Errorf("%w: console.default_kind: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Logger.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: logger.format %q", ErrInvalidConfig, c.Logger.Format)
	}
	if c.Transcript.Enabled && c.Transcript.Path == "" {
		return fmt.Errorf("%w: transcript.path is empty", ErrInvalidConfig)
	}
	return nil
}

// DefaultKind returns the parsed console.default_kind.
func (c *Config) DefaultKind() frame.Kind {
	k, err := frame.ParseKind(c.Console.DefaultKind)
	if err != nil {
		return frame.Message
	}
	return k
}

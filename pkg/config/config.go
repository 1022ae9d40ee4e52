package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/layout"
	"github.com/ritzau/mindmap/pkg/logging"
)

// DefaultFile is the optional config file read from the working directory
const DefaultFile = "mindmap.toml"

// EnvPrefix prefixes environment overrides, e.g. MINDMAP_PORT=9090
const EnvPrefix = "MINDMAP_"

// Config holds all configuration for the application
type Config struct {
	Dataset     string  `koanf:"dataset"`   // builtin:<name> or a .toml/.json path
	Layout      string  `koanf:"layout"`    // Layout preset name
	Spacing     float64 `koanf:"spacing"`   // Overrides the preset when > 0
	Offset      float64 `koanf:"offset"`    // Overrides the preset's vertical offset when > 0
	Direction   string  `koanf:"direction"` // Overrides the preset when set: down or up
	Offsets     string  `koanf:"offsets"`   // Explicit child offsets: "" (preset), "on" or "off"
	Host        string  `koanf:"host"`
	Port        int     `koanf:"port"`
	Watch       bool    `koanf:"watch"` // Reload the dataset file when it changes
	OpenBrowser bool    `koanf:"open"`
	Verbosity   string  `koanf:"verbosity"`
	VerboseCnt  int     `koanf:"verbose"`
	LogFormat   string  `koanf:"log-format"` // text or json
}

// Defaults returns the built-in configuration values
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"dataset":    dataset.DefaultRef,
		"layout":     layout.DefaultPreset,
		"spacing":    0.0,
		"offset":     0.0,
		"direction":  "",
		"offsets":    "",
		"host":       "localhost",
		"port":       8080,
		"watch":      false,
		"open":       true,
		"verbosity":  "",
		"verbose":    0,
		"log-format": "text",
	}
}

// LoadFile loads configuration from defaults, the config file at path,
// environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func LoadFile(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// MINDMAP_LOG_FORMAT=json sets "log-format"
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LayoutConfig resolves the preset and applies the individual overrides
func (c *Config) LayoutConfig() (layout.Config, error) {
	lc, err := layout.Preset(c.Layout)
	if err != nil {
		return layout.Config{}, err
	}

	if c.Spacing > 0 {
		lc.Spacing = c.Spacing
	}
	if c.Offset > 0 {
		lc.VerticalOffset = c.Offset
	}
	if c.Direction != "" {
		lc.Direction = layout.Direction(strings.ToLower(c.Direction))
	}
	switch strings.ToLower(c.Offsets) {
	case "":
	case "on", "true":
		lc.HonorOffsets = true
	case "off", "false":
		lc.HonorOffsets = false
	default:
		return layout.Config{}, fmt.Errorf("offsets must be on or off, got %q", c.Offsets)
	}

	if err := lc.Validate(); err != nil {
		return layout.Config{}, fmt.Errorf("invalid layout: %w", err)
	}
	return lc, nil
}

// LogLevel maps verbosity settings to a slog level
func (c *Config) LogLevel() (slog.Level, error) {
	return logging.ParseLevel(c.Verbosity, c.VerboseCnt)
}

// JSONLogs reports whether logs should be written as JSON
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}

// Addr returns the listen address of the web server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// URL returns the address browsers should open
func (c *Config) URL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

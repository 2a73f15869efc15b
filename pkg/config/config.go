// Package config loads the YAML configuration shared by the pageobjects
// command-line tools.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver selects the browser automation backend.
type Driver string

const (
	// DriverPlaywright drives Chromium through playwright-go.
	DriverPlaywright Driver = "playwright"
	// DriverRod drives Chrome through the DevTools protocol with go-rod.
	DriverRod Driver = "rod"
)

// Config is the top-level configuration.
type Config struct {
	Driver   Driver         `yaml:"driver" json:"driver"`
	Browser  BrowserConfig  `yaml:"browser" json:"browser"`
	Registry RegistryConfig `yaml:"registry" json:"registry"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// BrowserConfig configures the launched browser.
type BrowserConfig struct {
	Headless bool           `yaml:"headless" json:"headless"`
	Timeout  time.Duration  `yaml:"timeout" json:"timeout"`
	Viewport ViewportConfig `yaml:"viewport" json:"viewport"`

	// RemoteURL connects to a running Chrome instead of launching one (rod only)
	RemoteURL string `yaml:"remote_url" json:"remote_url"`

	// WaitUntil is the navigation event to wait for (playwright only):
	// load, domcontentloaded or networkidle
	WaitUntil string `yaml:"wait_until" json:"wait_until"`
}

// ViewportConfig is the browser viewport size in pixels.
type ViewportConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// RegistryConfig configures descriptor registration.
type RegistryConfig struct {
	// Strict rejects page object types declaring unsupported selector fields
	Strict bool `yaml:"strict" json:"strict"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// Directory overrides the per-user log directory
	Directory string `yaml:"directory" json:"directory"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// DefaultConfig returns a configuration suitable for most use cases
func DefaultConfig() *Config {
	return &Config{
		Driver: DriverPlaywright,
		Browser: BrowserConfig{
			Headless: true,
			Timeout:  30 * time.Second,
			Viewport: ViewportConfig{Width: 1280, Height: 720},
		},
		Logging: LoggingConfig{Verbosity: "normal"},
		Metrics: MetricsConfig{Addr: ":9464"},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPlaywright, DriverRod:
	default:
		return fmt.Errorf("invalid driver: %s (must be 'playwright' or 'rod')", c.Driver)
	}

	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser timeout cannot be negative")
	}
	if c.Browser.Viewport.Width < 0 || c.Browser.Viewport.Height < 0 {
		return fmt.Errorf("viewport dimensions cannot be negative")
	}
	if c.Browser.RemoteURL != "" && c.Driver != DriverRod {
		return fmt.Errorf("remote_url is only supported by the rod driver")
	}

	switch c.Browser.WaitUntil {
	case "", "load", "domcontentloaded", "networkidle":
	default:
		return fmt.Errorf("invalid wait_until: %s (must be 'load', 'domcontentloaded' or 'networkidle')", c.Browser.WaitUntil)
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}

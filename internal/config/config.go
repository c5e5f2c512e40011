// Package config holds the runtime configuration for the hero cycler.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/herocycle/internal/media"
)

// Config collects every recognized option. Zero values are filled from
// DefaultConfig at load time.
type Config struct {
	ManifestPath string `yaml:"manifest"`

	// Cycle behavior
	CycleInterval time.Duration `yaml:"cycle_interval"` // time between item advances
	LoadTimeout   time.Duration `yaml:"load_timeout"`   // asset fetch budget
	Debounce      time.Duration `yaml:"debounce"`       // window for visibility/resize bursts

	// Geometry
	MinOverflow float64 `yaml:"min_overflow"` // px the image must extend past every side
	BaseScale   float64 `yaml:"base_scale"`   // scale held at intermediate waypoints
	MaxScale    float64 `yaml:"max_scale"`    // cap on decorative zoom
	Variance    float64 `yaml:"variance"`     // target-position jitter share

	// Headless/default viewport used until the host reports geometry
	Viewport media.Viewport `yaml:"viewport"`

	DecodeWidth int  `yaml:"decode_width"` // decoded images wider than this are downscaled
	ShowStats   bool `yaml:"show_stats"`   // print the diagnostics report on dispose
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		CycleInterval: 20 * time.Second,
		LoadTimeout:   30 * time.Second,
		Debounce:      150 * time.Millisecond,
		MinOverflow:   100,
		BaseScale:     1.1,
		MaxScale:      1.3,
		Variance:      0.2,
		Viewport:      media.Viewport{Width: 1920, Height: 1080, HeaderHeight: 80},
		DecodeWidth:   1920,
	}
}

// LoadConfigFile loads configuration from a YAML file on top of the
// defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects option combinations the cycler cannot run with.
func (c *Config) Validate() error {
	if c.CycleInterval <= 0 {
		return fmt.Errorf("cycle_interval must be > 0, got %v", c.CycleInterval)
	}
	if c.LoadTimeout <= 0 {
		return fmt.Errorf("load_timeout must be > 0, got %v", c.LoadTimeout)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must be >= 0, got %v", c.Debounce)
	}
	if c.MinOverflow < 0 {
		return fmt.Errorf("min_overflow must be >= 0, got %v", c.MinOverflow)
	}
	if c.BaseScale <= 1 {
		return fmt.Errorf("base_scale must be > 1, got %v", c.BaseScale)
	}
	if c.MaxScale < c.BaseScale {
		return fmt.Errorf("max_scale %v must be >= base_scale %v", c.MaxScale, c.BaseScale)
	}
	if c.Variance < 0 || c.Variance > 1 {
		return fmt.Errorf("variance must be in [0, 1], got %v", c.Variance)
	}
	if err := media.ValidateViewport(c.Viewport); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	return nil
}

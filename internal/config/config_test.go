package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	content := `
manifest: hero.yaml
cycle_interval: 10s
min_overflow: 80
max_scale: 1.5
viewport:
  width: 1280
  height: 720
  header_height: 64
`
	path := filepath.Join(t.TempDir(), "herocycle.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}

	if cfg.CycleInterval != 10*time.Second {
		t.Errorf("cycle_interval: expected 10s, got %v", cfg.CycleInterval)
	}
	if cfg.MinOverflow != 80 {
		t.Errorf("min_overflow: expected 80, got %v", cfg.MinOverflow)
	}
	if cfg.Viewport.HeaderHeight != 64 {
		t.Errorf("header_height: expected 64, got %v", cfg.Viewport.HeaderHeight)
	}
	// Unset options keep their defaults.
	if cfg.LoadTimeout != 30*time.Second {
		t.Errorf("load_timeout default lost: %v", cfg.LoadTimeout)
	}
	if cfg.BaseScale != 1.1 {
		t.Errorf("base_scale default lost: %v", cfg.BaseScale)
	}
}

func TestValidateRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero interval", func(c *Config) { c.CycleInterval = 0 }, "cycle_interval"},
		{"negative overflow", func(c *Config) { c.MinOverflow = -1 }, "min_overflow"},
		{"base scale below 1", func(c *Config) { c.BaseScale = 0.9 }, "base_scale"},
		{"max below base", func(c *Config) { c.MaxScale = 1.05 }, "max_scale"},
		{"variance above 1", func(c *Config) { c.Variance = 1.5 }, "variance"},
		{"header eats viewport", func(c *Config) { c.Viewport.HeaderHeight = 2000 }, "viewport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"portalphys/internal/physics"
)

const (
	DefaultScenario    = "box_on_floor"
	DefaultTicks       = 600
	DefaultSampleEvery = 6
	DefaultWidth       = 1280
	DefaultHeight      = 720
	DefaultTargetFPS   = 60
)

// Config is the on-disk settings file shared by the command line tools
type Config struct {
	Scenario    string         `yaml:"scenario"`
	Ticks       int            `yaml:"ticks"`
	SampleEvery int            `yaml:"sample_every"`
	Physics     physics.Config `yaml:"physics"`
	Viewer      ViewerConfig   `yaml:"viewer"`
}

type ViewerConfig struct {
	Width     int32 `yaml:"width"`
	Height    int32 `yaml:"height"`
	TargetFPS int32 `yaml:"target_fps"`
	// draw manifold points and normals
	ShowContacts bool `yaml:"show_contacts"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:    DefaultScenario,
		Ticks:       DefaultTicks,
		SampleEvery: DefaultSampleEvery,
		Physics:     physics.DefaultConfig(),
		Viewer: ViewerConfig{
			Width:        DefaultWidth,
			Height:       DefaultHeight,
			TargetFPS:    DefaultTargetFPS,
			ShowContacts: true,
		},
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Ticks < 1 {
		return fmt.Errorf("ticks %d must be positive: %w", c.Ticks, physics.ErrInvalidConfig)
	}
	if c.SampleEvery < 1 {
		c.SampleEvery = 1
	}
	return c.Physics.Validate()
}

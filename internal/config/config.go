package config

import (
	"fmt"

	"github.com/dshills/undoredo/internal/logging"
)

// Config is the complete demo configuration.
type Config struct {
	History HistoryConfig `toml:"history" yaml:"history"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Scene   SceneConfig   `toml:"scene" yaml:"scene"`
}

// HistoryConfig configures the record container.
type HistoryConfig struct {
	// Capacity is the maximum number of records kept; negative is unbounded.
	Capacity int `toml:"capacity" yaml:"capacity"`
	// Enabled is the initial state of the container gate.
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
	// File, when set, receives log output instead of stderr.
	File string `toml:"file" yaml:"file"`
}

// SceneConfig configures the demo scene.
type SceneConfig struct {
	// Seed makes spawning deterministic; 0 uses the clock.
	Seed   int64 `toml:"seed" yaml:"seed"`
	Width  int   `toml:"width" yaml:"width"`
	Height int   `toml:"height" yaml:"height"`
}

// DefaultCapacity is the number of records the demo keeps.
const DefaultCapacity = 20

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			Capacity: DefaultCapacity,
			Enabled:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Scene: SceneConfig{
			Width:  30,
			Height: 12,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	if c.Scene.Width <= 0 || c.Scene.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSceneSize, c.Scene.Width, c.Scene.Height)
	}
	return nil
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}

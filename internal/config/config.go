// Package config loads the overlay configuration from TOML, applies
// environment overrides, and supports live reload via file watching.
package config

import (
	"fmt"
)

// Config is the root configuration.
type Config struct {
	Logging     LoggingConfig      `toml:"logging"`
	Renderer    RendererConfig     `toml:"renderer"`
	Decorations []DecorationConfig `toml:"decorations"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File is the log destination; empty discards logs. Logging to the
	// terminal would corrupt the display.
	File string `toml:"file"`
}

// RendererConfig controls the overlay renderer and its collaborators.
type RendererConfig struct {
	// MaxFPS bounds the refresh cadence (0 = default).
	MaxFPS int `toml:"max_fps"`

	// Scrollback is the retained history limit of the normal buffer.
	Scrollback int `toml:"scrollback"`

	// CellWidth and CellHeight are the pixel size of one cell as
	// reported to the geometry pass.
	CellWidth  int `toml:"cell_width"`
	CellHeight int `toml:"cell_height"`
}

// DecorationConfig is a decoration preset registered at startup.
type DecorationConfig struct {
	// Line is the absolute buffer line the decoration anchors to.
	Line int `toml:"line"`

	// Layout options; zero width/height mean one cell.
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	X      int    `toml:"x"`
	Anchor string `toml:"anchor"` // "left" (default) or "right"

	// Text and Color feed the built-in render hook.
	Text  string `toml:"text"`
	Color string `toml:"color"` // hex, e.g. "#50c878"

	// Hook names a Lua render hook to run instead of the built-in one.
	Hook string `toml:"hook"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Renderer: RendererConfig{
			MaxFPS:     60,
			Scrollback: 1000,
			CellWidth:  8,
			CellHeight: 16,
		},
	}
}

// Validate checks field values, returning the first problem found.
func (c Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}

	if c.Renderer.MaxFPS < 0 {
		return fmt.Errorf("renderer.max_fps: must not be negative, got %d", c.Renderer.MaxFPS)
	}
	if c.Renderer.Scrollback < 0 {
		return fmt.Errorf("renderer.scrollback: must not be negative, got %d", c.Renderer.Scrollback)
	}

	for i, d := range c.Decorations {
		switch d.Anchor {
		case "", "left", "right":
		default:
			return fmt.Errorf("decorations[%d].anchor: want left or right, got %q", i, d.Anchor)
		}
		if d.Line < 0 {
			return fmt.Errorf("decorations[%d].line: must not be negative, got %d", i, d.Line)
		}
	}
	return nil
}

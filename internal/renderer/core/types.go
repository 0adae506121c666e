// Package core provides shared visual types for the renderer subsystem.
// It sits below surface and backend to break import cycles.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Attribute represents text attributes applied to overlay content.
type Attribute uint16

// Attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrDim                 // Faint text
	AttrItalic              // Italic text
	AttrUnderline           // Underlined text
	AttrReverse             // Swap fg/bg
)

// Has returns true if the set contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With returns the set with attr added.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// Color is a true-color RGB value, or the terminal default.
type Color struct {
	R, G, B uint8

	// Default marks the terminal's default color; RGB is ignored.
	Default bool
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromHex parses "#rgb" or "#rrggbb" (leading '#' optional).
func ColorFromHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	expand := hex
	if len(hex) == 3 {
		expand = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(expand) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", hex)
	}

	v, err := strconv.ParseUint(expand, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q", hex)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// IsDefault returns true for the terminal default color.
func (c Color) IsDefault() bool {
	return c.Default
}

// String returns the color as a hex string, or "default".
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style describes how overlay content is drawn.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns a style using the terminal defaults.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return Style{Foreground: fg, Background: ColorDefault}
}

// WithBackground returns the style with a new background.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns the style with the bold attribute.
func (s Style) Bold() Style {
	s.Attributes = s.Attributes.With(AttrBold)
	return s
}

// Dim returns the style with the dim attribute.
func (s Style) Dim() Style {
	s.Attributes = s.Attributes.With(AttrDim)
	return s
}

// Italic returns the style with the italic attribute.
func (s Style) Italic() Style {
	s.Attributes = s.Attributes.With(AttrItalic)
	return s
}

// Reverse returns the style with fg/bg swapped.
func (s Style) Reverse() Style {
	s.Attributes = s.Attributes.With(AttrReverse)
	return s
}

// Equals compares two styles.
func (s Style) Equals(other Style) bool {
	return s == other
}

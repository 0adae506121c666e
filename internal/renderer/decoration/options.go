// Package decoration synchronizes line-anchored decorations with the
// retained overlay surface drawn above the cell grid. The Registry owns
// the set of live decorations; the Renderer keeps one surface element
// per decoration and reconciles geometry and visibility against buffer
// scrolling, resizes and buffer-mode switches, coalescing all of it to
// one refresh pass per frame.
package decoration

// Anchor selects which surface edge a decoration's x offset counts from.
type Anchor uint8

const (
	// AnchorLeft offsets the decoration from the left edge.
	AnchorLeft Anchor = iota

	// AnchorRight offsets the decoration from the right edge.
	AnchorRight
)

// String returns the anchor name.
func (a Anchor) String() string {
	if a == AnchorRight {
		return "right"
	}
	return "left"
}

// Options describes a decoration's requested layout. Every field has a
// stated default, resolved once at registration:
//
//	Width  - cell columns, default 1 (zero means unset)
//	Height - cell rows, default 1 (zero means unset)
//	X      - column offset from the anchor edge, default 0
//	Anchor - edge the X offset counts from, default AnchorLeft
//
// Negative values are passed through to the geometry arithmetic
// unvalidated; callers get whatever the arithmetic produces.
type Options struct {
	Width  int
	Height int
	X      int
	Anchor Anchor
}

// resolve applies the documented defaults.
func (o Options) resolve() Options {
	if o.Width == 0 {
		o.Width = 1
	}
	if o.Height == 0 {
		o.Height = 1
	}
	return o
}

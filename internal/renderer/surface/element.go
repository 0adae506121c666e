package surface

import "github.com/Linh35/kumo-shell/internal/renderer/core"

// Element is one visual node of a surface. Geometry is in device
// pixels; the backend maps pixels back to grid cells when painting.
// Elements are positioned by the decoration renderer and filled in by
// external render hooks.
type Element struct {
	surface *Surface

	top    int // px from the surface top
	width  int // px
	height int // px

	edge   Edge
	offset int // px from the anchored edge

	visible bool

	text  string
	style core.Style
}

// Top returns the vertical pixel offset.
func (e *Element) Top() int {
	return e.top
}

// SetTop sets the vertical pixel offset.
func (e *Element) SetTop(px int) {
	e.top = px
}

// Size returns the pixel width and height.
func (e *Element) Size() (width, height int) {
	return e.width, e.height
}

// SetSize sets the pixel width and height.
func (e *Element) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// Alignment returns the anchored edge and its pixel offset.
// A zero offset means the element sits flush with the edge.
func (e *Element) Alignment() (Edge, int) {
	return e.edge, e.offset
}

// AlignLeft anchors the element offset pixels from the left edge.
func (e *Element) AlignLeft(offset int) {
	e.edge = EdgeLeft
	e.offset = offset
}

// AlignRight anchors the element offset pixels from the right edge.
func (e *Element) AlignRight(offset int) {
	e.edge = EdgeRight
	e.offset = offset
}

// Visible returns whether the element is shown.
func (e *Element) Visible() bool {
	return e.visible
}

// SetVisible shows or hides the element without detaching it.
func (e *Element) SetVisible(visible bool) {
	e.visible = visible
}

// Text returns the element's content text.
func (e *Element) Text() string {
	return e.text
}

// SetText sets the element's content text. Render hooks call this
// after the renderer has positioned the element.
func (e *Element) SetText(text string) {
	e.text = text
}

// Style returns the element's style.
func (e *Element) Style() core.Style {
	return e.style
}

// SetStyle sets the element's style.
func (e *Element) SetStyle(style core.Style) {
	e.style = style
}

// Attached returns true while the element is a child of a live surface.
func (e *Element) Attached() bool {
	return e.surface != nil
}

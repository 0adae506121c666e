// Package surface provides the retained overlay layer drawn above the
// cell grid. A Surface attaches to one display Region and owns an
// ordered set of Elements, the visual nodes the decoration renderer
// positions. Elements never outlive their surface.
package surface

import "github.com/Linh35/kumo-shell/internal/renderer/core"

// Region is the host display area a surface overlays. The terminal
// backend and the in-memory test region both implement it.
type Region interface {
	// AttachOverlay adds the surface as an overlay child of the region.
	AttachOverlay(*Surface)

	// DetachOverlay removes a previously attached surface.
	DetachOverlay(*Surface)
}

// Edge identifies which side of the surface an element is anchored to.
type Edge uint8

const (
	// EdgeLeft anchors the element's horizontal offset to the left edge.
	EdgeLeft Edge = iota

	// EdgeRight anchors the horizontal offset to the right edge.
	EdgeRight
)

// String returns the edge name.
func (e Edge) String() string {
	if e == EdgeRight {
		return "right"
	}
	return "left"
}

// Surface is a retained overlay container attached to a display region.
type Surface struct {
	region   Region
	elements []*Element
	disposed bool
}

// New creates a surface and attaches it to the region.
func New(region Region) *Surface {
	s := &Surface{region: region}
	region.AttachOverlay(s)
	return s
}

// NewElement creates a child element appended after existing children.
// Elements start visible, one pixel square, anchored to the left edge.
func (s *Surface) NewElement() *Element {
	el := &Element{
		surface: s,
		width:   1,
		height:  1,
		visible: true,
		style:   core.DefaultStyle(),
	}
	s.elements = append(s.elements, el)
	return el
}

// Remove detaches an element from the surface. Removing an element that
// is not a child is a no-op.
func (s *Surface) Remove(el *Element) {
	for i, cur := range s.elements {
		if cur == el {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			el.surface = nil
			return
		}
	}
}

// Contains returns true if el is a child of the surface.
func (s *Surface) Contains(el *Element) bool {
	for _, cur := range s.elements {
		if cur == el {
			return true
		}
	}
	return false
}

// Elements returns the children in insertion order.
func (s *Surface) Elements() []*Element {
	out := make([]*Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Len returns the number of child elements.
func (s *Surface) Len() int {
	return len(s.elements)
}

// Disposed returns true once the surface has been torn down.
func (s *Surface) Disposed() bool {
	return s.disposed
}

// Dispose detaches the surface from its region and discards every
// child element. Idempotent.
func (s *Surface) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for _, el := range s.elements {
		el.surface = nil
	}
	s.elements = nil
	s.region.DetachOverlay(s)
}

// MemoryRegion is an in-memory Region for tests and headless use.
type MemoryRegion struct {
	overlays []*Surface
}

// NewMemoryRegion creates an empty in-memory region.
func NewMemoryRegion() *MemoryRegion {
	return &MemoryRegion{}
}

// AttachOverlay implements Region.
func (r *MemoryRegion) AttachOverlay(s *Surface) {
	r.overlays = append(r.overlays, s)
}

// DetachOverlay implements Region.
func (r *MemoryRegion) DetachOverlay(s *Surface) {
	for i, cur := range r.overlays {
		if cur == s {
			r.overlays = append(r.overlays[:i], r.overlays[i+1:]...)
			return
		}
	}
}

// HasOverlay returns true if s is attached to the region.
func (r *MemoryRegion) HasOverlay(s *Surface) bool {
	for _, cur := range r.overlays {
		if cur == s {
			return true
		}
	}
	return false
}

// OverlayCount returns the number of attached surfaces.
func (r *MemoryRegion) OverlayCount() int {
	return len(r.overlays)
}

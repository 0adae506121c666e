package decoration

import (
	"github.com/google/uuid"

	"github.com/Linh35/kumo-shell/internal/event/signal"
	"github.com/Linh35/kumo-shell/internal/renderer/surface"
	"github.com/Linh35/kumo-shell/internal/terminal/marker"
)

// Decoration is a logical, line-anchored visual marker request. The
// renderer owns the visual element bound to it; the decoration only
// carries a non-owning back-reference so render hooks can reach the
// element. Disposal is terminal: a decoration is never revived.
type Decoration struct {
	id     string
	marker *marker.Marker
	opts   Options // resolved at registration

	// element is the renderer-owned visual bound to this decoration,
	// nil until the first refresh after registration.
	element *surface.Element

	disposed  bool
	onDispose signal.Emitter[*Decoration]
	onRender  signal.Emitter[*surface.Element]
}

func newDecoration(m *marker.Marker, opts Options) *Decoration {
	return &Decoration{
		id:     uuid.NewString(),
		marker: m,
		opts:   opts.resolve(),
	}
}

// ID returns the decoration's unique identifier.
func (d *Decoration) ID() string {
	return d.id
}

// Marker returns the line marker the decoration is anchored to.
func (d *Decoration) Marker() *marker.Marker {
	return d.marker
}

// Options returns the resolved layout options.
func (d *Decoration) Options() Options {
	return d.opts
}

// Element returns the bound visual element, or nil if none is bound.
// The decoration does not own the element and must never dispose it.
func (d *Decoration) Element() *surface.Element {
	return d.element
}

// IsDisposed returns true once the decoration has been disposed.
func (d *Decoration) IsDisposed() bool {
	return d.disposed
}

// OnDispose registers fn to run when the decoration is disposed.
// Fires at most once.
func (d *Decoration) OnDispose(fn func(*Decoration)) *signal.Subscription {
	return d.onDispose.Listen(fn)
}

// OnRender registers fn to run after each refresh pass has positioned
// the decoration's element. Hooks use this to fill in element content.
func (d *Decoration) OnRender(fn func(*surface.Element)) *signal.Subscription {
	return d.onRender.Listen(fn)
}

// Dispose retires the decoration. The first call fires the disposal
// signal; later calls are no-ops.
func (d *Decoration) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.onDispose.Fire(d)
	d.onDispose.Clear()
	d.onRender.Clear()
}

// setElement installs or clears the renderer's back-reference.
func (d *Decoration) setElement(el *surface.Element) {
	d.element = el
}

// fireRender notifies render hooks with the bound element.
func (d *Decoration) fireRender(el *surface.Element) {
	d.onRender.Fire(el)
}

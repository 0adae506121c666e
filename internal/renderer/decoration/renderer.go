package decoration

import (
	"github.com/Linh35/kumo-shell/internal/event/signal"
	"github.com/Linh35/kumo-shell/internal/renderer/frame"
	"github.com/Linh35/kumo-shell/internal/renderer/surface"
	"github.com/Linh35/kumo-shell/internal/renderer/viewport"
	"github.com/Linh35/kumo-shell/internal/terminal/buffer"
	"github.com/Linh35/kumo-shell/internal/terminal/marker"
)

// DimensionProvider reports the rendered grid and cell metrics and
// signals when any of them change. viewport.Service implements it.
type DimensionProvider interface {
	Dimensions() viewport.Dimensions
	OnRenderChanged(func(viewport.Dimensions)) *signal.Subscription
	OnDimensionsChanged(func(viewport.Dimensions)) *signal.Subscription
	OnResized(func(viewport.Dimensions)) *signal.Subscription
}

// BufferProvider reports the active buffer's scroll state and signals
// buffer activations. buffer.Set implements it.
type BufferProvider interface {
	ScrollOffset() int
	IsAlt() bool
	OnActivated(func(buffer.Kind)) *signal.Subscription
}

// binding ties a decoration to its surface element together with the
// two disposal subscriptions created alongside it.
type binding struct {
	el   *surface.Element
	subs signal.Group
}

// Renderer keeps one surface element per live decoration and reconciles
// each element's geometry and visibility on a coalesced, per-frame full
// refresh pass.
//
// All collaborators are injected at construction; every subscription
// made there is collected into one group and released on Dispose. The
// renderer exclusively owns the surface and the decoration-to-element
// map. Single-threaded: every method must run on the UI goroutine,
// which is also where the frame scheduler fires its callbacks.
type Renderer struct {
	surf     *surface.Surface
	registry *Registry
	dims     DimensionProvider
	bufs     BufferProvider
	sched    frame.Scheduler

	// elements maps each decoration to its bound element. A decoration
	// is present iff it currently has an element.
	elements map[*Decoration]*binding

	subs signal.Group

	// refreshPending is the single in-flight token: true while a frame
	// callback is scheduled but has not yet run.
	refreshPending bool

	// altActive mirrors whether the alternate buffer is displayed.
	// Recomputed only on activation signals, consulted every refresh.
	altActive bool

	disposed bool
}

// NewRenderer creates the overlay renderer: it attaches a fresh surface
// to the region and subscribes to every event source that can move or
// invalidate decorations.
func NewRenderer(
	region surface.Region,
	registry *Registry,
	dims DimensionProvider,
	bufs BufferProvider,
	sched frame.Scheduler,
) *Renderer {
	r := &Renderer{
		surf:      surface.New(region),
		registry:  registry,
		dims:      dims,
		bufs:      bufs,
		sched:     sched,
		elements:  make(map[*Decoration]*binding),
		altActive: bufs.IsAlt(),
	}

	r.subs.Add(
		dims.OnRenderChanged(func(viewport.Dimensions) { r.queueRefresh() }),
		dims.OnDimensionsChanged(func(viewport.Dimensions) { r.queueRefresh() }),
		dims.OnResized(func(viewport.Dimensions) { r.queueRefresh() }),
		bufs.OnActivated(func(buffer.Kind) {
			r.altActive = r.bufs.IsAlt()
			r.queueRefresh()
		}),
		registry.OnRegistered(func(*Decoration) { r.queueRefresh() }),
		registry.OnRemoved(func(d *Decoration) { r.removeElement(d) }),
	)

	return r
}

// Surface returns the overlay surface the renderer draws into.
func (r *Renderer) Surface() *surface.Surface {
	return r.surf
}

// ElementCount returns the number of currently bound elements.
func (r *Renderer) ElementCount() int {
	return len(r.elements)
}

// HasElement returns true if d currently has a bound element.
func (r *Renderer) HasElement(d *Decoration) bool {
	_, ok := r.elements[d]
	return ok
}

// RefreshDecorations runs a full refresh pass synchronously, bypassing
// frame coalescing. Use it when an immediate resync is required.
func (r *Renderer) RefreshDecorations() {
	r.refresh()
}

// queueRefresh schedules one refresh for the next frame. Requests made
// while one is already pending are absorbed.
func (r *Renderer) queueRefresh() {
	if r.refreshPending || r.disposed {
		return
	}
	r.refreshPending = true
	r.sched.Schedule(func() {
		// Clear before the pass so a request made from inside it
		// schedules a fresh frame instead of being dropped.
		r.refreshPending = false
		r.refresh()
	})
}

// refresh is the full pass: every live decoration gets an element if it
// lacks one, is repositioned, and has its render hooks fired. A late
// frame callback after Dispose is a no-op.
func (r *Renderer) refresh() {
	if r.disposed {
		return
	}
	for _, d := range r.registry.Decorations() {
		// The pass iterates a snapshot; a render hook earlier in the
		// pass may have disposed d already.
		if d.IsDisposed() {
			continue
		}
		r.renderDecoration(d)
	}
}

func (r *Renderer) renderDecoration(d *Decoration) {
	b, ok := r.elements[d]
	if !ok {
		b = r.createElement(d)
	}
	r.refreshStyle(d, b.el)
	d.fireRender(b.el)
}

// createElement builds the element for d, wires disposal in both
// directions (decoration gone -> element removed; marker gone ->
// decoration disposed), installs the back-reference and maps it.
func (r *Renderer) createElement(d *Decoration) *binding {
	dims := r.dims.Dimensions()
	opts := d.Options()

	el := r.surf.NewElement()
	el.SetSize(opts.Width*dims.CellWidth, opts.Height*dims.CellHeight)

	// First-pass vertical position; corrected on every style refresh.
	el.SetTop((d.Marker().Line() - r.bufs.ScrollOffset()) * dims.CellHeight)

	// Alignment is fixed at creation; overflow only controls visibility,
	// so a later column growth un-hides the element already in place.
	if opts.X != 0 {
		switch opts.Anchor {
		case AnchorRight:
			el.AlignRight(opts.X * dims.CellWidth)
		default:
			el.AlignLeft(opts.X * dims.CellWidth)
		}
	}
	if opts.X > 0 && opts.X > dims.Cols {
		el.SetVisible(false)
	}

	b := &binding{el: el}
	b.subs.Add(
		d.OnDispose(func(dd *Decoration) { r.removeElement(dd) }),
		d.Marker().OnDispose(func(*marker.Marker) { d.Dispose() }),
	)

	d.setElement(el)
	r.elements[d] = b
	return b
}

// refreshStyle recomputes visibility and vertical position for one
// element. Runs unconditionally for every decoration on every pass; it
// is the sole mechanism keeping position correct under scrolling,
// resizing and buffer switches.
func (r *Renderer) refreshStyle(d *Decoration, el *surface.Element) {
	dims := r.dims.Dimensions()
	opts := d.Options()

	if opts.X > 0 && opts.X > dims.Cols {
		el.SetVisible(false)
		return
	}

	line := d.Marker().Line() - r.bufs.ScrollOffset()
	if line < 0 || line >= dims.Rows {
		// Scrolled out of the viewport.
		el.SetVisible(false)
		return
	}

	el.SetTop(line * dims.CellHeight)
	el.SetVisible(!r.altActive)
}

// removeElement discards d's element and map entry. Idempotent: called
// from decoration disposal, registry removal and teardown.
func (r *Renderer) removeElement(d *Decoration) {
	b, ok := r.elements[d]
	if !ok {
		return
	}
	delete(r.elements, d)
	b.subs.Cancel()
	r.surf.Remove(b.el)
	d.setElement(nil)
}

// Dispose detaches the surface from the display region and releases
// every subscription and element. Destroying the surface discards its
// children, so elements need no individual removal. Idempotent.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true

	for d, b := range r.elements {
		b.subs.Cancel()
		d.setElement(nil)
	}
	clear(r.elements)

	r.subs.Cancel()
	r.surf.Dispose()
}

package decoration

import (
	"github.com/Linh35/kumo-shell/internal/event/signal"
	"github.com/Linh35/kumo-shell/internal/terminal/marker"
)

// Registry owns the set of live decorations in registration order.
// A decoration leaves the registry only through disposal, either direct
// or cascaded from its marker.
type Registry struct {
	decorations []*Decoration

	onRegistered signal.Emitter[*Decoration]
	onRemoved    signal.Emitter[*Decoration]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register creates a decoration anchored to the given marker.
// Returns nil if the marker is nil or already disposed.
func (r *Registry) Register(m *marker.Marker, opts Options) *Decoration {
	if m == nil || m.IsDisposed() {
		return nil
	}

	d := newDecoration(m, opts)
	r.decorations = append(r.decorations, d)
	d.OnDispose(func(dd *Decoration) { r.unregister(dd) })

	r.onRegistered.Fire(d)
	return d
}

// Decorations returns the live decorations in registration order.
// The order is stable across calls while the set is unchanged.
func (r *Registry) Decorations() []*Decoration {
	out := make([]*Decoration, len(r.decorations))
	copy(out, r.decorations)
	return out
}

// Len returns the number of live decorations.
func (r *Registry) Len() int {
	return len(r.decorations)
}

// OnRegistered registers fn to run after each new decoration.
func (r *Registry) OnRegistered(fn func(*Decoration)) *signal.Subscription {
	return r.onRegistered.Listen(fn)
}

// OnRemoved registers fn to run after a decoration leaves the registry.
func (r *Registry) OnRemoved(fn func(*Decoration)) *signal.Subscription {
	return r.onRemoved.Listen(fn)
}

// Dispose disposes every live decoration.
func (r *Registry) Dispose() {
	for _, d := range r.Decorations() {
		d.Dispose()
	}
}

func (r *Registry) unregister(d *Decoration) {
	for i, cur := range r.decorations {
		if cur == d {
			r.decorations = append(r.decorations[:i], r.decorations[i+1:]...)
			r.onRemoved.Fire(d)
			return
		}
	}
}

// Package marker provides line markers that stay anchored to a logical
// buffer line while the buffer scrolls and trims retained history.
//
// A Marker owns an absolute line index into the buffer's retained lines.
// When history eviction pushes that index below zero the marker is
// disposed, which in turn retires anything anchored to it. Markers are
// single-threaded: all calls must happen on the UI goroutine.
package marker

import (
	"github.com/google/uuid"

	"github.com/Linh35/kumo-shell/internal/event/signal"
)

// Marker tracks one logical line in a buffer's retained history.
type Marker struct {
	id        string
	line      int
	disposed  bool
	onDispose signal.Emitter[*Marker]
}

// New creates a marker anchored at the given absolute line.
func New(line int) *Marker {
	return &Marker{
		id:   uuid.NewString(),
		line: line,
	}
}

// ID returns the marker's unique identifier.
func (m *Marker) ID() string {
	return m.id
}

// Line returns the current absolute line index.
// The value may shift as history is trimmed.
func (m *Marker) Line() int {
	return m.line
}

// IsDisposed returns true once the marker has been disposed.
func (m *Marker) IsDisposed() bool {
	return m.disposed
}

// OnDispose registers fn to run when the marker is disposed.
// It fires at most once, with the marker as payload.
func (m *Marker) OnDispose(fn func(*Marker)) *signal.Subscription {
	return m.onDispose.Listen(fn)
}

// Dispose retires the marker. The first call fires the disposal signal;
// later calls are no-ops. Disposal is terminal.
func (m *Marker) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.onDispose.Fire(m)
	m.onDispose.Clear()
}

// shift moves the marker by delta lines, disposing it if the line it
// tracks has been evicted from retained history.
func (m *Marker) shift(delta int) {
	if m.disposed {
		return
	}
	m.line += delta
	if m.line < 0 {
		m.Dispose()
	}
}

// Tracker owns the live markers of one buffer and keeps their line
// indices consistent with history trimming.
type Tracker struct {
	markers []*Marker
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add creates a marker at the given absolute line and begins tracking it.
// Disposed markers drop out of the tracker automatically.
func (t *Tracker) Add(line int) *Marker {
	m := New(line)
	t.markers = append(t.markers, m)
	m.OnDispose(func(dm *Marker) { t.forget(dm) })
	return m
}

// Markers returns the live markers in creation order.
func (t *Tracker) Markers() []*Marker {
	out := make([]*Marker, len(t.markers))
	copy(out, t.markers)
	return out
}

// Len returns the number of live markers.
func (t *Tracker) Len() int {
	return len(t.markers)
}

// Trim records the eviction of count lines from the top of retained
// history. Every marker shifts up by count; markers whose line falls
// below zero are disposed.
func (t *Tracker) Trim(count int) {
	if count <= 0 {
		return
	}
	// Snapshot: disposal mutates t.markers via the forget listener.
	for _, m := range t.Markers() {
		m.shift(-count)
	}
}

// DisposeAll disposes every live marker.
func (t *Tracker) DisposeAll() {
	for _, m := range t.Markers() {
		m.Dispose()
	}
}

func (t *Tracker) forget(m *Marker) {
	for i, cur := range t.markers {
		if cur == m {
			t.markers = append(t.markers[:i], t.markers[i+1:]...)
			return
		}
	}
}

// Package signal provides synchronous, single-threaded event signals.
//
// An Emitter delivers values to listeners in registration order, on the
// caller's goroutine. Listening returns a Subscription handle that can be
// cancelled at any time, including from inside a listener. Signals carry
// no locking: all operations on an Emitter must happen on the one logical
// thread that drives the UI.
package signal

// Subscription represents a registered listener.
// Cancel is idempotent; a cancelled subscription never fires again.
type Subscription struct {
	emitter  remover
	id       uint64
	canceled bool
}

// remover detaches a listener by id.
type remover interface {
	remove(id uint64)
}

// Cancel detaches the listener from its emitter.
func (s *Subscription) Cancel() {
	if s == nil || s.canceled {
		return
	}
	s.canceled = true
	s.emitter.remove(s.id)
}

// Canceled returns true if the subscription has been cancelled.
func (s *Subscription) Canceled() bool {
	return s == nil || s.canceled
}

// Emitter is a synchronous signal carrying values of type T.
// The zero value is ready to use.
type Emitter[T any] struct {
	listeners []entry[T]
	nextID    uint64
}

type entry[T any] struct {
	id uint64
	fn func(T)
}

// Listen registers fn and returns its subscription handle.
func (e *Emitter[T]) Listen(fn func(T)) *Subscription {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, entry[T]{id: id, fn: fn})
	return &Subscription{emitter: (*emitterRemover[T])(e), id: id}
}

// Fire delivers v to every listener registered at the time of the call,
// in registration order. Listeners added during delivery do not receive
// v; listeners cancelled during delivery are skipped.
func (e *Emitter[T]) Fire(v T) {
	// Snapshot so listeners may listen/cancel mid-delivery.
	snapshot := make([]entry[T], len(e.listeners))
	copy(snapshot, e.listeners)

	for _, ent := range snapshot {
		if e.has(ent.id) {
			ent.fn(v)
		}
	}
}

// Len returns the number of registered listeners.
func (e *Emitter[T]) Len() int {
	return len(e.listeners)
}

// Clear drops every listener.
func (e *Emitter[T]) Clear() {
	e.listeners = nil
}

func (e *Emitter[T]) has(id uint64) bool {
	for _, ent := range e.listeners {
		if ent.id == id {
			return true
		}
	}
	return false
}

// emitterRemover adapts Emitter to the remover interface without exposing
// remove on the public type surface used by listeners.
type emitterRemover[T any] Emitter[T]

func (e *emitterRemover[T]) remove(id uint64) {
	em := (*Emitter[T])(e)
	for i, ent := range em.listeners {
		if ent.id == id {
			em.listeners = append(em.listeners[:i], em.listeners[i+1:]...)
			return
		}
	}
}

// Group collects subscription handles for scoped release.
// It backs the collaborator wiring pattern: every subscription made
// during construction is added to one group and released together on
// teardown, on every exit path.
type Group struct {
	subs []*Subscription
}

// Add appends a subscription to the group. Nil handles are ignored.
func (g *Group) Add(subs ...*Subscription) {
	for _, s := range subs {
		if s != nil {
			g.subs = append(g.subs, s)
		}
	}
}

// Len returns the number of held subscriptions.
func (g *Group) Len() int {
	return len(g.subs)
}

// Cancel cancels every held subscription and empties the group.
// Safe to call more than once.
func (g *Group) Cancel() {
	for _, s := range g.subs {
		s.Cancel()
	}
	g.subs = nil
}

package buffer

import "github.com/Linh35/kumo-shell/internal/event/signal"

// Set is the normal/alternate buffer pair. Exactly one buffer is active
// at a time; activation fires a signal consumed by the overlay renderer
// to recompute its alt-suppression flag.
type Set struct {
	normal    *Buffer
	alt       *Buffer
	active    *Buffer
	activated signal.Emitter[Kind]
}

// NewSet creates a buffer pair with the normal buffer active.
// The alternate buffer never retains scrollback.
func NewSet(rows, scrollback int) *Set {
	s := &Set{
		normal: newBuffer(KindNormal, rows, scrollback),
		alt:    newBuffer(KindAlt, rows, 0),
	}
	s.active = s.normal
	return s
}

// Normal returns the primary buffer.
func (s *Set) Normal() *Buffer {
	return s.normal
}

// Alt returns the alternate buffer.
func (s *Set) Alt() *Buffer {
	return s.alt
}

// Active returns the currently displayed buffer.
func (s *Set) Active() *Buffer {
	return s.active
}

// IsAlt reports whether the active buffer is the alternate buffer.
// The check is by identity, not by kind.
func (s *Set) IsAlt() bool {
	return s.active == s.alt
}

// ScrollOffset returns the active buffer's scroll offset.
func (s *Set) ScrollOffset() int {
	return s.active.ydisp
}

// Activate switches the active buffer and fires the activation signal.
// Activating the already-active buffer still fires; listeners treat the
// signal as "recompute", not "changed".
func (s *Set) Activate(kind Kind) {
	switch kind {
	case KindAlt:
		s.active = s.alt
	default:
		s.active = s.normal
	}
	s.activated.Fire(kind)
}

// OnActivated registers fn to run after every buffer activation.
func (s *Set) OnActivated(fn func(Kind)) *signal.Subscription {
	return s.activated.Listen(fn)
}

// Resize updates the visible row count of both buffers.
func (s *Set) Resize(rows int) {
	s.normal.resize(rows)
	s.alt.resize(rows)
}

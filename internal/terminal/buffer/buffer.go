// Package buffer models the terminal's normal and alternate buffers at
// the granularity the overlay renderer needs: retained line count, the
// viewport scroll offset, and the markers anchored into each buffer.
//
// Line content itself lives in the cell-grid pipeline and is out of
// scope here. All operations are single-threaded.
package buffer

import (
	"github.com/Linh35/kumo-shell/internal/terminal/marker"
)

// Kind identifies which buffer of the pair a Buffer is.
type Kind uint8

const (
	// KindNormal is the primary buffer with scrollback history.
	KindNormal Kind = iota

	// KindAlt is the alternate buffer used by full-screen programs.
	KindAlt
)

// String returns the buffer kind name.
func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindAlt:
		return "alt"
	default:
		return "unknown"
	}
}

// Buffer holds the overlay-relevant state of one buffer.
type Buffer struct {
	kind       Kind
	length     int // retained lines, including scrolled-off history
	ydisp      int // first visible line (scroll offset)
	scrollback int // retained history limit; 0 means no history
	rows       int
	markers    *marker.Tracker
}

func newBuffer(kind Kind, rows, scrollback int) *Buffer {
	if rows < 1 {
		rows = 1
	}
	return &Buffer{
		kind:       kind,
		length:     rows,
		scrollback: scrollback,
		rows:       rows,
		markers:    marker.NewTracker(),
	}
}

// Kind returns which buffer of the pair this is.
func (b *Buffer) Kind() Kind {
	return b.kind
}

// Length returns the number of retained lines.
func (b *Buffer) Length() int {
	return b.length
}

// YDisp returns the scroll offset: the absolute index of the first
// visible line.
func (b *Buffer) YDisp() int {
	return b.ydisp
}

// Markers returns the marker tracker for this buffer.
func (b *Buffer) Markers() *marker.Tracker {
	return b.markers
}

// AddMarker anchors a new marker at the given absolute line.
func (b *Buffer) AddMarker(line int) *marker.Marker {
	return b.markers.Add(line)
}

// ScrollTo sets the scroll offset, clamped to [0, Length-rows].
func (b *Buffer) ScrollTo(ydisp int) {
	max := b.length - b.rows
	if max < 0 {
		max = 0
	}
	if ydisp < 0 {
		ydisp = 0
	}
	if ydisp > max {
		ydisp = max
	}
	b.ydisp = ydisp
}

// ScrollBy adjusts the scroll offset by delta lines, clamped.
func (b *Buffer) ScrollBy(delta int) {
	b.ScrollTo(b.ydisp + delta)
}

// AppendLines grows the buffer by n output lines, trimming history that
// exceeds the scrollback limit. Trimming shifts markers and disposes
// those whose line is evicted. A viewport pinned to the bottom stays
// pinned; a scrolled-up viewport keeps its position relative to content.
func (b *Buffer) AppendLines(n int) {
	if n <= 0 {
		return
	}
	atBottom := b.ydisp == b.length-b.rows
	b.length += n

	retained := b.rows + b.scrollback
	if over := b.length - retained; over > 0 {
		b.length = retained
		b.markers.Trim(over)
		b.ydisp -= over
		if b.ydisp < 0 {
			b.ydisp = 0
		}
	}
	if atBottom {
		b.ydisp = b.length - b.rows
	}
}

// resize updates the visible row count, clamping the scroll offset.
func (b *Buffer) resize(rows int) {
	if rows < 1 {
		rows = 1
	}
	b.rows = rows
	if b.length < rows {
		b.length = rows
	}
	b.ScrollTo(b.ydisp)
}

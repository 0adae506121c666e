// Package backend provides the tcell terminal backend: the display
// region overlay surfaces attach to, and the painter that maps element
// pixel geometry back onto the cell grid.
package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/Linh35/kumo-shell/internal/renderer/core"
	"github.com/Linh35/kumo-shell/internal/renderer/surface"
	"github.com/Linh35/kumo-shell/internal/renderer/viewport"
)

// Terminal wraps a tcell screen as a display region for overlays.
type Terminal struct {
	mu            sync.Mutex
	screen        tcell.Screen
	overlays      []*surface.Surface
	resizeHandler func(width, height int)
}

// NewTerminal creates a terminal backend on the real terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen creates a backend on an existing screen.
// Used with tcell's simulation screen in tests.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init initializes the underlying screen.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Init()
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// OnResize registers the resize callback.
func (t *Terminal) OnResize(fn func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resizeHandler = fn
}

// AttachOverlay implements surface.Region.
func (t *Terminal) AttachOverlay(s *surface.Surface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overlays = append(t.overlays, s)
}

// DetachOverlay implements surface.Region.
func (t *Terminal) DetachOverlay(s *surface.Surface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cur := range t.overlays {
		if cur == s {
			t.overlays = append(t.overlays[:i], t.overlays[i+1:]...)
			return
		}
	}
}

// OverlayCount returns the number of attached overlay surfaces.
func (t *Terminal) OverlayCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.overlays)
}

// SetText writes base content at a cell position. The text pipeline
// proper is outside this package; the demo uses this to fake it.
func (t *Terminal) SetText(x, y int, text string, style core.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := convertStyle(style)
	for _, r := range text {
		t.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

// Clear erases the screen.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
}

// Show flushes pending drawing to the terminal.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

// PaintOverlays draws every visible element of every attached surface
// onto the grid. Element pixel geometry divides back into cells using
// the provided metrics; sub-cell remainders truncate toward zero.
func (t *Terminal) PaintOverlays(dims viewport.Dimensions) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.overlays {
		for _, el := range s.Elements() {
			if !el.Visible() {
				continue
			}
			t.paintElement(el, dims)
		}
	}
}

func (t *Terminal) paintElement(el *surface.Element, dims viewport.Dimensions) {
	wPx, hPx := el.Size()
	cols := cellSpan(wPx, dims.CellWidth)
	rows := cellSpan(hPx, dims.CellHeight)
	row := el.Top() / dims.CellHeight

	var col int
	edge, offsetPx := el.Alignment()
	if edge == surface.EdgeRight {
		col = dims.Cols - offsetPx/dims.CellWidth - cols
	} else {
		col = offsetPx / dims.CellWidth
	}

	st := convertStyle(el.Style())
	for dy := 0; dy < rows; dy++ {
		y := row + dy
		if y < 0 || y >= dims.Rows {
			continue
		}
		for dx := 0; dx < cols; dx++ {
			x := col + dx
			if x < 0 || x >= dims.Cols {
				continue
			}
			t.screen.SetContent(x, y, ' ', nil, st)
		}
	}

	// Content text goes on the element's first row.
	x, y := col, row
	for _, r := range el.Text() {
		if y >= 0 && y < dims.Rows && x >= 0 && x < dims.Cols {
			t.screen.SetContent(x, y, r, nil, st)
		}
		x++
	}
}

// Events returns a channel of terminal events. The feeding goroutine
// exits when the screen is finalized. Resize events also invoke the
// registered resize callback before delivery. Events are dropped when
// the buffer is full and nobody drains it, so the goroutine can never
// wedge on send and miss the screen shutting down.
func (t *Terminal) Events() <-chan tcell.Event {
	ch := make(chan tcell.Event, 16)
	go func() {
		defer close(ch)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			if resize, ok := ev.(*tcell.EventResize); ok {
				t.mu.Lock()
				fn := t.resizeHandler
				t.mu.Unlock()
				if fn != nil {
					fn(resize.Size())
				}
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}()
	return ch
}

// cellSpan converts a pixel extent to whole cells, minimum 1 for any
// positive extent.
func cellSpan(px, cellPx int) int {
	if px <= 0 {
		return 0
	}
	n := px / cellPx
	if n < 1 {
		n = 1
	}
	return n
}

// convertStyle maps a core style onto tcell.
func convertStyle(s core.Style) tcell.Style {
	st := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		st = st.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
	}
	if !s.Background.IsDefault() {
		st = st.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
	}

	if s.Attributes.Has(core.AttrBold) {
		st = st.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		st = st.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		st = st.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		st = st.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		st = st.Reverse(true)
	}
	return st
}

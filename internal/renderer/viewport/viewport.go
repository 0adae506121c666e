// Package viewport tracks the dimensions of the rendered display: the
// visible cell grid and the pixel size of one cell. It notifies
// listeners when the rendered content, the cell metrics, or the host
// window size change, which is what drives overlay refreshes.
package viewport

import "github.com/Linh35/kumo-shell/internal/event/signal"

// Dimensions describes the visible grid and cell metrics.
type Dimensions struct {
	// Rows and Cols are the visible cell grid size.
	Rows int
	Cols int

	// CellWidth and CellHeight are the pixel size of one cell.
	CellWidth  int
	CellHeight int
}

// Service owns the current dimensions and the change signals.
// All methods must be called on the UI goroutine.
type Service struct {
	dims Dimensions

	renderChanged     signal.Emitter[Dimensions]
	dimensionsChanged signal.Emitter[Dimensions]
	resized           signal.Emitter[Dimensions]
}

// NewService creates a dimension service. Grid and cell sizes are
// clamped to a minimum of 1 to keep geometry arithmetic total.
func NewService(dims Dimensions) *Service {
	return &Service{dims: clamp(dims)}
}

// Dimensions returns the current dimensions.
func (s *Service) Dimensions() Dimensions {
	return s.dims
}

// Rows returns the visible row count.
func (s *Service) Rows() int { return s.dims.Rows }

// Cols returns the visible column count.
func (s *Service) Cols() int { return s.dims.Cols }

// CellWidth returns the pixel width of one cell.
func (s *Service) CellWidth() int { return s.dims.CellWidth }

// CellHeight returns the pixel height of one cell.
func (s *Service) CellHeight() int { return s.dims.CellHeight }

// Resize updates the visible grid size and fires the resize signal.
func (s *Service) Resize(rows, cols int) {
	s.dims.Rows = rows
	s.dims.Cols = cols
	s.dims = clamp(s.dims)
	s.resized.Fire(s.dims)
}

// SetCellSize updates the pixel size of one cell (font or DPI change)
// and fires the dimensions-changed signal.
func (s *Service) SetCellSize(width, height int) {
	s.dims.CellWidth = width
	s.dims.CellHeight = height
	s.dims = clamp(s.dims)
	s.dimensionsChanged.Fire(s.dims)
}

// InvalidateRender signals that the rendered region changed (new output,
// scroll, redraw) without any dimension change.
func (s *Service) InvalidateRender() {
	s.renderChanged.Fire(s.dims)
}

// OnRenderChanged registers fn for rendered-region changes.
func (s *Service) OnRenderChanged(fn func(Dimensions)) *signal.Subscription {
	return s.renderChanged.Listen(fn)
}

// OnDimensionsChanged registers fn for cell-metric changes.
func (s *Service) OnDimensionsChanged(fn func(Dimensions)) *signal.Subscription {
	return s.dimensionsChanged.Listen(fn)
}

// OnResized registers fn for host window resizes.
func (s *Service) OnResized(fn func(Dimensions)) *signal.Subscription {
	return s.resized.Listen(fn)
}

func clamp(d Dimensions) Dimensions {
	if d.Rows < 1 {
		d.Rows = 1
	}
	if d.Cols < 1 {
		d.Cols = 1
	}
	if d.CellWidth < 1 {
		d.CellWidth = 1
	}
	if d.CellHeight < 1 {
		d.CellHeight = 1
	}
	return d
}

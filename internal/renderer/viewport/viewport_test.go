package viewport

import "testing"

func TestNewServiceClamps(t *testing.T) {
	s := NewService(Dimensions{Rows: 0, Cols: -2, CellWidth: 0, CellHeight: 16})

	d := s.Dimensions()
	if d.Rows != 1 || d.Cols != 1 || d.CellWidth != 1 {
		t.Errorf("Dimensions() = %+v, want minimums clamped to 1", d)
	}
	if d.CellHeight != 16 {
		t.Errorf("CellHeight = %d, want 16", d.CellHeight)
	}
}

func TestResizeFires(t *testing.T) {
	s := NewService(Dimensions{Rows: 24, Cols: 80, CellWidth: 8, CellHeight: 16})

	var got Dimensions
	fired := 0
	s.OnResized(func(d Dimensions) { fired++; got = d })

	s.Resize(40, 120)

	if fired != 1 {
		t.Fatalf("resize fired %d times, want 1", fired)
	}
	if got.Rows != 40 || got.Cols != 120 {
		t.Errorf("payload = %+v, want 40x120", got)
	}
	if s.Rows() != 40 || s.Cols() != 120 {
		t.Errorf("Rows/Cols = %d/%d, want 40/120", s.Rows(), s.Cols())
	}
}

func TestSetCellSizeFires(t *testing.T) {
	s := NewService(Dimensions{Rows: 24, Cols: 80, CellWidth: 8, CellHeight: 16})

	fired := 0
	s.OnDimensionsChanged(func(Dimensions) { fired++ })

	s.SetCellSize(10, 20)

	if fired != 1 {
		t.Fatalf("dimensions-changed fired %d times, want 1", fired)
	}
	if s.CellWidth() != 10 || s.CellHeight() != 20 {
		t.Errorf("cell size = %dx%d, want 10x20", s.CellWidth(), s.CellHeight())
	}
}

func TestInvalidateRender(t *testing.T) {
	s := NewService(Dimensions{Rows: 24, Cols: 80, CellWidth: 8, CellHeight: 16})

	fired := 0
	s.OnRenderChanged(func(Dimensions) { fired++ })

	s.InvalidateRender()
	s.InvalidateRender()

	if fired != 2 {
		t.Errorf("render-changed fired %d times, want 2", fired)
	}
}

package decoration

import (
	"testing"

	"github.com/Linh35/kumo-shell/internal/renderer/frame"
	"github.com/Linh35/kumo-shell/internal/renderer/surface"
	"github.com/Linh35/kumo-shell/internal/renderer/viewport"
	"github.com/Linh35/kumo-shell/internal/terminal/buffer"
)

// rig wires a renderer to in-memory collaborators: 10x80 grid, 8x16
// pixel cells, normal buffer with 100 lines of scrollback.
type rig struct {
	region   *surface.MemoryRegion
	set      *buffer.Set
	vp       *viewport.Service
	registry *Registry
	sched    *frame.Queue
	renderer *Renderer
}

func newRig() *rig {
	r := &rig{
		region:   surface.NewMemoryRegion(),
		set:      buffer.NewSet(10, 100),
		vp:       viewport.NewService(viewport.Dimensions{Rows: 10, Cols: 80, CellWidth: 8, CellHeight: 16}),
		registry: NewRegistry(),
		sched:    frame.NewQueue(),
	}
	r.renderer = NewRenderer(r.region, r.registry, r.vp, r.set, r.sched)
	return r
}

// add registers a decoration anchored at the given absolute line.
func (r *rig) add(line int, opts Options) *Decoration {
	return r.registry.Register(r.set.Normal().AddMarker(line), opts)
}

func TestCoalescing(t *testing.T) {
	r := newRig()
	d := r.add(0, Options{})

	renders := 0
	d.OnRender(func(*surface.Element) { renders++ })

	// The registration queued one refresh; storms of further requests
	// must be absorbed into it.
	for i := 0; i < 50; i++ {
		r.vp.InvalidateRender()
	}
	if r.sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1 scheduled callback", r.sched.Pending())
	}

	r.sched.RunFrame()
	if renders != 1 {
		t.Errorf("refresh body ran %d times, want 1", renders)
	}
}

func TestReentrantScheduling(t *testing.T) {
	r := newRig()
	d := r.add(0, Options{})

	requested := false
	renders := 0
	d.OnRender(func(*surface.Element) {
		renders++
		if !requested {
			requested = true
			r.vp.InvalidateRender() // request from inside the pass
		}
	})

	r.sched.RunFrame()
	if renders != 1 {
		t.Fatalf("first frame ran the pass %d times, want 1", renders)
	}
	if r.sched.Pending() != 1 {
		t.Fatalf("Pending() = %d after re-entrant request, want 1", r.sched.Pending())
	}

	r.sched.RunFrame()
	if renders != 2 {
		t.Errorf("second frame brought renders to %d, want 2", renders)
	}
	if r.sched.Pending() != 0 {
		t.Errorf("Pending() = %d after settled frames, want 0", r.sched.Pending())
	}
}

func TestMapInvariant(t *testing.T) {
	r := newRig()
	a := r.add(0, Options{})
	b := r.add(1, Options{})
	c := r.add(2, Options{})

	r.renderer.RefreshDecorations()

	for _, d := range []*Decoration{a, b, c} {
		if !r.renderer.HasElement(d) {
			t.Errorf("live decoration %s has no mapped element", d.ID())
		}
		if d.Element() == nil {
			t.Errorf("live decoration %s has no back-reference", d.ID())
		}
	}
	if r.renderer.ElementCount() != r.registry.Len() {
		t.Errorf("ElementCount() = %d, registry has %d", r.renderer.ElementCount(), r.registry.Len())
	}

	b.Dispose()
	r.renderer.RefreshDecorations()

	if r.renderer.HasElement(b) {
		t.Error("disposed decoration still mapped")
	}
	if r.renderer.ElementCount() != 2 {
		t.Errorf("ElementCount() = %d after disposal, want 2", r.renderer.ElementCount())
	}
}

func TestIdempotentCreation(t *testing.T) {
	r := newRig()
	d := r.add(3, Options{})

	r.renderer.RefreshDecorations()
	el := d.Element()
	if el == nil {
		t.Fatal("first refresh should bind an element")
	}

	r.renderer.RefreshDecorations()
	if d.Element() != el {
		t.Error("second refresh must reuse the existing element")
	}
	if r.renderer.Surface().Len() != 1 {
		t.Errorf("surface has %d elements, want 1", r.renderer.Surface().Len())
	}
}

func TestViewportClipping(t *testing.T) {
	r := newRig()
	buf := r.set.Normal()
	buf.AppendLines(30) // length 40, viewport pinned to line 30
	d := r.add(5, Options{})

	r.renderer.RefreshDecorations()
	if d.Element().Visible() {
		t.Error("decoration above the viewport should be hidden")
	}

	buf.ScrollTo(0)
	r.renderer.RefreshDecorations()
	if !d.Element().Visible() {
		t.Error("decoration should become visible once scrolled back in")
	}
	if got := d.Element().Top(); got != 5*16 {
		t.Errorf("Top() = %d, want %d", got, 5*16)
	}

	buf.ScrollTo(3)
	r.renderer.RefreshDecorations()
	if got := d.Element().Top(); got != 2*16 {
		t.Errorf("Top() = %d after scroll, want %d", got, 2*16)
	}

	// Below the viewport.
	buf.ScrollTo(0)
	far := r.add(25, Options{})
	r.renderer.RefreshDecorations()
	if far.Element().Visible() {
		t.Error("decoration below the viewport should be hidden")
	}
}

func TestAltBufferSuppression(t *testing.T) {
	r := newRig()
	d := r.add(2, Options{})

	r.renderer.RefreshDecorations()
	if !d.Element().Visible() {
		t.Fatal("in-viewport decoration should start visible")
	}
	el := d.Element()

	r.set.Activate(buffer.KindAlt)
	r.renderer.RefreshDecorations()
	if d.Element().Visible() {
		t.Error("decoration should be hidden while the alt buffer shows")
	}

	r.set.Activate(buffer.KindNormal)
	r.renderer.RefreshDecorations()
	if !d.Element().Visible() {
		t.Error("visibility should return when the normal buffer shows")
	}
	if d.Element() != el {
		t.Error("toggling buffers must not re-create the element")
	}
}

func TestColumnOverflow(t *testing.T) {
	r := newRig()
	r.vp.Resize(10, 3)
	d := r.add(0, Options{X: 5})

	r.renderer.RefreshDecorations()
	if d.Element().Visible() {
		t.Error("x beyond the column count should hide the element at creation")
	}

	// A scroll-driven refresh must not resurrect it.
	r.set.Normal().AppendLines(2)
	r.set.Normal().ScrollTo(0)
	r.renderer.RefreshDecorations()
	if d.Element().Visible() {
		t.Error("overflowing element must stay hidden across refreshes")
	}

	// Growing the grid lifts the overflow.
	r.vp.Resize(10, 20)
	r.sched.RunFrame()
	if !d.Element().Visible() {
		t.Error("element should show once the columns fit it")
	}
}

func TestDisposalDuringPass(t *testing.T) {
	r := newRig()
	a := r.add(0, Options{})
	b := r.add(1, Options{})

	// a renders first; its hook takes b down mid-pass.
	a.OnRender(func(*surface.Element) { b.Dispose() })

	r.renderer.RefreshDecorations()

	if r.renderer.HasElement(b) {
		t.Error("decoration disposed mid-pass must not be mapped")
	}
	if got := r.renderer.Surface().Len(); got != 1 {
		t.Errorf("Surface().Len() = %d, want 1", got)
	}
	if b.Element() != nil {
		t.Error("disposed decoration must not hold an element")
	}

	// Later passes must not resurrect it either.
	r.renderer.RefreshDecorations()
	if r.renderer.HasElement(b) {
		t.Error("disposed decoration re-mapped by a later pass")
	}
	if r.renderer.ElementCount() != 1 {
		t.Errorf("ElementCount() = %d, want 1", r.renderer.ElementCount())
	}
}

func TestOverflowPreservesAlignment(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantEdge   surface.Edge
		wantOffset int
	}{
		{name: "left anchor", opts: Options{X: 5}, wantEdge: surface.EdgeLeft, wantOffset: 40},
		{name: "right anchor", opts: Options{X: 5, Anchor: AnchorRight}, wantEdge: surface.EdgeRight, wantOffset: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig()
			r.vp.Resize(10, 3)
			d := r.add(0, tt.opts)

			r.renderer.RefreshDecorations()
			if d.Element().Visible() {
				t.Fatal("overflowing element should start hidden")
			}

			// Growing the grid un-hides the element at its offset.
			r.vp.Resize(10, 20)
			r.sched.RunFrame()

			el := d.Element()
			if !el.Visible() {
				t.Fatal("element should show once the columns fit it")
			}
			edge, offset := el.Alignment()
			if edge != tt.wantEdge || offset != tt.wantOffset {
				t.Errorf("Alignment() = %v/%d, want %v/%d", edge, offset, tt.wantEdge, tt.wantOffset)
			}
		})
	}
}

func TestElementGeometry(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantW      int
		wantH      int
		wantEdge   surface.Edge
		wantOffset int
	}{
		{name: "defaults", opts: Options{}, wantW: 8, wantH: 16, wantEdge: surface.EdgeLeft, wantOffset: 0},
		{name: "sized", opts: Options{Width: 3, Height: 2}, wantW: 24, wantH: 32, wantEdge: surface.EdgeLeft, wantOffset: 0},
		{name: "left offset", opts: Options{X: 4}, wantW: 8, wantH: 16, wantEdge: surface.EdgeLeft, wantOffset: 32},
		{name: "right anchor", opts: Options{X: 2, Anchor: AnchorRight}, wantW: 8, wantH: 16, wantEdge: surface.EdgeRight, wantOffset: 16},
		{name: "right anchor no offset", opts: Options{Anchor: AnchorRight}, wantW: 8, wantH: 16, wantEdge: surface.EdgeLeft, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig()
			d := r.add(1, tt.opts)
			r.renderer.RefreshDecorations()

			el := d.Element()
			w, h := el.Size()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			edge, offset := el.Alignment()
			if edge != tt.wantEdge || offset != tt.wantOffset {
				t.Errorf("Alignment() = %v/%d, want %v/%d", edge, offset, tt.wantEdge, tt.wantOffset)
			}
			if el.Top() != 16 {
				t.Errorf("Top() = %d, want 16", el.Top())
			}
		})
	}
}

func TestRemovalCascade(t *testing.T) {
	r := newRig()
	d := r.add(4, Options{})
	r.renderer.RefreshDecorations()
	el := d.Element()

	disposals := 0
	d.OnDispose(func(*Decoration) { disposals++ })

	// Simulate scroll-off eviction.
	d.Marker().Dispose()

	if disposals != 1 {
		t.Errorf("disposal signal fired %d times, want 1", disposals)
	}
	if !d.IsDisposed() {
		t.Error("decoration should be disposed with its marker")
	}
	if r.renderer.HasElement(d) {
		t.Error("element should leave the map on cascade")
	}
	if r.renderer.Surface().Contains(el) {
		t.Error("element should leave the surface on cascade")
	}
	if d.Element() != nil {
		t.Error("back-reference should be cleared")
	}
	if r.registry.Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", r.registry.Len())
	}
}

func TestHistoryTrimEvictsDecoration(t *testing.T) {
	r := newRig()
	d := r.add(0, Options{})
	r.renderer.RefreshDecorations()

	// 100 lines of scrollback on a 10-row buffer: pushing well past the
	// retention limit evicts line 0 and everything anchored to it.
	r.set.Normal().AppendLines(150)

	if !d.IsDisposed() {
		t.Error("decoration on an evicted line should be disposed")
	}
	if r.renderer.ElementCount() != 0 {
		t.Errorf("ElementCount() = %d, want 0", r.renderer.ElementCount())
	}
}

func TestTeardown(t *testing.T) {
	r := newRig()
	r.add(0, Options{})
	r.add(1, Options{})
	r.renderer.RefreshDecorations()

	surf := r.renderer.Surface()
	r.vp.InvalidateRender() // leave a callback scheduled

	r.renderer.Dispose()

	if r.renderer.ElementCount() != 0 {
		t.Errorf("ElementCount() = %d after dispose, want 0", r.renderer.ElementCount())
	}
	if r.region.HasOverlay(surf) {
		t.Error("surface should be detached from the region")
	}

	// The late-firing scheduled refresh must be a harmless no-op.
	r.sched.RunFrame()

	// Dispose is idempotent, and external events after teardown do
	// nothing.
	r.renderer.Dispose()
	r.vp.InvalidateRender()
	r.sched.RunFrame()
}

func TestRenderHookReceivesElement(t *testing.T) {
	r := newRig()
	d := r.add(1, Options{})

	var got *surface.Element
	d.OnRender(func(el *surface.Element) { got = el })

	r.renderer.RefreshDecorations()

	if got == nil || got != d.Element() {
		t.Error("render hook should receive the bound element")
	}
}

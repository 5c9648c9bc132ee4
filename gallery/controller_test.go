package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
)

type fakeBackend struct {
	fakeRaycaster

	cells   []*ImageCell
	quad    Vec2
	proj    Projection
	culling bool

	renders        int
	uncullRenders  int
	opacityHistory []float64
}

func (b *fakeBackend) Register(cells []*ImageCell, quad Vec2) { b.cells, b.quad = cells, quad }
func (b *fakeBackend) SetProjection(p Projection)               { b.proj = p }
func (b *fakeBackend) SetCulling(enabled bool)                  { b.culling = enabled }
func (b *fakeBackend) SetSurfaceOpacity(o float64) {
	b.opacityHistory = append(b.opacityHistory, o)
}
func (b *fakeBackend) Render() {
	b.renders++
	if !b.culling {
		b.uncullRenders++
	}
}

type fakeIndicator struct{ shows, hides int }

func (i *fakeIndicator) ShowLoading() { i.shows++ }
func (i *fakeIndicator) HideLoading() { i.hides++ }

type fakeTouches struct{ handler func(TouchEvent) }

func (f *fakeTouches) SetTouchHandler(fn func(TouchEvent)) { f.handler = fn }

type controllerHarness struct {
	ctrl      *Controller
	backend   *fakeBackend
	indicator *fakeIndicator
	touches   *fakeTouches
}

func newHarness() *controllerHarness {
	h := &controllerHarness{
		backend:   &fakeBackend{culling: true},
		indicator: &fakeIndicator{},
		touches:   &fakeTouches{},
	}
	h.ctrl = NewController(h.backend, DefaultConfig(),
		WithIndicator(h.indicator),
		WithTouchSource(h.touches),
		WithRand(testRand()),
	)
	return h
}

func (h *controllerHarness) frame(at time.Time, scroll float64) {
	h.ctrl.Frame(FrameInput{Now: at, Delta: 1.0 / 60, ScrollFraction: scroll, Viewport: Size{1600, 900}})
}

func TestController_StartsDimmed(t *testing.T) {
	h := newHarness()
	if len(h.backend.opacityHistory) != 1 || h.backend.opacityHistory[0] != DefaultConfig().DimmedOpacity {
		t.Fatalf("expected the surface to start dimmed, got %v", h.backend.opacityHistory)
	}
}

func TestController_InactiveUntilScrolledIn(t *testing.T) {
	h := newHarness()
	h.ctrl.Install(resources("a", "b", "c"))

	h.frame(ms(0), 0.5)
	h.frame(ms(500), 0.998)

	if h.indicator.shows != 0 || h.ctrl.Ready() {
		t.Fatalf("expected nothing before the threshold, shows=%d ready=%v", h.indicator.shows, h.ctrl.Ready())
	}
	if h.backend.renders != 2 {
		t.Fatalf("expected installed images to keep rendering, got %d renders", h.backend.renders)
	}
}

func TestController_PrimesOnce(t *testing.T) {
	h := newHarness()
	h.ctrl.Install(resources("a", "b", "c"))

	h.frame(ms(0), 1)
	if h.indicator.shows != 1 {
		t.Fatalf("expected the loading overlay once, got %d", h.indicator.shows)
	}
	h.frame(ms(50), 1)
	if h.ctrl.Ready() {
		t.Fatal("expected priming to wait for its delay")
	}

	h.frame(ms(100), 1)
	if !h.ctrl.Ready() {
		t.Fatal("expected priming after the delay")
	}
	if h.backend.uncullRenders != 1 || !h.backend.culling {
		t.Fatalf("expected one render without culling, then culling back on; got %d, culling=%v",
			h.backend.uncullRenders, h.backend.culling)
	}
	if h.indicator.hides != 1 {
		t.Fatalf("expected the overlay hidden once, got %d", h.indicator.hides)
	}
	if last := h.backend.opacityHistory[len(h.backend.opacityHistory)-1]; last != 1 {
		t.Fatalf("expected the surface at full opacity, got %g", last)
	}
	if h.touches.handler == nil {
		t.Fatal("expected input to be attached")
	}

	// Scrolling away and back changes nothing.
	h.frame(ms(200), 0)
	h.frame(ms(300), 1)
	if h.indicator.shows != 1 || h.indicator.hides != 1 || h.backend.uncullRenders != 1 {
		t.Fatalf("expected no repeat, shows=%d hides=%d primes=%d",
			h.indicator.shows, h.indicator.hides, h.backend.uncullRenders)
	}
}

func TestController_ActiveBeforeInstall(t *testing.T) {
	h := newHarness()

	h.frame(ms(0), 1)
	if h.indicator.shows != 1 {
		t.Fatalf("expected the overlay while loading, got %d", h.indicator.shows)
	}
	h.frame(ms(500), 1)
	if h.ctrl.Ready() || h.backend.renders != 0 {
		t.Fatal("expected nothing to render before images are installed")
	}

	h.ctrl.Install(resources("a"))
	h.frame(ms(600), 1)
	if h.ctrl.Ready() {
		t.Fatal("expected the priming delay to count from install")
	}
	h.frame(ms(700), 1)
	if !h.ctrl.Ready() {
		t.Fatal("expected priming after the delay")
	}
}

func TestController_IgnoresTouchBeforePriming(t *testing.T) {
	h := newHarness()
	h.ctrl.Install(resources("a"))
	h.frame(ms(0), 1)

	before := h.ctrl.Camera().Target
	h.ctrl.HandleTouch(TouchEvent{Phase: TouchStart, Touches: []Vec2{{0, 0}}, Changed: []Vec2{{0, 0}}, Time: ms(10)})
	h.ctrl.HandleTouch(TouchEvent{Phase: TouchMove, Touches: []Vec2{{500, 0}}, Changed: []Vec2{{500, 0}}, Time: ms(20)})
	h.frame(ms(30), 1)

	if h.ctrl.Camera().Target != before {
		t.Fatalf("expected early input to be ignored, target moved to %+v", h.ctrl.Camera().Target)
	}
}

func TestController_TapPicksImage(t *testing.T) {
	h := newHarness()
	h.ctrl.Install(resources("a", "b"))
	h.frame(ms(0), 1)
	h.frame(ms(100), 1)

	cell := h.backend.cells[1]
	h.backend.hits = []Hit{{Cell: cell, Distance: 1}}

	p := []Vec2{{800, 450}}
	h.touches.handler(TouchEvent{Phase: TouchStart, Touches: p, Changed: p, Time: ms(200)})
	h.touches.handler(TouchEvent{Phase: TouchEnd, Changed: p, Time: ms(250)})
	h.frame(ms(260), 1)

	target := h.ctrl.Camera().Target
	want := CameraState{X: cell.Position.X, Y: cell.Position.Y, Zoom: DefaultConfig().MinZoom}
	if target != want {
		t.Fatalf("expected the camera aimed at %+v, got %+v", want, target)
	}
}

func TestController_WrapsAndFades(t *testing.T) {
	h := newHarness()
	h.ctrl.Install(resources("a", "b", "c", "d"))
	h.ctrl.Camera().Target.X = 5

	for i := 0; i < 120; i++ {
		h.frame(ms(i*16), 0)
	}

	g := h.ctrl.Grid()
	focus := h.ctrl.Camera().Current.Focus()
	for _, c := range h.ctrl.Cells() {
		if d := c.Position.X - focus.X; d > g.Extent.X/2+1e-9 || d < -g.Extent.X/2-1e-9 {
			t.Fatalf("cell %+v not wrapped around %+v", c.Position, focus)
		}
		if c.Opacity < DefaultConfig().MinOpacity || c.Opacity > 1 {
			t.Fatalf("opacity %g out of range", c.Opacity)
		}
	}
}

func TestController_DetachStopsInput(t *testing.T) {
	h := newHarness()
	h.ctrl.Install(resources("a"))
	h.frame(ms(0), 1)
	h.frame(ms(100), 1)

	h.ctrl.Detach()
	if h.touches.handler != nil {
		t.Fatal("expected the handler to be removed")
	}
}

func TestController_Load(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	h := newHarness()
	f := &fakeFetcher{fail: map[string]bool{"bad": true}}

	res, err := h.ctrl.Load(context.Background(), storage.NewFileURI(write("ok.txt", "a\nbad\nc\n")), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 3 || res[1] != nil || res[2].ID != "c" {
		t.Fatalf("unexpected batch %+v", res)
	}

	_, err = h.ctrl.Load(context.Background(), storage.NewFileURI(write("empty.txt", "\n\n")), f)
	var me *ManifestError
	if !errors.As(err, &me) || !errors.Is(err, errEmptyManifest) {
		t.Fatalf("expected an empty manifest error, got %v", err)
	}

	_, err = h.ctrl.Load(context.Background(), storage.NewFileURI(filepath.Join(dir, "nope.txt")), f)
	if !errors.As(err, &me) {
		t.Fatalf("expected a manifest error, got %v", err)
	}
}

func TestController_LoadTruncatesToCapacity(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	cfg := DefaultConfig()
	cfg.Layout.Columns, cfg.Layout.Rows = 2, 1
	ctrl := NewController(&fakeBackend{}, cfg, WithRand(testRand()))

	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x\n", 5)), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Load(context.Background(), storage.NewFileURI(path), &fakeFetcher{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected the batch cut to 2 slots, got %d", len(res))
	}
}

func TestController_ResetStartsNewSession(t *testing.T) {
	h := newHarness()
	h.ctrl.Install(resources("a", "b"))
	h.frame(ms(0), 1)
	h.frame(ms(100), 1)

	h.ctrl.Reset()
	if h.touches.handler != nil || len(h.backend.cells) != 0 {
		t.Fatal("expected input detached and quads dropped")
	}
	if last := h.backend.opacityHistory[len(h.backend.opacityHistory)-1]; last != DefaultConfig().DimmedOpacity {
		t.Fatalf("expected the surface dimmed again, got %g", last)
	}

	h.frame(ms(200), 1)
	if h.indicator.shows != 2 {
		t.Fatalf("expected the overlay shown for the new batch, got %d shows", h.indicator.shows)
	}

	h.ctrl.Install(resources("c"))
	h.frame(ms(300), 1)
	h.frame(ms(400), 1)
	if !h.ctrl.Ready() || h.touches.handler == nil {
		t.Fatal("expected the new batch to prime and attach input")
	}
	if h.backend.uncullRenders != 2 || h.indicator.hides != 2 {
		t.Fatalf("expected a second priming pass, got %d uncull renders and %d hides",
			h.backend.uncullRenders, h.indicator.hides)
	}
}

func TestController_PinchZoomStaysClamped(t *testing.T) {
	h := newHarness()
	cfg := DefaultConfig()
	h.ctrl.Install(resources("a", "b", "c"))
	h.frame(ms(0), 1)
	h.frame(ms(100), 1)

	// Fingers spreading to ten times their distance ask for far less than
	// the minimum zoom.
	a0, b0 := Vec2{750, 450}, Vec2{850, 450}
	a1, b1 := Vec2{300, 450}, Vec2{1300, 450}
	h.touches.handler(TouchEvent{Phase: TouchStart, Touches: []Vec2{a0, b0}, Changed: []Vec2{a0, b0}, Time: ms(110)})
	h.touches.handler(TouchEvent{Phase: TouchMove, Touches: []Vec2{a1, b1}, Changed: []Vec2{a1, b1}, Time: ms(120)})
	h.touches.handler(TouchEvent{Phase: TouchEnd, Changed: []Vec2{a1, b1}, Time: ms(130)})

	for i := 0; i < 600; i++ {
		h.frame(ms(140+i*16), 1)
		z := h.ctrl.Camera().Current.Zoom
		if z < cfg.MinZoom-1e-12 || z > cfg.MaxZoom+1e-12 {
			t.Fatalf("frame %d: zoom %g left [%g, %g]", i, z, cfg.MinZoom, cfg.MaxZoom)
		}
	}
	if z := h.ctrl.Camera().Current.Zoom; z-cfg.MinZoom > 1e-6 {
		t.Fatalf("expected zoom to settle at %g, got %g", cfg.MinZoom, z)
	}
}

func TestController_DoubleTapResetsZoom(t *testing.T) {
	h := newHarness()
	cfg := DefaultConfig()
	h.ctrl.Install(resources("a"))
	h.frame(ms(0), 1)
	h.frame(ms(100), 1)
	h.ctrl.Camera().Target.Zoom = cfg.MaxZoom

	p := []Vec2{{800, 450}}
	h.touches.handler(TouchEvent{Phase: TouchStart, Touches: p, Changed: p, Time: ms(200)})
	h.touches.handler(TouchEvent{Phase: TouchEnd, Changed: p, Time: ms(230)})
	h.frame(ms(240), 1)
	h.touches.handler(TouchEvent{Phase: TouchStart, Touches: p, Changed: p, Time: ms(300)})
	h.touches.handler(TouchEvent{Phase: TouchEnd, Changed: p, Time: ms(330)})
	h.frame(ms(340), 1)

	if z := h.ctrl.Camera().Target.Zoom; z != cfg.DefaultZoom {
		t.Fatalf("expected target zoom %g after a double tap, got %g", cfg.DefaultZoom, z)
	}
}

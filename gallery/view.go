package gallery

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// View is the gallery as a fyne widget. It stacks the image canvas, the
// touch surface, the zoom wheel overlay and the loading overlay, and drives
// the controller from an endless animation, one frame per display refresh.
type View struct {
	widget.BaseWidget

	ctrl     *Controller
	renderer *CanvasRenderer
	surface  *TouchSurface
	loading  *LoadingOverlay
	zoom     *zoomScrollOverlay
	root     *fyne.Container

	scrollFraction func() float64
	now            func() time.Time

	anim      *fyne.Animation
	lastFrame time.Time
	cancel    context.CancelFunc
}

// NewView builds a gallery. scrollFraction reports how far the host page has
// scrolled to the gallery, 0..1; nil means it is always fully in view.
func NewView(cfg Config, scrollFraction func() float64, opts ...Option) *View {
	v := &View{
		renderer:       NewCanvasRenderer(),
		surface:        NewTouchSurface(),
		loading:        NewLoadingOverlay(),
		scrollFraction: scrollFraction,
		now:            time.Now,
	}
	v.zoom = newZoomScrollOverlay(func(at fyne.Position, steps int) {
		v.surface.Pinch(at, pinchScale(steps))
	})

	opts = append([]Option{
		WithIndicator(v.loading),
		WithTouchSource(v.surface),
		WithProgress(v.loading.SetProgress),
	}, opts...)
	v.ctrl = NewController(v.renderer, cfg, opts...)

	v.root = container.New(&resizeLayout{
		internal: layout.NewStackLayout(),
		onResize: v.redraw,
	}, v.renderer, v.surface, v.zoom, v.loading)

	v.ExtendBaseWidget(v)
	return v
}

func (v *View) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.root)
}

func (v *View) Controller() *Controller { return v.ctrl }

// Start loads the manifest in the background and begins animating. The
// images are installed on the main goroutine once all have settled.
func (v *View) Start(manifest fyne.URI, fetcher Fetcher) {
	v.reset()

	if f, ok := fetcher.(*URIFetcher); ok {
		v.loading.SetFolder(f.Base)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	go func() {
		resources, err := v.ctrl.Load(ctx, manifest, fetcher)
		if ctx.Err() != nil {
			return
		}
		fyne.Do(func() {
			if err != nil {
				v.loading.Fail(err)
				return
			}
			v.ctrl.Install(resources)
		})
	}()

	v.lastFrame = time.Time{}
	v.anim = fyne.NewAnimation(time.Second, func(float32) { v.frame() })
	v.anim.Curve = fyne.AnimationLinear
	v.anim.RepeatCount = fyne.AnimationRepeatForever
	v.anim.Start()
}

// Stop cancels loading, ends the frame loop and detaches input.
func (v *View) Stop() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.anim != nil {
		v.anim.Stop()
		v.anim = nil
	}
	v.ctrl.Detach()
}

// reset stops the current session and readies the widgets for a new batch.
func (v *View) reset() {
	v.Stop()
	v.ctrl.Reset()
	v.loading.Reset()
}

func (v *View) frame() {
	now := v.now()
	var dt float64
	if !v.lastFrame.IsZero() {
		dt = now.Sub(v.lastFrame).Seconds()
	}
	v.lastFrame = now

	scroll := 1.0
	if v.scrollFraction != nil {
		scroll = v.scrollFraction()
	}
	size := v.renderer.Size()
	v.ctrl.Frame(FrameInput{
		Now:            now,
		Delta:          dt,
		ScrollFraction: scroll,
		Viewport:       Size{Width: float64(size.Width), Height: float64(size.Height)},
	})
}

// redraw renders straight away after a resize so the projection follows the
// new aspect ratio without waiting for the next tick.
func (v *View) redraw() {
	if v.anim == nil {
		return
	}
	v.frame()
}

const resizeInterval = 60 * time.Millisecond

// resizeLayout wraps a layout and reports real size changes, coalescing
// bursts during a window drag.
type resizeLayout struct {
	internal fyne.Layout
	onResize func()

	lastSize  fyne.Size
	lastFired time.Time
	timer     *time.Timer
}

func (r *resizeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	r.internal.Layout(objects, size)
	if r.onResize == nil {
		return
	}
	if abs32(size.Width-r.lastSize.Width) < 0.5 && abs32(size.Height-r.lastSize.Height) < 0.5 {
		return
	}
	r.lastSize = size
	r.scheduleResize()
}

func (r *resizeLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return r.internal.MinSize(objects)
}

// scheduleResize fires onResize on the main goroutine at most once per
// resizeInterval; later calls inside the interval push the pending one back.
func (r *resizeLayout) scheduleResize() {
	wait := resizeInterval - time.Since(r.lastFired)
	if wait <= 0 {
		r.lastFired = time.Now()
		fyne.Do(r.onResize)
		return
	}
	if r.timer != nil {
		r.timer.Reset(wait)
		return
	}
	r.timer = time.AfterFunc(wait, r.fireLater)
}

func (r *resizeLayout) fireLater() {
	fyne.Do(func() {
		r.timer = nil
		r.lastFired = time.Now()
		r.onResize()
	})
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

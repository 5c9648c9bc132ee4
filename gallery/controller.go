package gallery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"fyne.io/fyne/v2"
)

var errEmptyManifest = errors.New("manifest lists no images")

// FrameInput is everything the gallery reads from its host each frame.
type FrameInput struct {
	Now time.Time
	// Delta is the time since the previous frame, in seconds.
	Delta float64
	// ScrollFraction is how far the host page has scrolled the gallery into
	// view, 0..1.
	ScrollFraction float64
	Viewport       Size
}

// Controller runs the gallery: it owns the camera, the grid and the gesture
// state, and drives the backend once per frame.
//
// Frame, HandleTouch and Install must all be called from the same goroutine.
// Load may run anywhere.
type Controller struct {
	cfg       Config
	backend   Backend
	indicator Indicator
	touches   TouchSource
	rnd       *rand.Rand

	onProgress func(done, total int)

	camera   *Camera
	gestures *GestureController
	picker   *Picker
	grid     *Grid
	viewport Size

	active          bool
	loadingShown    bool
	primingCalled   bool
	primingFinished bool
	primeAt         time.Time
	surfaceOpacity  float64
}

type Option func(*Controller)

// WithIndicator sets the loading overlay.
func WithIndicator(i Indicator) Option {
	return func(c *Controller) { c.indicator = i }
}

// WithTouchSource sets where touch input comes from once the gallery is
// primed.
func WithTouchSource(s TouchSource) Option {
	return func(c *Controller) { c.touches = s }
}

// WithRand sets the source of the column jitter.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rnd = r }
}

// WithProgress observes image loading.
func WithProgress(fn func(done, total int)) Option {
	return func(c *Controller) { c.onProgress = fn }
}

// NewController wires a gallery to an available backend.
func NewController(backend Backend, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		backend:  backend,
		camera:   NewCamera(cfg),
		gestures: NewGestureController(cfg),
	}
	c.picker = &Picker{Raycaster: backend, SnapZoom: cfg.MinZoom}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	c.setSurfaceOpacity(cfg.DimmedOpacity)
	return c
}

// Load reads the manifest and fetches every image it lists. A manifest
// failure is returned and logged; image failures only leave nil slots.
// Load does not touch frame state, pass the result to Install.
func (c *Controller) Load(ctx context.Context, manifest fyne.URI, fetcher Fetcher) ([]*Resource, error) {
	ids, err := ReadManifest(ctx, manifest)
	if err == nil && len(ids) == 0 {
		err = &ManifestError{URI: manifest.String(), Err: errEmptyManifest}
	}
	if err != nil {
		fyne.LogError("could not start gallery", err)
		return nil, err
	}

	if capacity := c.cfg.Layout.Capacity(); capacity > 0 && len(ids) > capacity {
		fyne.LogError("gallery manifest truncated",
			fmt.Errorf("%d entries for %d grid slots", len(ids), capacity))
		ids = ids[:capacity]
	}

	loader := &Loader{
		Fetcher:     fetcher,
		Concurrency: c.cfg.MaxConcurrentDownloads,
		OnProgress:  c.onProgress,
	}
	return loader.Load(ctx, ids), nil
}

// Install lays out a loaded batch and registers it with the backend.
func (c *Controller) Install(resources []*Resource) {
	c.grid = NewGrid(resources, c.cfg.Layout, c.rnd)
	c.backend.Register(c.grid.Cells, c.grid.Quad)
}

// Frame advances the gallery by one display refresh.
func (c *Controller) Frame(in FrameInput) {
	c.viewport = in.Viewport

	if c.grid != nil {
		c.applyIntents(in.Now)

		dt := math.Max(0.0001, in.Delta)
		c.backend.SetProjection(c.camera.Advance(dt, in.Viewport.Aspect()))

		focus := c.camera.Current.Focus()
		Wrap(c.grid.Cells, focus, c.grid.Extent)
		applyOpacity(c.grid.Cells, focus, c.camera.Current.Zoom, c.cfg)
		c.backend.Render()
	}

	c.updateVisibility(in.Now, in.ScrollFraction)
}

// updateVisibility latches once the page is scrolled to the gallery: the
// loading overlay is shown once, and priming is scheduled once the images
// are installed. Scrolling back up never undoes either.
func (c *Controller) updateVisibility(now time.Time, scroll float64) {
	if !c.active && scroll >= ScrollActiveThreshold {
		c.active = true
	}
	if !c.active {
		return
	}

	if !c.loadingShown {
		c.loadingShown = true
		if c.indicator != nil {
			c.indicator.ShowLoading()
		}
	}

	if !c.primingCalled && c.grid != nil {
		c.primingCalled = true
		c.primeAt = now.Add(c.cfg.PrimeDelay.Duration)
	}
	if c.primingCalled && !c.primingFinished && !now.Before(c.primeAt) {
		c.prime()
	}
}

// prime renders every quad once with culling off so all textures are
// uploaded before the user can move, then hands input to the gestures.
func (c *Controller) prime() {
	c.backend.SetCulling(false)
	c.backend.Render()
	c.backend.SetCulling(true)

	if c.indicator != nil {
		c.indicator.HideLoading()
	}
	c.setSurfaceOpacity(1)
	if c.touches != nil {
		c.touches.SetTouchHandler(c.HandleTouch)
	}
	c.primingFinished = true
}

func (c *Controller) setSurfaceOpacity(o float64) {
	if c.surfaceOpacity == o {
		return
	}
	c.surfaceOpacity = o
	c.backend.SetSurfaceOpacity(o)
}

// HandleTouch feeds raw input to the gesture state machine. Input before
// priming is ignored.
func (c *Controller) HandleTouch(ev TouchEvent) {
	if !c.primingFinished {
		return
	}
	c.gestures.HandleTouch(ev, c.camera.View(c.viewport))
}

func (c *Controller) applyIntents(now time.Time) {
	for _, in := range c.gestures.Poll(now) {
		switch in.Kind {
		case IntentPan:
			c.camera.Target.X += in.Delta.X
			c.camera.Target.Y += in.Delta.Y
		case IntentZoomTo:
			c.camera.Target.Zoom = in.Zoom
		case IntentResetZoom:
			c.camera.Target.Zoom = c.cfg.DefaultZoom
		case IntentPick:
			c.picker.Pick(in.Point, c.viewport, c.camera)
		}
	}
}

// Reset drops the installed batch and starts a new session: the next batch
// gets the loading overlay, the dimmed surface, the intro zoom and its own
// priming pass. Scroll activation stays latched.
func (c *Controller) Reset() {
	c.Detach()
	c.grid = nil
	c.backend.Register(nil, Vec2{})
	c.camera = NewCamera(c.cfg)
	c.gestures = NewGestureController(c.cfg)

	c.loadingShown = false
	c.primingCalled = false
	c.primingFinished = false
	c.primeAt = time.Time{}
	c.setSurfaceOpacity(c.cfg.DimmedOpacity)
}

// Detach stops listening for input.
func (c *Controller) Detach() {
	if c.touches != nil {
		c.touches.SetTouchHandler(nil)
	}
	c.gestures.Reset()
}

func (c *Controller) Camera() *Camera { return c.camera }

// Cells returns the renderable cells, nil before Install.
func (c *Controller) Cells() []*ImageCell {
	if c.grid == nil {
		return nil
	}
	return c.grid.Cells
}

// Grid returns the installed grid, nil before Install.
func (c *Controller) Grid() *Grid { return c.grid }

// Ready reports whether priming finished and input is live.
func (c *Controller) Ready() bool { return c.primingFinished }

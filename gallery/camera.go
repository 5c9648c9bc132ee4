package gallery

import "math"

// CameraState is a camera focus and its zoom, the half width of the view.
type CameraState struct {
	X, Y, Zoom float64
}

// Focus returns the camera position.
func (s CameraState) Focus() Vec2 { return Vec2{s.X, s.Y} }

// Camera smooths Current toward Target with frame-rate independent
// exponential decay.
type Camera struct {
	Target  CameraState
	Current CameraState

	minZoom, maxZoom float64
	base, rate       float64
	zoomFactor       float64
}

// NewCamera starts zoomed in at MinZoom with the target at DefaultZoom, so
// the first frames zoom out to the default view.
func NewCamera(cfg Config) *Camera {
	return &Camera{
		Target:     CameraState{Zoom: cfg.DefaultZoom},
		Current:    CameraState{Zoom: cfg.MinZoom},
		minZoom:    cfg.MinZoom,
		maxZoom:    cfg.MaxZoom,
		base:       cfg.SmoothingBase,
		rate:       cfg.SmoothingRate,
		zoomFactor: cfg.ZoomSmoothingFactor,
	}
}

// ClampZoom pulls the target zoom back into bounds.
func (c *Camera) ClampZoom() {
	c.Target.Zoom = math.Max(c.minZoom, math.Min(c.maxZoom, c.Target.Zoom))
}

// Advance moves Current toward Target for dt seconds and returns the
// orthographic projection for the given aspect ratio (width/height).
func (c *Camera) Advance(dt, aspect float64) Projection {
	if dt < 0 {
		dt = 0
	}
	t := 1 - math.Pow(c.base, dt*c.rate)
	c.ClampZoom()

	c.Current.X += (c.Target.X - c.Current.X) * t
	c.Current.Y += (c.Target.Y - c.Current.Y) * t
	c.Current.Zoom += (c.Target.Zoom - c.Current.Zoom) * t * c.zoomFactor

	return c.Projection(aspect)
}

// Projection describes the current view volume. Zoom is the horizontal half
// extent; the vertical half extent follows the aspect ratio.
func (c *Camera) Projection(aspect float64) Projection {
	if aspect <= 0 {
		aspect = 1
	}
	z := c.Current.Zoom
	return Projection{
		X:      c.Current.X,
		Y:      c.Current.Y,
		Left:   -z,
		Right:  z,
		Top:    z / aspect,
		Bottom: -z / aspect,
	}
}

// View is the snapshot the gesture controller works from.
func (c *Camera) View(viewport Size) CameraView {
	return CameraView{
		Zoom:       c.Current.Zoom,
		TargetZoom: c.Target.Zoom,
		Viewport:   viewport,
	}
}

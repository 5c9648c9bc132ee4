package gallery

import (
	"image"
	"math"
)

// Vec2 is a point or a delta, in world units or in screen pixels depending on
// where it is used.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Len() float64    { return math.Hypot(v.X, v.Y) }

// Size is a viewport size in pixels.
type Size struct {
	Width, Height float64
}

// Aspect returns width/height, or 1 for a degenerate viewport.
func (s Size) Aspect() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return 1
	}
	return s.Width / s.Height
}

// Resource is one loaded image, owned by exactly one ImageCell per grid copy.
type Resource struct {
	ID    string
	Image image.Image
}

// ImageCell is one grid entry.
type ImageCell struct {
	Column, Row int

	// Center is where the layout put the cell, before any wrapping.
	Center Vec2
	// Position is the current world position, moved by the wrap every frame.
	Position Vec2
	Opacity  float64

	Resource *Resource
}

// Projection is the orthographic camera handed to the backend each frame.
// Extents are relative to the camera position.
type Projection struct {
	X, Y                     float64
	Left, Right, Top, Bottom float64
}

// Hit is one intersection reported by the backend.
type Hit struct {
	Cell     *ImageCell
	Distance float64
}

// Raycaster answers a point query in normalized device coordinates
// (-1..1 on both axes, +Y up).
type Raycaster interface {
	Raycast(ndc Vec2) []Hit
}

// Backend is the rendering engine the gallery draws through.
type Backend interface {
	Raycaster

	// Register hands over the renderable cells and the world size of a quad.
	Register(cells []*ImageCell, quad Vec2)
	SetProjection(p Projection)
	// SetCulling toggles skipping of quads outside the view volume.
	SetCulling(enabled bool)
	SetSurfaceOpacity(opacity float64)
	Render()
}

// Indicator is the loading overlay.
type Indicator interface {
	ShowLoading()
	HideLoading()
}

// TouchSource delivers raw touch events to a single handler. A nil handler
// detaches.
type TouchSource interface {
	SetTouchHandler(func(TouchEvent))
}

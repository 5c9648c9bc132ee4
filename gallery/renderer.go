package gallery

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// cameraDepth is the distance from the orthographic camera to the image
// plane. Every quad sits on the same plane.
const cameraDepth = 1.0

type quad struct {
	cell *ImageCell
	img  *canvas.Image
}

// CanvasRenderer draws the gallery with fyne canvas images placed by hand
// inside a layout-less container.
type CanvasRenderer struct {
	widget.BaseWidget

	content  *fyne.Container
	quads    []*quad
	quadSize Vec2
	proj     Projection

	culling        bool
	surfaceOpacity float64
}

var _ Backend = (*CanvasRenderer)(nil)

func NewCanvasRenderer() *CanvasRenderer {
	r := &CanvasRenderer{
		content:        container.NewWithoutLayout(),
		culling:        true,
		surfaceOpacity: 1,
	}
	r.ExtendBaseWidget(r)
	return r
}

func (r *CanvasRenderer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.content)
}

func (r *CanvasRenderer) Register(cells []*ImageCell, size Vec2) {
	r.quadSize = size
	r.quads = make([]*quad, 0, len(cells))
	objects := make([]fyne.CanvasObject, 0, len(cells))
	for _, c := range cells {
		img := canvas.NewImageFromImage(c.Resource.Image)
		img.FillMode = canvas.ImageFillStretch
		r.quads = append(r.quads, &quad{cell: c, img: img})
		objects = append(objects, img)
	}
	r.content.Objects = objects
	r.content.Refresh()
}

func (r *CanvasRenderer) SetProjection(p Projection) { r.proj = p }

func (r *CanvasRenderer) SetCulling(enabled bool) { r.culling = enabled }

func (r *CanvasRenderer) SetSurfaceOpacity(opacity float64) { r.surfaceOpacity = opacity }

// Render places every quad for the current projection. With culling off every
// quad is shown and refreshed, which uploads all textures at once.
func (r *CanvasRenderer) Render() {
	size := r.Size()
	spanX := r.proj.Right - r.proj.Left
	spanY := r.proj.Top - r.proj.Bottom
	if size.Width <= 0 || size.Height <= 0 || spanX <= 0 || spanY <= 0 {
		return
	}
	w, h := float64(size.Width), float64(size.Height)
	qw := r.quadSize.X / spanX * w
	qh := r.quadSize.Y / spanY * h
	left := r.proj.X + r.proj.Left
	top := r.proj.Y + r.proj.Top

	for _, q := range r.quads {
		sx := (q.cell.Position.X - left) / spanX * w
		sy := (top - q.cell.Position.Y) / spanY * h

		offscreen := sx+qw/2 < 0 || sx-qw/2 > w || sy+qh/2 < 0 || sy-qh/2 > h
		if r.culling && offscreen {
			q.img.Hide()
			continue
		}

		q.img.Move(fyne.NewPos(float32(sx-qw/2), float32(sy-qh/2)))
		q.img.Resize(fyne.NewSize(float32(qw), float32(qh)))
		q.img.Translucency = 1 - q.cell.Opacity*r.surfaceOpacity
		if !q.img.Visible() {
			q.img.Show()
		}
		if !r.culling {
			q.img.Refresh()
		}
	}
	canvas.Refresh(r.content)
}

// Raycast maps the NDC point into the image plane and reports every quad
// that contains it.
func (r *CanvasRenderer) Raycast(ndc Vec2) []Hit {
	wx := r.proj.X + r.proj.Left + (ndc.X+1)/2*(r.proj.Right-r.proj.Left)
	wy := r.proj.Y + r.proj.Bottom + (ndc.Y+1)/2*(r.proj.Top-r.proj.Bottom)

	var hits []Hit
	for _, q := range r.quads {
		if math.Abs(wx-q.cell.Position.X) <= r.quadSize.X/2 &&
			math.Abs(wy-q.cell.Position.Y) <= r.quadSize.Y/2 {
			hits = append(hits, Hit{Cell: q.cell, Distance: cameraDepth})
		}
	}
	return hits
}

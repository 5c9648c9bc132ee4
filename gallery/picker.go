package gallery

import "sort"

// Picker resolves a tap to the frontmost image and points the camera at it.
type Picker struct {
	Raycaster Raycaster
	// SnapZoom is the zoom a picked image is shown at.
	SnapZoom float64
}

// ScreenToNDC maps a pixel position to normalized device coordinates,
// -1..1 left to right and bottom to top.
func ScreenToNDC(p Vec2, viewport Size) Vec2 {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return Vec2{}
	}
	return Vec2{
		X: p.X/viewport.Width*2 - 1,
		Y: -(p.Y/viewport.Height*2 - 1),
	}
}

// Pick returns the nearest cell under screen point p, or nil. On a hit the
// camera target moves to the cell's current center at SnapZoom.
func (p *Picker) Pick(point Vec2, viewport Size, cam *Camera) *ImageCell {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return nil
	}
	hits := p.Raycaster.Raycast(ScreenToNDC(point, viewport))
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	cell := hits[0].Cell
	cam.Target.X = cell.Position.X
	cam.Target.Y = cell.Position.Y
	cam.Target.Zoom = p.SnapZoom
	return cell
}

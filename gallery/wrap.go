package gallery

// Wrap moves every cell by whole extents until it lies within half an extent
// of focus on each axis. With the camera moving less than half an extent per
// frame this is at most one step per axis.
func Wrap(cells []*ImageCell, focus, extent Vec2) {
	halfW, halfH := extent.X/2, extent.Y/2
	for _, c := range cells {
		if extent.X > 0 {
			for c.Position.X-focus.X > halfW {
				c.Position.X -= extent.X
			}
			for c.Position.X-focus.X < -halfW {
				c.Position.X += extent.X
			}
		}
		if extent.Y > 0 {
			for c.Position.Y-focus.Y > halfH {
				c.Position.Y -= extent.Y
			}
			for c.Position.Y-focus.Y < -halfH {
				c.Position.Y += extent.Y
			}
		}
	}
}

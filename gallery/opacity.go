package gallery

// FadeOpacity is 1 at the camera focus and falls linearly to minOpacity at
// fadeZoomFactor*zoom, staying there beyond.
func FadeOpacity(distance, zoom, minOpacity, fadeZoomFactor float64) float64 {
	fadeEnd := zoom * fadeZoomFactor
	if fadeEnd <= 0 {
		return minOpacity
	}
	opacity := 1 - (1-minOpacity)*distance/fadeEnd
	if opacity < minOpacity {
		return minOpacity
	}
	if opacity > 1 {
		return 1
	}
	return opacity
}

func applyOpacity(cells []*ImageCell, focus Vec2, zoom float64, cfg Config) {
	for _, c := range cells {
		c.Opacity = FadeOpacity(c.Position.Sub(focus).Len(), zoom, cfg.MinOpacity, cfg.FadeZoomFactor)
	}
}

package gallery

import (
	"math/rand/v2"
)

// Grid is the set of cells built from one loaded batch.
type Grid struct {
	Cells []*ImageCell
	// Extent is the full tiling period, including one trailing gap per axis
	// so the seam looks like any other gap.
	Extent Vec2
	// Quad is the world size of one image.
	Quad Vec2

	Columns, Rows int
}

// NewGrid lays resources out row-major on layout.Columns columns and stacks
// a second copy below the first. Nil resources keep their slot and produce
// no cell. Every column gets one random vertical offset.
func NewGrid(resources []*Resource, layout Layout, rnd *rand.Rand) *Grid {
	cols := layout.Columns
	logicalRows := layout.Rows
	if logicalRows == 0 {
		logicalRows = (len(resources) + cols - 1) / cols
		if logicalRows == 0 {
			logicalRows = 1
		}
	}
	rows := logicalRows * 2

	w := layout.CellWidth()
	h := layout.CellHeight

	totalWidth := float64(cols)*(w+layout.Gap) - layout.Gap
	totalHeight := float64(rows)*(h+layout.Gap) - layout.Gap

	startX := -totalWidth/2 + w/2
	startY := totalHeight/2 - h/2

	columnOffsets := make([]float64, cols)
	for col := range columnOffsets {
		columnOffsets[col] = (rnd.Float64() - 0.5) * h * layout.ColumnJitter
	}

	g := &Grid{
		Extent:  Vec2{float64(cols) * (w + layout.Gap), float64(rows) * (h + layout.Gap)},
		Quad:    Vec2{w, h},
		Columns: cols,
		Rows:    rows,
	}

	for copyIndex := 0; copyIndex < 2; copyIndex++ {
		for i, res := range resources {
			if res == nil {
				continue
			}
			col := i % cols
			row := i/cols + copyIndex*logicalRows
			center := Vec2{
				X: startX + float64(col)*(w+layout.Gap),
				Y: startY - float64(row)*(h+layout.Gap) + columnOffsets[col],
			}
			g.Cells = append(g.Cells, &ImageCell{
				Column:   col,
				Row:      row,
				Center:   center,
				Position: center,
				Opacity:  1,
				Resource: res,
			})
		}
	}
	return g
}

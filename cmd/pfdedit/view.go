package main

import (
	"math"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// viewport maps terminal cells to scene coordinates. Cell (0,0) of the
// canvas shows the scene point origin.
type viewport struct {
	cellW, cellH float64
	origin       diagram.Point
}

// toScene returns the scene point at the centre of cell (x, y).
func (v viewport) toScene(x, y int) diagram.Point {
	return diagram.Pt(
		v.origin.X+(float64(x)+0.5)*v.cellW,
		v.origin.Y+(float64(y)+0.5)*v.cellH,
	)
}

// toCell returns the cell containing scene point p.
func (v viewport) toCell(p diagram.Point) (int, int) {
	return int(math.Floor((p.X - v.origin.X) / v.cellW)),
		int(math.Floor((p.Y - v.origin.Y) / v.cellH))
}

// pan moves the view by dx columns and dy rows.
func (v *viewport) pan(dx, dy int) {
	v.origin = v.origin.Add(diagram.Pt(float64(dx)*v.cellW, float64(dy)*v.cellH))
}

// fit centres r in a canvas of w by h cells.
func (v *viewport) fit(r diagram.Rect, w, h int) {
	v.origin = diagram.Pt(
		r.X-float64(w)*v.cellW/2,
		r.Y-float64(h)*v.cellH/2,
	)
}

package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Rectangle is an axis aligned rectangle given by its lower-left corner and size.
//
// As an obstacle, a Rectangle occupies the unit sample cells (X+i, Y+j) for 0 <= i < Width and
// 0 <= j < Height. As workspace bounds it spans the continuous region [X, X+Width] x [Y, Y+Height].
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRectangle returns the rectangle with lower-left corner (x, y) and the given size.
func NewRectangle(x, y, width, height float64) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// String returns a human readable string that represents the rectangle.
func (r Rectangle) String() string {
	return fmt.Sprintf("[x: %.2f, y: %.2f, w: %.2f, h: %.2f]", r.X, r.Y, r.Width, r.Height)
}

// Extent returns the continuous region covered by the rectangle.
func (r Rectangle) Extent() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: r.X, Y: r.Y}, r2.Point{X: r.X + r.Width, Y: r.Y + r.Height})
}

// cells returns the number of sample columns and rows; partial cells are dropped and a positive
// dimension always yields at least one.
func (r Rectangle) cells() (int, int) {
	cols := int(math.Max(1, math.Floor(r.Width)))
	rows := int(math.Max(1, math.Floor(r.Height)))
	return cols, rows
}

// SampleHull returns the closed region spanned by the rectangle's sample points. A 1x1 rectangle
// collapses to its single sample.
func (r Rectangle) SampleHull() r2.Rect {
	cols, rows := r.cells()
	return r2.RectFromPoints(
		r2.Point{X: r.X, Y: r.Y},
		r2.Point{X: r.X + float64(cols-1), Y: r.Y + float64(rows-1)},
	)
}

// Samples expands the rectangle into one point per unit cell.
func (r Rectangle) Samples() []r2.Point {
	cols, rows := r.cells()
	pts := make([]r2.Point, 0, cols*rows)
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			pts = append(pts, r2.Point{X: r.X + float64(i), Y: r.Y + float64(j)})
		}
	}
	return pts
}

package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// Heading returns the unit vector at angle theta, in radians counter-clockwise from +X.
func Heading(theta float64) r2.Point {
	return r2.Point{X: math.Cos(theta), Y: math.Sin(theta)}
}

// Rotate rotates v counter-clockwise by theta radians.
func Rotate(v r2.Point, theta float64) r2.Point {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return r2.Point{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

package spatialmath

import (
	"github.com/golang/geo/r2"
)

// Workspace is the rectangular region an agent moves in. The outer rectangle is the drawn border
// and feeds the boundary field; the inner rectangle is the outer one shrunk by a margin and is
// where positions are allowed to be.
type Workspace struct {
	bounds Rectangle
	outer  r2.Rect
	inner  r2.Rect
	margin float64
}

// NewWorkspace creates a workspace from its outer bounds and the inward collision margin.
func NewWorkspace(bounds Rectangle, margin float64) (Workspace, error) {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return Workspace{}, newBadRectangleDimensionsError(bounds)
	}
	if margin < 0 || 2*margin >= bounds.Width || 2*margin >= bounds.Height {
		return Workspace{}, newWorkspaceTooSmallError(bounds, margin)
	}
	outer := bounds.Extent()
	return Workspace{
		bounds: bounds,
		outer:  outer,
		inner:  outer.ExpandedByMargin(-margin),
		margin: margin,
	}, nil
}

// Bounds returns the rectangle the workspace was created from.
func (w Workspace) Bounds() Rectangle {
	return w.bounds
}

// Outer returns the drawn border.
func (w Workspace) Outer() r2.Rect {
	return w.outer
}

// Inner returns the region positions are confined to.
func (w Workspace) Inner() r2.Rect {
	return w.inner
}

// Margin returns the inward collision margin.
func (w Workspace) Margin() float64 {
	return w.margin
}

// Contains reports whether p lies in the inner region, edges included.
func (w Workspace) Contains(p r2.Point) bool {
	return w.inner.ContainsPoint(p)
}

// Clamp returns the point of the inner region closest to p.
func (w Workspace) Clamp(p r2.Point) r2.Point {
	return w.inner.ClampPoint(p)
}

// BorderDistances returns the distance from p to the left, right, bottom and top edges of the
// outer border.
func (w Workspace) BorderDistances(p r2.Point) (left, right, bottom, top float64) {
	return p.X - w.outer.X.Lo, w.outer.X.Hi - p.X, p.Y - w.outer.Y.Lo, w.outer.Y.Hi - p.Y
}

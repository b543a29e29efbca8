package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// ObstacleModel selects how an ObstacleSet presents its rectangles to distance queries.
type ObstacleModel string

const (
	// NearestPointModel measures distance to the closest point of each rectangle's sample hull.
	// Each rectangle contributes at most one repulsor.
	NearestPointModel ObstacleModel = "nearest"
	// SampledModel explodes each rectangle into one sample per unit cell and treats every sample
	// as its own repulsor.
	SampledModel ObstacleModel = "sampled"
)

// Validate returns an error for unknown models. The empty model is accepted and means
// NearestPointModel.
func (m ObstacleModel) Validate() error {
	switch m {
	case "", NearestPointModel, SampledModel:
		return nil
	default:
		return newUnknownObstacleModelError(m)
	}
}

const sampleBucketSize = 2.0

// ObstacleSet is the immutable set of obstacles in a workspace. It is safe to share one set
// between any number of planners.
type ObstacleSet struct {
	model   ObstacleModel
	rects   []Rectangle
	hulls   []r2.Rect
	samples []r2.Point
	index   *PointIndex
}

// NewObstacleSet builds an obstacle set from rectangles.
func NewObstacleSet(rects []Rectangle, model ObstacleModel) (*ObstacleSet, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if model == "" {
		model = NearestPointModel
	}
	set := &ObstacleSet{
		model: model,
		rects: append([]Rectangle(nil), rects...),
		hulls: make([]r2.Rect, 0, len(rects)),
	}
	for _, r := range rects {
		if r.Width <= 0 || r.Height <= 0 {
			return nil, newBadRectangleDimensionsError(r)
		}
		set.hulls = append(set.hulls, r.SampleHull())
		set.samples = append(set.samples, r.Samples()...)
	}
	if model == SampledModel {
		set.index = NewPointIndex(sampleBucketSize)
		for _, s := range set.samples {
			set.index.Insert(s)
		}
	}
	return set, nil
}

// Model returns the distance model in use.
func (set *ObstacleSet) Model() ObstacleModel {
	return set.model
}

// Rectangles returns a copy of the rectangles the set was built from.
func (set *ObstacleSet) Rectangles() []Rectangle {
	return append([]Rectangle(nil), set.rects...)
}

// Samples returns a copy of every sample point, regardless of model.
func (set *ObstacleSet) Samples() []r2.Point {
	return append([]r2.Point(nil), set.samples...)
}

// Repulsors calls visit with every obstacle point strictly closer than radius to p, and its
// distance. Under NearestPointModel that is the nearest point of each rectangle in range.
func (set *ObstacleSet) Repulsors(p r2.Point, radius float64, visit func(q r2.Point, d float64)) {
	if set.model == SampledModel {
		set.index.Within(p, radius, visit)
		return
	}
	for _, hull := range set.hulls {
		q := hull.ClampPoint(p)
		if d := Distance(p, q); d < radius {
			visit(q, d)
		}
	}
}

// Collides reports whether any obstacle point is strictly closer than radius to p.
func (set *ObstacleSet) Collides(p r2.Point, radius float64) bool {
	if set.model == SampledModel {
		return set.index.AnyWithin(p, radius)
	}
	for _, hull := range set.hulls {
		if Distance(p, hull.ClampPoint(p)) < radius {
			return true
		}
	}
	return false
}

// NearestDistance returns the distance from p to the closest obstacle point, or +Inf for an
// empty set.
func (set *ObstacleSet) NearestDistance(p r2.Point) float64 {
	best := math.Inf(1)
	for _, hull := range set.hulls {
		best = math.Min(best, Distance(p, hull.ClampPoint(p)))
	}
	return best
}

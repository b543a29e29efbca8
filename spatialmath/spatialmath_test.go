package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/fieldnav/utils"
)

func TestRectangleSamples(t *testing.T) {
	// [9, 13, 10, 2] covers [9,13] to [18,14].
	r := NewRectangle(9, 13, 10, 2)
	samples := r.Samples()
	test.That(t, samples, test.ShouldHaveLength, 20)
	test.That(t, samples[0], test.ShouldResemble, r2.Point{X: 9, Y: 13})
	test.That(t, samples[len(samples)-1], test.ShouldResemble, r2.Point{X: 18, Y: 14})

	hull := r.SampleHull()
	test.That(t, hull.Lo(), test.ShouldResemble, r2.Point{X: 9, Y: 13})
	test.That(t, hull.Hi(), test.ShouldResemble, r2.Point{X: 18, Y: 14})

	single := NewRectangle(3, 1, 1, 1)
	test.That(t, single.Samples(), test.ShouldResemble, []r2.Point{{X: 3, Y: 1}})
	test.That(t, single.SampleHull().Lo(), test.ShouldResemble, single.SampleHull().Hi())

	extent := NewRectangle(0, 0, 27, 15).Extent()
	test.That(t, extent.Hi(), test.ShouldResemble, r2.Point{X: 27, Y: 15})
	test.That(t, single.String(), test.ShouldEqual, "[x: 3.00, y: 1.00, w: 1.00, h: 1.00]")
}

func TestVectors(t *testing.T) {
	h := Heading(math.Pi / 2)
	test.That(t, h.X, test.ShouldAlmostEqual, 0)
	test.That(t, h.Y, test.ShouldAlmostEqual, 1)

	r := Rotate(r2.Point{X: 1, Y: 0}, utils.DegToRad(-90))
	test.That(t, r.X, test.ShouldAlmostEqual, 0)
	test.That(t, r.Y, test.ShouldAlmostEqual, -1)

	test.That(t, Distance(r2.Point{X: 1, Y: 1}, r2.Point{X: 4, Y: 5}), test.ShouldAlmostEqual, 5)
}

func TestPointIndex(t *testing.T) {
	idx := NewPointIndex(1)
	for _, p := range []r2.Point{{X: 0, Y: 0}, {X: 0.4, Y: 0}, {X: 3, Y: 3}, {X: -2.5, Y: 0}} {
		idx.Insert(p)
	}
	test.That(t, idx.Len(), test.ShouldEqual, 4)

	var found []r2.Point
	idx.Within(r2.Point{X: 0.1, Y: 0}, 0.5, func(q r2.Point, d float64) {
		found = append(found, q)
		test.That(t, d, test.ShouldBeLessThan, 0.5)
	})
	test.That(t, found, test.ShouldHaveLength, 2)

	test.That(t, idx.AnyWithin(r2.Point{X: -2, Y: 0}, 0.6), test.ShouldBeTrue)
	test.That(t, idx.AnyWithin(r2.Point{X: -2, Y: 0}, 0.5), test.ShouldBeFalse)
	test.That(t, idx.AnyWithin(r2.Point{X: 10, Y: 10}, 2), test.ShouldBeFalse)
}

func TestPointIndexMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	idx := NewPointIndex(1)
	pts := make([]r2.Point, 0, 500)
	for i := 0; i < 500; i++ {
		p := r2.Point{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		pts = append(pts, p)
		idx.Insert(p)
	}
	for i := 0; i < 50; i++ {
		q := r2.Point{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		radius := rng.Float64() * 3
		expected := 0
		for _, p := range pts {
			if Distance(p, q) < radius {
				expected++
			}
		}
		actual := 0
		idx.Within(q, radius, func(r2.Point, float64) { actual++ })
		test.That(t, actual, test.ShouldEqual, expected)
		test.That(t, idx.AnyWithin(q, radius), test.ShouldEqual, expected > 0)
	}
}

func TestObstacleSetModels(t *testing.T) {
	rects := []Rectangle{NewRectangle(2, 6, 10, 2), NewRectangle(3, 1, 1, 1)}

	_, err := NewObstacleSet(rects, "voxels")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "voxels")

	_, err = NewObstacleSet([]Rectangle{NewRectangle(0, 0, 0, 1)}, SampledModel)
	test.That(t, err, test.ShouldNotBeNil)

	nearest, err := NewObstacleSet(rects, "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nearest.Model(), test.ShouldEqual, NearestPointModel)
	test.That(t, nearest.Samples(), test.ShouldHaveLength, 21)
	test.That(t, nearest.Rectangles(), test.ShouldResemble, rects)

	sampled, err := NewObstacleSet(rects, SampledModel)
	test.That(t, err, test.ShouldBeNil)

	p := r2.Point{X: 3.5, Y: 3.8}
	var nearestHits []r2.Point
	nearest.Repulsors(p, 3, func(q r2.Point, d float64) {
		nearestHits = append(nearestHits, q)
	})
	// one repulsor per rectangle in range: the nearest point of the bar and the single sample
	test.That(t, nearestHits, test.ShouldHaveLength, 2)
	test.That(t, nearestHits[0], test.ShouldResemble, r2.Point{X: 3.5, Y: 6})

	sampledHits := 0
	sampled.Repulsors(p, 3, func(q r2.Point, d float64) { sampledHits++ })
	test.That(t, sampledHits, test.ShouldEqual, 5)

	// both models agree on collisions at sample resolution
	for _, q := range []r2.Point{{X: 3, Y: 1.6}, {X: 3.8, Y: 1}, {X: 7, Y: 5.4}, {X: 7, Y: 5.2}, {X: 0.5, Y: 0.5}} {
		test.That(t, nearest.Collides(q, 0.7), test.ShouldEqual, sampled.Collides(q, 0.7))
	}
	test.That(t, nearest.NearestDistance(r2.Point{X: 3, Y: 3}), test.ShouldAlmostEqual, 2)

	empty, err := NewObstacleSet(nil, NearestPointModel)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsInf(empty.NearestDistance(p), 1), test.ShouldBeTrue)
	test.That(t, empty.Collides(p, 100), test.ShouldBeFalse)
}

func TestWorkspace(t *testing.T) {
	_, err := NewWorkspace(NewRectangle(0, 0, 0, 10), 0.5)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewWorkspace(NewRectangle(0, 0, 1, 10), 0.5)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewWorkspace(NewRectangle(0, 0, 10, 10), -1)
	test.That(t, err, test.ShouldNotBeNil)

	ws, err := NewWorkspace(NewRectangle(0, 0, 27, 15), 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ws.Margin(), test.ShouldEqual, 0.5)
	test.That(t, ws.Bounds(), test.ShouldResemble, NewRectangle(0, 0, 27, 15))
	test.That(t, ws.Inner().Lo(), test.ShouldResemble, r2.Point{X: 0.5, Y: 0.5})
	test.That(t, ws.Inner().Hi(), test.ShouldResemble, r2.Point{X: 26.5, Y: 14.5})
	test.That(t, ws.Outer().Hi(), test.ShouldResemble, r2.Point{X: 27, Y: 15})

	test.That(t, ws.Contains(r2.Point{X: 0.5, Y: 14.5}), test.ShouldBeTrue)
	test.That(t, ws.Contains(r2.Point{X: 0.49, Y: 3}), test.ShouldBeFalse)
	test.That(t, ws.Clamp(r2.Point{X: -3, Y: 20}), test.ShouldResemble, r2.Point{X: 0.5, Y: 14.5})

	left, right, bottom, top := ws.BorderDistances(r2.Point{X: 1, Y: 2})
	test.That(t, []float64{left, right, bottom, top}, test.ShouldResemble, []float64{1, 26, 2, 13})
}

package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

type bucketKey struct {
	x, y int64
}

// PointIndex is a bucketed spatial hash over points. Radius queries only touch the buckets that
// overlap the query disc, so their cost follows the local density rather than the total count.
type PointIndex struct {
	bucketSize float64
	buckets    map[bucketKey][]r2.Point
	count      int
}

// NewPointIndex returns an empty index with square buckets of the given side length.
func NewPointIndex(bucketSize float64) *PointIndex {
	if bucketSize <= 0 {
		bucketSize = 1
	}
	return &PointIndex{
		bucketSize: bucketSize,
		buckets:    map[bucketKey][]r2.Point{},
	}
}

func (idx *PointIndex) keyOf(x, y float64) bucketKey {
	return bucketKey{int64(math.Floor(x / idx.bucketSize)), int64(math.Floor(y / idx.bucketSize))}
}

// Insert adds p to the index. Duplicates are kept; callers that need set semantics dedupe first.
func (idx *PointIndex) Insert(p r2.Point) {
	key := idx.keyOf(p.X, p.Y)
	idx.buckets[key] = append(idx.buckets[key], p)
	idx.count++
}

// Len returns the number of points inserted.
func (idx *PointIndex) Len() int {
	return idx.count
}

// scan calls fn for every point strictly closer than radius to p until fn returns false. It
// reports whether the scan ran to completion.
func (idx *PointIndex) scan(p r2.Point, radius float64, fn func(q r2.Point, d float64) bool) bool {
	lo := idx.keyOf(p.X-radius, p.Y-radius)
	hi := idx.keyOf(p.X+radius, p.Y+radius)
	for bx := lo.x; bx <= hi.x; bx++ {
		for by := lo.y; by <= hi.y; by++ {
			for _, q := range idx.buckets[bucketKey{bx, by}] {
				d := Distance(p, q)
				if d >= radius {
					continue
				}
				if !fn(q, d) {
					return false
				}
			}
		}
	}
	return true
}

// Within calls visit for every indexed point strictly closer than radius to p.
func (idx *PointIndex) Within(p r2.Point, radius float64, visit func(q r2.Point, d float64)) {
	idx.scan(p, radius, func(q r2.Point, d float64) bool {
		visit(q, d)
		return true
	})
}

// AnyWithin reports whether any indexed point is strictly closer than radius to p.
func (idx *PointIndex) AnyWithin(p r2.Point, radius float64) bool {
	return !idx.scan(p, radius, func(r2.Point, float64) bool { return false })
}

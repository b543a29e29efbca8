package motionplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/fieldnav/spatialmath"
)

const visitedBucketSize = 1.0

type cellKey struct {
	x, y int64
}

// MotionMemory records where the agent has been: a short window of recent positions used for
// anomaly detection, the set of visited cells used by the anti-cycle field and the escape planner,
// and the full trajectory.
type MotionMemory struct {
	historyLength int
	window        []r2.Point

	resolution float64
	cells      map[cellKey]struct{}
	visited    *spatialmath.PointIndex

	trajectory []r2.Point
}

// NewMotionMemory returns an empty memory keeping historyLength recent positions and rounding
// visited positions to resolution.
func NewMotionMemory(historyLength int, resolution float64) *MotionMemory {
	return &MotionMemory{
		historyLength: historyLength,
		window:        make([]r2.Point, 0, historyLength),
		resolution:    resolution,
		cells:         map[cellKey]struct{}{},
		visited:       spatialmath.NewPointIndex(visitedBucketSize),
	}
}

func (m *MotionMemory) cellOf(p r2.Point) cellKey {
	return cellKey{
		x: int64(math.Round(p.X / m.resolution)),
		y: int64(math.Round(p.Y / m.resolution)),
	}
}

// Discretize rounds p to the visited grid.
func (m *MotionMemory) Discretize(p r2.Point) r2.Point {
	key := m.cellOf(p)
	return r2.Point{X: float64(key.x) * m.resolution, Y: float64(key.y) * m.resolution}
}

// Record appends p to the trajectory and the recent window, and marks its cell visited.
func (m *MotionMemory) Record(p r2.Point) {
	m.trajectory = append(m.trajectory, p)

	if len(m.window) == m.historyLength {
		copy(m.window, m.window[1:])
		m.window = m.window[:len(m.window)-1]
	}
	m.window = append(m.window, p)

	key := m.cellOf(p)
	if _, ok := m.cells[key]; ok {
		return
	}
	m.cells[key] = struct{}{}
	m.visited.Insert(m.Discretize(p))
}

// WindowLen returns how many recent positions are held.
func (m *MotionMemory) WindowLen() int {
	return len(m.window)
}

// Recent returns the last n recorded positions, oldest first. It returns fewer when the window
// holds fewer.
func (m *MotionMemory) Recent(n int) []r2.Point {
	if n > len(m.window) {
		n = len(m.window)
	}
	return append([]r2.Point(nil), m.window[len(m.window)-n:]...)
}

// VisitedCount returns the number of distinct visited cells.
func (m *MotionMemory) VisitedCount() int {
	return len(m.cells)
}

// VisitedWithin calls visit with every visited cell strictly closer than radius to p.
func (m *MotionMemory) VisitedWithin(p r2.Point, radius float64, visit func(q r2.Point, d float64)) {
	m.visited.Within(p, radius, visit)
}

// VisitedNear reports whether any visited cell is strictly closer than radius to p.
func (m *MotionMemory) VisitedNear(p r2.Point, radius float64) bool {
	return m.visited.AnyWithin(p, radius)
}

// Trajectory returns a copy of every recorded position in order.
func (m *MotionMemory) Trajectory() []r2.Point {
	return append([]r2.Point(nil), m.trajectory...)
}

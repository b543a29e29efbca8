package motionplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/fieldnav/spatialmath"
	"go.viam.com/fieldnav/utils"
)

// ForceBreakdown holds the contribution of each field at a position.
type ForceBreakdown struct {
	Attractive r2.Point
	Obstacle   r2.Point
	Boundary   r2.Point
	AntiCycle  r2.Point
}

// Total returns the net force.
func (f ForceBreakdown) Total() r2.Point {
	return f.Attractive.Add(f.Obstacle).Add(f.Boundary).Add(f.AntiCycle)
}

// repulsion is the inverse-square falloff shared by every repulsive field. It is zero at the
// influence radius and grows without bound as d shrinks.
func repulsion(gain, d, radius float64) float64 {
	return gain * utils.Square(1/d-1/radius)
}

type fieldCalculator struct {
	cfg       *Config
	obstacles *spatialmath.ObstacleSet
	workspace spatialmath.Workspace
}

// attractive pulls toward the goal, harder when close to it.
func (fc *fieldCalculator) attractive(p, goal r2.Point) r2.Point {
	delta := goal.Sub(p)
	d := delta.Norm()
	if d < fc.cfg.Epsilon {
		return r2.Point{}
	}
	gain := fc.cfg.AttractiveGain * (1 + fc.cfg.AttractiveBoost/(d+1))
	return delta.Mul(gain / d)
}

// pushAway accumulates a repulsion away from source q at distance d into acc.
func (fc *fieldCalculator) pushAway(acc, p, q r2.Point, d, gain, radius float64) r2.Point {
	away := p.Sub(q)
	if away.Norm() == 0 {
		return acc
	}
	return acc.Add(away.Normalize().Mul(repulsion(gain, math.Max(d, fc.cfg.Epsilon), radius)))
}

func (fc *fieldCalculator) obstacleRepulsion(p r2.Point) r2.Point {
	var force r2.Point
	fc.obstacles.Repulsors(p, fc.cfg.ObstacleRadius, func(q r2.Point, d float64) {
		force = fc.pushAway(force, p, q, d, fc.cfg.ObstacleGain, fc.cfg.ObstacleRadius)
	})
	return force
}

func (fc *fieldCalculator) boundaryRepulsion(p r2.Point) r2.Point {
	var force r2.Point
	radius := fc.cfg.BoundaryRadius
	push := func(d float64, dir r2.Point) {
		if d >= radius {
			return
		}
		force = force.Add(dir.Mul(repulsion(fc.cfg.BoundaryGain, math.Max(d, fc.cfg.Epsilon), radius)))
	}
	left, right, bottom, top := fc.workspace.BorderDistances(p)
	push(left, r2.Point{X: 1})
	push(right, r2.Point{X: -1})
	push(bottom, r2.Point{Y: 1})
	push(top, r2.Point{Y: -1})
	return force
}

// antiCycle pushes away from recently visited cells. Cells closer than epsilon, including the
// agent's own, are ignored.
func (fc *fieldCalculator) antiCycle(p r2.Point, mem *MotionMemory) r2.Point {
	var force r2.Point
	mem.VisitedWithin(p, fc.cfg.AntiCycleRadius, func(q r2.Point, d float64) {
		if d <= fc.cfg.Epsilon {
			return
		}
		force = fc.pushAway(force, p, q, d, fc.cfg.AntiCycleGain, fc.cfg.AntiCycleRadius)
	})
	return force
}

func (fc *fieldCalculator) forces(p, goal r2.Point, mem *MotionMemory) ForceBreakdown {
	return ForceBreakdown{
		Attractive: fc.attractive(p, goal),
		Obstacle:   fc.obstacleRepulsion(p),
		Boundary:   fc.boundaryRepulsion(p),
		AntiCycle:  fc.antiCycle(p, mem),
	}
}

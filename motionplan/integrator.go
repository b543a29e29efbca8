package motionplan

import (
	"github.com/golang/geo/r2"

	"go.viam.com/fieldnav/spatialmath"
)

type stepIntegrator struct {
	cfg       *Config
	obstacles *spatialmath.ObstacleSet
	workspace spatialmath.Workspace
	dirs      DirectionSource
}

// collides reports whether p is too close to an obstacle or outside the margined workspace.
func (si *stepIntegrator) collides(p r2.Point) bool {
	return !si.workspace.Contains(p) || si.obstacles.Collides(p, si.cfg.CollisionRadius)
}

// resolve applies move to p, backing off until it finds a collision-free position:
// the full move, then half of it, then a short hop along an arbitrary heading, then staying put.
// The result is always inside the margined workspace.
func (si *stepIntegrator) resolve(p, move r2.Point) (r2.Point, Resolution) {
	if next := p.Add(move); !si.collides(next) {
		return si.workspace.Clamp(next), ResolutionFull
	}
	if next := p.Add(move.Mul(0.5)); !si.collides(next) {
		return si.workspace.Clamp(next), ResolutionHalved
	}
	hop := si.dirs.NextHeading().Mul(si.cfg.StepLength * si.cfg.FallbackStepScale)
	if next := p.Add(hop); !si.collides(next) {
		return si.workspace.Clamp(next), ResolutionRedirected
	}
	return si.workspace.Clamp(p), ResolutionBlocked
}

package motionplan

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/fieldnav/spatialmath"
	"go.viam.com/fieldnav/utils"
)

// EscapeProposal is the move chosen by the escape planner along with how it was chosen.
type EscapeProposal struct {
	Move       r2.Point
	Candidates int
	Survivors  int
	Fallback   bool
	// HeadingDegrees is the chosen rotation away from the goal direction; 0 on fallback.
	HeadingDegrees float64
}

type escapePlanner struct {
	cfg        *Config
	integrator *stepIntegrator
	dirs       DirectionSource
	// rotations applied to the goal direction, in radians.
	angles []float64
}

func newEscapePlanner(cfg *Config, integrator *stepIntegrator, dirs DirectionSource) *escapePlanner {
	sweep := utils.DegToRad(cfg.EscapeSweepDegrees)
	angles := make([]float64, cfg.EscapeHeadings)
	if len(angles) > 1 {
		floats.Span(angles, -sweep, sweep)
	}
	return &escapePlanner{cfg: cfg, integrator: integrator, dirs: dirs, angles: angles}
}

// propose picks the candidate heading that gains the most ground on the goal without colliding or
// revisiting known territory. The first best candidate wins ties. With no usable candidate it falls
// back to a heading from the direction source.
func (ep *escapePlanner) propose(p, goal r2.Point, mem *MotionMemory) EscapeProposal {
	proposal := EscapeProposal{Candidates: len(ep.angles)}
	lookahead := ep.cfg.StepLength * ep.cfg.EscapeLookahead
	stride := ep.cfg.StepLength * ep.cfg.EscapeStepScale

	toGoal := goal.Sub(p)
	current := toGoal.Norm()
	if current == 0 {
		proposal.Fallback = true
		proposal.Move = ep.dirs.NextHeading().Mul(stride)
		return proposal
	}
	toGoal = toGoal.Mul(1 / current)

	best := math.Inf(-1)
	var bestHeading r2.Point
	var bestAngle float64
	for _, angle := range ep.angles {
		heading := spatialmath.Rotate(toGoal, angle)
		trial := p.Add(heading.Mul(lookahead))
		if ep.integrator.collides(trial) || mem.VisitedNear(trial, ep.cfg.NoveltyRadius) {
			continue
		}
		proposal.Survivors++
		if gain := current - spatialmath.Distance(goal, trial); gain > best {
			best = gain
			bestHeading = heading
			bestAngle = angle
		}
	}
	if proposal.Survivors == 0 {
		proposal.Fallback = true
		proposal.Move = ep.dirs.NextHeading().Mul(stride)
		return proposal
	}
	proposal.Move = bestHeading.Mul(stride)
	proposal.HeadingDegrees = utils.RadToDeg(bestAngle)
	return proposal
}

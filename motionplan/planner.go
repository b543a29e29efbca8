// Package motionplan steers a point agent through a 2-D workspace of rectangular obstacles using
// an artificial potential field, supervised by stagnation and oscillation detectors that hand
// control to an escape planner when the field traps the agent.
package motionplan

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/fieldnav/logging"
	"go.viam.com/fieldnav/spatialmath"
)

// StepResult is the outcome of a single tick.
type StepResult struct {
	// Continuing is false once the agent has arrived.
	Continuing bool
	Position   r2.Point
	Status     Status
	Resolution Resolution
}

// PlannerOption customizes a planner at construction.
type PlannerOption func(*plannerOptions)

type plannerOptions struct {
	dirs DirectionSource
}

// WithDirectionSource makes the planner draw every arbitrary heading from src.
func WithDirectionSource(src DirectionSource) PlannerOption {
	return func(opts *plannerOptions) {
		opts.dirs = src
	}
}

// Planner advances a single agent toward its goal one tick at a time. It is not safe for
// concurrent use; geometry may be shared between planners.
type Planner struct {
	cfg       *Config
	logger    logging.Logger
	obstacles *spatialmath.ObstacleSet
	workspace spatialmath.Workspace

	goal     r2.Point
	position r2.Point
	status   Status
	ticks    int

	escaping    bool
	escapeTicks int
	counters    AnomalyCounters

	memory     *MotionMemory
	fields     *fieldCalculator
	detector   *anomalyDetector
	escape     *escapePlanner
	integrator *stepIntegrator
	dirs       DirectionSource
}

// NewPlanner builds the obstacle set and workspace from raw geometry and returns a planner at
// start. A nil cfg means NewDefaultConfig.
func NewPlanner(
	start, goal r2.Point,
	obstacles []spatialmath.Rectangle,
	bounds spatialmath.Rectangle,
	cfg *Config,
	logger logging.Logger,
	opts ...PlannerOption,
) (*Planner, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate("planner"); err != nil {
		return nil, err
	}
	set, err := spatialmath.NewObstacleSet(obstacles, cfg.ObstacleModel)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build obstacle set")
	}
	ws, err := spatialmath.NewWorkspace(bounds, cfg.BoundaryMargin)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build workspace")
	}
	return newPlanner(start, goal, set, ws, cfg, logger, opts...)
}

// NewPlannerFromGeometry returns a planner at start over prebuilt geometry, which can be shared
// read-only between planners. A nil cfg means NewDefaultConfig. The obstacle set keeps the model it
// was built with regardless of cfg.ObstacleModel.
func NewPlannerFromGeometry(
	start, goal r2.Point,
	obstacles *spatialmath.ObstacleSet,
	workspace spatialmath.Workspace,
	cfg *Config,
	logger logging.Logger,
	opts ...PlannerOption,
) (*Planner, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate("planner"); err != nil {
		return nil, err
	}
	if obstacles == nil {
		return nil, errors.New("obstacle set is required")
	}
	return newPlanner(start, goal, obstacles, workspace, cfg, logger, opts...)
}

func newPlanner(
	start, goal r2.Point,
	obstacles *spatialmath.ObstacleSet,
	workspace spatialmath.Workspace,
	cfg *Config,
	logger logging.Logger,
	opts ...PlannerOption,
) (*Planner, error) {
	// The planner keeps its own copy so later edits by the caller do not leak into a run.
	cfgCopy := *cfg
	options := plannerOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.dirs == nil {
		options.dirs = NewRandomDirectionSource(cfgCopy.RandomSeed)
	}
	if logger == nil {
		logger = logging.NewBlankLogger("motionplan")
	}

	integrator := &stepIntegrator{cfg: &cfgCopy, obstacles: obstacles, workspace: workspace, dirs: options.dirs}
	if !workspace.Contains(start) {
		return nil, NewOutOfWorkspaceError("start", start)
	}
	if !workspace.Contains(goal) {
		return nil, NewOutOfWorkspaceError("goal", goal)
	}
	if obstacles.Collides(start, cfgCopy.CollisionRadius) {
		return nil, NewStartInCollisionError(start)
	}
	if obstacles.Collides(goal, cfgCopy.CollisionRadius) {
		return nil, NewGoalInCollisionError(goal)
	}

	mp := &Planner{
		cfg:        &cfgCopy,
		logger:     logger,
		obstacles:  obstacles,
		workspace:  workspace,
		goal:       goal,
		position:   start,
		status:     StatusNormal,
		memory:     NewMotionMemory(cfgCopy.HistoryLength, cfgCopy.VisitedResolution),
		fields:     &fieldCalculator{cfg: &cfgCopy, obstacles: obstacles, workspace: workspace},
		detector:   &anomalyDetector{cfg: &cfgCopy},
		integrator: integrator,
		escape:     newEscapePlanner(&cfgCopy, integrator, options.dirs),
		dirs:       options.dirs,
	}
	mp.memory.Record(start)
	logger.Debugw("planner created", "start", start, "goal", goal,
		"obstacles", len(obstacles.Rectangles()), "model", obstacles.Model())
	return mp, nil
}

// Step advances the agent by one tick. Once the agent has arrived every further call returns the
// same result without changing any state.
func (mp *Planner) Step() StepResult {
	if mp.status == StatusArrived {
		return StepResult{Position: mp.position, Status: StatusArrived, Resolution: ResolutionNone}
	}
	if spatialmath.Distance(mp.goal, mp.position) < mp.cfg.ConvergenceThreshold {
		mp.transition(StatusArrived)
		mp.logger.Infow("goal reached", "position", mp.position, "ticks", mp.ticks,
			"visited", mp.memory.VisitedCount())
		return StepResult{Position: mp.position, Status: StatusArrived, Resolution: ResolutionNone}
	}
	mp.ticks++

	var move r2.Point
	switch {
	case mp.escaping && mp.escapeTicks >= mp.cfg.MaxEscapeTicks:
		mp.escaping = false
		mp.escapeTicks = 0
		mp.counters = AnomalyCounters{}
		mp.transition(StatusNormal)
		move = mp.fieldMove()
	case mp.escaping:
		mp.escapeTicks++
		mp.transition(StatusEscaping)
		move = mp.escapeMove()
	default:
		status := mp.detector.evaluate(mp.memory, mp.goal, &mp.counters)
		mp.transition(status)
		if status == StatusNormal {
			move = mp.fieldMove()
			break
		}
		mp.escaping = true
		mp.escapeTicks = 0
		move = mp.escapeMove()
	}

	next, resolution := mp.integrator.resolve(mp.position, move)
	if resolution == ResolutionBlocked {
		mp.logger.Debugw("every move collided, holding position", "position", mp.position, "tick", mp.ticks)
	}
	mp.position = next
	mp.memory.Record(next)
	return StepResult{Continuing: true, Position: next, Status: mp.status, Resolution: resolution}
}

func (mp *Planner) transition(status Status) {
	if status == mp.status {
		return
	}
	mp.logger.Infow("status changed",
		"from", mp.status.String(),
		"to", status.String(),
		"tick", mp.ticks,
		"position", mp.position,
		"stagnation", mp.counters.Stagnation,
		"oscillation", mp.counters.Oscillation,
	)
	mp.status = status
}

// fieldMove follows the net force for one step.
func (mp *Planner) fieldMove() r2.Point {
	breakdown := mp.fields.forces(mp.position, mp.goal, mp.memory)
	total := breakdown.Total()
	mp.logger.Debugw("field forces",
		"tick", mp.ticks,
		"attractive", breakdown.Attractive,
		"obstacle", breakdown.Obstacle,
		"boundary", breakdown.Boundary,
		"anticycle", breakdown.AntiCycle,
	)
	if norm := total.Norm(); norm > 0 {
		return total.Mul(mp.cfg.StepLength / norm)
	}
	mp.logger.Debugw("net force vanished, taking an arbitrary heading", "position", mp.position)
	return mp.dirs.NextHeading().Mul(mp.cfg.StepLength * mp.cfg.FallbackStepScale)
}

func (mp *Planner) escapeMove() r2.Point {
	proposal := mp.escape.propose(mp.position, mp.goal, mp.memory)
	mp.logger.Debugw("escape move",
		"tick", mp.ticks,
		"candidates", proposal.Candidates,
		"survivors", proposal.Survivors,
		"fallback", proposal.Fallback,
		"heading_deg", proposal.HeadingDegrees,
	)
	return proposal.Move
}

// Position returns the agent's current position.
func (mp *Planner) Position() r2.Point {
	return mp.position
}

// Goal returns the goal the planner was built with.
func (mp *Planner) Goal() r2.Point {
	return mp.goal
}

// Status returns the status reported by the latest tick.
func (mp *Planner) Status() Status {
	return mp.status
}

// Ticks returns the number of ticks that moved or tried to move the agent.
func (mp *Planner) Ticks() int {
	return mp.ticks
}

// Counters returns the anomaly counters.
func (mp *Planner) Counters() AnomalyCounters {
	return mp.counters
}

// EscapeTicks returns how many ticks of the current escape have elapsed, or 0 outside escape mode.
func (mp *Planner) EscapeTicks() int {
	return mp.escapeTicks
}

// Trajectory returns every position the agent has occupied, starting with the start position.
func (mp *Planner) Trajectory() []r2.Point {
	return mp.memory.Trajectory()
}

// VisitedCount returns the number of distinct visited cells.
func (mp *Planner) VisitedCount() int {
	return mp.memory.VisitedCount()
}

// Forces returns each field's contribution at the current position.
func (mp *Planner) Forces() ForceBreakdown {
	return mp.fields.forces(mp.position, mp.goal, mp.memory)
}

// Obstacles returns the obstacle set the planner avoids.
func (mp *Planner) Obstacles() *spatialmath.ObstacleSet {
	return mp.obstacles
}

// Workspace returns the workspace the planner is confined to.
func (mp *Planner) Workspace() spatialmath.Workspace {
	return mp.workspace
}

// Config returns a copy of the planner's configuration.
func (mp *Planner) Config() Config {
	return *mp.cfg
}

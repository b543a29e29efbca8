package motionplan

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/fieldnav/spatialmath"
)

// default values for the force field and the supervisors around it.
const (
	// gain of the goal attraction.
	defaultAttractiveGain = 1.5

	// extra pull near the goal: the attraction is scaled by 1 + boost/(d+1).
	defaultAttractiveBoost = 5.0

	// gains of the inverse-square repulsive fields.
	defaultObstacleGain  = 30000.
	defaultBoundaryGain  = 15000.
	defaultAntiCycleGain = 8000.

	// influence radii of the repulsive fields. Sources further away contribute nothing.
	defaultObstacleRadius  = 2.5
	defaultBoundaryRadius  = 2.5
	defaultAntiCycleRadius = 1.5

	// a position closer than this to an obstacle is in collision.
	defaultCollisionRadius = 0.7

	// positions must stay this far inside the workspace border.
	defaultBoundaryMargin = 0.5

	// distance moved by a normal tick.
	defaultStepLength = 0.25

	// distance to the goal below which the agent has arrived.
	defaultConvergenceThreshold = 0.5

	// distances below this are treated as numerically zero.
	defaultEpsilon = 0.1

	// stagnation: path length over the last StagnationWindow positions below StagnationThreshold.
	defaultStagnationWindow    = 10
	defaultStagnationThreshold = 1.0
	defaultMaxStagnationTicks  = 8

	// oscillation: moving away from the goal, needs OscillationWindow positions of history.
	defaultOscillationWindow   = 15
	defaultMaxOscillationTicks = 10

	// number of ticks escape mode lasts once entered.
	defaultMaxEscapeTicks = 20

	// escape candidates are EscapeHeadings directions spread over +/- EscapeSweepDegrees around the
	// goal direction, tested EscapeLookahead steps ahead and taken at EscapeStepScale steps.
	defaultEscapeHeadings     = 12
	defaultEscapeSweepDegrees = 90.
	defaultEscapeLookahead    = 3.
	defaultEscapeStepScale    = 2.

	// fraction of a step taken along an arbitrary heading when nothing better is available.
	defaultFallbackStepScale = 0.5

	// escape candidates closer than this to a visited cell are not novel.
	defaultNoveltyRadius = 0.5

	// visited positions are rounded to this resolution.
	defaultVisitedResolution = 0.1

	// number of recent positions kept for anomaly detection.
	defaultHistoryLength = 15
)

// Config holds every tunable of a planner run. The zero value is not usable; start from
// NewDefaultConfig and override fields.
type Config struct {
	AttractiveGain  float64 `json:"k_attractive"`
	AttractiveBoost float64 `json:"attractive_boost"`
	ObstacleGain    float64 `json:"k_repulsive_obstacle"`
	BoundaryGain    float64 `json:"k_repulsive_boundary"`
	AntiCycleGain   float64 `json:"k_anticycle"`

	ObstacleRadius  float64 `json:"obstacle_radius"`
	BoundaryRadius  float64 `json:"boundary_radius"`
	AntiCycleRadius float64 `json:"anticycle_radius"`
	CollisionRadius float64 `json:"collision_radius"`
	BoundaryMargin  float64 `json:"boundary_margin"`

	StepLength           float64 `json:"step_length"`
	ConvergenceThreshold float64 `json:"convergence_threshold"`
	Epsilon              float64 `json:"epsilon"`

	StagnationWindow    int     `json:"stagnation_window"`
	StagnationThreshold float64 `json:"stagnation_threshold"`
	MaxStagnationTicks  int     `json:"max_stagnation_ticks"`
	OscillationWindow   int     `json:"oscillation_window"`
	MaxOscillationTicks int     `json:"max_oscillation_ticks"`
	MaxEscapeTicks      int     `json:"max_escape_ticks"`

	EscapeHeadings     int     `json:"escape_headings"`
	EscapeSweepDegrees float64 `json:"escape_sweep_degrees"`
	EscapeLookahead    float64 `json:"escape_lookahead"`
	EscapeStepScale    float64 `json:"escape_step_scale"`
	FallbackStepScale  float64 `json:"fallback_step_scale"`
	NoveltyRadius      float64 `json:"novelty_radius"`

	VisitedResolution float64 `json:"visited_resolution"`
	HistoryLength     int     `json:"history_length"`

	ObstacleModel spatialmath.ObstacleModel `json:"obstacle_model"`

	// Seeds the default direction source. Ignored when one is injected with WithDirectionSource.
	RandomSeed int64 `json:"random_seed"`
}

// NewDefaultConfig returns a config populated with the defaults.
func NewDefaultConfig() *Config {
	return &Config{
		AttractiveGain:       defaultAttractiveGain,
		AttractiveBoost:      defaultAttractiveBoost,
		ObstacleGain:         defaultObstacleGain,
		BoundaryGain:         defaultBoundaryGain,
		AntiCycleGain:        defaultAntiCycleGain,
		ObstacleRadius:       defaultObstacleRadius,
		BoundaryRadius:       defaultBoundaryRadius,
		AntiCycleRadius:      defaultAntiCycleRadius,
		CollisionRadius:      defaultCollisionRadius,
		BoundaryMargin:       defaultBoundaryMargin,
		StepLength:           defaultStepLength,
		ConvergenceThreshold: defaultConvergenceThreshold,
		Epsilon:              defaultEpsilon,
		StagnationWindow:     defaultStagnationWindow,
		StagnationThreshold:  defaultStagnationThreshold,
		MaxStagnationTicks:   defaultMaxStagnationTicks,
		OscillationWindow:    defaultOscillationWindow,
		MaxOscillationTicks:  defaultMaxOscillationTicks,
		MaxEscapeTicks:       defaultMaxEscapeTicks,
		EscapeHeadings:       defaultEscapeHeadings,
		EscapeSweepDegrees:   defaultEscapeSweepDegrees,
		EscapeLookahead:      defaultEscapeLookahead,
		EscapeStepScale:      defaultEscapeStepScale,
		FallbackStepScale:    defaultFallbackStepScale,
		NoveltyRadius:        defaultNoveltyRadius,
		VisitedResolution:    defaultVisitedResolution,
		HistoryLength:        defaultHistoryLength,
		ObstacleModel:        spatialmath.NearestPointModel,
	}
}

func fieldError(path, field, problem string) error {
	return goutils.NewConfigValidationError(path, errors.Errorf("%q %s", field, problem))
}

func positive(path, field string, v float64) error {
	if v > 0 {
		return nil
	}
	return fieldError(path, field, fmt.Sprintf("must be positive, got %v", v))
}

func nonNegative(path, field string, v float64) error {
	if v >= 0 {
		return nil
	}
	return fieldError(path, field, fmt.Sprintf("must not be negative, got %v", v))
}

func atLeast(path, field string, v, floor int) error {
	if v >= floor {
		return nil
	}
	return fieldError(path, field, fmt.Sprintf("must be at least %d, got %d", floor, v))
}

// Validate ensures all parts of the config are valid. Every problem found is reported.
func (cfg *Config) Validate(path string) error {
	errs := []error{
		positive(path, "k_attractive", cfg.AttractiveGain),
		nonNegative(path, "attractive_boost", cfg.AttractiveBoost),
		nonNegative(path, "k_repulsive_obstacle", cfg.ObstacleGain),
		nonNegative(path, "k_repulsive_boundary", cfg.BoundaryGain),
		nonNegative(path, "k_anticycle", cfg.AntiCycleGain),
		positive(path, "obstacle_radius", cfg.ObstacleRadius),
		positive(path, "boundary_radius", cfg.BoundaryRadius),
		positive(path, "anticycle_radius", cfg.AntiCycleRadius),
		positive(path, "collision_radius", cfg.CollisionRadius),
		nonNegative(path, "boundary_margin", cfg.BoundaryMargin),
		positive(path, "step_length", cfg.StepLength),
		positive(path, "convergence_threshold", cfg.ConvergenceThreshold),
		positive(path, "epsilon", cfg.Epsilon),
		atLeast(path, "stagnation_window", cfg.StagnationWindow, 2),
		nonNegative(path, "stagnation_threshold", cfg.StagnationThreshold),
		atLeast(path, "max_stagnation_ticks", cfg.MaxStagnationTicks, 1),
		atLeast(path, "oscillation_window", cfg.OscillationWindow, 2),
		atLeast(path, "max_oscillation_ticks", cfg.MaxOscillationTicks, 1),
		atLeast(path, "max_escape_ticks", cfg.MaxEscapeTicks, 1),
		atLeast(path, "escape_headings", cfg.EscapeHeadings, 1),
		nonNegative(path, "escape_sweep_degrees", cfg.EscapeSweepDegrees),
		positive(path, "escape_lookahead", cfg.EscapeLookahead),
		positive(path, "escape_step_scale", cfg.EscapeStepScale),
		positive(path, "fallback_step_scale", cfg.FallbackStepScale),
		nonNegative(path, "novelty_radius", cfg.NoveltyRadius),
		positive(path, "visited_resolution", cfg.VisitedResolution),
	}
	if cfg.EscapeSweepDegrees > 180 {
		errs = append(errs, fieldError(path, "escape_sweep_degrees",
			fmt.Sprintf("must not exceed 180, got %v", cfg.EscapeSweepDegrees)))
	}
	window := cfg.StagnationWindow
	if cfg.OscillationWindow > window {
		window = cfg.OscillationWindow
	}
	if cfg.HistoryLength < window {
		errs = append(errs, fieldError(path, "history_length",
			fmt.Sprintf("must hold the longest detection window (%d), got %d", window, cfg.HistoryLength)))
	}
	if err := cfg.ObstacleModel.Validate(); err != nil {
		errs = append(errs, goutils.NewConfigValidationError(path, err))
	}
	return multierr.Combine(errs...)
}

// Package config defines scenario files: the course an agent runs on and the planner settings to
// run it with.
package config

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/fieldnav/logging"
	"go.viam.com/fieldnav/motionplan"
	"go.viam.com/fieldnav/spatialmath"
)

// DefaultMaxTicks bounds a run when a scenario does not.
const DefaultMaxTicks = 5000

// Point is a position as written in a scenario file.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// R2 converts the point for use with the planner.
func (p Point) R2() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// A Scenario describes a course and how to run it.
type Scenario struct {
	Name      string                  `json:"name"`
	Start     Point                   `json:"start"`
	Goal      Point                   `json:"goal"`
	Bounds    spatialmath.Rectangle   `json:"bounds"`
	Obstacles []spatialmath.Rectangle `json:"obstacles"`
	Planner   *motionplan.Config      `json:"planner,omitempty"`
	MaxTicks  int                     `json:"max_ticks"`

	ConfigFilePath string `json:"-"`
}

// Validate ensures all parts of the scenario are valid. It does not check for collisions; the
// planner rejects a start or goal inside an obstacle when it is built.
func (s *Scenario) Validate(path string) error {
	var errs []error
	if s.Bounds.Width <= 0 || s.Bounds.Height <= 0 {
		errs = append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("bounds %v must have a positive width and height", s.Bounds)))
	}
	for idx, rect := range s.Obstacles {
		obstaclePath := fmt.Sprintf("%s.%s.%d", path, "obstacles", idx)
		switch {
		case rect.Width <= 0 || rect.Height <= 0:
			errs = append(errs, goutils.NewConfigValidationError(obstaclePath,
				errors.Errorf("obstacle %v must have a positive width and height", rect)))
		case rect.Width != math.Trunc(rect.Width) || rect.Height != math.Trunc(rect.Height):
			// obstacles are made of whole unit cells.
			errs = append(errs, goutils.NewConfigValidationError(obstaclePath,
				errors.Errorf("obstacle %v must have a whole number width and height", rect)))
		}
	}
	extent := s.Bounds.Extent()
	if !extent.ContainsPoint(s.Start.R2()) {
		errs = append(errs, goutils.NewConfigValidationError(path, errors.Errorf("start %v is outside the bounds", s.Start)))
	}
	if !extent.ContainsPoint(s.Goal.R2()) {
		errs = append(errs, goutils.NewConfigValidationError(path, errors.Errorf("goal %v is outside the bounds", s.Goal)))
	}
	if s.MaxTicks <= 0 {
		errs = append(errs, goutils.NewConfigValidationError(path, errors.Errorf("max_ticks must be positive, got %d", s.MaxTicks)))
	}
	if s.Planner != nil {
		errs = append(errs, s.Planner.Validate(fmt.Sprintf("%s.%s", path, "planner")))
	}
	return multierr.Combine(errs...)
}

// PlannerConfig returns the planner settings, falling back to the defaults.
func (s *Scenario) PlannerConfig() *motionplan.Config {
	if s.Planner == nil {
		return motionplan.NewDefaultConfig()
	}
	return s.Planner
}

// NewPlanner builds a planner for the scenario.
func (s *Scenario) NewPlanner(logger logging.Logger, opts ...motionplan.PlannerOption) (*motionplan.Planner, error) {
	mp, err := motionplan.NewPlanner(
		s.Start.R2(), s.Goal.R2(), s.Obstacles, s.Bounds, s.PlannerConfig(), logger, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build planner for scenario %q", s.Name)
	}
	return mp, nil
}

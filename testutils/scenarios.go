package testutils

import (
	"go.viam.com/fieldnav/config"
	"go.viam.com/fieldnav/motionplan"
	"go.viam.com/fieldnav/spatialmath"
)

// CorridorScenario is an obstacle free course crossed in a straight line in under 30 ticks.
func CorridorScenario() *config.Scenario {
	return &config.Scenario{
		Name:     "corridor",
		Start:    config.Point{X: 2, Y: 5},
		Goal:     config.Point{X: 8, Y: 5},
		Bounds:   spatialmath.NewRectangle(0, 0, 20, 10),
		Planner:  motionplan.NewDefaultConfig(),
		MaxTicks: 200,
	}
}

// EnclosedScenario walls the start in, so the agent can never arrive.
func EnclosedScenario() *config.Scenario {
	return &config.Scenario{
		Name:   "enclosed",
		Start:  config.Point{X: 5, Y: 5},
		Goal:   config.Point{X: 9, Y: 9},
		Bounds: spatialmath.NewRectangle(0, 0, 12, 12),
		Obstacles: []spatialmath.Rectangle{
			spatialmath.NewRectangle(3, 3, 5, 1),
			spatialmath.NewRectangle(3, 7, 5, 1),
			spatialmath.NewRectangle(3, 4, 1, 3),
			spatialmath.NewRectangle(7, 4, 1, 3),
		},
		Planner:  motionplan.NewDefaultConfig(),
		MaxTicks: 300,
	}
}

package config

import (
	"go.viam.com/fieldnav/motionplan"
	"go.viam.com/fieldnav/spatialmath"
)

// DefaultScenario returns the built-in 27x15 course, running from its bottom-left corner to its
// top-right corner through a maze of 18 blocks.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:   "default",
		Start:  Point{X: 1, Y: 1},
		Goal:   Point{X: 26, Y: 14},
		Bounds: spatialmath.NewRectangle(0, 0, 27, 15),
		Obstacles: []spatialmath.Rectangle{
			spatialmath.NewRectangle(9, 13, 10, 2),
			spatialmath.NewRectangle(2, 11, 5, 2),
			spatialmath.NewRectangle(5, 8, 2, 3),
			spatialmath.NewRectangle(2, 6, 10, 2),
			spatialmath.NewRectangle(5, 2, 2, 4),
			spatialmath.NewRectangle(10, 1, 2, 5),
			// inverted T
			spatialmath.NewRectangle(8, 10, 2, 2),
			spatialmath.NewRectangle(8, 9, 4, 2),
			spatialmath.NewRectangle(17, 10, 2, 3),
			spatialmath.NewRectangle(14, 8, 5, 2),
			spatialmath.NewRectangle(18, 6, 1, 2),
			spatialmath.NewRectangle(14, 4, 5, 2),
			spatialmath.NewRectangle(14, 1, 2, 2),
			spatialmath.NewRectangle(20, 11, 3, 3),
			spatialmath.NewRectangle(22, 9, 2, 2),
			spatialmath.NewRectangle(21, 7, 2, 2),
			spatialmath.NewRectangle(21, 5, 6, 2),
			spatialmath.NewRectangle(20, 2, 2, 2),
		},
		Planner:  motionplan.NewDefaultConfig(),
		MaxTicks: DefaultMaxTicks,
	}
}

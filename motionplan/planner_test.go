package motionplan

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/fieldnav/logging"
	"go.viam.com/fieldnav/spatialmath"
)

// ring walls in the square (3, 7) x (3, 7).
var ring = []spatialmath.Rectangle{
	spatialmath.NewRectangle(3, 3, 5, 1),
	spatialmath.NewRectangle(3, 7, 5, 1),
	spatialmath.NewRectangle(3, 4, 1, 3),
	spatialmath.NewRectangle(7, 4, 1, 3),
}

func runTicks(mp *Planner, n int) []StepResult {
	results := make([]StepResult, 0, n)
	for i := 0; i < n; i++ {
		res := mp.Step()
		results = append(results, res)
		if !res.Continuing {
			break
		}
	}
	return results
}

func assertSafe(t *testing.T, mp *Planner) {
	t.Helper()
	cfg := mp.Config()
	for _, p := range mp.Trajectory() {
		test.That(t, mp.Workspace().Contains(p), test.ShouldBeTrue)
		test.That(t, mp.Obstacles().Collides(p, cfg.CollisionRadius), test.ShouldBeFalse)
	}
}

func TestNewPlannerErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bounds := spatialmath.NewRectangle(0, 0, 10, 10)
	obstacles := []spatialmath.Rectangle{spatialmath.NewRectangle(3, 3, 1, 1)}
	goal := r2.Point{X: 8, Y: 8}

	_, err := NewPlanner(r2.Point{X: 3, Y: 3}, goal, obstacles, bounds, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "start position")

	_, err = NewPlanner(r2.Point{X: 1, Y: 1}, r2.Point{X: 3.2, Y: 3}, obstacles, bounds, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "goal position")

	_, err = NewPlanner(r2.Point{X: 0.2, Y: 5}, goal, obstacles, bounds, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "outside the workspace")

	cfg := NewDefaultConfig()
	cfg.StepLength = -1
	_, err = NewPlanner(r2.Point{X: 1, Y: 1}, goal, obstacles, bounds, cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "step_length")

	_, err = NewPlanner(r2.Point{X: 1, Y: 1}, goal, []spatialmath.Rectangle{{X: 5, Y: 5}}, bounds, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot build obstacle set")

	_, err = NewPlannerFromGeometry(r2.Point{X: 1, Y: 1}, goal, nil, spatialmath.Workspace{}, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFirstTick(t *testing.T) {
	cfg := NewDefaultConfig()
	// keep (1, 1) out of reach of the left and bottom border fields so only the goal pulls.
	cfg.BoundaryRadius = 0.5
	mp, err := NewPlanner(r2.Point{X: 1, Y: 1}, r2.Point{X: 5, Y: 1}, nil,
		spatialmath.NewRectangle(0, 0, 10, 10), cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	res := mp.Step()
	test.That(t, res.Continuing, test.ShouldBeTrue)
	test.That(t, res.Status, test.ShouldEqual, StatusNormal)
	test.That(t, res.Resolution, test.ShouldEqual, ResolutionFull)
	test.That(t, res.Position.X, test.ShouldAlmostEqual, 1.25)
	test.That(t, res.Position.Y, test.ShouldAlmostEqual, 1)
	test.That(t, mp.Ticks(), test.ShouldEqual, 1)
	test.That(t, mp.Trajectory(), test.ShouldHaveLength, 2)
	test.That(t, mp.Position(), test.ShouldResemble, res.Position)
}

func TestArrival(t *testing.T) {
	logger := logging.NewTestLogger(t)

	t.Run("already at the goal", func(t *testing.T) {
		mp, err := NewPlanner(r2.Point{X: 1, Y: 1}, r2.Point{X: 1.3, Y: 1}, nil,
			spatialmath.NewRectangle(0, 0, 10, 10), nil, logger)
		test.That(t, err, test.ShouldBeNil)
		first := mp.Step()
		test.That(t, first.Continuing, test.ShouldBeFalse)
		test.That(t, first.Status, test.ShouldEqual, StatusArrived)
		for i := 0; i < 5; i++ {
			test.That(t, mp.Step(), test.ShouldResemble, first)
		}
		test.That(t, mp.Ticks(), test.ShouldEqual, 0)
		test.That(t, mp.Trajectory(), test.ShouldHaveLength, 1)
	})

	t.Run("straight run", func(t *testing.T) {
		mp, err := NewPlanner(r2.Point{X: 2, Y: 5}, r2.Point{X: 8, Y: 5}, nil,
			spatialmath.NewRectangle(0, 0, 20, 10), nil, logger)
		test.That(t, err, test.ShouldBeNil)
		results := runTicks(mp, 100)
		last := results[len(results)-1]
		test.That(t, last.Status, test.ShouldEqual, StatusArrived)
		test.That(t, spatialmath.Distance(last.Position, mp.Goal()), test.ShouldBeLessThan, 0.5)
		for _, res := range results[:len(results)-1] {
			test.That(t, res.Status, test.ShouldEqual, StatusNormal)
			test.That(t, res.Resolution, test.ShouldEqual, ResolutionFull)
		}
		test.That(t, mp.Ticks(), test.ShouldBeLessThan, 30)
	})
}

func TestObstacleDeflection(t *testing.T) {
	for _, tc := range []struct {
		name        string
		obstacle    spatialmath.Rectangle
		start, goal r2.Point
		bounds      spatialmath.Rectangle
		maxTicks    int
		// deflected reports whether p shows the path bending around the obstacle.
		deflected func(p r2.Point) bool
	}{
		{
			name:     "obstacle on the straight line",
			obstacle: spatialmath.NewRectangle(3, 1, 1, 1),
			start:    r2.Point{X: 1, Y: 1},
			goal:     r2.Point{X: 5, Y: 1},
			bounds:   spatialmath.NewRectangle(0, 0, 10, 10),
			maxTicks: 200,
			deflected: func(p r2.Point) bool {
				return p.X < 3 && math.Abs(p.Y-1) > 0.05
			},
		},
		{
			name:     "obstacle just off the straight line",
			obstacle: spatialmath.NewRectangle(6, 5, 1, 1),
			start:    r2.Point{X: 2, Y: 5.3},
			goal:     r2.Point{X: 10, Y: 5},
			bounds:   spatialmath.NewRectangle(0, 0, 20, 10),
			maxTicks: 3000,
			deflected: func(p r2.Point) bool {
				return p.X >= 5.5 && p.X <= 6.5 && math.Abs(p.Y-5) > 0.45
			},
		},
	} {
		for _, model := range []spatialmath.ObstacleModel{spatialmath.NearestPointModel, spatialmath.SampledModel} {
			t.Run(tc.name+"/"+string(model), func(t *testing.T) {
				cfg := NewDefaultConfig()
				cfg.ObstacleModel = model
				mp, err := NewPlanner(tc.start, tc.goal, []spatialmath.Rectangle{tc.obstacle}, tc.bounds, cfg,
					logging.NewBlankLogger("deflection"))
				test.That(t, err, test.ShouldBeNil)

				results := runTicks(mp, tc.maxTicks)
				test.That(t, results[len(results)-1].Status, test.ShouldEqual, StatusArrived)
				assertSafe(t, mp)

				deflected := false
				for _, p := range mp.Trajectory() {
					if tc.deflected(p) {
						deflected = true
					}
				}
				test.That(t, deflected, test.ShouldBeTrue)
			})
		}
	}
}

func TestEscapeDwell(t *testing.T) {
	cfg := NewDefaultConfig()
	// every window counts as stagnant: nine moves can never cover this much ground.
	cfg.StagnationThreshold = 5
	mp, err := NewPlanner(r2.Point{X: 5, Y: 5}, r2.Point{X: 9, Y: 9}, ring,
		spatialmath.NewRectangle(0, 0, 12, 12), cfg, logging.NewBlankLogger("dwell"),
		WithDirectionSource(NewFixedDirectionSource(0.3, 2.1, 4.0)))
	test.That(t, err, test.ShouldBeNil)

	results := runTicks(mp, 38)
	test.That(t, results, test.ShouldHaveLength, 38)
	for tick := 1; tick <= 16; tick++ {
		test.That(t, results[tick-1].Status, test.ShouldEqual, StatusNormal)
	}
	test.That(t, results[16].Status, test.ShouldEqual, StatusStagnant)
	for tick := 18; tick <= 37; tick++ {
		test.That(t, results[tick-1].Status, test.ShouldEqual, StatusEscaping)
	}
	test.That(t, results[37].Status, test.ShouldEqual, StatusNormal)
	test.That(t, mp.Counters(), test.ShouldResemble, AnomalyCounters{})
	test.That(t, mp.EscapeTicks(), test.ShouldEqual, 0)
}

func TestEnclosedAgentKeepsEscaping(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.StagnationThreshold = 5
	mp, err := NewPlanner(r2.Point{X: 5, Y: 5}, r2.Point{X: 9, Y: 9}, ring,
		spatialmath.NewRectangle(0, 0, 12, 12), cfg, logging.NewBlankLogger("enclosed"))
	test.That(t, err, test.ShouldBeNil)

	results := runTicks(mp, 300)
	test.That(t, results, test.ShouldHaveLength, 300)

	episodes := 0
	for _, res := range results {
		test.That(t, res.Continuing, test.ShouldBeTrue)
		if res.Status == StatusStagnant {
			episodes++
		}
	}
	test.That(t, episodes, test.ShouldBeGreaterThanOrEqualTo, 5)
	test.That(t, mp.VisitedCount(), test.ShouldBeGreaterThan, 10)
	assertSafe(t, mp)
	for _, p := range mp.Trajectory() {
		for _, v := range []float64{p.X, p.Y} {
			test.That(t, v, test.ShouldBeGreaterThan, 3)
			test.That(t, v, test.ShouldBeLessThan, 7)
		}
	}
	test.That(t, longestStationaryRun(mp.Trajectory()), test.ShouldBeLessThanOrEqualTo, 10)
}

// longestStationaryRun counts the most consecutive positions that are identical.
func longestStationaryRun(trajectory []r2.Point) int {
	longest, run := 0, 0
	for i := range trajectory {
		if i > 0 && trajectory[i] == trajectory[i-1] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func TestLongestStationaryRun(t *testing.T) {
	test.That(t, longestStationaryRun(nil), test.ShouldEqual, 0)
	a, b := r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 1}
	test.That(t, longestStationaryRun([]r2.Point{a, b}), test.ShouldEqual, 1)
	test.That(t, longestStationaryRun([]r2.Point{a, a, b, b, b, a}), test.ShouldEqual, 3)
}

func TestSharedGeometry(t *testing.T) {
	cfg := NewDefaultConfig()
	set, err := spatialmath.NewObstacleSet(ring, cfg.ObstacleModel)
	test.That(t, err, test.ShouldBeNil)
	ws, err := spatialmath.NewWorkspace(spatialmath.NewRectangle(0, 0, 12, 12), cfg.BoundaryMargin)
	test.That(t, err, test.ShouldBeNil)

	logger := logging.NewBlankLogger("shared")
	a, err := NewPlannerFromGeometry(r2.Point{X: 1, Y: 1}, r2.Point{X: 10, Y: 1}, set, ws, cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	b, err := NewPlannerFromGeometry(r2.Point{X: 1, Y: 10}, r2.Point{X: 10, Y: 10}, set, ws, cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	runTicks(a, 10)
	test.That(t, a.Ticks(), test.ShouldEqual, 10)
	test.That(t, b.Ticks(), test.ShouldEqual, 0)
	test.That(t, b.Position(), test.ShouldResemble, r2.Point{X: 1, Y: 10})
	test.That(t, a.Obstacles(), test.ShouldEqual, b.Obstacles())

	// later edits to the config do not reach an existing planner.
	cfg.StepLength = 2
	test.That(t, a.Config().StepLength, test.ShouldEqual, 0.25)
}

func TestForcesIntrospection(t *testing.T) {
	mp, err := NewPlanner(r2.Point{X: 10, Y: 10}, r2.Point{X: 15, Y: 10}, nil,
		spatialmath.NewRectangle(0, 0, 20, 20), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	forces := mp.Forces()
	test.That(t, forces.Obstacle, test.ShouldResemble, r2.Point{})
	test.That(t, forces.Boundary, test.ShouldResemble, r2.Point{})
	test.That(t, forces.Total().X, test.ShouldBeGreaterThan, 0)
}

func TestRandomLayoutsStaySafe(t *testing.T) {
	//nolint:gosec
	rng := rand.New(rand.NewSource(7))
	bounds := spatialmath.NewRectangle(0, 0, 30, 20)
	start, goal := r2.Point{X: 2, Y: 2}, r2.Point{X: 27, Y: 17}
	logger := logging.NewBlankLogger("random")

	planned := 0
	for layout := 0; layout < 20; layout++ {
		rects := make([]spatialmath.Rectangle, 0, 10)
		for i := 0; i < 10; i++ {
			rects = append(rects, spatialmath.NewRectangle(
				float64(3+rng.Intn(24)), float64(1+rng.Intn(17)),
				float64(1+rng.Intn(3)), float64(1+rng.Intn(3)),
			))
		}
		for _, model := range []spatialmath.ObstacleModel{spatialmath.NearestPointModel, spatialmath.SampledModel} {
			cfg := NewDefaultConfig()
			cfg.ObstacleModel = model
			cfg.RandomSeed = int64(layout)
			mp, err := NewPlanner(start, goal, rects, bounds, cfg, logger)
			if err != nil {
				continue
			}
			planned++
			runTicks(mp, 400)
			assertSafe(t, mp)
		}
	}
	test.That(t, planned, test.ShouldBeGreaterThan, 0)
}

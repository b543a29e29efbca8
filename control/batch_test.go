package control

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/test"

	"go.viam.com/fieldnav/logging"
	"go.viam.com/fieldnav/motionplan"
	"go.viam.com/fieldnav/spatialmath"
	"go.viam.com/fieldnav/testutils"
)

func TestRunBatch(t *testing.T) {
	logger := logging.NewBlankLogger("batch")
	scenario := testutils.CorridorScenario()
	cfg := scenario.PlannerConfig()
	set, err := spatialmath.NewObstacleSet(scenario.Obstacles, cfg.ObstacleModel)
	test.That(t, err, test.ShouldBeNil)
	ws, err := spatialmath.NewWorkspace(scenario.Bounds, cfg.BoundaryMargin)
	test.That(t, err, test.ShouldBeNil)

	var active, peak atomic.Int64
	jobs := make([]Job, 0, 5)
	for i := 0; i < 5; i++ {
		i := i
		jobs = append(jobs, Job{
			Name:     fmt.Sprintf("lane-%d", i),
			MaxTicks: 200,
			Build: func() (Stepper, error) {
				now := active.Inc()
				for {
					old := peak.Load()
					if now <= old || peak.CompareAndSwap(old, now) {
						break
					}
				}
				defer active.Dec()
				start := r2.Point{X: 2, Y: 3 + float64(i)}
				goal := r2.Point{X: 8, Y: 3 + float64(i)}
				mp, err := motionplan.NewPlannerFromGeometry(start, goal, set, ws, cfg, logger)
				if err != nil {
					return nil, err
				}
				return mp, nil
			},
		})
	}

	results, err := RunBatch(context.Background(), jobs, 2, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results, test.ShouldHaveLength, 5)
	for i, res := range results {
		test.That(t, res.Name, test.ShouldEqual, fmt.Sprintf("lane-%d", i))
		test.That(t, res.Outcome, test.ShouldEqual, OutcomeArrived)
	}
	test.That(t, peak.Load(), test.ShouldBeLessThanOrEqualTo, 2)
}

func TestRunBatchFailure(t *testing.T) {
	logger := logging.NewBlankLogger("batch")
	jobs := []Job{
		{Name: "ok", MaxTicks: 10, Build: func() (Stepper, error) { return &scriptedStepper{script: normals(2)}, nil }},
		{Name: "broken", MaxTicks: 10, Build: func() (Stepper, error) { return nil, errors.New("no geometry") }},
	}
	_, err := RunBatch(context.Background(), jobs, 0, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `job "broken"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no geometry")
}

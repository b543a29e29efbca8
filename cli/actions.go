package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/fieldnav/config"
	"go.viam.com/fieldnav/control"
	"go.viam.com/fieldnav/logging"
	"go.viam.com/fieldnav/motionplan"
	"go.viam.com/fieldnav/report"
	"go.viam.com/fieldnav/spatialmath"
)

// ErrGoalNotReached is returned by run when the agent did not arrive within its tick budget.
var ErrGoalNotReached = errors.New("goal not reached")

type appState struct {
	logger logging.Logger
}

func (s *appState) before(c *cli.Context) error {
	logger := logging.NewBlankLogger("fieldnav")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	level, err := logging.LevelFromString(c.String(flagLogLevel))
	if err != nil {
		return err
	}
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	logger.SetLevel(level)
	s.logger = logger
	return nil
}

func (s *appState) after(c *cli.Context) error {
	if s.logger == nil {
		return nil
	}
	return s.logger.Sync()
}

func (s *appState) context(c *cli.Context) context.Context {
	ctx := c.Context
	if c.Bool(flagDebug) {
		ctx = logging.EnableDebugMode(ctx, "")
	}
	return ctx
}

// loadScenario reads the scenario named by the flags, or the built-in one, and applies overrides.
func (s *appState) loadScenario(ctx context.Context, c *cli.Context) (*config.Scenario, error) {
	scenario := config.DefaultScenario()
	if path := c.Path(flagScenario); path != "" {
		var err error
		if scenario, err = config.Read(ctx, path, s.logger.Sublogger("config")); err != nil {
			return nil, err
		}
	}
	if scenario.Planner == nil {
		scenario.Planner = motionplan.NewDefaultConfig()
	}
	if c.IsSet(flagMaxTicks) {
		scenario.MaxTicks = c.Int(flagMaxTicks)
	}
	if c.IsSet(flagModel) {
		scenario.Planner.ObstacleModel = spatialmath.ObstacleModel(c.String(flagModel))
	}
	if c.IsSet(flagSeed) {
		scenario.Planner.RandomSeed = c.Int64(flagSeed)
	}
	if err := scenario.Validate("scenario"); err != nil {
		return nil, err
	}
	return scenario, nil
}

func (s *appState) runAction(c *cli.Context) error {
	ctx := s.context(c)
	scenario, err := s.loadScenario(ctx, c)
	if err != nil {
		return err
	}
	mp, err := scenario.NewPlanner(s.logger.Sublogger("planner"))
	if err != nil {
		return err
	}

	var res control.Result
	if hz := c.Float64(flagRealtimeHz); hz > 0 {
		loop, err := control.NewLoop(mp, control.LoopConfig{Frequency: hz, MaxTicks: scenario.MaxTicks}, nil, nil,
			s.logger.Sublogger("loop"))
		if err != nil {
			return err
		}
		if err := loop.Start(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			loop.Stop()
			return ctx.Err()
		case <-loop.Done():
		}
		res = loop.Wait()
	} else {
		res, err = control.Run(ctx, mp, control.RunOptions{MaxTicks: scenario.MaxTicks}, s.logger.Sublogger("control"))
		if err != nil {
			return err
		}
	}

	summary := report.Summarize(scenario.Name, scenario.Planner.RandomSeed, mp, res)
	if c.Bool(flagJSON) {
		encoder := json.NewEncoder(c.App.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary); err != nil {
			return errors.Wrap(err, "failed to encode summary")
		}
	} else {
		printf(c.App.Writer, "%s", summary.String())
	}

	if path := c.Path(flagTrajectoryOut); path != "" {
		if err := writeTrajectoryFile(path, summary, mp); err != nil {
			return err
		}
		s.logger.Infow("wrote trajectory", "path", path, "points", summary.Path.Steps+1)
	}
	if path := c.Path(flagPlotOut); path != "" {
		p, err := report.NewTrajectoryPlot(summary, mp)
		if err != nil {
			return err
		}
		if err := report.SavePlot(p, path); err != nil {
			return err
		}
		s.logger.Infow("wrote plot", "path", path)
	}

	if res.Outcome != control.OutcomeArrived {
		return errors.Wrapf(ErrGoalNotReached, "%s after %d ticks, %.3f from the goal",
			res.Outcome, res.Ticks, summary.DistanceToGoal)
	}
	return nil
}

func writeTrajectoryFile(path string, summary report.Summary, mp *motionplan.Planner) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create trajectory file %q", path)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return report.WriteTrajectory(f, summary, mp.Trajectory())
}

func (s *appState) batchAction(c *cli.Context) error {
	ctx := s.context(c)
	scenario, err := s.loadScenario(ctx, c)
	if err != nil {
		return err
	}
	seeds := c.Int(flagSeeds)
	if seeds <= 0 {
		return errors.Errorf("--%s must be positive, got %d", flagSeeds, seeds)
	}
	cfg := scenario.PlannerConfig()
	obstacles, err := spatialmath.NewObstacleSet(scenario.Obstacles, cfg.ObstacleModel)
	if err != nil {
		return err
	}
	workspace, err := spatialmath.NewWorkspace(scenario.Bounds, cfg.BoundaryMargin)
	if err != nil {
		return err
	}

	firstSeed := c.Int64(flagFirstSeed)
	planners := make([]*motionplan.Planner, seeds)
	jobs := make([]control.Job, seeds)
	for i := range jobs {
		i := i
		seed := firstSeed + int64(i)
		jobs[i] = control.Job{
			Name:     fmt.Sprintf("seed-%d", seed),
			MaxTicks: scenario.MaxTicks,
			Build: func() (control.Stepper, error) {
				seeded := *cfg
				seeded.RandomSeed = seed
				mp, err := motionplan.NewPlannerFromGeometry(
					scenario.Start.R2(), scenario.Goal.R2(), obstacles, workspace, &seeded, s.logger.Sublogger("planner"))
				if err != nil {
					return nil, err
				}
				planners[i] = mp
				return mp, nil
			},
		}
	}

	results, err := control.RunBatch(ctx, jobs, c.Int(flagParallel), s.logger.Sublogger("batch"))
	if err != nil {
		return err
	}
	summaries := make([]report.Summary, len(results))
	for i, res := range results {
		summaries[i] = report.Summarize(scenario.Name, firstSeed+int64(i), planners[i], res.Result)
	}
	printf(c.App.Writer, "%s", report.BatchTable(summaries))
	if agg := report.NewAggregate(summaries); agg.Arrived < agg.Runs {
		warningf(c.App.ErrWriter, "%d of %d runs did not reach the goal", agg.Runs-agg.Arrived, agg.Runs)
	}
	return nil
}

func (s *appState) validateAction(c *cli.Context) error {
	ctx := s.context(c)
	scenario, err := s.loadScenario(ctx, c)
	if err != nil {
		return err
	}
	if _, err := scenario.NewPlanner(s.logger.Sublogger("planner")); err != nil {
		return err
	}
	printf(c.App.Writer, "scenario %q is valid: %d obstacles, start %v, goal %v",
		scenario.Name, len(scenario.Obstacles), scenario.Start, scenario.Goal)
	return nil
}

func (s *appState) scenarioAction(c *cli.Context) error {
	return config.Write(c.App.Writer, config.DefaultScenario())
}

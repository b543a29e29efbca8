// Package cli contains the fieldnav command line interface.
package cli

import (
	"io"
	"runtime"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	flagDebug    = "debug"
	flagLogLevel = "log-level"

	flagScenario      = "scenario"
	flagMaxTicks      = "max-ticks"
	flagSeed          = "seed"
	flagModel         = "model"
	flagTrajectoryOut = "trajectory-out"
	flagPlotOut       = "plot-out"
	flagRealtimeHz    = "realtime-hz"
	flagJSON          = "json"

	flagSeeds     = "seeds"
	flagFirstSeed = "first-seed"
	flagParallel  = "parallel"
)

func scenarioFlag(required bool) *cli.PathFlag {
	usage := "load the scenario from `FILE`; defaults to the built-in course"
	if required {
		usage = "load the scenario from `FILE`"
	}
	return &cli.PathFlag{
		Name:     flagScenario,
		Aliases:  []string{"s"},
		Required: required,
		Usage:    usage,
	}
}

func plannerFlags() []cli.Flag {
	return []cli.Flag{
		scenarioFlag(false),
		&cli.IntFlag{
			Name:  flagMaxTicks,
			Usage: "override the scenario's tick budget",
		},
		&cli.StringFlag{
			Name:  flagModel,
			Usage: "override the obstacle model: nearest or sampled",
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	state := &appState{}
	return &cli.App{
		Name:            "fieldnav",
		Usage:           "steer a point agent through obstacle courses with potential fields",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "minimum log level: debug, info, warn or error",
			},
		},
		Before: state.before,
		After:  state.after,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a scenario once and print a summary",
				Flags: append(plannerFlags(),
					&cli.Int64Flag{
						Name:  flagSeed,
						Usage: "override the seed of the planner's random headings",
					},
					&cli.PathFlag{
						Name:  flagTrajectoryOut,
						Usage: "write the trajectory as json to `FILE`",
					},
					&cli.PathFlag{
						Name:  flagPlotOut,
						Usage: "draw the course and trajectory to `FILE`; the extension picks png, svg or pdf",
					},
					&cli.Float64Flag{
						Name:  flagRealtimeHz,
						Usage: "tick on the wall clock at this rate instead of as fast as possible",
					},
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "print the summary as json",
					},
				),
				Action: state.runAction,
			},
			{
				Name:  "batch",
				Usage: "run a scenario across many seeds in parallel and tabulate the outcomes",
				Flags: append(plannerFlags(),
					&cli.IntFlag{
						Name:  flagSeeds,
						Value: 10,
						Usage: "number of seeds to run",
					},
					&cli.Int64Flag{
						Name:  flagFirstSeed,
						Usage: "first seed; the rest follow consecutively",
					},
					&cli.IntFlag{
						Name:  flagParallel,
						Value: runtime.NumCPU(),
						Usage: "maximum number of runs in flight",
					},
				),
				Action: state.batchAction,
			},
			{
				Name:   "validate",
				Usage:  "check that a scenario file is valid and its start and goal are reachable positions",
				Flags:  []cli.Flag{scenarioFlag(true)},
				Action: state.validateAction,
			},
			{
				Name:   "scenario",
				Usage:  "print the built-in scenario as json",
				Action: state.scenarioAction,
			},
		},
	}
}

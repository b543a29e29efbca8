// Package report turns finished runs into summaries, tables and trajectory exports.
package report

import (
	"sort"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/fieldnav/control"
	"go.viam.com/fieldnav/motionplan"
	"go.viam.com/fieldnav/spatialmath"
	"go.viam.com/fieldnav/utils"
)

// Summary describes a single finished run.
type Summary struct {
	RunID    uuid.UUID       `json:"run_id"`
	Scenario string          `json:"scenario"`
	Seed     int64           `json:"seed"`
	Outcome  control.Outcome `json:"outcome"`
	Ticks    int             `json:"ticks"`

	Start r2.Point `json:"start"`
	Goal  r2.Point `json:"goal"`
	Final r2.Point `json:"final"`

	DistanceToGoal float64   `json:"distance_to_goal"`
	StraightLine   float64   `json:"straight_line"`
	Path           PathStats `json:"path"`
	// Efficiency is the straight line distance over the path length, 0 for an empty path.
	Efficiency float64 `json:"efficiency"`

	VisitedCells   int                           `json:"visited_cells"`
	EscapeEpisodes int                           `json:"escape_episodes"`
	StatusCounts   map[motionplan.Status]int     `json:"status_counts"`
	Resolutions    map[motionplan.Resolution]int `json:"resolutions"`
	Elapsed        time.Duration                 `json:"elapsed"`
}

// PathStats describes the steps of a trajectory.
type PathStats struct {
	Length     float64 `json:"length"`
	Steps      int     `json:"steps"`
	MeanStep   float64 `json:"mean_step"`
	StdDevStep float64 `json:"stddev_step"`
	// Stationary counts steps that did not move.
	Stationary int `json:"stationary"`
}

// steps shorter than this count as stationary.
const stationaryTolerance = 1e-9

// NewPathStats computes step statistics for a trajectory.
func NewPathStats(trajectory []r2.Point) PathStats {
	if len(trajectory) < 2 {
		return PathStats{}
	}
	steps := make([]float64, len(trajectory)-1)
	stationary := 0
	for i := range steps {
		steps[i] = spatialmath.Distance(trajectory[i+1], trajectory[i])
		if utils.Float64AlmostEqual(steps[i], 0, stationaryTolerance) {
			stationary++
		}
	}
	ps := PathStats{
		Length:     floats.Sum(steps),
		Steps:      len(steps),
		Stationary: stationary,
	}
	if len(steps) == 1 {
		ps.MeanStep = steps[0]
		return ps
	}
	ps.MeanStep, ps.StdDevStep = stat.MeanStdDev(steps, nil)
	return ps
}

// Summarize builds the summary of a run of mp that ended with res.
func Summarize(scenario string, seed int64, mp *motionplan.Planner, res control.Result) Summary {
	trajectory := mp.Trajectory()
	start := trajectory[0]
	path := NewPathStats(trajectory)
	straight := spatialmath.Distance(start, mp.Goal())
	efficiency := 0.0
	if path.Length > 0 {
		efficiency = utils.ClampFloat64(straight/path.Length, 0, 1)
	}
	return Summary{
		RunID:          uuid.New(),
		Scenario:       scenario,
		Seed:           seed,
		Outcome:        res.Outcome,
		Ticks:          res.Ticks,
		Start:          start,
		Goal:           mp.Goal(),
		Final:          mp.Position(),
		DistanceToGoal: spatialmath.Distance(mp.Position(), mp.Goal()),
		StraightLine:   straight,
		Path:           path,
		Efficiency:     efficiency,
		VisitedCells:   mp.VisitedCount(),
		EscapeEpisodes: res.EscapeEpisodes,
		StatusCounts:   res.StatusCounts,
		Resolutions:    res.Resolutions,
		Elapsed:        res.Elapsed,
	}
}

// Aggregate describes a batch of runs.
type Aggregate struct {
	Runs        int     `json:"runs"`
	Arrived     int     `json:"arrived"`
	SuccessRate float64 `json:"success_rate"`
	// Tick statistics cover arrived runs only and are zero when none arrived.
	MeanTicks   float64 `json:"mean_ticks"`
	StdDevTicks float64 `json:"stddev_ticks"`
	MedianTicks float64 `json:"median_ticks"`
	MaxTicks    float64 `json:"max_ticks"`
	MeanEscapes float64 `json:"mean_escapes"`
}

// NewAggregate summarizes a batch.
func NewAggregate(summaries []Summary) Aggregate {
	agg := Aggregate{Runs: len(summaries)}
	if len(summaries) == 0 {
		return agg
	}
	var ticks, escapes []float64
	for _, s := range summaries {
		escapes = append(escapes, float64(s.EscapeEpisodes))
		if s.Outcome == control.OutcomeArrived {
			ticks = append(ticks, float64(s.Ticks))
		}
	}
	agg.Arrived = len(ticks)
	agg.SuccessRate = float64(agg.Arrived) / float64(agg.Runs)
	agg.MeanEscapes = stat.Mean(escapes, nil)
	if len(ticks) == 0 {
		return agg
	}
	sort.Float64s(ticks)
	agg.MeanTicks = stat.Mean(ticks, nil)
	if len(ticks) > 1 {
		agg.StdDevTicks = stat.StdDev(ticks, nil)
	}
	agg.MedianTicks = stat.Quantile(0.5, stat.Empirical, ticks, nil)
	agg.MaxTicks = floats.Max(ticks)
	return agg
}

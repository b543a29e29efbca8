package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/fieldnav/motionplan"
)

func formatPoint(p r2.Point) string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// String prints the summary as a two column table.
func (s Summary) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Run", s.RunID.String()},
		{"Scenario", s.Scenario},
		{"Seed", s.Seed},
		{"Outcome", string(s.Outcome)},
		{"Ticks", s.Ticks},
		{"Start", formatPoint(s.Start)},
		{"Goal", formatPoint(s.Goal)},
		{"Final", formatPoint(s.Final)},
		{"Distance to goal", fmt.Sprintf("%.3f", s.DistanceToGoal)},
		{"Path length", fmt.Sprintf("%.3f", s.Path.Length)},
		{"Step mean/stddev", fmt.Sprintf("%.3f / %.3f", s.Path.MeanStep, s.Path.StdDevStep)},
		{"Efficiency", fmt.Sprintf("%.1f%%", 100*s.Efficiency)},
		{"Visited cells", s.VisitedCells},
		{"Escape episodes", s.EscapeEpisodes},
	})
	for _, status := range motionplan.AllStatuses {
		if n := s.StatusCounts[status]; n > 0 {
			t.AppendRow(table.Row{"Ticks " + status.String(), n})
		}
	}
	resolutions := make([]string, 0, len(s.Resolutions))
	for res := range s.Resolutions {
		resolutions = append(resolutions, string(res))
	}
	sort.Strings(resolutions)
	for _, res := range resolutions {
		t.AppendRow(table.Row{"Moves " + res, s.Resolutions[motionplan.Resolution(res)]})
	}
	return t.Render()
}

// BatchTable renders one row per run followed by a footer with the aggregate.
func BatchTable(summaries []Summary) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Seed", "Outcome", "Ticks", "Path", "Escapes", "Final distance"})
	for i, s := range summaries {
		t.AppendRow(table.Row{
			i + 1,
			s.Seed,
			string(s.Outcome),
			s.Ticks,
			fmt.Sprintf("%.2f", s.Path.Length),
			s.EscapeEpisodes,
			fmt.Sprintf("%.3f", s.DistanceToGoal),
		})
	}
	agg := NewAggregate(summaries)
	t.AppendFooter(table.Row{
		"",
		"",
		fmt.Sprintf("%d/%d arrived", agg.Arrived, agg.Runs),
		fmt.Sprintf("median %.0f", agg.MedianTicks),
		"",
		fmt.Sprintf("mean %.1f", agg.MeanEscapes),
		"",
	})
	return t.Render()
}

type trajectoryPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type trajectoryDocument struct {
	RunID    uuid.UUID         `json:"run_id"`
	Scenario string            `json:"scenario"`
	Goal     trajectoryPoint   `json:"goal"`
	Points   []trajectoryPoint `json:"points"`
}

// WriteTrajectory exports a trajectory as json so it can be plotted elsewhere.
func WriteTrajectory(w io.Writer, s Summary, trajectory []r2.Point) error {
	doc := trajectoryDocument{
		RunID:    s.RunID,
		Scenario: s.Scenario,
		Goal:     trajectoryPoint{X: s.Goal.X, Y: s.Goal.Y},
		Points:   make([]trajectoryPoint, 0, len(trajectory)),
	}
	for _, p := range trajectory {
		doc.Points = append(doc.Points, trajectoryPoint{X: p.X, Y: p.Y})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(doc), "failed to encode trajectory")
}

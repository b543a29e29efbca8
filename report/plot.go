package report

import (
	"fmt"
	"image/color"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/fieldnav/motionplan"
	"go.viam.com/fieldnav/spatialmath"
)

var (
	obstacleColor   = color.RGBA{R: 139, G: 69, B: 19, A: 255}
	trajectoryColor = color.RGBA{B: 255, A: 160}
	startColor      = color.RGBA{R: 255, A: 255}
	goalColor       = color.RGBA{G: 200, A: 255}
)

// plotWidth is the width of saved plots; the height follows the workspace aspect ratio.
const plotWidth = 14 * vg.Inch

func toXYs(points []r2.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// obstacleOutline covers the sample cells of an obstacle, each drawn as the unit square centered
// on its sample.
func obstacleOutline(rect spatialmath.Rectangle) plotter.XYs {
	hull := rect.SampleHull()
	lo := hull.Lo().Sub(r2.Point{X: 0.5, Y: 0.5})
	hi := hull.Hi().Add(r2.Point{X: 0.5, Y: 0.5})
	return plotter.XYs{{X: lo.X, Y: lo.Y}, {X: hi.X, Y: lo.Y}, {X: hi.X, Y: hi.Y}, {X: lo.X, Y: hi.Y}}
}

func boundsOutline(bounds spatialmath.Rectangle) plotter.XYs {
	ext := bounds.Extent()
	return plotter.XYs{
		{X: ext.X.Lo, Y: ext.Y.Lo}, {X: ext.X.Hi, Y: ext.Y.Lo},
		{X: ext.X.Hi, Y: ext.Y.Hi}, {X: ext.X.Lo, Y: ext.Y.Hi},
		{X: ext.X.Lo, Y: ext.Y.Lo},
	}
}

func marker(p r2.Point, shape draw.GlyphDrawer, c color.Color, radius vg.Length) (*plotter.Scatter, error) {
	scatter, err := plotter.NewScatter(plotter.XYs{{X: p.X, Y: p.Y}})
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Shape = shape
	scatter.GlyphStyle.Color = c
	scatter.GlyphStyle.Radius = radius
	return scatter, nil
}

// NewTrajectoryPlot draws the planner's workspace, obstacles and path.
func NewTrajectoryPlot(s Summary, mp *motionplan.Planner) (*plot.Plot, error) {
	bounds := mp.Workspace().Bounds()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s after %d ticks", s.Scenario, s.Outcome, s.Ticks)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	for _, rect := range mp.Obstacles().Rectangles() {
		poly, err := plotter.NewPolygon(obstacleOutline(rect))
		if err != nil {
			return nil, errors.Wrapf(err, "cannot draw obstacle %v", rect)
		}
		poly.Color = obstacleColor
		poly.LineStyle.Color = color.Black
		p.Add(poly)
	}

	border, err := plotter.NewLine(boundsOutline(bounds))
	if err != nil {
		return nil, err
	}
	border.Width = vg.Points(3)
	p.Add(border)

	if trajectory := mp.Trajectory(); len(trajectory) > 1 {
		path, err := plotter.NewLine(toXYs(trajectory))
		if err != nil {
			return nil, errors.Wrap(err, "cannot draw trajectory")
		}
		path.Color = trajectoryColor
		path.Width = vg.Points(2)
		p.Add(path)
		p.Legend.Add("trajectory", path)
	}

	start, err := marker(s.Start, draw.CircleGlyph{}, startColor, vg.Points(5))
	if err != nil {
		return nil, err
	}
	goal, err := marker(s.Goal, draw.PyramidGlyph{}, goalColor, vg.Points(8))
	if err != nil {
		return nil, err
	}
	p.Add(start, goal)
	p.Legend.Add("start", start)
	p.Legend.Add("goal", goal)
	p.Legend.Top = true
	p.Legend.Left = true

	p.X.Min, p.X.Max = bounds.X-0.5, bounds.X+bounds.Width+0.5
	p.Y.Min, p.Y.Max = bounds.Y-0.5, bounds.Y+bounds.Height+0.5
	return p, nil
}

// SavePlot writes the plot to path; the extension picks the format (png, svg, pdf...).
func SavePlot(p *plot.Plot, path string) error {
	xRange := p.X.Max - p.X.Min
	yRange := p.Y.Max - p.Y.Min
	height := plotWidth
	if xRange > 0 {
		height = vg.Length(float64(plotWidth) * yRange / xRange)
	}
	if err := p.Save(plotWidth, height, path); err != nil {
		return errors.Wrapf(err, "cannot save plot to %q", path)
	}
	return nil
}

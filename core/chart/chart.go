// Package chart renders investment cost trajectories to image files.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"cost-projections/core/determinism"
	"cost-projections/core/types"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// Selection picks one technology, survey version and scenario to chart
type Selection struct {
	Technology      string
	ScenarioVersion string
	Scenario        string
}

// Size of every rendered chart
var (
	Width  = 14 * vg.Inch
	Height = 6 * vg.Inch
)

type panel struct {
	method types.Method
	title  string
	value  func(types.InvTrajectory) float64
}

var panels = []panel{
	{types.MethodLearning, "learning only", func(t types.InvTrajectory) float64 { return t.LearningOnly }},
	{types.MethodGDP, "GDP adjusted", func(t types.InvTrajectory) float64 { return t.GDPAdjusted }},
	{types.MethodConvergence, "converged", func(t types.InvTrajectory) float64 { return t.Converged }},
}

// Trajectories writes one PNG per method with a line per region and returns the paths.
func Trajectories(traj []types.InvTrajectory, sel Selection, dir string) ([]string, error) {
	byRegion := make(map[string][]types.InvTrajectory)
	for _, t := range traj {
		if t.Technology == sel.Technology &&
			strings.EqualFold(t.ScenarioVersion, sel.ScenarioVersion) &&
			strings.EqualFold(t.Scenario, sel.Scenario) {
			byRegion[t.Region] = append(byRegion[t.Region], t)
		}
	}
	if len(byRegion) == 0 {
		return nil, errors.NotFound("trajectories",
			sel.ScenarioVersion+"/"+sel.Scenario+"/"+sel.Technology)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "creating %s", dir)
	}

	regions := determinism.SortedKeys(byRegion)
	colors := palette(len(regions))

	var paths []string
	for _, pn := range panels {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s investment cost, %s (%s, %s)",
			sel.Technology, pn.title, sel.ScenarioVersion, sel.Scenario)
		p.X.Label.Text = "Year"
		p.Y.Label.Text = "Investment cost (USD/kW)"
		p.Y.Min = 0

		for i, region := range regions {
			rows := byRegion[region]
			pts := make(plotter.XYs, len(rows))
			for j, r := range rows {
				pts[j] = plotter.XY{X: float64(r.Year), Y: pn.value(r)}
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return paths, errors.Wrapf(errors.TypeInternal, err, "plotting %s", region)
			}
			line.Color = colors[i]
			line.Width = vg.Points(1.5)
			p.Add(line)
			p.Legend.Add(region, line)
		}
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10

		name := fmt.Sprintf("%s_%s_%s_%s.png", sel.Technology, sel.ScenarioVersion, sel.Scenario, pn.method)
		path := filepath.Join(dir, strings.ToLower(name))
		if err := p.Save(Width, Height, path); err != nil {
			return paths, errors.Wrapf(errors.TypeInternal, err, "saving %s", path)
		}
		paths = append(paths, path)
	}

	logging.Info("trajectory charts written",
		zap.String("technology", sel.Technology),
		zap.Int("regions", len(regions)),
		zap.Strings("files", paths))
	return paths, nil
}

// palette spreads n hues evenly around the color wheel.
func palette(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = hsl(float64(i)/float64(n), 0.7, 0.45)
	}
	return colors
}

// hsl converts hue, saturation and lightness in [0, 1] to an opaque color.
func hsl(h, s, l float64) color.Color {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h * 6
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g = c, x
	case hp < 2:
		r, g = x, c
	case hp < 3:
		g, b = c, x
	case hp < 4:
		g, b = x, c
	case hp < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	m := l - c/2
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

package trainer

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// SaveCorrelationChart renders |r| per column as a bar chart, selected
// columns highlighted. The image format follows the file extension.
func SaveCorrelationChart(path string, names []string, scores []float64, selected []string) error {
	if len(names) != len(scores) {
		return errors.NewDimensionError("SaveCorrelationChart", len(names), len(scores), 0)
	}

	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	picked := make(plotter.Values, len(scores))
	rest := make(plotter.Values, len(scores))
	for i, v := range scores {
		if chosen[names[i]] {
			picked[i] = v
		} else {
			rest[i] = v
		}
	}

	p := plot.New()
	p.Title.Text = "Absolute correlation with target"
	p.Y.Label.Text = "|r|"
	p.Y.Min = 0

	width := vg.Points(18)
	restBars, err := plotter.NewBarChart(rest, width)
	if err != nil {
		return errors.Wrap(err, "build bar chart")
	}
	restBars.Color = color.Gray{Y: 160}
	restBars.LineStyle.Width = 0

	pickedBars, err := plotter.NewBarChart(picked, width)
	if err != nil {
		return errors.Wrap(err, "build bar chart")
	}
	pickedBars.Color = color.RGBA{R: 140, G: 20, B: 50, A: 255}
	pickedBars.LineStyle.Width = 0

	p.Add(restBars, pickedBars)
	p.Legend.Add("selected", pickedBars)
	p.Legend.Top = true
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create plot directory for %s", path)
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

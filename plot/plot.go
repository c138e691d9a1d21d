// Package plot draws convergence and dissociation curves into image files.
package plot

import (
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 8 * vg.Inch
	height = 5 * vg.Inch
)

// Line is a labelled curve.
type Line struct {
	Label string
	X     []float64
	Y     []float64
}

func (l Line) xys() (plotter.XYs, error) {
	if len(l.X) != len(l.Y) {
		return nil, errors.Errorf("%s: %d x, %d y", l.Label, len(l.X), len(l.Y))
	}
	xys := make(plotter.XYs, len(l.X))
	for i := range l.X {
		xys[i].X, xys[i].Y = l.X[i], l.Y[i]
	}
	return xys, nil
}

func addLines(p *plot.Plot, lines []Line, points bool) error {
	for i, l := range lines {
		xys, err := l.xys()
		if err != nil {
			return errors.Wrap(err, "")
		}
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return errors.Wrap(err, l.Label)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(l.Label, line)
		if points {
			scatter, err := plotter.NewScatter(xys)
			if err != nil {
				return errors.Wrap(err, l.Label)
			}
			scatter.GlyphStyle.Color = plotutil.Color(i)
			scatter.GlyphStyle.Shape = plotutil.Shape(i)
			p.Add(scatter)
		}
	}
	return nil
}

func save(p *plot.Plot, fpath string) error {
	if err := os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	if err := p.Save(width, height, fpath); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Convergence plots energy against evaluation count for every line, with the reference energy as a horizontal line.
// A NaN reference is omitted.
func Convergence(fpath, title string, lines []Line, reference float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Evaluation count"
	p.Y.Label.Text = "Energy (Hartree)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if err := addLines(p, lines, false); err != nil {
		return errors.Wrap(err, "")
	}
	if !math.IsNaN(reference) {
		ref := plotter.NewFunction(func(float64) float64 { return reference })
		ref.Color = plotutil.Color(len(lines))
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(ref)
		p.Legend.Add("Reference", ref)
		// Functions have no extent, so include the reference in the y range.
		p.Y.Min = math.Min(p.Y.Min, reference)
		p.Y.Max = math.Max(p.Y.Max, reference)
	}
	if err := save(p, fpath); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// BondEnergy plots energy curves against interatomic distance.
func BondEnergy(fpath string, lines []Line) error {
	p := plot.New()
	p.Title.Text = "Dissociation curve"
	p.X.Label.Text = "Interatomic distance (Angstrom)"
	p.Y.Label.Text = "Energy (Hartree)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	if err := addLines(p, lines, true); err != nil {
		return errors.Wrap(err, "")
	}
	if err := save(p, fpath); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

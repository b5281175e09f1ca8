package simulate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/kirchhoff/pkg/errors"
)

// WriteCSV writes a header row (t, x[0], x[1], ...) followed by one row per sample.
func (t *Trajectory) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	head := make([]string, t.Dim()+1)
	head[0] = "t"
	for i := range t.Dim() {
		head[i+1] = fmt.Sprintf("x[%d]", i)
	}
	if err := cw.Write(head); err != nil {
		return err
	}

	row := make([]string, len(head))
	for k, s := range t.States {
		row[0] = strconv.FormatFloat(t.Times[k], 'g', -1, 64)
		for i, v := range s {
			row[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PlotOptions configures [Trajectory.Plot].
type PlotOptions struct {
	Title  string
	Width  vg.Length // Defaults to 6 inches
	Height vg.Length // Defaults to 4 inches
}

func (o *PlotOptions) setDefaults() {
	if o.Width == 0 {
		o.Width = 6 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 4 * vg.Inch
	}
	if o.Title == "" {
		o.Title = "dX/dt = A·X"
	}
}

// Plot draws every state component against time, one colour per component
// from plotutil's fixed palette.
func (t *Trajectory) Plot(opts PlotOptions) (*plot.Plot, error) {
	opts.setDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "x"
	p.Add(plotter.NewGrid())

	for i := range t.Dim() {
		pts := make(plotter.XYs, len(t.Times))
		for k := range t.Times {
			pts[k].X = t.Times[k]
			pts[k].Y = t.States[k][i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("x[%d]", i), line)
	}
	p.Legend.Top = true
	return p, nil
}

// WritePlot draws the trajectory and encodes it as "png" or "svg".
func (t *Trajectory) WritePlot(w io.Writer, format string, opts PlotOptions) error {
	switch format {
	case "png", "svg":
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown plot format %q (want png or svg)", format)
	}

	p, err := t.Plot(opts)
	if err != nil {
		return err
	}
	opts.setDefaults()
	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return fmt.Errorf("plot %s: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

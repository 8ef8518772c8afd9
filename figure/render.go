package figure

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// Render draws a spec to w as "svg" or "png". Scatter, line and bar specs
// are renderable; choropleth and box specs are JSON-only and return an
// error. Secondary-axis traces are skipped: gonum/plot draws one y axis.
func Render(spec *Spec, w io.Writer, format string) error {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.Layout.XTitle
	p.Y.Label.Text = spec.Layout.YTitle

	switch spec.Type {
	case "scatter":
		if err := renderScatter(p, spec); err != nil {
			return err
		}
	case "line":
		if err := renderLines(p, spec); err != nil {
			return err
		}
	case "bar":
		if err := renderBar(p, spec); err != nil {
			return err
		}
	default:
		return errors.Newf("lifelens: figure type %q is not renderable", spec.Type)
	}

	wt, err := p.WriterTo(7*vg.Inch, 5*vg.Inch, format)
	if err != nil {
		return errors.Wrapf(err, "render %s figure", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write rendered figure")
	}
	return nil
}

func renderScatter(p *plot.Plot, spec *Spec) error {
	if spec.Layout.LogX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	for _, trace := range spec.Traces {
		scatter, err := plotter.NewScatter(traceXYs(trace))
		if err != nil {
			return errors.Wrap(err, "build scatter")
		}
		p.Add(scatter)
	}
	return nil
}

func renderLines(p *plot.Plot, spec *Spec) error {
	for _, trace := range spec.Traces {
		if trace.YAxis == "y2" {
			continue
		}
		line, err := plotter.NewLine(traceXYs(trace))
		if err != nil {
			return errors.Wrap(err, "build line")
		}
		p.Add(line)
		if trace.Name != "" {
			p.Legend.Add(trace.Name, line)
		}
	}
	return nil
}

func renderBar(p *plot.Plot, spec *Spec) error {
	if len(spec.Traces) == 0 {
		return errors.New("lifelens: bar figure has no trace")
	}
	trace := spec.Traces[0]
	bars, err := plotter.NewBarChart(plotter.Values(trace.X), vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "build bar chart")
	}
	bars.Horizontal = true
	p.Add(bars)
	p.NominalY(trace.Labels...)
	return nil
}

func traceXYs(trace Trace) plotter.XYs {
	xys := make(plotter.XYs, len(trace.X))
	for i := range trace.X {
		xys[i].X = trace.X[i]
		xys[i].Y = trace.Y[i]
	}
	return xys
}

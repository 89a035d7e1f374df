package export

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
	barWidth    = 20
)

// ChartRenderer draws bar and line charts to PNG files.
type ChartRenderer struct {
	dir string
}

func NewChartRenderer(dir string) *ChartRenderer {
	return &ChartRenderer{dir: dir}
}

// Render saves chart under its file name and returns the full path. A chart
// without data points still produces an image with empty axes.
func (r *ChartRenderer) Render(ctx context.Context, chart domain.Chart) (string, error) {
	fullPath := chart.FileName
	if !filepath.IsAbs(fullPath) && r.dir != "" {
		fullPath = filepath.Join(r.dir, chart.FileName)
	}

	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel

	var err error
	switch chart.Kind {
	case domain.ChartBar:
		err = r.bar(p, chart)
	case domain.ChartLine:
		err = r.line(p, chart)
	default:
		return "", domain.ConfigErr("unknown chart kind", map[string]any{"kind": chart.Kind})
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", domain.FileErr("failed to create directory", map[string]any{"path": fullPath, "error": err})
	}
	if err := p.Save(chartWidth, chartHeight, fullPath); err != nil {
		return "", domain.FileErr("failed to save chart", map[string]any{"path": fullPath, "error": err})
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", fullPath).
		Str("kind", string(chart.Kind)).
		Msg("chart rendered")
	return fullPath, nil
}

func (r *ChartRenderer) bar(p *plot.Plot, chart domain.Chart) error {
	xs, err := chart.Data.Values(chart.XColumn)
	if err != nil {
		return err
	}
	ys, err := chart.Data.Values(chart.YColumn)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(xs))
	values := make(plotter.Values, 0, len(ys))
	for i := range xs {
		y, ok := ys[i].Float()
		if !ok || math.IsInf(y, 0) {
			continue
		}
		names = append(names, xs[i].String())
		values = append(values, y)
	}
	if len(values) == 0 {
		return nil
	}

	bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
	if err != nil {
		return domain.DataErr("failed to build bar chart", map[string]any{"chart": chart.FileName, "error": err})
	}
	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	return nil
}

func (r *ChartRenderer) line(p *plot.Plot, chart domain.Chart) error {
	xs, err := chart.Data.Values(chart.XColumn)
	if err != nil {
		return err
	}
	ys, err := chart.Data.Values(chart.YColumn)
	if err != nil {
		return err
	}

	timeAxis := false
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		y, ok := ys[i].Float()
		if !ok || math.IsInf(y, 0) || xs[i].IsNull() {
			continue
		}
		var x float64
		switch xs[i].Kind() {
		case domain.KindTime:
			x = float64(xs[i].TimeVal().Unix())
			timeAxis = true
		case domain.KindNumber:
			x = xs[i].Num()
		default:
			return domain.DataErr("line chart needs a time or numeric x column", map[string]any{
				"column": chart.XColumn,
				"kind":   xs[i].Kind().String(),
			})
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return nil
	}

	l, err := plotter.NewLine(pts)
	if err != nil {
		return domain.DataErr("failed to build line chart", map[string]any{"chart": chart.FileName, "error": err})
	}
	p.Add(l, plotter.NewGrid())
	if timeAxis {
		p.X.Tick.Marker = plot.TimeTicks{Format: domain.DateLayout}
		p.X.Tick.Label.Rotation = math.Pi / 4
	}
	return nil
}

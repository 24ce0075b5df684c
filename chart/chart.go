package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/go-faster/errors"
	"github.com/quanta-team/quanta-engine/core"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const dpi = 100

var (
	ErrDisposed = errors.New("drawing is already disposed")

	barColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

// PlotRenderer draws charts with gonum/plot onto raster canvases.
type PlotRenderer struct{}

func (r *PlotRenderer) Setup(_ *core.Conf) error {
	zap.L().Debug("setting up plot renderer")
	return nil
}

func (r *PlotRenderer) BarChart(labels []string, values []float64, opts core.ChartOptions) (core.Drawing, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("got %d labels for %d values", len(labels), len(values))
	}
	if len(values) == 0 {
		return nil, errors.New("no values to chart")
	}
	if opts.WidthInch <= 0 || opts.HeightInch <= 0 {
		return nil, fmt.Errorf("invalid canvas size %.1fx%.1f inch", opts.WidthInch, opts.HeightInch)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(barWidth(len(values), opts.WidthInch)))
	if err != nil {
		return nil, errors.Wrap(err, "create bar chart")
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	if opts.XLabelRotation != 0 {
		p.X.Tick.Label.Rotation = opts.XLabelRotation * math.Pi / 180
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthInch)*vg.Inch, vg.Length(opts.HeightInch)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))
	return &Drawing{canvas: c}, nil
}

// barWidth spreads the bars over most of the plot width, in points.
func barWidth(n int, widthInch float64) float64 {
	w := widthInch * vg.Inch.Points() * 0.6 / float64(n)
	return math.Max(math.Min(w, 40), 1)
}

// Drawing is a rendered chart. The canvas stays allocated until Dispose.
type Drawing struct {
	canvas *vgimg.Canvas
}

func (d *Drawing) EncodePNG() ([]byte, error) {
	if d.canvas == nil {
		return nil, ErrDisposed
	}
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: d.canvas}).WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

func (d *Drawing) Dispose() {
	d.canvas = nil
}

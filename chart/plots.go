package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/etnz/stocks/stats"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func timeSeries(title string, names []string, series []stats.Dated) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Return (%)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())
	for i, d := range series {
		xys := make(plotter.XYs, d.Len())
		for j, on := range d.Dates {
			xys[j].X = float64(on.Time().Unix())
			xys[j].Y = d.Values[j]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		l.Width = vg.Points(0.8)
		l.Color = lineColor
		if len(series) > 1 {
			l.Color = plotutil.Color(i)
			p.Legend.Add(names[i], l)
		}
		p.Add(l)
	}
	p.Legend.Top = true
	return p, nil
}

// addLevel draws a dashed horizontal line at y across the current x range of p.
func addLevel(p *plot.Plot, y float64, c color.Color, legend string) error {
	l, err := plotter.NewLine(plotter.XYs{{X: p.X.Min, Y: y}, {X: p.X.Max, Y: y}})
	if err != nil {
		return err
	}
	l.Color = c
	l.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(l)
	if legend != "" {
		p.Legend.Add(legend, l)
	}
	return nil
}

// marker draws a dashed vertical line at x from 0 to top.
func marker(p *plot.Plot, x, top float64, c color.Color, legend string) error {
	l, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = vg.Points(2)
	l.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(l)
	p.Legend.Add(legend, l)
	return nil
}

// histogram plots the density of values, their median and mean, and the normal
// distribution with the same mean and standard deviation.
func histogram(label string, values []float64, s stats.Summary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = label + " Returns Distribution"
	p.X.Label.Text = "Return (%)"
	p.Y.Label.Text = "Density"
	p.Add(plotter.NewGrid())

	h, err := plotter.NewHist(plotter.Values(values), stats.Bins(len(values)))
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = color.RGBA{R: 173, G: 216, B: 230, A: 255}
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)

	top := 0.0
	for _, b := range h.Bins {
		top = math.Max(top, b.Weight)
	}
	if s.Std > 0 {
		normal := distuv.Normal{Mu: s.Mean, Sigma: s.Std}
		f := plotter.NewFunction(normal.Prob)
		f.XMin, f.XMax, f.Samples = s.Min, s.Max, 100
		f.Color = color.RGBA{R: 255, A: 255}
		f.Width = vg.Points(2)
		p.Add(f)
		p.Legend.Add("Normal Distribution", f)
		top = math.Max(top, normal.Prob(s.Mean))
	}
	if err := marker(p, s.Median, top, medianColor, fmt.Sprintf("Median: %.3f%%", s.Median)); err != nil {
		return nil, err
	}
	if err := marker(p, s.Mean, top, meanColor, fmt.Sprintf("Mean: %.3f%%", s.Mean)); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

var boxLevels = []struct {
	level int
	color color.Color
}{
	{5, color.RGBA{R: 255, A: 255}},
	{25, color.RGBA{R: 255, G: 165, A: 255}},
	{50, color.RGBA{B: 255, A: 255}},
	{75, color.RGBA{R: 255, G: 165, A: 255}},
	{95, color.RGBA{R: 255, A: 255}},
}

// boxPlot plots the box of values with its 5, 25, 50, 75 and 95 percentiles.
func boxPlot(label string, values []float64, s stats.Summary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = label + " Returns Box Plot"
	p.Y.Label.Text = "Return (%)"
	p.Add(plotter.NewGrid())

	b, err := plotter.NewBoxPlot(vg.Points(60), 0, plotter.Values(values))
	if err != nil {
		return nil, err
	}
	b.FillColor = color.RGBA{R: 144, G: 238, B: 144, A: 180}
	p.Add(b)

	var at plotter.XYs
	var texts []string
	for _, l := range boxLevels {
		v, ok := s.Percentile(l.level)
		if !ok {
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: v}, {X: 0.5, Y: v}})
		if err != nil {
			return nil, err
		}
		line.Color = l.color
		line.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
		line.Width = vg.Points(1.5)
		p.Add(line)
		at = append(at, plotter.XY{X: 0.55, Y: v})
		texts = append(texts, fmt.Sprintf("%d%%: %.2f%%", l.level, v))
	}
	if len(at) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: at, Labels: texts})
		if err != nil {
			return nil, err
		}
		p.Add(labels)
	}
	p.NominalX(label)
	p.X.Min, p.X.Max = -0.6, 1.2
	return p, nil
}

func faded(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 150}
}

func histograms(names []string, series []stats.Dated) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Returns Distribution Comparison"
	p.X.Label.Text = "Return (%)"
	p.Y.Label.Text = "Density"
	p.Add(plotter.NewGrid())
	for i, d := range series {
		h, err := plotter.NewHist(plotter.Values(d.Values), 30)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		h.Normalize(1)
		h.FillColor = faded(plotutil.Color(i))
		h.LineStyle.Width = 0
		p.Add(h)
		p.Legend.Add(names[i], h)
	}
	p.Legend.Top = true
	return p, nil
}

func boxPlots(names []string, series []stats.Dated) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Returns Box Plot Comparison"
	p.Y.Label.Text = "Return (%)"
	p.Add(plotter.NewGrid())
	for i, d := range series {
		b, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(d.Values))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		b.FillColor = color.RGBA{R: 173, G: 216, B: 230, A: 180}
		p.Add(b)
	}
	p.NominalX(names...)
	return p, nil
}

// grid adapts a correlation matrix to plotter.GridXYZ. Undefined values are shown as 0.
type grid struct{ m stats.Matrix }

func (g grid) Dims() (c, r int) { return len(g.m.Names), len(g.m.Names) }
func (g grid) X(c int) float64  { return float64(c) }
func (g grid) Y(r int) float64  { return float64(r) }
func (g grid) Z(c, r int) float64 {
	if v := g.m.Values[r][c]; !math.IsNaN(v) {
		return v
	}
	return 0
}

func heatMap(m stats.Matrix) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Returns Correlation Matrix"

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	h := plotter.NewHeatMap(grid{m}, cm.Palette(255))
	h.Min, h.Max = -1, 1
	p.Add(h)

	var at plotter.XYs
	var texts []string
	for r := range m.Names {
		for c := range m.Names {
			at = append(at, plotter.XY{X: float64(c), Y: float64(r)})
			if v := m.Values[r][c]; math.IsNaN(v) {
				texts = append(texts, "n/a")
			} else {
				texts = append(texts, fmt.Sprintf("%.2f", v))
			}
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: at, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)
	p.NominalX(m.Names...)
	p.NominalY(m.Names...)
	return p, nil
}

func drawTitle(dc draw.Canvas, title string, height vg.Length) {
	fnt := plot.DefaultFont
	fnt.Size = vg.Points(16)
	sty := draw.TextStyle{
		Color:   color.Black,
		Font:    fnt,
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
	}
	dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - height/2}, title)
}

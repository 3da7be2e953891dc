// Package chart renders analysis results as PNG figures.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/stats"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultDir is where charts are written by default.
const DefaultDir = "charts"

const (
	returnsDir    = "returns_analysis"
	comparisonDir = "comparison_analysis"
)

var (
	lineColor   = color.RGBA{R: 70, G: 130, B: 180, A: 255} // steelblue
	zeroColor   = color.RGBA{R: 220, A: 255}
	meanColor   = color.RGBA{G: 150, A: 255}
	medianColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
)

// Writer writes figures under a directory.
type Writer struct {
	dir    string
	logger *zap.Logger
	// Now dates the file names.
	Now           func() time.Time
	Width, Height vg.Length
}

// New returns a Writer to dir. A nil logger discards logs.
func New(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		dir:    dir,
		logger: logger,
		Now:    time.Now,
		Width:  16 * vg.Inch,
		Height: 10 * vg.Inch,
	}
}

// ReturnsFile returns the file of the returns figure of label.
func (w *Writer) ReturnsFile(label string) string {
	name := fmt.Sprintf("%s_daily_returns_analysis_%s.png", stocks.FileSafe(label), w.Now().Format("20060102"))
	return filepath.Join(w.dir, returnsDir, name)
}

// ComparisonFile returns the file of the comparison figure of tickers. Only the first three are named.
func (w *Writer) ComparisonFile(tickers []string) string {
	names := make([]string, 0, 3)
	for i, t := range tickers {
		if i == 3 {
			break
		}
		names = append(names, stocks.FileSafe(t))
	}
	joined := strings.Join(names, "_")
	if len(tickers) > 3 {
		joined += fmt.Sprintf("_and_%d_more", len(tickers)-3)
	}
	name := fmt.Sprintf("%s_returns_comparison_%s.png", joined, w.Now().Format("20060102"))
	return filepath.Join(w.dir, comparisonDir, name)
}

// Render draws the figures of res, records them in res.Charts and returns them.
// A comparison of a single ticker has no figure.
func (w *Writer) Render(res *analysis.Result) ([]string, error) {
	var files []string
	add := func(file string, err error) error {
		if err != nil {
			return err
		}
		files = append(files, file)
		return nil
	}
	var err error
	switch {
	case res.Returns != nil:
		label := res.Returns.Ticker
		if res.Kind == analysis.Weekly {
			label += "_Weekly"
		}
		err = add(w.Returns(label, res.Returns.Values, res.Returns.Stats))
	case res.Intraday != nil:
		err = add(w.Returns(res.Intraday.Ticker+"_Intraday", res.Intraday.Values, res.Intraday.Stats))
	case res.DailyRange != nil:
		r := res.DailyRange
		err = add(w.Returns(r.Ticker+"_DailyRange", r.Values.CloseRange, r.CloseRange))
	case res.Comparison != nil && len(res.Comparison.Stats) > 1:
		c := res.Comparison
		series := make([]stats.Dated, len(c.Stats))
		for i, ts := range c.Stats {
			series[i] = ts.Values
		}
		err = add(w.Comparison(res.Tickers, series, c.Correlation))
	}
	if err != nil {
		return nil, err
	}
	res.Charts = append(res.Charts, files...)
	return files, nil
}

// Returns draws the returns figure of label: the values over time on top, their
// distribution and their box plot below.
func (w *Writer) Returns(label string, values stats.Dated, s stats.Summary) (string, error) {
	if values.Len() == 0 {
		return "", stats.ErrEmpty
	}
	series, err := timeSeries(label+" Returns Over Time", []string{label}, []stats.Dated{values})
	if err != nil {
		return "", err
	}
	if err := addLevel(series, 0, zeroColor, ""); err != nil {
		return "", err
	}
	if err := addLevel(series, s.Mean, meanColor, fmt.Sprintf("Mean: %.3f%%", s.Mean)); err != nil {
		return "", err
	}
	hist, err := histogram(label, values.Values, s)
	if err != nil {
		return "", err
	}
	box, err := boxPlot(label, values.Values, s)
	if err != nil {
		return "", err
	}

	file := w.ReturnsFile(label)
	title := fmt.Sprintf("%s Daily Returns Analysis - %s", label, w.Now().Format("2006-01-02"))
	err = w.save(file, title, func(c draw.Canvas) {
		top, bottomLeft, bottomRight := split3(c)
		series.Draw(top)
		hist.Draw(bottomLeft)
		box.Draw(bottomRight)
	})
	return file, err
}

// Comparison draws the comparison figure: returns over time, their distributions,
// their box plots and their correlation.
func (w *Writer) Comparison(names []string, series []stats.Dated, m *stats.Matrix) (string, error) {
	if len(series) < 2 {
		return "", fmt.Errorf("comparison needs at least 2 series, got %d", len(series))
	}
	lines, err := timeSeries("Returns Comparison Over Time", names, series)
	if err != nil {
		return "", err
	}
	hists, err := histograms(names, series)
	if err != nil {
		return "", err
	}
	boxes, err := boxPlots(names, series)
	if err != nil {
		return "", err
	}
	if m == nil {
		x := stats.Correlation(names, series)
		m = &x
	}
	heat, err := heatMap(*m)
	if err != nil {
		return "", err
	}

	file := w.ComparisonFile(names)
	err = w.save(file, "", func(c draw.Canvas) {
		tiles := draw.Tiles{Rows: 2, Cols: 2, PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4}
		canvases := plot.Align([][]*plot.Plot{{lines, hists}, {boxes, heat}}, tiles, c)
		lines.Draw(canvases[0][0])
		hists.Draw(canvases[0][1])
		boxes.Draw(canvases[1][0])
		heat.Draw(canvases[1][1])
	})
	return file, err
}

// save renders draw on a white canvas with an optional title and writes it as PNG.
func (w *Writer) save(file, title string, drawFn func(draw.Canvas)) error {
	img := vgimg.NewWith(vgimg.UseWH(w.Width, w.Height), vgimg.UseBackgroundColor(color.White))
	dc := draw.New(img)
	if title != "" {
		titleHeight := vg.Inch / 2
		drawTitle(dc, title, titleHeight)
		dc = draw.Crop(dc, 0, 0, 0, -titleHeight)
	}
	drawFn(dc)

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	w.logger.Info("chart saved", zap.String("file", file))
	return nil
}

// split3 returns the top half of c, and the two quarters below it.
func split3(c draw.Canvas) (top, bottomLeft, bottomRight draw.Canvas) {
	width, height := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y
	pad := vg.Millimeter * 4
	top = draw.Crop(c, 0, 0, height/2+pad, 0)
	bottomLeft = draw.Crop(c, 0, -width/2-pad, 0, -height/2-pad)
	bottomRight = draw.Crop(c, width/2+pad, 0, 0, -height/2-pad)
	return top, bottomLeft, bottomRight
}

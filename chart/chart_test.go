package chart

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWriter(t *testing.T) *Writer {
	t.Helper()
	w := New(t.TempDir(), nil)
	w.Now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	w.Width, w.Height = 400, 300
	return w
}

func TestFileNames(t *testing.T) {
	w := New("charts", nil)
	w.Now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	assert.Equal(t, filepath.Join("charts", "returns_analysis", "GSPC_Intraday_daily_returns_analysis_20240309.png"), w.ReturnsFile("^GSPC_Intraday"))
	assert.Equal(t, filepath.Join("charts", "comparison_analysis", "AAPL_MSFT_returns_comparison_20240309.png"), w.ComparisonFile([]string{"AAPL", "MSFT"}))
	assert.Equal(t, filepath.Join("charts", "comparison_analysis", "A_B_C_and_2_more_returns_comparison_20240309.png"), w.ComparisonFile([]string{"A", "B", "C", "D", "E"}))
}

// wave returns n daily values oscillating around zero.
func wave(n int, scale float64) stats.Dated {
	var d stats.Dated
	on := stocks.NewDate(2024, 1, 1)
	for i := range n {
		d.Dates = append(d.Dates, on.Add(i))
		d.Values = append(d.Values, scale*float64(i%7-3))
	}
	return d
}

func exists(t *testing.T, file string) {
	t.Helper()
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRender_Returns(t *testing.T) {
	w := newWriter(t)
	values := wave(60, 0.5)
	s, err := stats.Describe(values.Values)
	require.NoError(t, err)
	res := &analysis.Result{
		Kind:    analysis.Weekly,
		Tickers: []string{"AAPL"},
		Returns: &analysis.Returns{Ticker: "AAPL", Stats: s, Values: values},
	}

	files, err := w.Render(res)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, w.ReturnsFile("AAPL_Weekly"), files[0])
	assert.Equal(t, files, res.Charts)
	exists(t, files[0])
}

func TestRender_Comparison(t *testing.T) {
	w := newWriter(t)
	a, b := wave(40, 1), wave(40, -0.5)
	res := &analysis.Result{
		Kind:    analysis.Compare,
		Tickers: []string{"AAPL", "MSFT"},
		Comparison: &analysis.Comparison{Stats: []analysis.TickerStats{
			{Ticker: "AAPL", Values: a},
			{Ticker: "MSFT", Values: b},
		}},
	}
	files, err := w.Render(res)
	require.NoError(t, err)
	require.Len(t, files, 1)
	exists(t, files[0])
}

func TestRender_SingleComparisonHasNoChart(t *testing.T) {
	w := newWriter(t)
	res := &analysis.Result{
		Kind:       analysis.Compare,
		Tickers:    []string{"AAPL"},
		Comparison: &analysis.Comparison{Stats: []analysis.TickerStats{{Ticker: "AAPL", Values: wave(10, 1)}}},
	}
	files, err := w.Render(res)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReturns_Empty(t *testing.T) {
	w := newWriter(t)
	_, err := w.Returns("AAPL", stats.Dated{}, stats.Summary{})
	assert.ErrorIs(t, err, stats.ErrEmpty)
}

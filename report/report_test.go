package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"text/template"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(t *testing.T) *analysis.Result {
	t.Helper()
	s, err := stats.Describe([]float64{1, -2, 3, 0.5})
	require.NoError(t, err)
	on := stocks.NewDate(2024, 3, 4)
	return &analysis.Result{
		Kind:        analysis.Daily,
		Description: "Daily close to close returns",
		Tickers:     []string{"^GSPC"},
		Requested:   []string{"SPX"},
		Generated:   time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC),
		Returns: &analysis.Returns{
			Ticker:   "^GSPC",
			Interval: stocks.Daily,
			Span:     stocks.NewRange(on, on.Add(4)),
			Stats:    s,
		},
	}
}

func newWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "results")
	w := New(dir, nil)
	w.Now = func() time.Time { return time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC) }
	return w, dir
}

func TestSave(t *testing.T) {
	w, dir := newWriter(t)
	res := result(t)
	res.Charts = []string{filepath.Join(filepath.Dir(dir), "charts", "returns_analysis", "GSPC_daily_returns_analysis_20240309.png")}

	files, err := w.Save(res)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "GSPC_returns_analysis_20240309_143005.json"), files.JSON)
	assert.Equal(t, filepath.Join(dir, "GSPC_returns_analysis_20240309_143005.md"), files.Markdown)
	assert.Empty(t, files.HTML)

	data, err := os.ReadFile(files.JSON)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "daily", got["analysis_type"])
	assert.Equal(t, []any{"SPX"}, got["original_tickers"])
	assert.Contains(t, got, "returns")

	md, err := os.ReadFile(files.Markdown)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# ^GSPC Daily Returns")
	assert.Contains(t, string(md), "../charts/returns_analysis/GSPC_daily_returns_analysis_20240309.png")
	// the saved result keeps its own paths
	assert.Equal(t, filepath.Join(filepath.Dir(dir), "charts", "returns_analysis", "GSPC_daily_returns_analysis_20240309.png"), res.Charts[0])
}

func TestSave_HTMLAndFrontMatter(t *testing.T) {
	w, dir := newWriter(t)
	w.HTML = true
	w.FrontMatter = template.Must(template.New("fm").Parse("---\ntitle: {{index .Tickers 0}} {{.Kind}}\n---\n"))

	files, err := w.Save(result(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "GSPC_returns_analysis_20240309_143005.html"), files.HTML)

	md, err := os.ReadFile(files.Markdown)
	require.NoError(t, err)
	assert.Regexp(t, `^---\ntitle: \^GSPC daily\n---\n`, string(md))

	html, err := os.ReadFile(files.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>GSPC_returns_analysis</title>")
	assert.Contains(t, string(html), "<table>")
}

func TestHTML(t *testing.T) {
	got, err := HTML("t", "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, string(got), "<h1>Title</h1>")
	assert.Contains(t, string(got), "<td>1</td>")
}

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/etnz/stocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource serves series from memory and records the requested tickers.
type memSource struct {
	series    map[string]stocks.Series // key is ticker/interval
	requested []string
}

func (m *memSource) Stored(ctx context.Context, req stocks.Request) (stocks.Series, error) {
	m.requested = append(m.requested, req.Ticker)
	s, ok := m.series[req.Ticker+"/"+string(req.Interval)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", req.Ticker, stocks.ErrNoData)
	}
	return s, nil
}

func ohlc(values ...[4]float64) stocks.Series {
	var bars []stocks.Bar
	on := stocks.NewDate(2024, 3, 4)
	for i, v := range values {
		bars = append(bars, stocks.Bar{
			Date:  on.Add(i),
			Open:  decimal.NewFromFloat(v[0]),
			High:  decimal.NewFromFloat(v[1]),
			Low:   decimal.NewFromFloat(v[2]),
			Close: decimal.NewFromFloat(v[3]),
		})
	}
	return stocks.NewSeries(bars...)
}

func closes(values ...float64) stocks.Series {
	var bars [][4]float64
	for _, v := range values {
		bars = append(bars, [4]float64{v, v, v, v})
	}
	return ohlc(bars...)
}

var aapl = ohlc(
	[4]float64{100, 101, 99, 100},
	[4]float64{102, 111, 101, 110},
	[4]float64{108, 109, 98, 99},
	[4]float64{99, 106, 98, 105},
	[4]float64{106, 121, 105, 120},
	[4]float64{119, 120, 107, 108},
)

var generated = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func newFactory() (*Factory, *memSource) {
	src := &memSource{series: map[string]stocks.Series{
		"AAPL/1d":  aapl,
		"MSFT/1d":  closes(50, 51, 52, 53, 54, 55),
		"^GSPC/1d": closes(5000, 5010, 4990, 5020, 5030, 5000),
	}}
	f := NewFactory(src, nil)
	f.Now = func() time.Time { return generated }
	return f, src
}

func TestDaily(t *testing.T) {
	f, _ := newFactory()
	res, err := f.Run(context.Background(), Daily, "aapl")
	require.NoError(t, err)

	assert.Equal(t, Daily, res.Kind)
	assert.Equal(t, []string{"AAPL"}, res.Tickers)
	assert.Equal(t, []string{"aapl"}, res.Requested)
	assert.Equal(t, generated, res.Generated)
	assert.Equal(t, "AAPL_returns_analysis", res.Base())

	r := res.Returns
	require.NotNil(t, r)
	assert.Equal(t, 5, r.Stats.Count)
	assert.Equal(t, 3, r.Metrics.PositiveDays)
	assert.Equal(t, 2, r.Metrics.NegativeDays)
	require.NotNil(t, r.Drawdown)
	assert.InDelta(t, -10, r.Drawdown.Max, 1e-9)
	assert.InDelta(t, -10, r.Drawdown.Current, 1e-9)
	assert.Equal(t, "$100.00", r.Performance.Start.String())
	assert.Equal(t, "$108.00", r.Performance.End.String())
	assert.Equal(t, stocks.NewRange(stocks.NewDate(2024, 3, 4), stocks.NewDate(2024, 3, 9)), r.Span)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestWeekly_NoData(t *testing.T) {
	f, _ := newFactory()
	_, err := f.Run(context.Background(), Weekly, "AAPL")
	assert.ErrorIs(t, err, stocks.ErrNoData)
	assert.ErrorContains(t, err, "fetch it first")
}

func TestIntraday(t *testing.T) {
	f, _ := newFactory()
	res, err := f.Run(context.Background(), Intraday, "AAPL")
	require.NoError(t, err)
	r := res.Intraday
	require.NotNil(t, r)

	assert.Equal(t, 6, r.Stats.Count)
	g := r.Gaps
	assert.Equal(t, 5, g.TotalDays)
	assert.Equal(t, 2, g.UpDays)
	assert.Equal(t, 2, g.DownDays)
	assert.Equal(t, 1, g.FlatDays)
	require.NotNil(t, g.Flat)
	assert.InDelta(t, 100*6.0/99, g.Flat.Stats.Mean, 1e-9)
	assert.Equal(t, "AAPL_intraday_returns_analysis", res.Base())
}

func TestDailyRange(t *testing.T) {
	f, _ := newFactory()
	res, err := f.Run(context.Background(), DailyRange, "AAPL")
	require.NoError(t, err)
	r := res.DailyRange
	require.NotNil(t, r)

	assert.Equal(t, 5, r.TotalDays)
	assert.Equal(t, 3, r.CloseUpDays)
	assert.Equal(t, stocks.NewDate(2024, 3, 8), r.BestCloseGain.Date)
	assert.InDelta(t, 100*16.0/105, r.BestCloseGain.Value, 1e-9)
	assert.Equal(t, stocks.NewDate(2024, 3, 6), r.WorstCloseLoss.Date)
	assert.InDelta(t, r.CloseGain.Mean-r.CloseLoss.Mean, r.CloseRange.Mean, 1e-9)
	assert.Equal(t, 5, r.OpenRange.Count)
}

func TestCompare(t *testing.T) {
	f, src := newFactory()
	res, err := f.Run(context.Background(), Compare, "AAPL", "MSFT", "NOPE", "SPX")
	require.NoError(t, err)
	assert.Contains(t, src.requested, "^GSPC", "index aliases are resolved")

	c := res.Comparison
	require.NotNil(t, c)
	assert.Equal(t, []string{"AAPL", "MSFT", "^GSPC"}, res.Tickers)
	assert.Equal(t, []string{"NOPE"}, c.Missing)
	require.Len(t, c.Stats, 3)
	assert.Equal(t, "SPX", c.Stats[2].Requested)

	require.NotNil(t, c.Correlation)
	v, ok := c.Correlation.At("MSFT", "MSFT")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	require.Len(t, c.Rankings.ByRisk, 3)
	assert.Equal(t, "MSFT", c.Rankings.ByRisk[0].Ticker, "steady growth is the least risky")
	assert.Equal(t, "MSFT", c.Rankings.BySharpe[0].Ticker)
	assert.Equal(t, "AAPL_MSFT_GSPC_comparison_analysis", res.Base())

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestCompare_NoData(t *testing.T) {
	f, _ := newFactory()
	_, err := f.Run(context.Background(), Compare, "NOPE", "NADA")
	assert.ErrorIs(t, err, stocks.ErrNoData)
}

func TestRun_Validation(t *testing.T) {
	f, _ := newFactory()
	ctx := context.Background()

	_, err := f.Run(ctx, Daily)
	assert.ErrorIs(t, err, ErrArity)
	_, err = f.Run(ctx, Intraday, "AAPL", "MSFT")
	assert.ErrorIs(t, err, ErrArity)
	_, err = f.Run(ctx, Compare, "AAPL")
	assert.ErrorIs(t, err, ErrArity)

	_, err = f.Run(ctx, "monthly", "AAPL")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorContains(t, err, "daily, weekly, intraday, range, compare")
}

func TestFactory_BuildsOnce(t *testing.T) {
	f, _ := newFactory()
	a, err := f.Analyzer(Daily)
	require.NoError(t, err)
	b, err := f.Analyzer(Daily)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, Daily, a.Kind())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Range ")
	require.NoError(t, err)
	assert.Equal(t, DailyRange, k)
	_, err = ParseKind("yearly")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/stats"
	"go.uber.org/zap"
)

// base holds what every analyzer shares.
type base struct {
	source   Source
	logger   *zap.Logger
	lookback stocks.Lookback
	currency string
	now      func() time.Time
}

// load returns the normalized ticker and its stored bars.
func (b *base) load(ctx context.Context, ticker string, interval stocks.Interval) (string, stocks.Series, error) {
	t, err := stocks.NormalizeTicker(ticker)
	if err != nil {
		return ticker, nil, err
	}
	s, err := b.source.Stored(ctx, stocks.Request{Ticker: t, Interval: interval, Lookback: b.lookback})
	if err != nil {
		if errors.Is(err, stocks.ErrNoData) {
			return t, nil, fmt.Errorf("no %s data stored for %s, fetch it first: %w", interval.Name(), t, err)
		}
		return t, nil, err
	}
	b.logger.Debug("loaded series", zap.String("ticker", t), zap.String("interval", interval.String()), zap.Int("bars", len(s)))
	return t, s, nil
}

func (b *base) result(kind Kind, tickers, requested []string) *Result {
	return &Result{
		Kind:        kind,
		Description: kind.Description(),
		Tickers:     tickers,
		Requested:   requested,
		Generated:   b.now(),
	}
}

func notEnough(ticker string, err error) error {
	return fmt.Errorf("not enough data for %s: %w", ticker, err)
}

// returnsAnalyzer analyzes close to close returns, daily or weekly.
type returnsAnalyzer struct {
	base
	kind     Kind
	interval stocks.Interval
	periods  int
}

func (a *returnsAnalyzer) Kind() Kind { return a.kind }

func (a *returnsAnalyzer) Analyze(ctx context.Context, tickers ...string) (*Result, error) {
	t, s, err := a.load(ctx, tickers[0], a.interval)
	if err != nil {
		return nil, err
	}
	returns := stats.Returns(s)
	summary, err := stats.Describe(returns.Values)
	if err != nil {
		return nil, notEnough(t, err)
	}
	metrics, err := stats.AnnualizedMetrics(returns.Values, a.periods)
	if err != nil {
		return nil, notEnough(t, err)
	}
	span, _ := s.Span()
	perf, _ := stocks.PerformanceOf(s, a.currency)
	r := &Returns{
		Ticker:      t,
		Interval:    a.interval,
		Span:        span,
		Performance: perf,
		Stats:       summary,
		Metrics:     metrics,
		Values:      returns,
	}
	if a.interval == stocks.Daily {
		dd, err := stats.Drawdown(s.Closes())
		if err != nil {
			return nil, notEnough(t, err)
		}
		r.Drawdown = &dd
	}
	res := a.result(a.kind, []string{t}, tickers)
	res.Returns = r
	return res, nil
}

type intradayAnalyzer struct{ base }

func (a *intradayAnalyzer) Kind() Kind { return Intraday }

func (a *intradayAnalyzer) Analyze(ctx context.Context, tickers ...string) (*Result, error) {
	t, s, err := a.load(ctx, tickers[0], stocks.Daily)
	if err != nil {
		return nil, err
	}
	intraday := stats.IntradayReturns(s)
	summary, err := stats.Describe(intraday.Values)
	if err != nil {
		return nil, notEnough(t, err)
	}
	metrics, err := stats.ReturnMetrics(intraday.Values)
	if err != nil {
		return nil, notEnough(t, err)
	}
	gaps, err := stats.GapGrouped(intraday, stats.Gaps(s))
	if err != nil {
		return nil, notEnough(t, err)
	}
	span, _ := s.Span()
	res := a.result(Intraday, []string{t}, tickers)
	res.Intraday = &IntradayReturns{
		Ticker:  t,
		Span:    span,
		Stats:   summary,
		Metrics: metrics,
		Gaps:    gaps,
		Values:  intraday,
	}
	return res, nil
}

type rangeAnalyzer struct{ base }

func (a *rangeAnalyzer) Kind() Kind { return DailyRange }

func (a *rangeAnalyzer) Analyze(ctx context.Context, tickers ...string) (*Result, error) {
	t, s, err := a.load(ctx, tickers[0], stocks.Daily)
	if err != nil {
		return nil, err
	}
	v := stats.DailyRange(s)
	if v.CloseGain.Len() == 0 {
		return nil, notEnough(t, stats.ErrEmpty)
	}
	span, _ := s.Span()
	r := &Range{
		Ticker:    t,
		Span:      span,
		TotalDays: v.CloseGain.Len(),
		Values:    v,

		CloseUpDays:    countPositive(v.CloseGain.Values),
		OpenUpDays:     countPositive(v.OpenHigh.Values),
		BestCloseGain:  extreme(v.CloseGain, func(a, b float64) bool { return a > b }),
		BestOpenHigh:   extreme(v.OpenHigh, func(a, b float64) bool { return a > b }),
		WorstCloseLoss: extreme(v.CloseLoss, func(a, b float64) bool { return a < b }),
		WorstOpenLow:   extreme(v.OpenLow, func(a, b float64) bool { return a < b }),
	}
	for _, x := range []struct {
		dst *stats.Summary
		src stats.Dated
	}{
		{&r.CloseGain, v.CloseGain},
		{&r.CloseLoss, v.CloseLoss},
		{&r.CloseRange, v.CloseRange},
		{&r.OpenHigh, v.OpenHigh},
		{&r.OpenLow, v.OpenLow},
		{&r.OpenRange, v.OpenRange},
	} {
		if *x.dst, err = stats.Describe(x.src.Values); err != nil {
			return nil, notEnough(t, err)
		}
	}
	res := a.result(DailyRange, []string{t}, tickers)
	res.DailyRange = r
	return res, nil
}

func countPositive(values []float64) int {
	n := 0
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}

// extreme returns the first record of d that no other beats.
func extreme(d stats.Dated, beats func(a, b float64) bool) Record {
	var r Record
	for i, v := range d.Values {
		if i == 0 || beats(v, r.Value) {
			r = Record{Date: d.Dates[i], Value: v}
		}
	}
	return r
}

package analysis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/stats"
	"go.uber.org/zap"
)

type compareAnalyzer struct{ base }

func (a *compareAnalyzer) Kind() Kind { return Compare }

// Analyze compares the daily returns of tickers.
// Tickers without stored data are reported as missing, it fails only if none has data.
func (a *compareAnalyzer) Analyze(ctx context.Context, tickers ...string) (*Result, error) {
	c := &Comparison{}
	var names []string
	for _, ticker := range tickers {
		t, s, err := a.load(ctx, ticker, stocks.Daily)
		if errors.Is(err, stocks.ErrNoData) {
			a.logger.Warn("no data to compare", zap.String("ticker", t))
			c.Missing = append(c.Missing, t)
			continue
		}
		if err != nil {
			return nil, err
		}
		if slices.Contains(names, t) {
			continue
		}
		returns := stats.Returns(s)
		summary, err := stats.Describe(returns.Values)
		if err != nil {
			a.logger.Warn("not enough data to compare", zap.String("ticker", t), zap.Int("bars", len(s)))
			c.Missing = append(c.Missing, t)
			continue
		}
		names = append(names, t)
		c.Stats = append(c.Stats, TickerStats{Ticker: t, Requested: ticker, Stats: summary, Values: returns})
	}
	if len(c.Stats) == 0 {
		return nil, fmt.Errorf("none of %v has stored data: %w", tickers, stocks.ErrNoData)
	}
	if len(c.Stats) > 1 {
		series := make([]stats.Dated, len(c.Stats))
		for i, ts := range c.Stats {
			series[i] = ts.Values
		}
		m := stats.Correlation(names, series)
		c.Correlation = &m
	}
	c.Rankings = rank(c.Stats)

	res := a.result(Compare, names, tickers)
	res.Comparison = c
	return res, nil
}

// rank orders the compared tickers. The ratio of mean to standard deviation is 0 for constant returns.
func rank(all []TickerStats) Rankings {
	var r Rankings
	for _, ts := range all {
		sharpe := 0.0
		if ts.Stats.Std > 0 {
			sharpe = ts.Stats.Mean / ts.Stats.Std
		}
		r.ByReturn = append(r.ByReturn, Rank{ts.Ticker, ts.Stats.Mean})
		r.ByRisk = append(r.ByRisk, Rank{ts.Ticker, ts.Stats.Std})
		r.BySharpe = append(r.BySharpe, Rank{ts.Ticker, sharpe})
	}
	desc := func(a, b Rank) int { return cmp.Compare(b.Value, a.Value) }
	asc := func(a, b Rank) int { return cmp.Compare(a.Value, b.Value) }
	slices.SortStableFunc(r.ByReturn, desc)
	slices.SortStableFunc(r.ByRisk, asc)
	slices.SortStableFunc(r.BySharpe, desc)
	return r
}


package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/stats"
	"go.uber.org/zap"
)

// Factory builds analyzers on first use and runs them.
type Factory struct {
	source Source
	logger *zap.Logger

	// Lookback bounds the stored history that is analyzed.
	Lookback stocks.Lookback
	// Currency is used to display prices.
	Currency string
	// Now returns the generation time of results.
	Now func() time.Time

	mu        sync.Mutex
	analyzers map[Kind]Analyzer
}

// NewFactory returns a Factory reading from source. A nil logger discards logs.
func NewFactory(source Source, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		source:    source,
		logger:    logger,
		Lookback:  stocks.DefaultLookback,
		Currency:  "USD",
		Now:       time.Now,
		analyzers: make(map[Kind]Analyzer),
	}
}

// Analyzer returns the analyzer of kind, building it if needed.
func (f *Factory) Analyzer(kind Kind) (Analyzer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.analyzers[kind]; ok {
		return a, nil
	}
	b := base{
		source:   f.source,
		logger:   f.logger.With(zap.String("analysis", string(kind))),
		lookback: f.Lookback,
		currency: f.Currency,
		now:      f.Now,
	}
	var a Analyzer
	switch kind {
	case Daily:
		a = &returnsAnalyzer{base: b, kind: Daily, interval: stocks.Daily, periods: stats.TradingDays}
	case Weekly:
		a = &returnsAnalyzer{base: b, kind: Weekly, interval: stocks.Weekly, periods: stats.TradingWeeks}
	case Intraday:
		a = &intradayAnalyzer{b}
	case DailyRange:
		a = &rangeAnalyzer{b}
	case Compare:
		a = &compareAnalyzer{b}
	default:
		return nil, unknown(string(kind))
	}
	f.analyzers[kind] = a
	return a, nil
}

// Run validates the tickers for kind and runs the analysis.
// Single ticker analyses need exactly one ticker, a comparison at least two.
func (f *Factory) Run(ctx context.Context, kind Kind, tickers ...string) (*Result, error) {
	a, err := f.Analyzer(kind)
	if err != nil {
		return nil, err
	}
	switch {
	case kind == Compare && len(tickers) < 2:
		return nil, fmt.Errorf("%s needs at least 2 tickers, got %d: %w", kind, len(tickers), ErrArity)
	case kind != Compare && len(tickers) != 1:
		return nil, fmt.Errorf("%s needs exactly 1 ticker, got %d: %w", kind, len(tickers), ErrArity)
	}
	f.logger.Info("running analysis", zap.String("kind", string(kind)), zap.Strings("tickers", tickers))
	return a.Analyze(ctx, tickers...)
}

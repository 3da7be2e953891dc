package stocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultLookback is the period requested when none is given.
var DefaultLookback = Lookback{N: 10, Unit: "y"}

// Request describes the bars wanted by a caller.
type Request struct {
	Ticker   string
	Interval Interval // Daily if empty
	// Range, when set, is used instead of Lookback.
	Range    Range
	Lookback Lookback // DefaultLookback if zero
	// ForceRefresh ignores the coverage and pulls the whole range again.
	ForceRefresh bool
}

// Service serves bars from the local store and pulls from the provider what is missing.
type Service struct {
	store    Store
	provider Provider
	logger   *zap.Logger

	// Today returns the current day, it can be replaced in tests.
	Today func() Date
	// Concurrency bounds FetchMany parallelism.
	Concurrency int
}

// NewService returns a Service. A nil logger discards logs.
func NewService(store Store, provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		provider:    provider,
		logger:      logger,
		Today:       Today,
		Concurrency: 4,
	}
}

// Provider returns the provider used to fill the store.
func (s *Service) Provider() Provider { return s.provider }

// resolve validates and normalizes req, and returns the requested range.
func (s *Service) resolve(req Request, today Date) (Request, Range, error) {
	ticker, err := NormalizeTicker(req.Ticker)
	if err != nil {
		return req, Range{}, err
	}
	req.Ticker = ticker

	if req.Interval == "" {
		req.Interval = Daily
	}
	if req.Interval, err = ParseInterval(string(req.Interval)); err != nil {
		return req, Range{}, err
	}

	r := req.Range
	if r.From.IsZero() && r.To.IsZero() {
		lb := req.Lookback
		if lb.N == 0 {
			lb = DefaultLookback
		}
		if lb.N < 0 {
			return req, Range{}, fmt.Errorf("%w %q", ErrInvalidLookback, lb)
		}
		r = lb.Range(today)
	}
	if r.To.IsZero() || r.To.After(today) {
		r.To = today
	}
	if r.IsEmpty() {
		return req, Range{}, fmt.Errorf("empty range %v", r)
	}
	return req, r, nil
}

// Get returns the bars for req.
//
// Only the days not covered by previous pulls are requested from the provider,
// together with a stored bar next to each gap. Providers adjust the whole history
// for splits and dividends: when the fresh close of that bar differs from the
// stored one, the requested range is pulled again and replaces every stored bar.
//
// If the provider fails, the bars already stored are returned instead, and the
// error is returned only when there are none.
func (s *Service) Get(ctx context.Context, req Request) (Series, error) {
	today := s.Today()
	req, r, err := s.resolve(req, today)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(
		zap.String("ticker", req.Ticker),
		zap.String("interval", req.Interval.String()),
		zap.Stringer("range", r),
	)

	gaps := []Range{r}
	if !req.ForceRefresh {
		cov, err := s.store.Coverage(ctx, req.Ticker, req.Interval)
		if err != nil {
			return nil, fmt.Errorf("reading coverage of %s: %w", req.Ticker, err)
		}
		gaps = cov.Missing(r, today, req.Interval)
	}
	if len(gaps) == 0 {
		log.Debug("cache hit")
	} else if s.provider == nil {
		return nil, fmt.Errorf("%s %s %v is not fully cached and no provider is configured", req.Ticker, req.Interval, r)
	}

	var fetchErr error
	for _, gap := range gaps {
		anchor, anchored, err := s.anchor(ctx, req, gap)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", req.Ticker, err)
		}
		pull := gap
		if anchored {
			pull = gap.Union(Range{From: anchor.Date, To: anchor.Date})
		}
		log.Info("fetching", zap.String("provider", s.provider.Name()), zap.Stringer("gap", pull))
		bars, err := s.fetch(ctx, req, pull)
		if err != nil {
			fetchErr = err
			break
		}
		if fresh, ok := bars.At(anchor.Date); anchored && ok && !sameClose(fresh.Close, anchor.Close) {
			log.Warn("cached history was adjusted by the provider, fetching it again",
				zap.Stringer("date", anchor.Date),
				zap.Stringer("cached", anchor.Close),
				zap.Stringer("fetched", fresh.Close),
			)
			all, err := s.fetch(ctx, req, r)
			if err != nil {
				fetchErr = err
				break
			}
			if err := s.store.Replace(ctx, req.Ticker, req.Interval, all, r, today); err != nil {
				return nil, fmt.Errorf("storing %s: %w", req.Ticker, err)
			}
			break
		}
		if err := s.store.Merge(ctx, req.Ticker, req.Interval, bars, pull, today); err != nil {
			return nil, fmt.Errorf("storing %s: %w", req.Ticker, err)
		}
		log.Debug("stored", zap.Int("bars", len(bars)), zap.Stringer("gap", pull))
	}

	bars, err := s.store.Bars(ctx, req.Ticker, req.Interval, r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.Ticker, err)
	}
	if fetchErr != nil {
		if len(bars) == 0 {
			return nil, fetchErr
		}
		log.Warn("provider failed, using cached data", zap.Error(fetchErr), zap.Int("bars", len(bars)))
		return bars, nil
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %s %v: %w", req.Ticker, req.Interval, r, ErrNoData)
	}
	return bars, nil
}

// fetch pulls the bars of req within r from the provider.
func (s *Service) fetch(ctx context.Context, req Request, r Range) (Series, error) {
	bars, err := s.provider.Fetch(ctx, req.Ticker, req.Interval, r)
	if errors.Is(err, ErrNoData) {
		// weekends and holidays are legitimately empty, the range is covered.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s %v from %s: %w", req.Ticker, req.Interval, r, s.provider.Name(), err)
	}
	return bars, nil
}

// anchorWindow is how many days around a gap a stored bar is looked for.
func anchorWindow(iv Interval) int {
	switch iv {
	case Weekly:
		return 21
	case Monthly:
		return 93
	default:
		return 14
	}
}

// anchor returns the stored bar closest to gap: the last one before it, or else the first one after it.
func (s *Service) anchor(ctx context.Context, req Request, gap Range) (b Bar, ok bool, err error) {
	w := anchorWindow(req.Interval)
	before, err := s.store.Bars(ctx, req.Ticker, req.Interval, Range{From: gap.From.Add(-w), To: gap.From.Add(-1)})
	if err != nil {
		return Bar{}, false, err
	}
	if b, ok := before.Last(); ok {
		return b, true, nil
	}
	after, err := s.store.Bars(ctx, req.Ticker, req.Interval, Range{From: gap.To.Add(1), To: gap.To.Add(w)})
	if err != nil || len(after) == 0 {
		return Bar{}, false, err
	}
	return after[0], true, nil
}

// closeTolerance is the relative difference below which two closes are the same price.
var closeTolerance = decimal.New(1, -4)

func sameClose(fresh, cached decimal.Decimal) bool {
	return fresh.Sub(cached).Abs().LessThanOrEqual(cached.Abs().Mul(closeTolerance))
}

// Stored returns the bars already in the store for req, without any network access.
func (s *Service) Stored(ctx context.Context, req Request) (Series, error) {
	req, r, err := s.resolve(req, s.Today())
	if err != nil {
		return nil, err
	}
	bars, err := s.store.Bars(ctx, req.Ticker, req.Interval, r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.Ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %s %v: %w", req.Ticker, req.Interval, r, ErrNoData)
	}
	return bars, nil
}

// Result is the outcome of one request in FetchMany.
type Result struct {
	Request Request
	Series  Series
	Err     error
}

// FetchMany runs Get for every request concurrently.
//
// Individual failures are reported in each Result, the returned error is only
// set when ctx is cancelled.
func (s *Service) FetchMany(ctx context.Context, reqs ...Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			series, err := s.Get(ctx, req)
			results[i] = Result{Request: req, Series: series, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Available lists the bars stored per ticker and interval.
func (s *Service) Available(ctx context.Context) ([]Entry, error) { return s.store.Available(ctx) }

// Info describes the local store.
func (s *Service) Info(ctx context.Context) (CacheInfo, error) { return s.store.Info(ctx) }

// Clear deletes stored data. An empty ticker or interval matches all.
func (s *Service) Clear(ctx context.Context, ticker string, interval Interval) (int64, error) {
	if ticker != "" {
		var err error
		if ticker, err = NormalizeTicker(ticker); err != nil {
			return 0, err
		}
	}
	n, err := s.store.Clear(ctx, ticker, interval)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cache cleared", zap.String("ticker", ticker), zap.String("interval", interval.String()), zap.Int64("rows", n))
	return n, nil
}

// Cleanup deletes data cached more than olderThan ago.
func (s *Service) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.store.Cleanup(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cache cleaned up", zap.Duration("older_than", olderThan), zap.Int64("rows", n))
	return n, nil
}

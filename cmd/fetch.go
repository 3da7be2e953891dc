package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/renderer"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	period   string
	interval string
	from, to string
	force    bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetches price history into the local cache" }
func (*fetchCmd) Usage() string {
	return `sap fetch [-period 10y] [-interval 1d] [-from <date>] [-to <date>] [-force] <ticker>...

Fetches the price history of each ticker from the market data provider and
stores it in the local cache.

Only the days the cache does not cover yet are requested from the provider,
so fetching again is cheap. Use -force to pull the whole period again.

The period is counted backward from today: 10y, 6mo, 4w or 30d. It is ignored
when -from is set. SPX is an alias for ^GSPC.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "", "Period of history to fetch (e.g., 10y, 6mo). Defaults to [data] period.")
	f.StringVar(&c.interval, "interval", "", "Bar interval: 1d, 1wk or 1mo. Defaults to [data] interval.")
	f.StringVar(&c.from, "from", "", "First day to fetch, instead of a period.")
	f.StringVar(&c.to, "to", "", "Last day to fetch, with -from. Defaults to today.")
	f.BoolVar(&c.force, "force", false, "Ignore the cache and fetch the whole period again.")
}

// requests returns the fetch requests of tickers.
func (c *fetchCmd) requests(config *Config, tickers []string) ([]stocks.Request, error) {
	period := c.period
	if period == "" {
		period = config.Data.Period
	}
	lookback, err := stocks.ParseLookback(period)
	if err != nil {
		return nil, err
	}
	iv := c.interval
	if iv == "" {
		iv = config.Data.Interval
	}
	interval, err := stocks.ParseInterval(iv)
	if err != nil {
		return nil, err
	}

	var r stocks.Range
	if c.from != "" {
		from, err := stocks.ParseDate(c.from)
		if err != nil {
			return nil, fmt.Errorf("invalid -from: %w", err)
		}
		to := stocks.Today()
		if c.to != "" {
			if to, err = stocks.ParseDate(c.to); err != nil {
				return nil, fmt.Errorf("invalid -to: %w", err)
			}
		}
		if to.Before(from) {
			return nil, fmt.Errorf("-to %s is before -from %s", to, from)
		}
		r = stocks.NewRange(from, to)
	} else if c.to != "" {
		return nil, fmt.Errorf("-to requires -from")
	}

	reqs := make([]stocks.Request, len(tickers))
	for i, t := range tickers {
		reqs[i] = stocks.Request{Ticker: t, Interval: interval, Range: r, Lookback: lookback, ForceRefresh: c.force}
	}
	return reqs, nil
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one ticker is required.")
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	reqs, err := c.requests(a.config, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	svc, err := a.service()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	results, err := svc.FetchMany(ctx, reqs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.FetchMarkdown(results, a.config.Data.Currency))
	for _, r := range results {
		if r.Err != nil {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

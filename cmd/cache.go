package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/renderer"
	"github.com/google/subcommands"
)

// cacheCmd is a container for cache maintenance subcommands.
type cacheCmd struct{}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "local cache maintenance commands" }
func (*cacheCmd) Usage() string {
	return `sap cache <subcommand> [args]

Commands:
  info    - Describe the local cache.
  clear   - Delete cached prices, for a ticker, an interval or everything.
  cleanup - Delete prices cached before a given age.
`
}

func (c *cacheCmd) SetFlags(f *flag.FlagSet) {}

func (c *cacheCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "cache")
	commander.Register(&cacheInfoCmd{}, "")
	commander.Register(&cacheClearCmd{}, "")
	commander.Register(&cacheCleanupCmd{}, "")
	return commander.Execute(ctx, args...)
}

type cacheInfoCmd struct{}

func (*cacheInfoCmd) Name() string     { return "info" }
func (*cacheInfoCmd) Synopsis() string { return "describes the local cache" }
func (*cacheInfoCmd) Usage() string {
	return `sap cache info

Prints the cache location, its size, and the number of bars per series.
`
}

func (c *cacheInfoCmd) SetFlags(f *flag.FlagSet) {}

func (c *cacheInfoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	info, err := a.offline().Info(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CacheInfoMarkdown(info))
	return subcommands.ExitSuccess
}

type cacheClearCmd struct {
	interval string
	all      bool
}

func (*cacheClearCmd) Name() string     { return "clear" }
func (*cacheClearCmd) Synopsis() string { return "deletes cached prices" }
func (*cacheClearCmd) Usage() string {
	return `sap cache clear [-interval 1d] [<ticker>] | -all

Deletes the cached prices of a ticker, optionally for a single interval.
Without a ticker, -all is required to empty the whole cache.
`
}

func (c *cacheClearCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.interval, "interval", "", "Only clear this interval (1d, 1wk, 1mo).")
	f.BoolVar(&c.all, "all", false, "Clear every ticker.")
}

func (c *cacheClearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 || (f.NArg() == 0 && !c.all) || (f.NArg() == 1 && c.all) {
		fmt.Fprintln(os.Stderr, "Error: give either one ticker or -all.")
		f.Usage()
		return subcommands.ExitUsageError
	}
	var interval stocks.Interval
	if c.interval != "" {
		var err error
		if interval, err = stocks.ParseInterval(c.interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	n, err := a.offline().Clear(ctx, f.Arg(0), interval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted %d rows.\n", n)
	return subcommands.ExitSuccess
}

type cacheCleanupCmd struct {
	olderThan time.Duration
}

func (*cacheCleanupCmd) Name() string     { return "cleanup" }
func (*cacheCleanupCmd) Synopsis() string { return "deletes prices cached long ago" }
func (*cacheCleanupCmd) Usage() string {
	return `sap cache cleanup [-older-than 720h]

Deletes the prices cached before the given age. The days they covered will be
fetched again on the next request.
`
}

func (c *cacheCleanupCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.olderThan, "older-than", 30*24*time.Hour, "Age of the prices to delete.")
}

func (c *cacheCleanupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.olderThan <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -older-than must be positive.")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	n, err := a.offline().Cleanup(ctx, c.olderThan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted %d rows cached more than %s ago.\n", n, c.olderThan)
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/stocks/eodhd"
	"github.com/etnz/stocks/renderer"
	"github.com/google/subcommands"
)

// searchCmd implements the "search" command.
type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "searches for tickers on EODHD" }
func (*searchCmd) Usage() string {
	return `sap search <search term>

  Searches for securities by name, ticker or ISIN via the EOD Historical Data
  API and prints the ticker to use with 'sap fetch -provider eodhd'.

  Requires the EODHD_API_KEY environment variable to be set or passed with
  the -eodhd-api-key flag.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a search term is required.")
		return subcommands.ExitUsageError
	}
	term := strings.Join(f.Args(), " ")

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	opts := []eodhd.Option{eodhd.WithBaseURL(a.config.EODHD.BaseURL), eodhd.WithLogger(a.logger)}
	if a.config.EODHD.CacheDir != "" {
		opts = append(opts, eodhd.WithCacheDir(a.config.EODHD.CacheDir))
	}
	client, err := eodhd.New(a.config.EODHD.APIKey, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	results, err := client.Search(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching securities: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SearchMarkdown(term, results))
	return subcommands.ExitSuccess
}

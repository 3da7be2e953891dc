package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/stocks/renderer"
	"github.com/google/subcommands"
)

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "lists the price series available in the local cache" }
func (*listCmd) Usage() string {
	return `sap list

Lists every ticker and interval stored in the local cache, with the first and
last day available and when it was last fetched.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	entries, err := a.offline().Available(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not list the cache: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.AvailableMarkdown(entries))
	return subcommands.ExitSuccess
}

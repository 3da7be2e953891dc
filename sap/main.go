// Command sap is the stock analysis platform: it fetches stock prices into a
// local cache and analyzes their returns.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/stocks/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.Completion().Complete("sap")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)
	flag.Parse()

	// Unknown commands are delegated to sap-<command> extensions.
	if name := flag.Arg(0); name != "" {
		known := false
		commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
			known = known || c.Name() == name
		})
		if !known {
			if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
				os.Exit(code)
			}
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

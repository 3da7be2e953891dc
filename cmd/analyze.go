package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// analyze runs one analysis, renders its charts, saves it and prints it.
func (a *app) analyze(ctx context.Context, factory *analysis.Factory, kind analysis.Kind, frontMatter string, tickers ...string) error {
	res, err := factory.Run(ctx, kind, tickers...)
	if err != nil {
		return err
	}
	if charts := a.charts(); charts != nil {
		if _, err := charts.Render(res); err != nil {
			// the statistics are still worth saving
			a.logger.Warn("failed to render charts", zap.String("analysis", string(kind)), zap.Error(err))
		}
	}
	reports, err := a.reports(frontMatter)
	if err != nil {
		return err
	}
	files, err := reports.Save(res)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	printMarkdown(renderer.Analysis(res))
	fmt.Printf("Results saved to %s\n", files.JSON)
	return nil
}

// status maps an analysis error to an exit status, printing it.
func status(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, analysis.ErrArity) || errors.Is(err, analysis.ErrUnknownKind) || errors.Is(err, stocks.ErrEmptyTicker) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// analyzeCmd runs the daily returns analysis, and the weekly one when weekly bars are cached.
type analyzeCmd struct {
	frontMatter string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyzes the daily and weekly returns of a ticker" }
func (*analyzeCmd) Usage() string {
	return `sap analyze [-frontmatter <file>] <ticker>

Analyzes the close to close returns of a ticker from the local cache: summary
statistics, percentiles, annualized volatility, Sharpe ratio and drawdown.

The weekly returns are analyzed too when weekly bars have been fetched
(sap fetch -interval 1wk <ticker>).

Charts are written to the charts directory, results to the results directory.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.frontMatter, "frontmatter", "", "Path to a Go template file for the report front matter")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one ticker is required.")
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		return status(err)
	}
	defer a.Close()

	factory := a.factory()
	ticker := f.Arg(0)
	if err := a.analyze(ctx, factory, analysis.Daily, c.frontMatter, ticker); err != nil {
		if errors.Is(err, stocks.ErrNoData) {
			fmt.Fprintf(os.Stderr, "Hint: sap fetch %s\n", ticker)
		}
		return status(err)
	}
	err = a.analyze(ctx, factory, analysis.Weekly, c.frontMatter, ticker)
	if errors.Is(err, stocks.ErrNoData) {
		a.logger.Info("weekly analysis skipped", zap.String("ticker", ticker), zap.Error(err))
		return subcommands.ExitSuccess
	}
	return status(err)
}

// analysisCmd runs one kind of analysis.
type analysisCmd struct {
	kind        analysis.Kind
	frontMatter string
}

func (c *analysisCmd) Name() string { return string(c.kind) }

func (c *analysisCmd) Synopsis() string { return "analyzes the " + lowerFirst(c.kind.Description()) }

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (c *analysisCmd) Usage() string {
	if c.kind == analysis.Compare {
		return `sap compare [-frontmatter <file>] <ticker> <ticker>...

Compares the daily returns of several tickers from the local cache: summary
statistics, correlation matrix and rankings by mean return, risk and Sharpe
ratio. Tickers without cached data are reported and skipped.
`
	}
	return fmt.Sprintf(`sap %s [-frontmatter <file>] <ticker>

Analyzes the %s from the local cache.
`, c.kind, lowerFirst(c.kind.Description()))
}

func (c *analysisCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.frontMatter, "frontmatter", "", "Path to a Go template file for the report front matter")
}

func (c *analysisCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a ticker is required.")
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		return status(err)
	}
	defer a.Close()
	return status(a.analyze(ctx, a.factory(), c.kind, c.frontMatter, f.Args()...))
}
